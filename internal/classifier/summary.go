package classifier

import "github.com/cratedig/cratedig/internal/models"

// Summarize tallies classification results into a [models.Summary].
//
// All three categories are always present in the map, zero-filled. A nil or
// non-canonical classification counts as unclassified. An empty input yields
// a zero summary with no division performed.
func Summarize(tracks []models.ClassifiedTrack) models.Summary {
	summary := models.Summary{
		Total:      len(tracks),
		Categories: make(map[models.Category]int, 3),
	}
	for _, cat := range models.Categories() {
		summary.Categories[cat] = 0
	}

	if len(tracks) == 0 {
		return summary
	}

	for _, track := range tracks {
		if track.Classification != nil && track.Classification.Valid() {
			summary.Categories[*track.Classification]++
		} else {
			summary.Unclassified++
		}
	}

	summary.SuccessRate = float64(summary.Total-summary.Unclassified) / float64(summary.Total)
	return summary
}
