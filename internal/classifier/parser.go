package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cratedig/cratedig/internal/models"
)

// predictionPattern matches "Track N: **Category**" lines. The reply format
// is not guaranteed by any backend, so the scan is case-insensitive and
// tolerates arbitrary surrounding text.
var predictionPattern = regexp.MustCompile(`(?i)Track\s+(\d+):\s*\*\*([^*]+)\*\*`)

// ParseResponse extracts per-track category predictions from raw reply text.
//
// The result always has length n, positionally aligned with the batch:
// index i holds the prediction for track i+1, nil when no usable prediction
// was found. Track numbers outside [1, n] are ignored; duplicate numbers are
// resolved last-match-wins. ParseResponse never fails: garbage in the reply
// only produces nil entries.
func ParseResponse(reply string, n int) []*models.Category {
	assigned := make(map[int]models.Category)

	for _, match := range predictionPattern.FindAllStringSubmatch(reply, -1) {
		num, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if cat, ok := resolveCategory(match[2]); ok {
			assigned[num] = cat
		}
	}

	results := make([]*models.Category, n)
	for i := 1; i <= n; i++ {
		if cat, ok := assigned[i]; ok {
			c := cat
			results[i-1] = &c
		}
	}
	return results
}

// resolveCategory maps raw prediction text onto a canonical category.
//
// An exact (case-sensitive) match wins outright. Otherwise each canonical
// category is tested in declared order for case-insensitive containment in
// either direction, so "dance pop", "HOUSE" and "bass music" all resolve.
// First match wins, keeping overlap resolution deterministic.
func resolveCategory(raw string) (models.Category, bool) {
	trimmed := strings.TrimSpace(raw)

	if cat := models.Category(trimmed); cat.Valid() {
		return cat, true
	}

	lower := strings.ToLower(trimmed)
	for _, cat := range models.Categories() {
		canonical := strings.ToLower(string(cat))
		if strings.Contains(lower, canonical) || strings.Contains(canonical, lower) {
			return cat, true
		}
	}

	return "", false
}
