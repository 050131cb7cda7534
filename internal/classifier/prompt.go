package classifier

import (
	"fmt"
	"strings"

	"github.com/cratedig/cratedig/internal/models"
)

// unknownField stands in for any metadata the catalog could not supply.
const unknownField = "Unknown"

// classificationPrompt is the fixed instruction template. The %s placeholder
// receives the formatted track blocks. The trailing format demand keeps the
// reply machine-parseable; the parser still tolerates deviations.
const classificationPrompt = `You are an expert in electronic music categorization, helping DJs classify tracks into broad electronic genres. The available categories are:

- Dance Pop: melodic, catchy, often vocal-heavy tracks intended for mainstream dance audiences. Think Dua Lipa, Calvin Harris, or remixes of pop hits.
- House: rhythm-driven tracks with 4/4 beats, consistent grooves, minimal vocals, and strong club energy. Think deep house, tech house, or progressive house.
- Bass: includes genres like dubstep, trap, future bass, or other subgenres focused on heavy low-end, syncopated beats, or experimental production.

Categorize each song based on the metadata provided.

### Example 1
Track: "One Kiss"
Artist: Calvin Harris, Dua Lipa
Genres: dance pop, pop, EDM
Tempo: 124 BPM
Energy: 0.8
Danceability: 0.85
Prediction: **Dance Pop**

### Example 2
Track: "Losing It"
Artist: Fisher
Genres: tech house, house
Tempo: 125 BPM
Energy: 0.9
Danceability: 0.82
Prediction: **House**

### Example 3
Track: "Core"
Artist: RL Grime
Genres: trap, bass, electronic
Tempo: 150 BPM
Energy: 0.95
Danceability: 0.6
Prediction: **Bass**

%s

Respond with ONLY the predictions in this exact format for each track:
Track X: **Category**

Do not include any other text, explanations, or formatting.`

// BuildPrompt renders a batch of tracks into a single classification prompt.
// It is pure: the same batch always yields identical prompt text, which lets
// retry attempts reuse the prompt verbatim.
func BuildPrompt(tracks []models.Track) string {
	blocks := make([]string, len(tracks))
	for i, track := range tracks {
		blocks[i] = formatTrack(track, i+1)
	}
	return fmt.Sprintf(classificationPrompt, strings.Join(blocks, "\n\n"))
}

// formatTrack renders one 1-indexed track block.
func formatTrack(t models.Track, index int) string {
	name := t.Name
	if name == "" {
		name = unknownField
	}

	artists := unknownField
	if len(t.Artists) > 0 {
		artists = strings.Join(t.Artists, ", ")
	}

	genres := unknownField
	if len(t.Genres) > 0 {
		genres = strings.Join(t.Genres, ", ")
	}

	tempo := unknownField
	if t.Features.Tempo != nil {
		tempo = fmt.Sprintf("%.0f BPM", *t.Features.Tempo)
	}

	energy := unknownField
	if t.Features.Energy != nil {
		energy = fmt.Sprintf("%.2f", *t.Features.Energy)
	}

	danceability := unknownField
	if t.Features.Danceability != nil {
		danceability = fmt.Sprintf("%.2f", *t.Features.Danceability)
	}

	return fmt.Sprintf(`### Track %d
Track: "%s"
Artist: %s
Genres: %s
Tempo: %s
Energy: %s
Danceability: %s
Prediction:`, index, name, artists, genres, tempo, energy, danceability)
}
