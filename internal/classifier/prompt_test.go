package classifier

import (
	"strings"
	"testing"

	"github.com/cratedig/cratedig/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestBuildPrompt(t *testing.T) {
	tracks := []models.Track{
		{
			Name:    "One Kiss",
			Artists: []string{"Calvin Harris", "Dua Lipa"},
			Genres:  []string{"dance pop", "pop"},
			Features: models.AudioFeatures{
				Tempo:        floatPtr(123.98),
				Energy:       floatPtr(0.8),
				Danceability: floatPtr(0.852),
			},
		},
		{
			Name: "Mystery Track",
		},
	}

	prompt := BuildPrompt(tracks)

	for _, want := range []string{
		"### Track 1",
		`Track: "One Kiss"`,
		"Artist: Calvin Harris, Dua Lipa",
		"Genres: dance pop, pop",
		"Tempo: 124 BPM",
		"Energy: 0.80",
		"Danceability: 0.85",
		"### Track 2",
		"Artist: Unknown",
		"Genres: Unknown",
		"Tempo: Unknown",
		"Track X: **Category**",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Category descriptions and few-shot examples survive templating
	for _, category := range models.Categories() {
		if !strings.Contains(prompt, "**"+string(category)+"**") {
			t.Errorf("prompt missing example prediction for %s", category)
		}
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	tracks := makeTracks(3)
	if BuildPrompt(tracks) != BuildPrompt(tracks) {
		t.Error("expected identical prompts for identical input")
	}
}
