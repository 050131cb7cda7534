package models

import (
	"testing"
	"time"
)

func TestCategories(t *testing.T) {
	want := []Category{DancePop, House, Bass}
	got := Categories()

	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCategoryValid(t *testing.T) {
	tests := []struct {
		category Category
		want     bool
	}{
		{DancePop, true},
		{House, true},
		{Bass, true},
		{Category("house"), false},
		{Category("Techno"), false},
		{Category(""), false},
	}

	for _, tt := range tests {
		if got := tt.category.Valid(); got != tt.want {
			t.Errorf("Category(%q).Valid() = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestTrackClone(t *testing.T) {
	tempo := 128.0
	original := Track{
		ID:      "t1",
		Name:    "Song",
		Artists: []string{"A"},
		Genres:  []string{"house"},
		Features: AudioFeatures{
			Tempo: &tempo,
			Extra: map[string]float64{"valence": 0.5},
		},
	}

	clone := original.Clone()
	clone.Artists[0] = "B"
	clone.Genres[0] = "bass"
	*clone.Features.Tempo = 90
	clone.Features.Extra["valence"] = 0.9

	if original.Artists[0] != "A" {
		t.Error("clone shares artists slice")
	}
	if original.Genres[0] != "house" {
		t.Error("clone shares genres slice")
	}
	if *original.Features.Tempo != 128.0 {
		t.Error("clone shares tempo pointer")
	}
	if original.Features.Extra["valence"] != 0.5 {
		t.Error("clone shares extra map")
	}
}

func TestClassify(t *testing.T) {
	track := Track{ID: "t1", Artists: []string{"A"}}

	t.Run("attaches copy of category", func(t *testing.T) {
		category := House
		classified := Classify(track, &category)

		if classified.Classification == nil || *classified.Classification != House {
			t.Fatal("expected House classification")
		}

		category = Bass
		if *classified.Classification != House {
			t.Error("classification shares caller's category pointer")
		}
	})

	t.Run("nil category stays nil", func(t *testing.T) {
		classified := Classify(track, nil)
		if classified.Classification != nil {
			t.Errorf("expected nil classification, got %v", *classified.Classification)
		}
	})

	t.Run("deep copies track", func(t *testing.T) {
		classified := Classify(track, nil)
		classified.Artists[0] = "mutated"
		if track.Artists[0] != "A" {
			t.Error("classified track shares artists slice with input")
		}
	})
}

func TestRunValidate(t *testing.T) {
	valid := func() *Run {
		return RestoreRun("id1", 1, "openai", 25, 57, 3, 0.95, time.Now(), time.Now())
	}

	t.Run("valid run", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Run)
	}{
		{"missing id", func(r *Run) { r.id = "" }},
		{"missing provider", func(r *Run) { r.provider = "" }},
		{"zero batch size", func(r *Run) { r.batchSize = 0 }},
		{"negative totals", func(r *Run) { r.totalTracks = -1 }},
		{"unclassified exceeds total", func(r *Run) { r.unclassified = 100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := valid()
			tt.mutate(run)
			if err := run.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
