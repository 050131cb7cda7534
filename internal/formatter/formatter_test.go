package formatter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cratedig/cratedig/internal/models"
)

func sampleDocument() Document {
	house := models.House
	bass := models.Bass
	tracks := []models.ClassifiedTrack{
		models.Classify(models.Track{ID: "t1", Name: "Cold Heart", Artists: []string{"Elton John", "Dua Lipa"}, Genres: []string{"pop"}, Source: "liked_songs"}, &house),
		models.Classify(models.Track{ID: "t2", Name: "Core", Artists: []string{"RL Grime"}}, &bass),
		models.Classify(models.Track{ID: "t3", Name: "Unknown Vibes", Artists: []string{"Nobody"}}, nil),
	}

	summary := models.Summary{
		Total: 3,
		Categories: map[models.Category]int{
			models.DancePop: 0,
			models.House:    1,
			models.Bass:     1,
		},
		Unclassified: 1,
		SuccessRate:  2.0 / 3.0,
	}

	return NewDocument("openai", 25, tracks, summary)
}

func TestToCSV(t *testing.T) {
	doc := sampleDocument()

	data, err := doc.ToCSV()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "ID,Title,Artists,Genres,Category,Source" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "Elton John; Dua Lipa") {
		t.Errorf("expected joined artists, got %s", lines[1])
	}
	if !strings.Contains(lines[1], "House") {
		t.Errorf("expected House category, got %s", lines[1])
	}
	// Unclassified tracks get an empty category column
	if !strings.Contains(lines[3], "t3,Unknown Vibes,Nobody,,,") {
		t.Errorf("unexpected unclassified row: %s", lines[3])
	}
}

func TestCrateText(t *testing.T) {
	doc := sampleDocument()

	t.Run("only matching tracks included", func(t *testing.T) {
		text := string(doc.CrateText(models.House))
		if !strings.Contains(text, "Crate: House") {
			t.Errorf("missing crate header: %s", text)
		}
		if !strings.Contains(text, "1. Elton John, Dua Lipa - Cold Heart") {
			t.Errorf("missing house track: %s", text)
		}
		if strings.Contains(text, "Core") {
			t.Errorf("bass track leaked into house crate: %s", text)
		}
	})

	t.Run("empty crate marked", func(t *testing.T) {
		text := string(doc.CrateText(models.DancePop))
		if !strings.Contains(text, "(empty)") {
			t.Errorf("expected empty marker: %s", text)
		}
	})
}

func TestExportAll(t *testing.T) {
	doc := sampleDocument()
	dir := t.TempDir()

	files, err := doc.ExportAll(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// JSON + CSV + 3 crates
	if len(files) != 5 {
		t.Fatalf("expected 5 files, got %d: %v", len(files), files)
	}

	wantFiles := []string{
		"classified_tracks.json",
		"classified_tracks.csv",
		"crate_dance_pop.txt",
		"crate_house.txt",
		"crate_bass.txt",
	}
	for _, name := range wantFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected file %s: %v", name, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "classified_tracks.json"))
	if err != nil {
		t.Fatalf("failed to read JSON export: %v", err)
	}
	var roundTrip Document
	if err := json.Unmarshal(data, &roundTrip); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if roundTrip.Metadata.Provider != "openai" || len(roundTrip.Tracks) != 3 {
		t.Errorf("unexpected round trip: provider=%s tracks=%d", roundTrip.Metadata.Provider, len(roundTrip.Tracks))
	}
}

func TestReadTracks(t *testing.T) {
	dir := t.TempDir()

	t.Run("bare track array", func(t *testing.T) {
		path := filepath.Join(dir, "tracks.json")
		payload := `[{"id":"t1","name":"Song","artists":["A"],"genres":[],"audio_features":{}}]`
		if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
			t.Fatal(err)
		}

		tracks, err := ReadTracks(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tracks) != 1 || tracks[0].ID != "t1" {
			t.Errorf("unexpected tracks: %+v", tracks)
		}
	})

	t.Run("full document", func(t *testing.T) {
		doc := sampleDocument()
		data, err := doc.ToJSON()
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, "doc.json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}

		tracks, err := ReadTracks(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tracks) != 3 {
			t.Errorf("expected 3 tracks, got %d", len(tracks))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadTracks(filepath.Join(dir, "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
