package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cratedig/cratedig/internal/models"
	"github.com/cratedig/cratedig/internal/shared"
)

type mockCatalog struct {
	name       string
	tracks     []models.Track
	tracksErr  error
	enriched   []models.Track
	enrichErr  error
	enrichHits int
}

func (m *mockCatalog) Name() string { return m.name }

func (m *mockCatalog) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *mockCatalog) AllTracks(ctx context.Context) ([]models.Track, error) {
	if m.tracksErr != nil {
		return nil, m.tracksErr
	}
	return m.tracks, nil
}

func (m *mockCatalog) EnrichTracks(ctx context.Context, tracks []models.Track) ([]models.Track, error) {
	m.enrichHits++
	if m.enrichErr != nil {
		return nil, m.enrichErr
	}
	if m.enriched != nil {
		return m.enriched, nil
	}
	return tracks, nil
}

// mockClassifier assigns every track the same category.
type mockClassifier struct {
	category  *models.Category
	batchSize int
}

func (m *mockClassifier) ClassifyTracks(ctx context.Context, tracks []models.Track) []models.ClassifiedTrack {
	classified := make([]models.ClassifiedTrack, 0, len(tracks))
	for _, track := range tracks {
		classified = append(classified, models.Classify(track, m.category))
	}
	return classified
}

func (m *mockClassifier) BatchSize() int { return m.batchSize }

type mockStore struct {
	saved    *models.Run
	tracks   []models.ClassifiedTrack
	saveErr  error
	saveHits int
}

func (m *mockStore) SaveRun(run *models.Run, tracks []models.ClassifiedTrack) error {
	m.saveHits++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = run
	m.tracks = tracks
	return nil
}

func testTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			ID:      fmt.Sprintf("t%d", i+1),
			Name:    fmt.Sprintf("Song %d", i+1),
			Artists: []string{"Artist"},
		}
	}
	return tracks
}

func TestCrateEngineRun(t *testing.T) {
	ctx := context.Background()
	house := models.House

	t.Run("full pipeline with store", func(t *testing.T) {
		catalog := &mockCatalog{name: "Spotify", tracks: testTracks(4)}
		store := &mockStore{}
		engine := NewCrateEngine(catalog, &mockClassifier{category: &house, batchSize: 25}, "openai", WithStore(store))

		progress := make(chan ProgressUpdate, 50)
		result, err := engine.Run(ctx, progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Tracks) != 4 {
			t.Errorf("expected 4 tracks, got %d", len(result.Tracks))
		}
		if result.Summary.Total != 4 || result.Summary.Unclassified != 0 {
			t.Errorf("unexpected summary: %+v", result.Summary)
		}
		if result.Summary.SuccessRate != 1.0 {
			t.Errorf("SuccessRate = %v, want 1.0", result.Summary.SuccessRate)
		}
		if catalog.enrichHits != 1 {
			t.Errorf("expected 1 enrich call, got %d", catalog.enrichHits)
		}
		if store.saveHits != 1 {
			t.Errorf("expected 1 save, got %d", store.saveHits)
		}
		if result.Run == nil {
			t.Error("expected run record in result")
		}
		if store.saved.Provider() != "openai" || store.saved.BatchSize() != 25 {
			t.Errorf("unexpected run: provider=%s batch=%d", store.saved.Provider(), store.saved.BatchSize())
		}
		if len(progress) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		catalog := &mockCatalog{name: "Spotify", tracksErr: errors.New("boom")}
		engine := NewCrateEngine(catalog, &mockClassifier{category: &house, batchSize: 25}, "openai")

		_, err := engine.Run(ctx, nil)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("error = %v, want ErrAPIRequest", err)
		}
	})

	t.Run("enrich failure", func(t *testing.T) {
		catalog := &mockCatalog{name: "Spotify", tracks: testTracks(2), enrichErr: errors.New("boom")}
		engine := NewCrateEngine(catalog, &mockClassifier{category: &house, batchSize: 25}, "openai")

		_, err := engine.Run(ctx, nil)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("error = %v, want ErrAPIRequest", err)
		}
	})

	t.Run("nil catalog", func(t *testing.T) {
		engine := NewCrateEngine(nil, &mockClassifier{category: &house, batchSize: 25}, "openai")

		_, err := engine.Run(ctx, nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("error = %v, want ErrServiceUnavailable", err)
		}
	})

	t.Run("nil progress channel is safe", func(t *testing.T) {
		catalog := &mockCatalog{name: "Spotify", tracks: testTracks(1)}
		engine := NewCrateEngine(catalog, &mockClassifier{category: &house, batchSize: 25}, "openai")

		if _, err := engine.Run(ctx, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("full progress channel does not block", func(t *testing.T) {
		catalog := &mockCatalog{name: "Spotify", tracks: testTracks(3)}
		engine := NewCrateEngine(catalog, &mockClassifier{category: &house, batchSize: 25}, "openai")

		progress := make(chan ProgressUpdate) // unbuffered, never drained
		if _, err := engine.Run(ctx, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRunFromTracks(t *testing.T) {
	ctx := context.Background()

	t.Run("unclassified tracks counted", func(t *testing.T) {
		engine := NewCrateEngine(&mockCatalog{name: "Spotify"}, &mockClassifier{category: nil, batchSize: 10}, "anthropic")

		result, err := engine.RunFromTracks(ctx, nil, testTracks(3))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Summary.Unclassified != 3 {
			t.Errorf("Unclassified = %d, want 3", result.Summary.Unclassified)
		}
		if result.Summary.SuccessRate != 0 {
			t.Errorf("SuccessRate = %v, want 0", result.Summary.SuccessRate)
		}
	})

	t.Run("store failure surfaces but keeps results", func(t *testing.T) {
		house := models.House
		store := &mockStore{saveErr: errors.New("db locked")}
		engine := NewCrateEngine(&mockCatalog{name: "Spotify"}, &mockClassifier{category: &house, batchSize: 10}, "openai", WithStore(store))

		result, err := engine.RunFromTracks(ctx, nil, testTracks(2))
		if err == nil {
			t.Fatal("expected error")
		}
		if result == nil || len(result.Tracks) != 2 {
			t.Error("expected classified tracks despite store failure")
		}
	})

	t.Run("nil classifier", func(t *testing.T) {
		engine := NewCrateEngine(&mockCatalog{name: "Spotify"}, nil, "openai")

		_, err := engine.RunFromTracks(ctx, nil, testTracks(1))
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("error = %v, want ErrServiceUnavailable", err)
		}
	})

	t.Run("export writes files", func(t *testing.T) {
		house := models.House
		dir := t.TempDir()
		engine := NewCrateEngine(&mockCatalog{name: "Spotify"}, &mockClassifier{category: &house, batchSize: 10}, "openai", WithExportDir(dir))

		result, err := engine.RunFromTracks(ctx, nil, testTracks(2))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// JSON + CSV + one crate file per category
		if len(result.Exported) != 5 {
			t.Errorf("expected 5 exported files, got %d: %v", len(result.Exported), result.Exported)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{FetchLibrary, "fetch_library"},
		{EnrichTracks, "enrich_tracks"},
		{ClassifyTracks, "classify_tracks"},
		{Summarize, "summarize"},
		{SaveResults, "save_results"},
		{ExportCrates, "export_crates"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
