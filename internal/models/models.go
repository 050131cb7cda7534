package models

import (
	"time"

	"github.com/cratedig/cratedig/internal/shared"
)

// Category is one of the three fixed crate labels the classifier ever assigns.
type Category string

const (
	DancePop Category = "Dance Pop"
	House    Category = "House"
	Bass     Category = "Bass"
)

// Categories returns the crate labels in their fixed declared order.
// Containment-based label recovery scans this list front to back, so the
// order is part of the classifier's contract.
func Categories() []Category {
	return []Category{DancePop, House, Bass}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, cat := range Categories() {
		if c == cat {
			return true
		}
	}
	return false
}

// AudioFeatures holds the numeric analysis bundle Spotify attaches to a track.
// Pointer fields distinguish "absent" from zero. Extra carries fields the
// classifier does not consume but round-trips into exports untouched.
type AudioFeatures struct {
	Tempo        *float64           `json:"tempo,omitempty"`
	Energy       *float64           `json:"energy,omitempty"`
	Danceability *float64           `json:"danceability,omitempty"`
	Extra        map[string]float64 `json:"extra,omitempty"`
}

// clone returns a deep copy of the feature bundle.
func (f AudioFeatures) clone() AudioFeatures {
	out := AudioFeatures{}
	if f.Tempo != nil {
		v := *f.Tempo
		out.Tempo = &v
	}
	if f.Energy != nil {
		v := *f.Energy
		out.Energy = &v
	}
	if f.Danceability != nil {
		v := *f.Danceability
		out.Danceability = &v
	}
	if f.Extra != nil {
		out.Extra = make(map[string]float64, len(f.Extra))
		for k, v := range f.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Track represents an enriched song from the user's Spotify library.
type Track struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Artists    []string      `json:"artists"`
	Genres     []string      `json:"genres"`
	Album      string        `json:"album,omitempty"`
	Source     string        `json:"source,omitempty"`
	SpotifyURL string        `json:"spotify_url,omitempty"`
	Features   AudioFeatures `json:"audio_features"`
}

// Clone returns a deep copy of the track. Classified tracks are always built
// from copies so callers holding the original never see it mutated.
func (t Track) Clone() Track {
	out := t
	out.Artists = append([]string(nil), t.Artists...)
	out.Genres = append([]string(nil), t.Genres...)
	out.Features = t.Features.clone()
	return out
}

// ClassifiedTrack is a track copy carrying its assigned category.
// A nil Classification means the track could not be determined.
type ClassifiedTrack struct {
	Track
	Classification *Category `json:"classification"`
}

// Classify produces a new ClassifiedTrack from a deep copy of t.
func Classify(t Track, c *Category) ClassifiedTrack {
	var cat *Category
	if c != nil {
		v := *c
		cat = &v
	}
	return ClassifiedTrack{Track: t.Clone(), Classification: cat}
}

// Summary tallies a run's classifications.
// Categories always contains all three crate labels, zero-filled.
type Summary struct {
	Total        int              `json:"total_tracks"`
	Categories   map[Category]int `json:"categories"`
	Unclassified int              `json:"unclassified"`
	SuccessRate  float64          `json:"success_rate"`
}

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Run is a persisted classification run.
type Run struct {
	id           string
	sequence     int
	provider     string
	batchSize    int
	totalTracks  int
	unclassified int
	successRate  float64
	createdAt    time.Time
	updatedAt    time.Time
}

// NewRun creates a Run entity for the given provider and batch size.
func NewRun(provider string, batchSize int, summary Summary) *Run {
	now := time.Now()
	return &Run{
		provider:     provider,
		batchSize:    batchSize,
		totalTracks:  summary.Total,
		unclassified: summary.Unclassified,
		successRate:  summary.SuccessRate,
		createdAt:    now,
		updatedAt:    now,
	}
}

// RestoreRun rebuilds a Run entity from persisted fields.
func RestoreRun(id string, sequence int, provider string, batchSize, totalTracks, unclassified int, successRate float64, createdAt, updatedAt time.Time) *Run {
	return &Run{
		id:           id,
		sequence:     sequence,
		provider:     provider,
		batchSize:    batchSize,
		totalTracks:  totalTracks,
		unclassified: unclassified,
		successRate:  successRate,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (r *Run) ID() string           { return r.id }
func (r *Run) Sequence() int        { return r.sequence }
func (r *Run) Provider() string     { return r.provider }
func (r *Run) BatchSize() int       { return r.batchSize }
func (r *Run) TotalTracks() int     { return r.totalTracks }
func (r *Run) Unclassified() int    { return r.unclassified }
func (r *Run) SuccessRate() float64 { return r.successRate }
func (r *Run) CreatedAt() time.Time { return r.createdAt }
func (r *Run) UpdatedAt() time.Time { return r.updatedAt }

func (r *Run) SetID(id string)          { r.id = id }
func (r *Run) SetSequence(seq int)      { r.sequence = seq }
func (r *Run) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// Validate checks the run's invariants before persistence.
func (r *Run) Validate() error {
	if r.id == "" {
		return shared.ErrInvalidInput
	}
	if r.provider == "" {
		return shared.ErrInvalidInput
	}
	if r.batchSize <= 0 || r.totalTracks < 0 || r.unclassified < 0 {
		return shared.ErrInvalidInput
	}
	if r.unclassified > r.totalTracks {
		return shared.ErrInvalidInput
	}
	return nil
}
