package tasks

import (
	"context"
	"fmt"

	"github.com/cratedig/cratedig/internal/classifier"
	"github.com/cratedig/cratedig/internal/formatter"
	"github.com/cratedig/cratedig/internal/models"
	"github.com/cratedig/cratedig/internal/services"
	"github.com/cratedig/cratedig/internal/shared"
)

// TrackClassifier assigns categories to batches of tracks.
// Satisfied by [classifier.Classifier]; abstracted for testing.
type TrackClassifier interface {
	ClassifyTracks(ctx context.Context, tracks []models.Track) []models.ClassifiedTrack
	BatchSize() int
}

// RunStore persists completed runs and their per-track classifications.
type RunStore interface {
	SaveRun(run *models.Run, tracks []models.ClassifiedTrack) error
}

// CrateRunResult contains all data from a full crate-building run.
type CrateRunResult struct {
	Tracks   []models.ClassifiedTrack // All tracks with their assigned categories
	Summary  models.Summary           // Aggregate counts and success rate
	Run      *models.Run              // Persisted run record (nil when no store configured)
	Exported []string                 // Paths of exported files (empty when export disabled)
}

// CrateEngine orchestrates the full pipeline: fetch, enrich, classify,
// summarize, persist, export.
type CrateEngine struct {
	catalog    services.Catalog
	classifier TrackClassifier
	store      RunStore
	provider   string
	exportDir  string
}

// EngineOption configures a CrateEngine.
type EngineOption func(*CrateEngine)

// WithStore attaches a persistence layer; each run is recorded after summarization.
func WithStore(store RunStore) EngineOption {
	return func(e *CrateEngine) { e.store = store }
}

// WithExportDir enables file export of results into dir.
func WithExportDir(dir string) EngineOption {
	return func(e *CrateEngine) { e.exportDir = dir }
}

// NewCrateEngine creates a CrateEngine for the given catalog and classifier.
// The provider name is recorded with each run.
func NewCrateEngine(catalog services.Catalog, cls TrackClassifier, provider string, opts ...EngineOption) *CrateEngine {
	e := &CrateEngine{
		catalog:    catalog,
		classifier: cls,
		provider:   provider,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *CrateEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs a full crate-building run against the configured catalog.
func (e *CrateEngine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*CrateRunResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchingLibraryUpdate(e.catalog.Name()))

	tracks, err := e.catalog.AllTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch library: %v", shared.ErrAPIRequest, err)
	}
	e.sendProgress(progress, fetchedLibraryUpdate(len(tracks)))

	e.sendProgress(progress, enrichingUpdate(len(tracks)))
	enriched, err := e.catalog.EnrichTracks(ctx, tracks)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to enrich tracks: %v", shared.ErrAPIRequest, err)
	}

	return e.RunFromTracks(ctx, progress, enriched)
}

// RunFromTracks classifies a pre-fetched track list, then summarizes,
// persists, and exports per the engine configuration.
func (e *CrateEngine) RunFromTracks(ctx context.Context, progress chan<- ProgressUpdate, tracks []models.Track) (*CrateRunResult, error) {
	if e.classifier == nil {
		return nil, fmt.Errorf("%w: classifier not initialized", shared.ErrServiceUnavailable)
	}

	result := &CrateRunResult{}

	classified := e.classifier.ClassifyTracks(ctx, tracks)
	result.Tracks = classified

	summary := classifier.Summarize(classified)
	result.Summary = summary
	e.sendProgress(progress, summaryUpdate(summary))

	if e.store != nil {
		e.sendProgress(progress, savingUpdate())
		run := models.NewRun(e.provider, e.classifier.BatchSize(), summary)
		if err := e.store.SaveRun(run, classified); err != nil {
			return result, fmt.Errorf("failed to save run: %w", err)
		}
		result.Run = run
	}

	if e.exportDir != "" {
		e.sendProgress(progress, exportingUpdate(e.exportDir))
		doc := formatter.NewDocument(e.provider, e.classifier.BatchSize(), classified, summary)
		files, err := doc.ExportAll(e.exportDir)
		if err != nil {
			return result, fmt.Errorf("failed to export crates: %w", err)
		}
		result.Exported = files
		e.sendProgress(progress, exportedUpdate(files))
	}

	return result, nil
}

// BatchObserver adapts a progress channel into a classifier observer,
// forwarding per-batch completion without blocking.
func BatchObserver(progress chan<- ProgressUpdate) func(classifier.BatchProgress) {
	return func(p classifier.BatchProgress) {
		if progress == nil {
			return
		}
		select {
		case progress <- classifyBatchUpdate(p.Batch, p.Total, p.Resolved, p.Size):
		default:
		}
	}
}
