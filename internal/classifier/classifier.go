package classifier

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cratedig/cratedig/internal/llm"
	"github.com/cratedig/cratedig/internal/models"
	"github.com/cratedig/cratedig/internal/shared"
)

// defaultBatchSize is the number of tracks classified per backend call.
const defaultBatchSize = 25

// BatchProgress reports one finished batch to an optional observer.
type BatchProgress struct {
	Batch    int // 1-indexed batch number
	Total    int // total batch count
	Size     int // tracks in this batch
	Resolved int // tracks that received a category
}

// Classifier splits a track list into fixed-size batches and classifies
// each through a shared [llm.Backend]. Batches run strictly sequentially;
// the backend holds only a fixed credential and needs no locking.
type Classifier struct {
	backend   llm.Backend
	batchSize int
	policy    RetryPolicy
	pause     time.Duration
	logger    *log.Logger
	observer  func(BatchProgress)
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Classifier) { c.policy = policy }
}

// WithPause overrides the pacing pause inserted between batches.
func WithPause(d time.Duration) Option {
	return func(c *Classifier) { c.pause = d }
}

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Classifier) { c.logger = logger }
}

// WithObserver registers a callback invoked after each completed batch.
func WithObserver(fn func(BatchProgress)) Option {
	return func(c *Classifier) { c.observer = fn }
}

// New creates a Classifier over the given backend. A non-positive batchSize
// falls back to the default of 25.
func New(backend llm.Backend, batchSize int, opts ...Option) *Classifier {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	c := &Classifier{
		backend:   backend,
		batchSize: batchSize,
		policy:    DefaultRetryPolicy(0),
		pause:     defaultBackoffUnit,
		logger:    shared.NewLogger(nil),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BatchSize returns the configured batch size.
func (c *Classifier) BatchSize() int { return c.batchSize }

// ClassifyBatch classifies one batch of tracks, retrying per the policy.
//
// The returned slice always has exactly len(tracks) entries in input order.
// The prompt is built once and reused verbatim across attempts. An attempt
// is accepted when the fraction of resolved entries reaches the policy
// threshold; transport failures count as failed attempts. When the budget
// is exhausted every entry is nil; a below-threshold partial parse from
// the final attempt is discarded, not returned.
func (c *Classifier) ClassifyBatch(ctx context.Context, tracks []models.Track) []*models.Category {
	if len(tracks) == 0 {
		return []*models.Category{}
	}

	prompt := BuildPrompt(tracks)

	for attempt := 0; attempt < c.policy.MaxRetries; attempt++ {
		reply, err := c.backend.Send(ctx, prompt)
		if err != nil {
			c.logger.Warn("classification attempt failed", "attempt", attempt+1, "error", err)
		} else {
			results := ParseResponse(reply, len(tracks))
			successRate := float64(countResolved(results)) / float64(len(tracks))

			if successRate >= c.policy.Threshold {
				return results
			}
			c.logger.Warn("low success rate", "attempt", attempt+1, "rate", successRate)
		}

		if attempt < c.policy.MaxRetries-1 {
			c.policy.Sleep(c.policy.Backoff(attempt))
		}
	}

	return make([]*models.Category, len(tracks))
}

// ClassifyTracks classifies the full track list in consecutive batches.
//
// Each output entry is a deep copy of its input track with the
// classification attached; input tracks are never mutated. A pacing pause
// is inserted between batches (never after the last) to respect backend
// request-rate limits. One batch exhausting its retries does not stop the
// batches after it. An empty input yields an empty result with no backend
// calls.
func (c *Classifier) ClassifyTracks(ctx context.Context, tracks []models.Track) []models.ClassifiedTrack {
	if len(tracks) == 0 {
		return []models.ClassifiedTrack{}
	}

	totalBatches := (len(tracks) + c.batchSize - 1) / c.batchSize
	c.logger.Info("classifying tracks", "tracks", len(tracks), "batches", totalBatches, "provider", c.backend.Name())

	classified := make([]models.ClassifiedTrack, 0, len(tracks))

	for start := 0; start < len(tracks); start += c.batchSize {
		end := start + c.batchSize
		if end > len(tracks) {
			end = len(tracks)
		}
		batch := tracks[start:end]
		batchNum := start/c.batchSize + 1

		results := c.ClassifyBatch(ctx, batch)

		resolved := countResolved(results)
		for i, track := range batch {
			classified = append(classified, models.Classify(track, results[i]))
		}

		c.logger.Info("batch complete", "batch", batchNum, "of", totalBatches, "classified", resolved, "size", len(batch))
		if c.observer != nil {
			c.observer(BatchProgress{Batch: batchNum, Total: totalBatches, Size: len(batch), Resolved: resolved})
		}

		if end < len(tracks) {
			c.policy.Sleep(c.pause)
		}
	}

	return classified
}

func countResolved(results []*models.Category) int {
	count := 0
	for _, r := range results {
		if r != nil {
			count++
		}
	}
	return count
}
