package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/cratedig/cratedig/internal/repositories"
	"github.com/cratedig/cratedig/internal/shared"
)

// openRepository opens the configured database and wraps it in a RunRepository.
func (r *Runner) openRepository() (*repositories.RunRepository, *sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return repositories.NewRunRepository(db), db, nil
}

// RunsList lists stored runs, newest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	repo, db, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if provider := cmd.String("provider"); provider != "" {
		criteria["provider"] = provider
	}

	runs, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if cmd.Bool("json") {
		type runRow struct {
			ID           string    `json:"id"`
			Provider     string    `json:"provider"`
			BatchSize    int       `json:"batch_size"`
			TotalTracks  int       `json:"total_tracks"`
			Unclassified int       `json:"unclassified"`
			SuccessRate  float64   `json:"success_rate"`
			CreatedAt    time.Time `json:"created_at"`
		}
		rows := make([]runRow, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, runRow{
				ID:           run.ID(),
				Provider:     run.Provider(),
				BatchSize:    run.BatchSize(),
				TotalTracks:  run.TotalTracks(),
				Unclassified: run.Unclassified(),
				SuccessRate:  run.SuccessRate(),
				CreatedAt:    run.CreatedAt(),
			})
		}
		return r.writeJSON(rows, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet. Try: cratedig classify run\n")
	}

	for _, run := range runs {
		r.writePlain("%s  %s  %d tracks  %.1f%%  %s\n",
			run.ID(),
			run.Provider(),
			run.TotalTracks(),
			run.SuccessRate()*100,
			run.CreatedAt().Format(time.DateTime),
		)
	}
	return nil
}

// RunsShow prints one run with its per-track classifications.
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	repo, db, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := repo.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	records, err := repo.Classifications(id)
	if err != nil {
		return fmt.Errorf("failed to get classifications: %w", err)
	}

	if cmd.Bool("json") {
		type trackRow struct {
			TrackID  string `json:"track_id"`
			Title    string `json:"title"`
			Artist   string `json:"artist"`
			Category string `json:"category,omitempty"`
		}
		rows := make([]trackRow, 0, len(records))
		for _, rec := range records {
			row := trackRow{TrackID: rec.TrackID, Title: rec.Title, Artist: rec.Artist}
			if rec.Category != nil {
				row.Category = string(*rec.Category)
			}
			rows = append(rows, row)
		}
		return r.writeJSON(map[string]any{
			"id":           run.ID(),
			"provider":     run.Provider(),
			"batch_size":   run.BatchSize(),
			"total_tracks": run.TotalTracks(),
			"unclassified": run.Unclassified(),
			"success_rate": run.SuccessRate(),
			"created_at":   run.CreatedAt(),
			"tracks":       rows,
		}, true)
	}

	r.writePlain("Run %s (%s, batch size %d)\n", run.ID(), run.Provider(), run.BatchSize())
	r.writePlain("Tracks: %d, unclassified: %d, success rate: %.1f%%\n\n",
		run.TotalTracks(), run.Unclassified(), run.SuccessRate()*100)

	for i, rec := range records {
		category := "unclassified"
		if rec.Category != nil {
			category = string(*rec.Category)
		}
		r.writePlain("%d. %s - %s [%s]\n", i+1, rec.Artist, rec.Title, category)
	}
	return nil
}

// RunsDelete soft-deletes a run.
func (r *Runner) RunsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	repo, db, err := r.openRepository()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.Delete(id); err != nil {
		return err
	}

	r.logger.Info("run deleted", "id", id)
	return r.writePlain("✓ Run %s deleted\n", id)
}
