package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/cratedig/cratedig/internal/formatter"
	"github.com/cratedig/cratedig/internal/models"
	"github.com/cratedig/cratedig/internal/shared"
	"github.com/cratedig/cratedig/internal/tasks"
	"github.com/cratedig/cratedig/internal/ui"
)

// ClassifyRun fetches the full library and sorts it into crates.
func (r *Runner) ClassifyRun(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	progressChan := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressChan {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.runEngine(ctx, cmd, progressChan, nil)
	close(progressChan)
	<-done
	if err != nil {
		return err
	}

	return r.printResult(cmd, result)
}

// ClassifyFile classifies tracks loaded from a JSON file.
func (r *Runner) ClassifyFile(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a tracks JSON file", shared.ErrMissingArgument)
	}

	tracks, err := formatter.ReadTracks(path)
	if err != nil {
		return err
	}
	r.logger.Info("loaded tracks from file", "path", path, "count", len(tracks))

	progressChan := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressChan {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.runEngine(ctx, cmd, progressChan, tracks)
	close(progressChan)
	<-done
	if err != nil {
		return err
	}

	return r.printResult(cmd, result)
}

// ClassifyUI runs the pipeline inside the interactive terminal UI.
func (r *Runner) ClassifyUI(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/cratedig-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	cls, err := r.newClassifier(cmd, nil)
	if err != nil {
		return err
	}

	engine, closeFn, err := r.newEngine(cmd, cls)
	if err != nil {
		return err
	}
	defer closeFn()

	model := ui.NewModel(ctx, engine, r.catalog.Name())
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// runEngine wires a classifier and engine together and executes one run.
// When tracks is nil the full library is fetched from the catalog.
func (r *Runner) runEngine(ctx context.Context, cmd *cli.Command, progressChan chan tasks.ProgressUpdate, tracks []models.Track) (*tasks.CrateRunResult, error) {
	cls, err := r.newClassifier(cmd, tasks.BatchObserver(progressChan))
	if err != nil {
		return nil, err
	}

	engine, closeFn, err := r.newEngine(cmd, cls)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	if tracks != nil {
		return engine.RunFromTracks(ctx, progressChan, tracks)
	}
	return engine.Run(ctx, progressChan)
}

// printResult renders a finished run as JSON or a plain summary.
func (r *Runner) printResult(cmd *cli.Command, result *tasks.CrateRunResult) error {
	if cmd.Bool("json") {
		doc := formatter.NewDocument(r.backend.Name(), r.config.LLM.BatchSize, result.Tracks, result.Summary)
		return r.writeJSON(doc, cmd.Bool("pretty"))
	}

	summary := result.Summary
	r.writePlainln("✓ Classification complete")
	r.writePlain("Tracks: %d\n", summary.Total)
	for _, category := range models.Categories() {
		r.writePlain("  %-10s %d\n", category, summary.Categories[category])
	}
	r.writePlain("Unclassified: %d\n", summary.Unclassified)
	r.writePlain("Success rate: %.1f%%\n", summary.SuccessRate*100)

	if result.Run != nil {
		r.writePlain("\nRun saved: %s\n", result.Run.ID())
	}
	for _, file := range result.Exported {
		r.writePlain("Wrote %s\n", file)
	}

	return nil
}
