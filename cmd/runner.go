package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/cratedig/cratedig/internal/classifier"
	"github.com/cratedig/cratedig/internal/llm"
	"github.com/cratedig/cratedig/internal/repositories"
	"github.com/cratedig/cratedig/internal/services"
	"github.com/cratedig/cratedig/internal/shared"
	"github.com/cratedig/cratedig/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	catalog services.OAuthService
	backend llm.Backend
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Catalog services.OAuthService
	Backend llm.Backend
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		catalog: opts.Catalog,
		backend: opts.Backend,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when the TUI takes over the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, spotifyCommand, classifyCommand, runsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// newClassifier builds a classifier from the config, honoring flag overrides.
func (r *Runner) newClassifier(cmd *cli.Command, observer func(classifier.BatchProgress)) (*classifier.Classifier, error) {
	if r.backend == nil {
		return nil, fmt.Errorf("%w: no LLM backend configured", shared.ErrServiceUnavailable)
	}

	batchSize := r.config.LLM.BatchSize
	if v := cmd.Int("batch-size"); v > 0 {
		batchSize = int(v)
	}

	maxRetries := r.config.LLM.MaxRetries
	if v := cmd.Int("max-retries"); v > 0 {
		maxRetries = int(v)
	}

	opts := []classifier.Option{
		classifier.WithRetryPolicy(classifier.DefaultRetryPolicy(maxRetries)),
		classifier.WithLogger(r.logger),
	}
	if observer != nil {
		opts = append(opts, classifier.WithObserver(observer))
	}

	return classifier.New(r.backend, batchSize, opts...), nil
}

// newEngine assembles a CrateEngine plus its database handle. The returned
// close function must be called once the run finishes.
func (r *Runner) newEngine(cmd *cli.Command, cls *classifier.Classifier) (*tasks.CrateEngine, func(), error) {
	var engineOpts []tasks.EngineOption
	var db *sql.DB

	if !cmd.Bool("no-save") {
		var err error
		db, err = shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		engineOpts = append(engineOpts, tasks.WithStore(repositories.NewRunRepository(db)))
	}

	exportDir := r.config.Export.OutputDir
	if v := cmd.String("output"); v != "" {
		exportDir = v
	}
	if cmd.Bool("no-export") {
		exportDir = ""
	}
	if exportDir != "" {
		engineOpts = append(engineOpts, tasks.WithExportDir(exportDir))
	}

	engine := tasks.NewCrateEngine(r.catalog, cls, r.backend.Name(), engineOpts...)

	closeFn := func() {
		if db != nil {
			db.Close()
		}
	}
	return engine, closeFn, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
