// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func classifyFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Tracks per LLM request",
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Attempts per batch before giving up",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Directory for exported crate files",
		},
		&cli.BoolFlag{
			Name:  "no-save",
			Usage: "Skip recording the run in the database",
		},
		&cli.BoolFlag{
			Name:  "no-export",
			Usage: "Skip writing crate files",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output the full results document as JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// setupCommand initializes the database and config file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.SetupDatabase,
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify library operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SpotifyAuth,
			},
			{
				Name:  "tracks",
				Usage: "Fetch and dedupe the full library (liked songs + owned playlists)",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "enrich",
						Usage: "Attach audio features and artist genres",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.StringFlag{
						Name:    "save",
						Aliases: []string{"s"},
						Usage:   "Save the track list to a JSON file",
					},
				},
				Action: r.SpotifyTracks,
			},
		},
	}
}

// classifyCommand runs the crate-building pipeline
func classifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "classify",
		Aliases: []string{"dig"},
		Usage:   "Classify tracks into crates",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Fetch, enrich, and classify the whole library",
				Flags:  classifyFlags(),
				Action: r.ClassifyRun,
			},
			{
				Name:  "file",
				Usage: "Classify tracks from a JSON file instead of the live library",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags:  classifyFlags(),
				Action: r.ClassifyFile,
			},
			{
				Name:   "ui",
				Usage:  "Run the pipeline in an interactive terminal UI",
				Flags:  classifyFlags(),
				Action: r.ClassifyUI,
			},
		},
	}
}

// runsCommand inspects stored run history
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect past classification runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored runs, newest first",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Only show runs for this provider",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RunsList,
			},
			{
				Name:  "show",
				Usage: "Show one run with its per-track classifications",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RunsShow,
			},
			{
				Name:  "delete",
				Usage: "Soft-delete a run",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.RunsDelete,
			},
		},
	}
}
