package main

import (
	"log"
	"os"

	"github.com/dtnitsch/cbsl-assistant/internal/ask"
	"github.com/dtnitsch/cbsl-assistant/internal/db"
	"github.com/dtnitsch/cbsl-assistant/internal/serve"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cbsl-assistant",
		Usage: "answer questions about the Central Bank of Sri Lanka from its official website",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the YAML config file (missing file means defaults)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file loaded before reading the environment",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "interaction log database path (overrides storage.path)",
			},
			&cli.StringFlag{
				Name:  "log-env",
				Usage: "logger preset: development or production",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "minimum log level: debug, info, warn, error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve.ServeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "listen address (overrides server.addr and PORT)",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "answer one question and print the result",
				ArgsUsage: "<question...>",
				Action:    ask.AskAction,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "print the full outcome as JSON",
					},
					&cli.BoolFlag{
						Name:  "yaml",
						Usage: "print the full outcome as YAML",
					},
				},
			},
			{
				Name:   "logs",
				Usage:  "show recent interactions, newest first",
				Action: db.LogsAction,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "number of interactions to show (default storage.recent_limit)",
					},
					&cli.StringFlag{
						Name:  "lang",
						Usage: "only show interactions in this language (en, si, ta)",
					},
				},
			},
		},
	}
}
