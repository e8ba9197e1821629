package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "annotary",
		Usage: "EVM transaction annotation service CLI",
		Description: `A command-line tool for inspecting and debugging the annotary service.

Use this CLI to stream enriched transaction events, wait for specific
annotations, decode calldata offline, and inspect the JetStream stream.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			// NATS enriched-event streaming commands
			{
				Name:  "nats",
				Usage: "NATS enriched-event streaming commands",
				Subcommands: []*cli.Command{
					subscribeCommand(),
					inspectStreamCommand(),
				},
			},
			awaitCommand(),
			// Offline decoding commands
			{
				Name:  "decode",
				Usage: "Offline decoding commands",
				Subcommands: []*cli.Command{
					decodeCalldataCommand(),
				},
			},
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "NATS server URL",
				EnvVars: []string{"NATS_URL"},
				Value:   "nats://localhost:4222",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
