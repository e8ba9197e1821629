package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"

	"github.com/evmlabs/annotary/client"
	natspkg "github.com/evmlabs/annotary/service/nats"
)

func awaitCommand() *cli.Command {
	return &cli.Command{
		Name:      "await",
		Usage:     "Block until an enriched transaction matching criteria arrives",
		ArgsUsage: "NETWORK",
		Description: `Wait for an enriched transaction event and print it.

Filters are combined with AND. The jq filters run against the full
enriched event JSON, so annotation fields are addressable directly:

  annotary await mainnet --kind asset-transfer
  annotary await mainnet --must-jq '.annotation.asset_amount.asset.symbol == "USDC"'
  annotary await mainnet --hash 0xabc... --timeout 2m`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "hash",
				Usage: "Filter by exact transaction hash",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Filter by annotation kind (e.g. asset-transfer, asset-approval)",
			},
			&cli.StringSliceFlag{
				Name:    "must-jq",
				Usage:   "jq filter expression that must evaluate to true (can be specified multiple times, all must match)",
				Aliases: []string{"jq"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Value:   5 * time.Minute,
				Usage:   "How long to wait for a matching transaction",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("network is required")
			}

			network := c.Args().Get(0)
			natsURL := c.String("nats-url")
			hash := c.String("hash")
			kind := c.String("kind")
			jqFilters := c.StringSlice("must-jq")
			timeout := c.Duration("timeout")
			jsonOutput := c.Bool("json")

			if hash == "" && kind == "" && len(jqFilters) == 0 {
				return fmt.Errorf("must specify at least one filter: --hash, --kind, or --must-jq")
			}

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError, // Only errors to stderr
			}))

			compiledJQFilters, err := compileJQFilters(jqFilters)
			if err != nil {
				return err
			}

			cl, err := client.NewClient(natsURL, logger)
			if err != nil {
				return err
			}
			defer cl.Close()

			matcher := func(event *natspkg.EnrichedTransactionEvent) bool {
				if hash != "" && event.Transaction.Hash.Hex() != hash {
					return false
				}
				if kind != "" && string(event.Annotation.Kind) != kind {
					return false
				}

				// All jq filters must evaluate to true against the event JSON.
				return matchesJQFilters(event, compiledJQFilters)
			}

			if !jsonOutput {
				fmt.Fprintf(os.Stderr, "Waiting for enriched transaction on %s...\n", network)
				if hash != "" {
					fmt.Fprintf(os.Stderr, "  Hash: %s\n", hash)
				}
				if kind != "" {
					fmt.Fprintf(os.Stderr, "  Kind: %s\n", kind)
				}
				for _, filter := range jqFilters {
					fmt.Fprintf(os.Stderr, "  jq Filter: %s\n", filter)
				}
				fmt.Fprintf(os.Stderr, "  Timeout: %v\n\n", timeout)
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			event, err := cl.Await(ctx, network, matcher)
			if err != nil {
				return fmt.Errorf("failed to await transaction: %w", err)
			}

			if jsonOutput {
				data, err := json.MarshalIndent(event, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal event: %w", err)
				}
				fmt.Println(string(data))
			} else {
				printEnrichedTransaction(1, event)
			}

			return nil
		},
	}
}

// compileJQFilters parses and compiles the --must-jq expressions.
func compileJQFilters(filters []string) ([]*gojq.Code, error) {
	compiled := make([]*gojq.Code, len(filters))
	for i, filter := range filters {
		query, err := gojq.Parse(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
		}
		compiled[i], err = gojq.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
		}
	}
	return compiled, nil
}

// matchesJQFilters runs every compiled filter against the event's JSON form.
// All filters must yield a truthy result.
func matchesJQFilters(event *natspkg.EnrichedTransactionEvent, codes []*gojq.Code) bool {
	if len(codes) == 0 {
		return true
	}

	data, err := json.Marshal(event)
	if err != nil {
		return false
	}
	var eventJSON interface{}
	if err := json.Unmarshal(data, &eventJSON); err != nil {
		return false
	}

	for _, code := range codes {
		iter := code.Run(eventJSON)
		v, ok := iter.Next()
		if !ok {
			return false
		}
		if _, isErr := v.(error); isErr {
			return false
		}
		if !isTruthy(v) {
			return false
		}
	}
	return true
}

// isTruthy checks if a jq result value is truthy.
// In jq, false and null are falsy, everything else is truthy.
func isTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	// Everything else (numbers, strings, objects, arrays) is truthy
	return true
}
