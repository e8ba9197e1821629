package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/urfave/cli/v2"

	"github.com/evmlabs/annotary/client"
	natspkg "github.com/evmlabs/annotary/service/nats"
)

// subscribeCommand streams enriched transaction events for a network.
func subscribeCommand() *cli.Command {
	return &cli.Command{
		Name:      "subscribe",
		Usage:     "Stream enriched transaction events",
		ArgsUsage: "[network]",
		Description: `Subscribe to enriched transaction events published to NATS JetStream.

Events are published to the subject: enriched.txns.{network}
Omitting the network streams all networks.

Example:
  annotary nats subscribe mainnet --json
  annotary nats subscribe mainnet --must-jq '.annotation.kind == "asset-approval"'`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "must-jq",
				Usage:   "jq filter expression an event must satisfy to be printed (can be specified multiple times, all must match)",
				Aliases: []string{"jq"},
			},
		},
		Action: func(c *cli.Context) error {
			network := c.Args().Get(0)
			natsURL := c.String("nats-url")
			jsonOutput := c.Bool("json")

			jqFilters, err := compileJQFilters(c.StringSlice("must-jq"))
			if err != nil {
				return err
			}

			cl, err := client.NewClient(natsURL, nil)
			if err != nil {
				return err
			}
			defer cl.Close()

			if !jsonOutput {
				subject := natspkg.TransactionSubject(network)
				if network == "" {
					subject = "enriched.txns.>"
				}
				fmt.Printf("Subscribing to: %s\n", subject)
				fmt.Printf("NATS: %s\n", natsURL)
				fmt.Printf("\nWaiting for enriched transactions... (Ctrl-C to exit)\n\n")
			}

			count := 0
			stop, err := cl.SubscribeTransactions(context.Background(), network, func(event *natspkg.EnrichedTransactionEvent) {
				if !matchesJQFilters(event, jqFilters) {
					return
				}
				count++
				if jsonOutput {
					data, _ := json.Marshal(event)
					fmt.Println(string(data))
					return
				}
				printEnrichedTransaction(count, event)
			})
			if err != nil {
				return err
			}
			defer stop()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			if !jsonOutput {
				fmt.Printf("\nReceived %d enriched transactions\n", count)
			}
			return nil
		},
	}
}

// printEnrichedTransaction renders one event in human-friendly form.
func printEnrichedTransaction(count int, event *natspkg.EnrichedTransactionEvent) {
	fmt.Printf("─────────────────────────────────────────────────────\n")
	fmt.Printf("Transaction #%d\n", count)
	fmt.Printf("─────────────────────────────────────────────────────\n")
	fmt.Printf("Hash:         %s\n", event.Transaction.Hash.Hex())
	fmt.Printf("Network:      %s\n", event.Network)
	fmt.Printf("Kind:         %s\n", event.Annotation.Kind)
	if event.Annotation.AssetAmount != nil {
		fmt.Printf("Amount:       %s %s\n",
			event.Annotation.AssetAmount.Decimal,
			event.Annotation.AssetAmount.Asset.Symbol,
		)
	}
	if event.Annotation.RecipientName != "" {
		fmt.Printf("Recipient:    %s (%s)\n",
			event.Annotation.RecipientName,
			event.Annotation.RecipientAddress.Hex(),
		)
	} else if event.Annotation.Kind == "asset-transfer" {
		fmt.Printf("Recipient:    %s\n", event.Annotation.RecipientAddress.Hex())
	}
	if event.Annotation.ContractName != "" {
		fmt.Printf("Contract:     %s\n", event.Annotation.ContractName)
	}
	if len(event.Annotation.Subannotations) > 0 {
		fmt.Printf("Subannotations:\n")
		for _, sub := range event.Annotation.Subannotations {
			fmt.Printf("  - %s %s -> %s\n",
				sub.AssetAmount.Decimal,
				sub.AssetAmount.Asset.Symbol,
				sub.RecipientAddress.Hex(),
			)
		}
	}
	fmt.Printf("Published:    %s\n", event.PublishedAt.Format(time.RFC3339))
	fmt.Printf("\n")
}

// inspectStreamCommand shows information about the NATS JetStream stream.
func inspectStreamCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect-stream",
		Usage: "Inspect the ENRICHED JetStream stream",
		Description: `Show information about the JetStream stream including:
- Message count
- Consumers
- Storage usage
- Stream configuration

Example:
  annotary nats inspect-stream`,
		Action: func(c *cli.Context) error {
			natsURL := c.String("nats-url")
			jsonOutput := c.Bool("json")

			nc, err := nats.Connect(natsURL)
			if err != nil {
				return fmt.Errorf("failed to connect to NATS: %w", err)
			}
			defer nc.Close()

			js, err := jetstream.New(nc)
			if err != nil {
				return fmt.Errorf("failed to create JetStream context: %w", err)
			}

			stream, err := js.Stream(context.Background(), natspkg.StreamName)
			if err != nil {
				return fmt.Errorf("failed to get stream: %w", err)
			}

			info, err := stream.Info(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get stream info: %w", err)
			}

			if jsonOutput {
				data, _ := json.MarshalIndent(info, "", "  ")
				fmt.Println(string(data))
			} else {
				fmt.Printf("Stream: %s\n", info.Config.Name)
				fmt.Printf("─────────────────────────────────────────────────────\n")
				fmt.Printf("Description:  %s\n", info.Config.Description)
				fmt.Printf("Subjects:     %v\n", info.Config.Subjects)
				fmt.Printf("Messages:     %d\n", info.State.Msgs)
				fmt.Printf("Bytes:        %d\n", info.State.Bytes)
				fmt.Printf("First Seq:    %d\n", info.State.FirstSeq)
				fmt.Printf("Last Seq:     %d\n", info.State.LastSeq)
				fmt.Printf("Consumers:    %d\n", info.State.Consumers)
				fmt.Printf("Max Age:      %s\n", info.Config.MaxAge)
				fmt.Printf("Storage:      %s\n", info.Config.Storage)
				fmt.Printf("\n")
			}

			return nil
		},
	}
}
