package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dayflow/dayflow-go/pkg/activity"
	"github.com/dayflow/dayflow-go/pkg/core"
)

func timelineCmd(flags *globalFlags) *cobra.Command {
	var chunkMinutes, contextMinutes int
	var noContext, noMerge, asJSON, stream bool

	cmd := &cobra.Command{
		Use:   "timeline <observations.json>",
		Short: "Build an activity timeline from saved observations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("chunk") {
				cfg.Timeline.ChunkMinutes = chunkMinutes
			}
			if cmd.Flags().Changed("context") {
				cfg.Timeline.ContextMinutes = contextMinutes
			}
			if noContext {
				cfg.Timeline.UseContext = false
			}
			if noMerge {
				cfg.Timeline.MergeCards = false
			}

			observations, err := readObservations(args[0])
			if err != nil {
				return err
			}

			client, err := core.NewClient(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			out := cmd.OutOrStdout()
			var cards []activity.Card
			if stream {
				for event := range client.TimelineStream(cmd.Context(), observations) {
					if event.Error != nil {
						return event.Error
					}
					action := "appended"
					if event.Commit.Fused {
						action = "fused"
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "chunk %d/%d: %q %s\n", event.Index+1, event.Total, event.Generated.Title, action)
					cards = event.Timeline
				}
			} else {
				cards, err = client.GenerateTimeline(cmd.Context(), observations)
				if err != nil {
					return err
				}
			}

			if asJSON {
				return writeJSON(out, cards)
			}
			printCards(out, cards)
			return nil
		},
	}

	cmd.Flags().IntVar(&chunkMinutes, "chunk", 15, "Chunk length in minutes")
	cmd.Flags().IntVar(&contextMinutes, "context", 30, "Context window in minutes")
	cmd.Flags().BoolVar(&noContext, "no-context", false, "Generate cards without historical context")
	cmd.Flags().BoolVar(&noMerge, "no-merge", false, "Keep every card separate")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print cards as JSON")
	cmd.Flags().BoolVar(&stream, "stream", false, "Report progress per chunk on stderr")

	return cmd
}

func readObservations(path string) ([]activity.Observation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var observations []activity.Observation
	if err := json.Unmarshal(data, &observations); err != nil {
		return nil, fmt.Errorf("decode observations %s: %w", path, err)
	}
	return observations, nil
}

func printCards(w io.Writer, cards []activity.Card) {
	for _, card := range cards {
		fmt.Fprintf(w, "  %s - %s [%s] %s\n", card.StartTime, card.EndTime, card.Category, card.Title)
		fmt.Fprintf(w, "      %s\n", card.Summary)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
