package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dayflow/dayflow-go/pkg/core"
)

func processCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <video-list>",
		Short: "Process every video listed in a file, one path per line",
		Long: `Extracts frames from each video, captions them, merges the captions into
observations and builds the activity timeline. Results are saved per video
in the configured store. A video that fails is reported and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			client, err := core.NewClient(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			results, err := client.ProcessVideoList(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, result := range results {
				source := "extracted"
				if result.Cached {
					source = "cached"
				}
				fmt.Fprintf(out, "%s: %d observations (%s), %d cards, %d inference calls, %.1fs\n",
					result.Unit, len(result.Observations), source, len(result.Cards), len(result.Calls), result.Elapsed.Seconds())
				printCards(out, result.Cards)
			}
			return nil
		},
	}
	return cmd
}
