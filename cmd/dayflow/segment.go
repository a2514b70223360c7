package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayflow/dayflow-go/pkg/core"
	"github.com/dayflow/dayflow-go/pkg/frames"
)

func segmentCmd(flags *globalFlags) *cobra.Command {
	var duration float64
	var start string

	cmd := &cobra.Command{
		Use:   "segment <frame_descriptions.json>",
		Short: "Merge saved frame descriptions into observations",
		Long: `Reads a frame_descriptions.json file ([{"timestamp", "description"}]) and
prints the merged observations as JSON. --start anchors offset zero; it
accepts RFC 3339 or Unix seconds and defaults to now.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batchStart, err := parseStart(start)
			if err != nil {
				return err
			}

			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			source := &frames.FileSource{Duration: duration}
			batch, err := source.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			client, err := core.NewClient(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			observations, err := client.MergeCaptions(cmd.Context(), batch, batchStart)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), observations)
		},
	}

	cmd.Flags().Float64Var(&duration, "duration", 0, "Source duration in seconds (default: last timestamp)")
	cmd.Flags().StringVar(&start, "start", "", "Instant of offset zero (RFC 3339 or Unix seconds)")

	return cmd
}

func parseStart(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	if unix, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(unix, 0), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --start %q: want RFC 3339 or Unix seconds", value)
	}
	return t, nil
}
