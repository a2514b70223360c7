package main

import (
	"github.com/spf13/cobra"

	"github.com/dayflow/dayflow-go/pkg/core"
)

func showCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <video>",
		Short: "Print the stored timeline of a processed video",
		Args:  cobra.ExactArgs(1),
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

			cards, err := client.LoadTimeline(cmd.Context(), core.UnitName(args[0]))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cards)
			}
			printCards(cmd.OutOrStdout(), cards)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print cards as JSON")
	return cmd
}
