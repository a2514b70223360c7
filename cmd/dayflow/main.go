package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dayflow/dayflow-go/pkg/core"
)

var version = "dev"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	traceDir   string
}

func main() {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "dayflow",
		Short:   "Dayflow - turn screen recordings into an activity timeline",
		Version: version,
		// Errors are printed once by main.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "JSON or YAML config file (default: environment and .env)")
	rootCmd.PersistentFlags().StringVar(&flags.traceDir, "trace-dir", "", "Write raw prompts and responses under this directory")

	rootCmd.AddCommand(processCmd(flags))
	rootCmd.AddCommand(timelineCmd(flags))
	rootCmd.AddCommand(segmentCmd(flags))
	rootCmd.AddCommand(showCmd(flags))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads --config if given, the environment otherwise.
func (f *globalFlags) loadConfig() (*core.Config, error) {
	var (
		cfg *core.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = core.LoadConfig(f.configPath)
	} else {
		cfg, err = core.LoadConfigFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if f.traceDir != "" {
		cfg.Trace.Dir = f.traceDir
	}
	return cfg, nil
}
