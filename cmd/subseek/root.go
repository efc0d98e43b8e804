package main

import (
	"github.com/spf13/cobra"

	"github.com/subseek/subseek/internal/acquire"
	"github.com/subseek/subseek/internal/config"
	"github.com/subseek/subseek/internal/provider"
	"github.com/subseek/subseek/internal/services"
)

// commandContext carries the dependencies commands build on; tests swap them.
type commandContext struct {
	config      func() *config.Config
	newAcquirer func(cfg *config.Config) (acquire.Acquirer, error)
}

func newCommandContext() *commandContext {
	return &commandContext{
		config:      config.GetConfig,
		newAcquirer: newOrchestrator,
	}
}

// newOrchestrator wires the configured providers into an orchestrator.
func newOrchestrator(cfg *config.Config) (acquire.Acquirer, error) {
	providers, err := provider.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return acquire.New(providers, services.NewSubtitleUnpacker(cfg.DownloadLimit())), nil
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "subseek",
		Short:         "Find, download and parse subtitles",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newAcquireCommand(ctx))
	rootCmd.AddCommand(newParseCommand(ctx))

	return rootCmd
}
