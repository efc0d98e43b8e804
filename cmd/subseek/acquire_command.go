package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/subseek/subseek/internal/models"
)

func newAcquireCommand(ctx *commandContext) *cobra.Command {
	var tmdbID int64
	var format string

	cmd := &cobra.Command{
		Use:   "acquire TITLE",
		Short: "Search the providers and print the best subtitle for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format); err != nil {
				return err
			}
			if tmdbID < 0 {
				return fmt.Errorf("--tmdb-id must not be negative")
			}

			acq, err := ctx.newAcquirer(ctx.config())
			if err != nil {
				return err
			}

			q := models.SearchQuery{Title: strings.Join(args, " "), TMDBID: tmdbID}
			track, err := acq.Acquire(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeTrack(cmd.OutOrStdout(), track, format)
		},
	}

	cmd.Flags().Int64Var(&tmdbID, "tmdb-id", 0, "TMDB id of the title, used by providers that search by id")
	cmd.Flags().StringVar(&format, "format", outputJSON, "Output format: json or srt")
	return cmd
}
