package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/subseek/subseek/internal/parser"
)

func newParseCommand(_ *commandContext) *cobra.Command {
	var hint string
	var format string

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Detect the encoding and format of a local subtitle file and print its cues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format); err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read subtitle: %w", err)
			}

			track := parser.DecodeAndParse(content, filepath.Base(args[0]), hint)
			return writeTrack(cmd.OutOrStdout(), &track, format)
		},
	}

	cmd.Flags().StringVar(&hint, "hint", "", "Format hint (srt, vtt, ass, ttml) used when the content is ambiguous")
	cmd.Flags().StringVar(&format, "format", outputJSON, "Output format: json or srt")
	return cmd
}
