package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"rive2d/internal/config"
	"rive2d/internal/lpk"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "extract <package.lpk> <out-dir>",
		Short: "Extract a package and print the model descriptor path",
		Long: "Extract clears <out-dir>, unpacks the package into it (decrypting encrypted\n" +
			"packages) and prints the absolute path of the model descriptor on stdout.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			containerPath, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve package path: %w", err)
			}
			outputDir, err := config.ExpandPath(args[1])
			if err != nil {
				return fmt.Errorf("resolve output dir: %w", err)
			}

			extractor := lpk.NewExtractor(logger)
			extractor.SidecarName = cfg.Import.SidecarName
			res, err := extractor.Extract(cmd.Context(), containerPath, outputDir)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.DescriptorPath)
			if !quiet {
				kind := "plain"
				if res.Encrypted {
					kind = "encrypted " + res.FormatType
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Extracted %d files (%s, %s package) in %s\n",
					res.Files, humanize.Bytes(uint64(res.Bytes)), kind, res.Duration.Round(time.Millisecond))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the descriptor path")
	return cmd
}
