package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"rive2d/internal/config"
	"rive2d/internal/importer"
	"rive2d/internal/library"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import <package.lpk|model.json>",
		Short: "Add a package or descriptor to the model library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			return ctx.withLibrary(func(cfg *config.Config, store *library.Store) error {
				svc, err := importer.New(cfg, store, logger)
				if err != nil {
					return err
				}
				res, err := svc.Import(cmd.Context(), path)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, res)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %s\n", res.Name)
				fmt.Fprintf(out, "  Descriptor: %s\n", res.DescriptorPath)
				if res.Files > 0 {
					fmt.Fprintf(out, "  Files:      %d (%s)\n", res.Files, humanize.Bytes(uint64(res.Bytes)))
				}
				if res.FormatType != "" {
					fmt.Fprintf(out, "  Format:     %s\n", res.FormatType)
				}
				fmt.Fprintf(out, "  Encrypted:  %s\n", yesNo(res.Encrypted))
				fmt.Fprintf(out, "  Current:    %s\n", yesNo(res.Current))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the import result as JSON")
	return cmd
}
