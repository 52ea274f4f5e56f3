package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"rive2d/internal/config"
	"rive2d/internal/library"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect and curate the model library",
	}

	modelsCmd.AddCommand(newModelsListCommand(ctx))
	modelsCmd.AddCommand(newModelsRemoveCommand(ctx))
	modelsCmd.AddCommand(newModelsUseCommand(ctx))

	return modelsCmd
}

type modelView struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Source     string `json:"source,omitempty"`
	Encrypted  bool   `json:"encrypted"`
	FormatType string `json:"format_type,omitempty"`
	AddedAt    string `json:"added_at"`
	Current    bool   `json:"current"`
}

func newModelsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported models, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(_ *config.Config, store *library.Store) error {
				models, err := store.ListModels(cmd.Context())
				if err != nil {
					return err
				}
				current, _, err := store.GetSetting(cmd.Context(), library.SettingCurrentModel)
				if err != nil {
					return err
				}

				if asJSON {
					views := make([]modelView, 0, len(models))
					for _, m := range models {
						views = append(views, modelView{
							Name:       m.Name,
							Path:       m.Path,
							Source:     m.Source,
							Encrypted:  m.Encrypted,
							FormatType: m.FormatType,
							AddedAt:    m.AddedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
							Current:    m.Path == current,
						})
					}
					return writeJSON(cmd, views)
				}

				out := cmd.OutOrStdout()
				if len(models) == 0 {
					fmt.Fprintln(out, "No models in library")
					return nil
				}
				rows := make([][]string, 0, len(models))
				for _, m := range models {
					marker := ""
					if m.Path == current {
						marker = "*"
					}
					rows = append(rows, []string{marker, m.Name, m.Path, humanize.Time(m.AddedAt)})
				}
				renderRows(out, []string{"", "Name", "Descriptor", "Added"}, rows, nil)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print models as JSON")
	return cmd
}

func newModelsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <descriptor>",
		Short: "Forget a model (files on disk are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			return ctx.withLibrary(func(_ *config.Config, store *library.Store) error {
				removed, err := store.RemoveModel(cmd.Context(), path)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("model %s is not in the library", path)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", path)
				return nil
			})
		},
	}
}

func newModelsUseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "use <descriptor>",
		Short: "Select the model the viewer shows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if _, err := os.Stat(path); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("model file not found: %s", path)
				}
				return fmt.Errorf("inspect model: %w", err)
			}
			return ctx.withLibrary(func(_ *config.Config, store *library.Store) error {
				if err := store.SetCurrentModel(cmd.Context(), path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current model: %s\n", path)
				return nil
			})
		},
	}
}
