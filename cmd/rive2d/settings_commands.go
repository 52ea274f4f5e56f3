package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rive2d/internal/config"
	"rive2d/internal/library"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Viewer settings stored with the library",
		Long:  "Known keys: " + strings.Join(library.KnownSettings, ", "),
	}

	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	settingsCmd.AddCommand(newSettingsGetCommand(ctx))
	settingsCmd.AddCommand(newSettingsSetCommand(ctx))
	settingsCmd.AddCommand(newSettingsResetCommand(ctx))

	return settingsCmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the full viewer state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(_ *config.Config, store *library.Store) error {
				snap, err := store.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd, snap)
			})
		},
	}
}

func newSettingsGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a stored setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			if !isKnownSetting(key) {
				return fmt.Errorf("unknown setting %q", key)
			}
			return ctx.withLibrary(func(_ *config.Config, store *library.Store) error {
				value, ok, err := store.GetSetting(cmd.Context(), key)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "(unset)")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			})
		},
	}
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			value, err := library.NormalizeSetting(key, strings.TrimSpace(args[1]))
			if err != nil {
				return err
			}
			return ctx.withLibrary(func(_ *config.Config, store *library.Store) error {
				if key == library.SettingCurrentModel {
					if err := store.SetCurrentModel(cmd.Context(), value); err != nil {
						return err
					}
				} else if err := store.SetSetting(cmd.Context(), key, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
				return nil
			})
		},
	}
}

func newSettingsResetCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset [key...]",
		Short: "Restore settings to their defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := args
			if all {
				keys = library.KnownSettings
			}
			if len(keys) == 0 {
				return fmt.Errorf("specify at least one key or --all")
			}
			for _, key := range keys {
				if !isKnownSetting(key) {
					return fmt.Errorf("unknown setting %q", key)
				}
			}
			return ctx.withLibrary(func(_ *config.Config, store *library.Store) error {
				if err := store.DeleteSettings(cmd.Context(), keys...); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d setting(s)\n", len(keys))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Reset every known setting")
	return cmd
}

func isKnownSetting(key string) bool {
	for _, known := range library.KnownSettings {
		if key == known {
			return true
		}
	}
	return false
}
