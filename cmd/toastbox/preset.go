package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastbox/internal/config"
	"github.com/jmylchreest/toastbox/internal/form"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage form presets",
	Long: `Form presets are YAML snapshots of every form field. Load one into the
playground with "toastbox --preset FILE".`,
}

var presetSaveCmd = &cobra.Command{
	Use:   "save [file]",
	Short: "Write the configured defaults as a preset",
	Long: `Write the form defaults from the configuration as a YAML preset.

Without a file, writes presets/default.yaml in the config directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.PresetPath("default")
		if len(args) > 0 {
			path = args[0]
		}
		if err := form.SavePreset(path, cfg.FormDefaults()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print a preset, or the configured defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := cfg.FormDefaults()
		if len(args) > 0 {
			var err error
			values, err = form.LoadPreset(args[0], values)
			if err != nil {
				return err
			}
		}
		return form.WritePreset(cmd.OutOrStdout(), values)
	},
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetSaveCmd, presetShowCmd)
}
