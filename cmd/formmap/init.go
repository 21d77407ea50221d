package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/v0xg/formmap/internal/config"
)

func (a *app) newInitCmd() *cobra.Command {
	var global bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a commented formmap.yaml to fill in",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.AppName + ".yaml"
			switch {
			case len(args) == 1:
				path = args[0]
			case global:
				path = filepath.Join(config.ConfigDir(), config.AppName+".yaml")
			}
			if err := config.WriteTemplate(path); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Wrote %s\n", path)
			fmt.Fprintln(out, "  Fill in target.url and target.username, and export FORMMAP_PASSWORD before running formmap.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&global, "global", false, "Write to the user config directory instead of the working directory")
	return cmd
}
