package main

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Print the effective configuration as TOML",
	GroupID: "system",
	Args:    cobra.NoArgs,
	// Override PersistentPreRunE so printing the config opens no log file.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cfg.Redacted().Encode(cmd.OutOrStdout())
	},
}
