package main

import (
	"github.com/agentuity/aggcache/config"
	"github.com/agentuity/aggcache/service"
	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	filename, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(filename)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateNamespaces(service.Namespaces()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}
