package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskplan/internal/config"
)

func newConfigCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or create taskplan configuration",
		Long: `Manage taskplan configuration stored at ~/.taskplan/config.yaml

Configuration includes:
  • HTTP server address, port and timeouts
  • Logging level and format
  • Default working hours per day
  • Project storage (memory or file)
  • API key hashes
  • Tracing export

Every value can be overridden with a TASKPLAN_ environment variable,
for example TASKPLAN_SERVER_PORT=9090.`,
	}

	cmd.AddCommand(
		newConfigViewCommand(g),
		newConfigInitCommand(g),
		newConfigPathCommand(g),
	)
	return cmd
}

func newConfigViewCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Display the effective configuration",
		Long:  `Display the configuration after defaults, the config file and environment overrides are applied.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(g.cfg); err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

func newConfigInitCommand(g *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default values",
		Args:  cobra.NoArgs,
		// The file may not exist yet, or may be the broken one being replaced.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath(g.configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}

			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newConfigPathCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath(g.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// configFilePath returns explicit, or the default config file location.
func configFilePath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(dir, "config.yaml"), nil
}
