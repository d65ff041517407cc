package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/agentview/internal/config"
)

// configPath returns --config or the default config path.
func configPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.GetConfigPath()
}

// NewConfigInitCmd creates the config init command for initializing configuration.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Example: `  # Create configuration
  agentview config init

  # Create configuration, overwriting existing
  agentview config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}

			// Check if config already exists and force isn't set
			if !force {
				if _, statErr := os.Stat(path); statErr == nil {
					return errors.New("configuration file already exists, use --force to overwrite")
				} else if !os.IsNotExist(statErr) {
					return fmt.Errorf("cannot access config path %s: %w", path, statErr)
				}
			}

			if err = config.New().Save(path); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			cmd.Printf("Configuration initialized successfully\n")
			cmd.Printf("Configuration file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	return cmd
}

// NewConfigShowCmd creates the config show command. It prints the
// effective configuration after the file, environment and flags are applied.
func NewConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := appFromContext(cmd.Context()).cfg
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshalling config: %w", err)
			}
			cmd.Print(string(data))
			return nil
		},
	}
}

// NewConfigPathCmd creates the config path command.
func NewConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			cmd.Println(path)
			return nil
		},
	}
}
