package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ariel-frischer/relnotes/internal/config"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(rc *rootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Inspect and initialize relnotes configuration",
		GroupID: GroupConfiguration,
		Long: `Inspect and initialize relnotes configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. Command line flags and --set
  2. Environment variables (RELNOTES_*)
  3. Project config (.relnotes.yml or .relnotes.json)
  4. User config (~/.config/relnotes/config.yml)
  5. Built-in defaults`,
		Example: `  # Show the merged configuration
  relnotes config show

  # Show it completed from the repository (range, repo, hosts)
  relnotes config show --resolved

  # List keys accepted by --set
  relnotes config keys

  # Write a commented .relnotes.yml
  relnotes config init`,
		Args: cobra.NoArgs,
	}

	cmd.AddCommand(newConfigShowCmd(rc), newConfigKeysCmd(), newConfigInitCmd(rc))
	return cmd
}

func newConfigShowCmd(rc *rootCommand) *cobra.Command {
	var resolve bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := rc.buildOverrides()
			if err != nil {
				return err
			}
			cfg, err := rc.loadConfig(overrides)
			if err != nil {
				return err
			}

			if resolve {
				resolved, err := rc.resolveConfig(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				cfg = &resolved.Configuration
			}

			return writeConfigYAML(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().BoolVar(&resolve, "resolved", false, "Fill in values read from the repository")
	return cmd
}

// writeConfigYAML prints cfg with the token masked.
func writeConfigYAML(w io.Writer, cfg *config.Configuration) error {
	shown := *cfg
	shown.Token = maskToken(cfg.Token)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&shown); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

func newConfigKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the keys accepted by --set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKeys(cmd.OutOrStdout())
		},
	}
}

func printKeys(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTYPE\tDESCRIPTION")
	for _, key := range config.SortedKeys() {
		schema := config.KnownKeys[key]
		typ := schema.Type.String()
		if len(schema.AllowedValues) > 0 {
			typ = strings.Join(schema.AllowedValues, "|")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", key, typ, schema.Description)
	}
	return tw.Flush()
}

func newConfigInitCmd(rc *rootCommand) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented .relnotes.yml to the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rc.inWorkDir(config.ProjectConfigPath())
			if _, err := os.Stat(path); err == nil && !force {
				return clierrors.NewArgumentError(
					fmt.Sprintf("%s already exists", path),
					"Use --force to overwrite it",
				)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating config directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			output.PrintSuccess(cmd.OutOrStdout(), "Created "+path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}
