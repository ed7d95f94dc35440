// Package cli implements the relnotes command line: the root command that
// generates and publishes release notes, plus the config and version
// subcommands.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/progress"
	"github.com/spf13/cobra"
)

// Command groups shown in help output.
const (
	GroupConfiguration = "configuration"
	GroupInfo          = "info"
)

// env holds what commands take from the process. Tests replace it to point
// at a fixture repository and a mocked HTTP transport.
type env struct {
	// dir is the repository working directory. Empty means the current directory.
	dir            string
	httpClient     *http.Client
	caps           progress.TerminalCapabilities
	userConfigPath string
	skipUserConfig bool
}

func defaultEnv() *env {
	return &env{
		httpClient: http.DefaultClient,
		caps:       progress.DetectTerminalCapabilities(),
	}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	debug      bool
	verbose    bool
}

// rootCommand bundles the cobra tree with the state its flags bind to.
type rootCommand struct {
	cmd     *cobra.Command
	env     *env
	global  globalFlags
	release releaseFlags
}

// NewRootCmd builds the relnotes command tree.
func NewRootCmd() *cobra.Command {
	return newRootCommand(defaultEnv()).cmd
}

func newRootCommand(e *env) *rootCommand {
	rc := &rootCommand{env: e}

	rc.cmd = &cobra.Command{
		Use:   "relnotes",
		Short: "Generate release notes from conventional commits",
		Long: `relnotes reads the commits between two refs, groups them by
conventional-commit type and scope, resolves authors against GitHub or
GitLab, and publishes the result as the release for the tag.

The range defaults to the previous matching tag up to the current branch.
Configuration is merged from (lowest to highest priority):
  1. Built-in defaults
  2. User config (~/.config/relnotes/config.yml)
  3. Project config (.relnotes.yml or .relnotes.json, or --config)
  4. Environment variables (RELNOTES_*)
  5. Command line flags`,
		Example: `  # Preview the notes for the latest tag without publishing
  relnotes --dry --to v1.2.0

  # Publish to GitHub using GITHUB_TOKEN
  relnotes

  # Publish to a self-hosted GitLab
  relnotes --gitlab --set base_url=git.example.com --set base_url_api=git.example.com/api/v4`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.runRelease(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	rc.cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierrors.NewArgumentError(err.Error(), "Run 'relnotes --help' for usage")
	})

	rc.cmd.AddGroup(
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration Commands:"},
		&cobra.Group{ID: GroupInfo, Title: "Info Commands:"},
	)

	pf := rc.cmd.PersistentFlags()
	pf.StringVarP(&rc.global.configPath, "config", "c", "", "Project config file (default: .relnotes.yml)")
	pf.BoolVar(&rc.global.debug, "debug", false, "Log git operations and API requests")
	pf.BoolVarP(&rc.global.verbose, "verbose", "v", false, "Print a per-section commit summary")

	rc.addReleaseFlags()

	rc.cmd.AddCommand(newConfigCmd(rc), newVersionCmd())
	return rc
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
	return ExitCode(err)
}

// printError prints structured errors with their remediation and anything
// else as a single line.
func printError(w io.Writer, err error) {
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		clierrors.FprintError(w, cliErr)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
