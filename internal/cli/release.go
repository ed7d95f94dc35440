package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	"github.com/ariel-frischer/relnotes/internal/config"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/git"
	"github.com/ariel-frischer/relnotes/internal/output"
	"github.com/ariel-frischer/relnotes/internal/progress"
	"github.com/ariel-frischer/relnotes/internal/provider"
	"github.com/sirupsen/logrus"
)

// releaseFlags bind the root command's flags. Only flags the user set are
// applied, so unset flags never mask config file values.
type releaseFlags struct {
	dry          bool
	output       string
	from         string
	to           string
	token        string
	name         string
	provider     string
	github       bool
	gitlab       bool
	draft        bool
	prerelease   bool
	emoji        bool
	group        bool
	capitalize   bool
	contributors bool
	sets         []string
}

func (rc *rootCommand) addReleaseFlags() {
	f := rc.cmd.Flags()
	rf := &rc.release

	f.BoolVar(&rf.dry, "dry", false, "Print the release notes without publishing")
	f.StringVarP(&rf.output, "output", "o", "", "Also write the release notes to this file")
	f.StringVar(&rf.from, "from", "", "Start of the range (default: previous matching tag)")
	f.StringVar(&rf.to, "to", "", "End of the range and release tag (default: current branch)")
	f.StringVar(&rf.token, "token", "", "API token (default: GITHUB_TOKEN or GITLAB_TOKEN)")
	f.StringVar(&rf.name, "name", "", "Release title (default: the tag)")
	f.StringVar(&rf.provider, "provider", "", "Hosting provider: github or gitlab")
	f.BoolVar(&rf.github, "github", false, "Shorthand for --provider github")
	f.BoolVar(&rf.gitlab, "gitlab", false, "Shorthand for --provider gitlab")
	f.BoolVar(&rf.draft, "draft", false, "Publish the release as a draft")
	f.BoolVar(&rf.prerelease, "prerelease", false, "Mark the release as a prerelease (default: inferred from the tag)")
	f.BoolVar(&rf.emoji, "emoji", true, "Keep emoji in section titles")
	f.BoolVar(&rf.group, "group", true, "Nest scopes with more than one commit")
	f.BoolVar(&rf.capitalize, "capitalize", true, "Capitalize commit descriptions")
	f.BoolVar(&rf.contributors, "contributors", true, "Resolve and credit commit authors")
	f.StringArrayVar(&rf.sets, "set", nil, "Override a config key (key=value, repeatable)")
}

// buildOverrides turns --set assignments and explicitly set flags into
// config overrides. Dedicated flags win over --set for the same key.
func (rc *rootCommand) buildOverrides() (map[string]any, error) {
	rf := &rc.release
	overrides := make(map[string]any)

	for _, raw := range rf.sets {
		key, value, err := config.ParseAssignment(raw)
		if err != nil {
			return nil, clierrors.InvalidSetAssignment(raw, err)
		}
		overrides[key] = value.Parsed
	}

	if rf.github && rf.gitlab {
		return nil, clierrors.ConflictingProviderFlags()
	}

	flags := rc.cmd.Flags()
	strs := map[string]string{
		"from":     rf.from,
		"to":       rf.to,
		"token":    rf.token,
		"name":     rf.name,
		"output":   rf.output,
		"provider": rf.provider,
	}
	for key, value := range strs {
		if flags.Changed(key) {
			overrides[key] = value
		}
	}

	bools := map[string]bool{
		"dry":          rf.dry,
		"draft":        rf.draft,
		"prerelease":   rf.prerelease,
		"emoji":        rf.emoji,
		"group":        rf.group,
		"capitalize":   rf.capitalize,
		"contributors": rf.contributors,
	}
	for key, value := range bools {
		if flags.Changed(key) {
			overrides[key] = value
		}
	}

	switch {
	case rf.github:
		overrides["provider"] = config.ProviderGitHub
	case rf.gitlab:
		overrides["provider"] = config.ProviderGitLab
	}

	return overrides, nil
}

// loadConfig merges every configuration layer, with overrides on top.
func (rc *rootCommand) loadConfig(overrides map[string]any) (*config.Configuration, error) {
	opts := config.LoadOptions{
		ProjectConfigPath: rc.global.configPath,
		UserConfigPath:    rc.env.userConfigPath,
		SkipUserConfig:    rc.env.skipUserConfig,
		Overrides:         overrides,
	}
	if opts.ProjectConfigPath == "" && rc.env.dir != "" {
		opts.ProjectConfigPath = projectConfigIn(rc.env.dir)
	}

	cfg, err := config.LoadWithOptions(opts)
	if err != nil {
		return nil, clierrors.InvalidConfig(err)
	}
	return cfg, nil
}

// resolveConfig completes cfg from the repository and maps failures to
// actionable errors.
func (rc *rootCommand) resolveConfig(ctx context.Context, cfg *config.Configuration) (*config.Resolved, error) {
	resolved, err := config.Resolve(ctx, cfg, rc.env.dir)
	if err == nil {
		return resolved, nil
	}

	var repoErr *git.RepoParseError
	switch {
	case errors.As(err, &repoErr):
		return nil, clierrors.RepoNotDetected(err)
	case git.IsNotRepository(err):
		return nil, clierrors.NotAGitRepository(rc.workDir(), err)
	default:
		return nil, clierrors.WrapWithMessage(err, clierrors.Runtime, "resolving release range")
	}
}

func (rc *rootCommand) runRelease(ctx context.Context, out, errOut io.Writer) error {
	logger := newLogger(errOut, rc.global.debug, rc.global.verbose)
	wireGitDebug(logger)

	overrides, err := rc.buildOverrides()
	if err != nil {
		return err
	}

	cfg, err := rc.loadConfig(overrides)
	if err != nil {
		return err
	}

	resolved, err := rc.resolveConfig(ctx, cfg)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"provider": resolved.Provider,
		"repo":     resolved.Repo,
		"from":     resolved.From,
		"to":       resolved.To,
	}).Info("Resolved release")

	prov, err := provider.New(resolved,
		provider.WithHTTPClient(rc.env.httpClient),
		provider.WithLogger(logger),
	)
	if err != nil {
		return clierrors.InvalidConfig(err)
	}

	display := progress.NewProgressDisplay(errOut, rc.env.caps)
	display.StartStep("Generating release notes")

	gen := &changelog.Generator{
		Source:   changelog.GitSource{Path: rc.env.dir},
		Provider: prov,
		Logger:   logger,
	}
	res, err := gen.Generate(ctx, resolved)
	if err != nil {
		display.FailStep(err)
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "generating release notes")
	}
	display.CompleteStep("Generated release notes")

	output.PrintRange(out, resolved.From, resolved.To, len(res.Commits))
	output.PrintMarkdown(out, res.Markdown)

	if rc.global.verbose {
		opts := changelog.FormatOptions{Plain: !rc.env.caps.SupportsColor}
		if err := changelog.FormatTerminal(res.Document, errOut, opts); err != nil {
			return fmt.Errorf("printing summary: %w", err)
		}
	}

	if resolved.Output != "" {
		path := rc.inWorkDir(resolved.Output)
		if err := os.WriteFile(path, []byte(res.Markdown+"\n"), 0o644); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Runtime, "writing release notes")
		}
		output.PrintSuccess(out, "Saved to "+path)
	}

	if resolved.Dry {
		output.PrintWarning(out, "Dry run, release skipped.")
		return nil
	}

	return rc.publish(ctx, out, resolved, prov, res)
}

// publish creates or updates the release for the tag. Without a token it
// prints a link for creating the release by hand instead.
func (rc *rootCommand) publish(ctx context.Context, out io.Writer, resolved *config.Resolved, prov provider.Provider, res *changelog.Result) error {
	host := prov.Links().Host()
	req := provider.ReleaseRequest{
		Tag:        resolved.To,
		Name:       resolved.ReleaseName(),
		Body:       res.Markdown,
		Draft:      resolved.Draft,
		Prerelease: resolved.IsPrerelease(),
	}

	if resolved.Token == "" {
		output.PrintManualRelease(out, host, prov.ManualReleaseURL(req))
		return &ExitError{
			Code: ExitMissingDependencies,
			Err:  clierrors.MissingToken(host, tokenEnvVar(resolved.Provider)),
		}
	}

	if !prov.HasTag(ctx, resolved.To) {
		output.PrintWarning(out, fmt.Sprintf("Current ref %q is not available as a tag on %s. Release skipped.", resolved.To, host))
		return &ExitError{
			Code: ExitValidationFailed,
			Err:  clierrors.TagNotFound(resolved.To, host),
		}
	}

	if len(res.Commits) == 0 {
		if shallow, err := git.IsShallow(rc.env.dir); err == nil && shallow {
			return &ExitError{Code: ExitValidationFailed, Err: clierrors.ShallowClone()}
		}
	}

	output.PrintStatus(out, "Creating release notes...")
	url, created, err := prov.CreateOrUpdateRelease(ctx, req)
	if err != nil {
		return clierrors.ReleaseFailed(req.Tag, err)
	}

	verb := "Released on"
	if !created {
		verb = "Updated release on"
	}
	output.PrintSuccess(out, verb+" "+url)
	return nil
}

func (rc *rootCommand) workDir() string {
	if rc.env.dir != "" {
		return rc.env.dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// inWorkDir anchors a relative path at the repository working directory.
func (rc *rootCommand) inWorkDir(path string) string {
	if filepath.IsAbs(path) || rc.env.dir == "" {
		return path
	}
	return filepath.Join(rc.env.dir, path)
}

// projectConfigIn returns the project config file in dir, or "" when there is none.
func projectConfigIn(dir string) string {
	for _, name := range []string{config.ProjectConfigPath(), config.ProjectJSONConfigPath()} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func tokenEnvVar(providerName string) string {
	if providerName == config.ProviderGitLab {
		return "GITLAB_TOKEN"
	}
	return "GITHUB_TOKEN"
}
