package errors

import "fmt"

// Common error messages for the relnotes CLI.
// These templates ensure consistent, actionable error messages.

// NotAGitRepository creates an error for a working directory outside a repository.
func NotAGitRepository(path string, err error) *CLIError {
	e := NewPrerequisiteError(
		fmt.Sprintf("%s is not inside a git repository", path),
		"Run relnotes from within the repository you want to release",
		"Or initialize one with: git init",
	)
	e.Cause = err
	return e
}

// RepoNotDetected creates an error for a remote URL that does not belong to
// the configured host.
func RepoNotDetected(err error) *CLIError {
	e := NewConfigError(
		err.Error(),
		"Set the repository explicitly: relnotes --set repo=owner/name",
		"Or point base_url at the host of your origin remote",
		"Check the remote with: git remote get-url origin",
	)
	e.Cause = err
	return e
}

// InvalidConfig creates an error for a configuration that failed to load or validate.
func InvalidConfig(err error) *CLIError {
	return WrapWithMessage(err, Configuration, "invalid configuration",
		"Check .relnotes.yml and ~/.config/relnotes/config.yml",
		"Run 'relnotes config keys' to list valid keys and values",
	)
}

// InvalidSetAssignment creates an error for a malformed --set value.
func InvalidSetAssignment(raw string, err error) *CLIError {
	e := NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid --set value %q: %v", raw, err),
		"relnotes --set key=value",
		"Run 'relnotes config keys' to list valid keys",
		"Example: relnotes --set emoji=false",
	)
	e.Cause = err
	return e
}

// ConflictingProviderFlags creates an error when both --github and --gitlab are set.
func ConflictingProviderFlags() *CLIError {
	return NewArgumentErrorWithUsage(
		"--github and --gitlab cannot be used together",
		"relnotes [--github | --gitlab]",
		"Pick the host of the repository's origin remote",
	)
}

// TagNotFound creates an error for a release tag that is not on the host yet.
func TagNotFound(tag, host string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("tag %s is not on %s yet, release skipped", tag, host),
		fmt.Sprintf("Push the tag first: git push origin %s", tag),
		"Then run relnotes again",
	)
}

// MissingToken creates an error for a release attempt without an API token.
func MissingToken(host, envVar string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("no %s token found, release not published", host),
		fmt.Sprintf("Export %s or pass --token", envVar),
		"Or open the printed link to create the release manually",
	)
}

// ReleaseFailed creates an error for a failed publish call.
func ReleaseFailed(tag string, err error) *CLIError {
	return WrapWithMessage(err, Runtime, fmt.Sprintf("publishing release %s", tag),
		"Check that the token can write releases for this repository",
		"Re-run with --debug for request details",
	)
}

// ShallowClone creates an error for an empty range caused by a shallow clone.
func ShallowClone() *CLIError {
	return NewPrerequisiteError(
		"the repository is a shallow clone, so the commit range could not be read",
		"Fetch the full history: git fetch --unshallow --tags",
		"In CI, set fetch-depth: 0 on the checkout step",
	)
}
