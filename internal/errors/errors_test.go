package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsCLIError(t *testing.T) {
	t.Parallel()

	cliErr := ReleaseFailed("v1.0.0", stderrors.New("boom"))

	tests := map[string]struct {
		err  error
		want *CLIError
	}{
		"direct":    {err: cliErr, want: cliErr},
		"wrapped":   {err: fmt.Errorf("running: %w", cliErr), want: cliErr},
		"plain":     {err: stderrors.New("plain"), want: nil},
		"nil error": {err: nil, want: nil},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, AsCLIError(tt.err))
		})
	}
}

func TestWrapWithMessage(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("connection refused")

	withMsg := WrapWithMessage(cause, Configuration, "loading config")
	require.NotNil(t, withMsg)
	assert.Equal(t, "loading config: connection refused", withMsg.Error())
	assert.Equal(t, Configuration, withMsg.Category)
	assert.ErrorIs(t, withMsg, cause)

	assert.Nil(t, WrapWithMessage(nil, Runtime, "x"))
}

func TestFormatErrorPlain(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  *CLIError
		want string
	}{
		"message only": {
			err:  &CLIError{Category: Runtime, Message: "boom"},
			want: "Error [Runtime Error]: boom\n",
		},
		"cause shown when the message lacks it": {
			err: NotAGitRepository("/tmp/x", stderrors.New("repository does not exist")),
			want: "Error [Prerequisite Error]: /tmp/x is not inside a git repository\n" +
				"Caused by: repository does not exist\n" +
				"\nTo fix this:\n" +
				"  • Run relnotes from within the repository you want to release\n" +
				"  • Or initialize one with: git init\n",
		},
		"cause not repeated when the message has it": {
			err: WrapWithMessage(stderrors.New("401 Bad credentials"), Runtime, "publishing release v1.0.0"),
			want: "Error [Runtime Error]: publishing release v1.0.0: 401 Bad credentials\n",
		},
		"usage and remediation": {
			err: ConflictingProviderFlags(),
			want: "Error [Argument Error]: --github and --gitlab cannot be used together\n" +
				"\nUsage: relnotes [--github | --gitlab]\n" +
				"\nTo fix this:\n  • Pick the host of the repository's origin remote\n",
		},
		"nil": {
			err:  nil,
			want: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatErrorPlain(tt.err))
		})
	}
}

func TestMessages(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("can not parse GitHub repo from url git@gitlab.com:a/b.git")

	tests := map[string]struct {
		err          *CLIError
		wantCategory ErrorCategory
		wantMessage  string
	}{
		"repo not detected": {
			err:          RepoNotDetected(cause),
			wantCategory: Configuration,
			wantMessage:  cause.Error(),
		},
		"tag not found": {
			err:          TagNotFound("v1.0.0", "GitHub"),
			wantCategory: Prerequisite,
			wantMessage:  "tag v1.0.0 is not on GitHub yet, release skipped",
		},
		"missing token": {
			err:          MissingToken("GitLab", "GITLAB_TOKEN"),
			wantCategory: Prerequisite,
			wantMessage:  "no GitLab token found, release not published",
		},
		"invalid config": {
			err:          InvalidConfig(stderrors.New("types is required")),
			wantCategory: Configuration,
			wantMessage:  "invalid configuration: types is required",
		},
		"invalid set": {
			err:          InvalidSetAssignment("emoji", stderrors.New("missing '='")),
			wantCategory: Argument,
			wantMessage:  `invalid --set value "emoji": missing '='`,
		},
		"release failed": {
			err:          ReleaseFailed("v1.0.0", stderrors.New("401")),
			wantCategory: Runtime,
			wantMessage:  "publishing release v1.0.0: 401",
		},
		"not a repository": {
			err:          NotAGitRepository("/tmp/x", stderrors.New("repository does not exist")),
			wantCategory: Prerequisite,
			wantMessage:  "/tmp/x is not inside a git repository",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantCategory, tt.err.Category)
			assert.Equal(t, tt.wantMessage, tt.err.Message)
			assert.NotEmpty(t, tt.err.Remediation)
		})
	}

	assert.ErrorIs(t, RepoNotDetected(cause), cause)
}

func TestErrorCategory_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Argument Error", Argument.String())
	assert.Equal(t, "Configuration Error", Configuration.String())
	assert.Equal(t, "Prerequisite Error", Prerequisite.String())
	assert.Equal(t, "Runtime Error", Runtime.String())
	assert.Equal(t, "Error", ErrorCategory(99).String())
}
