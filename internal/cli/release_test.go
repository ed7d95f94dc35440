// Package cli tests the release flow end to end against a fixture repository.
// Related: internal/cli/release.go
// Tags: cli, release, github, integration

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ariel-frischer/relnotes/internal/progress"
	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	refV010    = `=~^https://api\.github\.com/repos/antfu/changelogithub/git/refs?/tags/v0\.1\.0$`
	searchUser = `=~^https://api\.github\.com/search/users`
	commitByID = `=~^https://api\.github\.com/repos/antfu/changelogithub/commits/`
	releaseTag = "https://api.github.com/repos/antfu/changelogithub/releases/tags/v0.1.0"
	releases   = "https://api.github.com/repos/antfu/changelogithub/releases"
)

// fixture is a repository with two tags and a GitHub origin:
// v0.0.1 on the initial commit and v0.1.0 after a feature and a breaking fix.
type fixture struct {
	dir      string
	feature  string
	breaking string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:antfu/changelogithub.git"},
	})
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	commit := func(message, name, email string) string {
		clock = clock.Add(time.Minute)
		file := filepath.Join(dir, "file.txt")
		require.NoError(t, os.WriteFile(file, []byte(message), 0o644))
		_, err := wt.Add("file.txt")
		require.NoError(t, err)

		sig := &object.Signature{Name: name, Email: email, When: clock}
		hash, err := wt.Commit(message, &gogit.CommitOptions{Author: sig, Committer: sig})
		require.NoError(t, err)
		return hash.String()
	}
	tag := func(name, hash string) {
		_, err := repo.CreateTag(name, plumbing.NewHash(hash), nil)
		require.NoError(t, err)
	}

	tag("v0.0.1", commit("chore: init", "Anthony Fu", "anthony@example.com"))
	f := fixture{dir: dir}
	f.feature = commit("feat: inline contributors (#12)", "Enzo Innocenzi", "enzo@example.com")
	f.breaking = commit("fix(cli)!: rename groupByScope to group", "Anthony Fu", "anthony@example.com")
	tag("v0.1.0", f.breaking)

	return f
}

// markdown is what the fixture renders with emoji off and breaking commits
// listed only under the breaking section.
func (f fixture) markdown() string {
	return strings.Join([]string{
		"### &nbsp;&nbsp;&nbsp;Breaking Changes",
		"",
		"- **cli**: Rename groupByScope to group &nbsp;-&nbsp; by @antfu [<samp>(" + f.breaking[:5] + ")</samp>](https://github.com/antfu/changelogithub/commit/" + f.breaking + ")",
		"",
		"### &nbsp;&nbsp;&nbsp;Features",
		"",
		"- Inline contributors &nbsp;-&nbsp; by **Enzo Innocenzi** in https://github.com/antfu/changelogithub/issues/12 [<samp>(" + f.feature[:5] + ")</samp>](https://github.com/antfu/changelogithub/commit/" + f.feature + ")",
		"",
		"##### &nbsp;&nbsp;&nbsp;&nbsp;[View changes on GitHub](https://github.com/antfu/changelogithub/compare/v0.0.1...v0.1.0)",
	}, "\n")
}

// fixtureArgs pins the range and the rendering options the fixture markdown expects.
var fixtureArgs = []string{"--to", "v0.1.0", "--emoji=false", "--set", "duplicate_breaking=false"}

func testEnv(dir string, mock *httpmock.MockTransport) *env {
	return &env{
		dir:            dir,
		httpClient:     &http.Client{Transport: mock},
		caps:           progress.TerminalCapabilities{Width: 80},
		skipUserConfig: true,
	}
}

func runCLI(e *env, args ...string) (string, string, error) {
	rc := newRootCommand(e)
	var out, errOut bytes.Buffer
	rc.cmd.SetOut(&out)
	rc.cmd.SetErr(&errOut)
	rc.cmd.SetArgs(args)

	err := rc.cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// registerAuthors answers user search for anthony only, so Enzo falls back
// to a commit lookup that fails.
func registerAuthors(mock *httpmock.MockTransport) {
	mock.RegisterResponder("GET", searchUser, func(req *http.Request) (*http.Response, error) {
		if strings.Contains(req.URL.Query().Get("q"), "anthony@example.com") {
			return httpmock.NewJsonResponse(200, map[string]any{
				"total_count": 1,
				"items":       []map[string]any{{"login": "antfu"}},
			})
		}
		return httpmock.NewJsonResponse(200, map[string]any{"total_count": 0, "items": []any{}})
	})
	mock.RegisterResponder("GET", commitByID, httpmock.NewStringResponder(404, `{"message":"Not Found"}`))
}

func TestRelease_DryRun(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mock := httpmock.NewMockTransport()
	registerAuthors(mock)

	args := append([]string{"--dry", "--token", "t0ken"}, fixtureArgs...)
	out, errOut, err := runCLI(testEnv(f.dir, mock), args...)
	require.NoError(t, err)

	assert.Contains(t, errOut, "[OK] Generated release notes\n")
	assert.Contains(t, out, "v0.0.1 -> v0.1.0 (2 commits)")
	assert.Contains(t, out, f.markdown())
	assert.Contains(t, out, "Dry run, release skipped.")
	assert.Zero(t, mock.GetCallCountInfo()["POST "+releases])
}

func TestRelease_Publish(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		existing    bool
		wantMessage string
	}{
		"creates a new release": {
			wantMessage: "Released on https://github.com/antfu/changelogithub/releases/tag/v0.1.0",
		},
		"updates an existing release": {
			existing:    true,
			wantMessage: "Updated release on https://github.com/antfu/changelogithub/releases/tag/v0.1.0",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			mock := httpmock.NewMockTransport()
			registerAuthors(mock)
			mock.RegisterResponder("GET", refV010,
				httpmock.NewJsonResponderOrPanic(200, map[string]any{
					"ref":    "refs/tags/v0.1.0",
					"object": map[string]any{"sha": f.breaking, "type": "commit"},
				}))

			var body map[string]any
			capture := func(status int) httpmock.Responder {
				return func(req *http.Request) (*http.Response, error) {
					if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
						return nil, err
					}
					return httpmock.NewJsonResponse(status, map[string]any{
						"id":       7,
						"html_url": "https://github.com/antfu/changelogithub/releases/tag/v0.1.0",
					})
				}
			}

			if tt.existing {
				mock.RegisterResponder("GET", releaseTag, httpmock.NewJsonResponderOrPanic(200, map[string]any{"id": 7}))
				mock.RegisterResponder("PATCH", releases+"/7", capture(200))
			} else {
				mock.RegisterResponder("GET", releaseTag, httpmock.NewStringResponder(404, `{"message":"Not Found"}`))
				mock.RegisterResponder("POST", releases, capture(201))
			}

			args := append([]string{"--token", "t0ken"}, fixtureArgs...)
			out, _, err := runCLI(testEnv(f.dir, mock), args...)
			require.NoError(t, err)

			assert.Contains(t, out, "Creating release notes...")
			assert.Contains(t, out, tt.wantMessage)
			require.NotNil(t, body)
			assert.Equal(t, "v0.1.0", body["tag_name"])
			assert.Equal(t, "v0.1.0", body["name"])
			assert.Equal(t, f.markdown(), body["body"])
			assert.Equal(t, false, body["prerelease"])
			assert.Equal(t, false, body["draft"])
		})
	}
}

func TestRelease_TagMissing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mock := httpmock.NewMockTransport()
	registerAuthors(mock)
	mock.RegisterResponder("GET", refV010, httpmock.NewStringResponder(404, `{"message":"Not Found"}`))

	args := append([]string{"--token", "t0ken"}, fixtureArgs...)
	out, _, err := runCLI(testEnv(f.dir, mock), args...)
	require.Error(t, err)

	assert.Equal(t, ExitValidationFailed, ExitCode(err))
	assert.Contains(t, out, `Current ref "v0.1.0" is not available as a tag on GitHub`)
	assert.Zero(t, mock.GetCallCountInfo()["POST "+releases])
}

func TestRelease_MissingToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	f := newFixture(t)
	mock := httpmock.NewMockTransport()

	out, _, err := runCLI(testEnv(f.dir, mock), fixtureArgs...)
	require.Error(t, err)

	assert.Equal(t, ExitMissingDependencies, ExitCode(err))
	assert.Contains(t, out, "https://github.com/antfu/changelogithub/releases/new?")
	assert.Contains(t, out, "tag=v0.1.0")
	assert.Contains(t, out, "by **Anthony Fu**", "no token means no user lookups")
	assert.Zero(t, mock.GetTotalCallCount())
}

func TestRelease_WritesOutputFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mock := httpmock.NewMockTransport()
	registerAuthors(mock)

	args := append([]string{"--dry", "--token", "t0ken", "-o", "CHANGELOG.md"}, fixtureArgs...)
	out, _, err := runCLI(testEnv(f.dir, mock), args...)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(f.dir, "CHANGELOG.md"))
	require.NoError(t, err)
	assert.Equal(t, f.markdown()+"\n", string(data))
	assert.Contains(t, out, "Saved to ")
}

func TestRelease_VerboseSummary(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	mock := httpmock.NewMockTransport()
	registerAuthors(mock)

	args := append([]string{"--dry", "--token", "t0ken", "--verbose"}, fixtureArgs...)
	_, errOut, err := runCLI(testEnv(f.dir, mock), args...)
	require.NoError(t, err)

	assert.Contains(t, errOut, f.breaking[:5])
	assert.Contains(t, errOut, "rename groupByScope to group")
	assert.Contains(t, errOut, "Resolved release")
}

func TestRelease_Failures(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		dir      func(t *testing.T) string
		args     []string
		wantCode int
		wantErr  string
	}{
		"gitlab against a github remote": {
			dir:      func(t *testing.T) string { return newFixture(t).dir },
			args:     []string{"--dry", "--gitlab", "--to", "v0.1.0"},
			wantCode: ExitInvalidArguments,
			wantErr:  "can not parse gitlab.com repo",
		},
		"conflicting provider flags": {
			dir:      func(t *testing.T) string { return newFixture(t).dir },
			args:     []string{"--dry", "--github", "--gitlab"},
			wantCode: ExitInvalidArguments,
			wantErr:  "cannot be used together",
		},
		"unknown --set key": {
			dir:      func(t *testing.T) string { return newFixture(t).dir },
			args:     []string{"--dry", "--set", "nope=1"},
			wantCode: ExitInvalidArguments,
			wantErr:  "unknown configuration key",
		},
		"invalid --set value": {
			dir:      func(t *testing.T) string { return newFixture(t).dir },
			args:     []string{"--dry", "--set", "provider=bitbucket"},
			wantCode: ExitInvalidArguments,
			wantErr:  "provider",
		},
		"not a repository": {
			dir:      func(t *testing.T) string { return t.TempDir() },
			args:     []string{"--dry"},
			wantCode: ExitMissingDependencies,
			wantErr:  "is not inside a git repository",
		},
		"unknown ref": {
			dir:      func(t *testing.T) string { return newFixture(t).dir },
			args:     []string{"--dry", "--to", "v9.9.9"},
			wantCode: ExitValidationFailed,
			wantErr:  "generating release notes",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := runCLI(testEnv(tt.dir(t), httpmock.NewMockTransport()), tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ExitCode(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildOverrides(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		args    []string
		want    map[string]any
		wantErr bool
	}{
		"nothing set": {
			want: map[string]any{},
		},
		"set assignment": {
			args: []string{"--set", "emoji=false", "--set", "titles.contributors=Thanks"},
			want: map[string]any{"emoji": false, "titles.contributors": "Thanks"},
		},
		"flag wins over set": {
			args: []string{"--set", "name=from-set", "--name", "from-flag"},
			want: map[string]any{"name": "from-flag"},
		},
		"explicit false is kept": {
			args: []string{"--prerelease=false", "--contributors=false"},
			want: map[string]any{"prerelease": false, "contributors": false},
		},
		"range flags": {
			args: []string{"--from", "v1.0.0", "--to", "v1.1.0"},
			want: map[string]any{"from": "v1.0.0", "to": "v1.1.0"},
		},
		"github shorthand": {
			args: []string{"--github"},
			want: map[string]any{"provider": "github"},
		},
		"gitlab shorthand beats --provider": {
			args: []string{"--provider", "github", "--gitlab"},
			want: map[string]any{"provider": "gitlab"},
		},
		"both shorthands": {
			args:    []string{"--github", "--gitlab"},
			wantErr: true,
		},
		"malformed set": {
			args:    []string{"--set", "emoji"},
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rc := newRootCommand(testEnv("", httpmock.NewMockTransport()))
			require.NoError(t, rc.cmd.ParseFlags(tt.args))

			got, err := rc.buildOverrides()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ExitInvalidArguments, ExitCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaskToken(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		token string
		want  string
	}{
		"empty": {token: "", want: ""},
		"short": {token: "abc", want: "****"},
		"long":  {token: "ghp_secret1234", want: "****1234"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, maskToken(tt.token))
		})
	}
}
