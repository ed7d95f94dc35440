package changelog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ariel-frischer/relnotes/internal/authors"
	"github.com/ariel-frischer/relnotes/internal/commit"
	"github.com/ariel-frischer/relnotes/internal/config"
	"github.com/ariel-frischer/relnotes/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	commits  []commit.RawCommit
	err      error
	from, to string
}

func (s *fakeSource) CommitsBetween(from, to string) ([]commit.RawCommit, error) {
	s.from, s.to = from, to
	return s.commits, s.err
}

type fakeProvider struct {
	users map[string]string
}

func (p *fakeProvider) LookupUser(_ context.Context, info commit.AuthorInfo) authors.Result {
	return authors.Resolved(p.users[info.Email], "")
}

func (p *fakeProvider) CreateOrUpdateRelease(context.Context, provider.ReleaseRequest) (string, bool, error) {
	return "", false, errors.New("not implemented")
}

func (p *fakeProvider) HasTag(context.Context, string) bool { return true }

func (p *fakeProvider) Links() provider.Linker { return testLinks }

func (p *fakeProvider) ManualReleaseURL(provider.ReleaseRequest) string { return "" }

func testConfig() *config.Resolved {
	return &config.Resolved{Configuration: config.Configuration{
		Types: []config.TypeTitle{
			{Type: "feat", Title: "🚀 Features"},
			{Type: "fix", Title: "🐞 Bug Fixes"},
			{Type: "perf", Title: "🏎 Performance"},
		},
		Titles:       config.Titles{BreakingChanges: "🚨 Breaking Changes", Contributors: "❤️ Contributors"},
		Contributors: true,
		Capitalize:   true,
		Group:        true,
		From:         "v0.0.1",
		To:           "v0.1.0",
		Repo:         "antfu/changelogithub",
	}}
}

const (
	hashBreaking = "e4044bc3b1d7ab5b2ac4af27e7b5f49dbdb19e0b"
	hashFeature  = "89282298a3d4e1f0c3ad7a1f6c2a83b7b4e6f0c1"
)

func fixtureCommits() []commit.RawCommit {
	return []commit.RawCommit{
		{
			Hash:    hashBreaking,
			Subject: "fix(cli)!: rename groupByScope to group",
			Author:  commit.Author{Name: "Anthony Fu", Email: "anthony@example.com"},
		},
		{
			Hash:    hashFeature,
			Subject: "feat: inline contributors (#12)",
			Author:  commit.Author{Name: "Enzo Innocenzi", Email: "enzo@example.com"},
		},
		{
			Hash:    "0000000aaaaaaa",
			Subject: "Merge branch 'main'",
			Author:  commit.Author{Name: "Anthony Fu", Email: "anthony@example.com"},
		},
		{
			Hash:    "1111111bbbbbbb",
			Subject: "docs: typo",
			Author:  commit.Author{Name: "Anthony Fu", Email: "anthony@example.com"},
		},
	}
}

func TestGenerator_Fixture(t *testing.T) {
	t.Parallel()

	src := &fakeSource{commits: fixtureCommits()}
	gen := &Generator{
		Source:   src,
		Provider: &fakeProvider{users: map[string]string{"anthony@example.com": "antfu"}},
	}

	cfg := testConfig()
	cfg.DuplicateBreaking = false

	res, err := gen.Generate(context.Background(), cfg)
	require.NoError(t, err)

	want := strings.Join([]string{
		"### &nbsp;&nbsp;&nbsp;Breaking Changes",
		"",
		"- **cli**: Rename groupByScope to group &nbsp;-&nbsp; by @antfu [<samp>(e4044)</samp>](https://github.com/antfu/changelogithub/commit/" + hashBreaking + ")",
		"",
		"### &nbsp;&nbsp;&nbsp;Features",
		"",
		"- Inline contributors &nbsp;-&nbsp; by **Enzo Innocenzi** in https://github.com/antfu/changelogithub/issues/12 [<samp>(89282)</samp>](https://github.com/antfu/changelogithub/commit/" + hashFeature + ")",
		"",
		"##### &nbsp;&nbsp;&nbsp;&nbsp;[View changes on GitHub](https://github.com/antfu/changelogithub/compare/v0.0.1...v0.1.0)",
	}, "\n")
	assert.Equal(t, want, res.Markdown)

	assert.Equal(t, "v0.0.1", src.from)
	assert.Equal(t, "v0.1.0", src.to)
	assert.Len(t, res.Commits, 3, "merge commit is filtered, docs commit is parsed")
	assert.NotContains(t, res.Markdown, "Bug Fixes")
	assert.NotContains(t, res.Markdown, "typo")
	assert.Same(t, cfg, res.Config)
	require.Len(t, res.Contributors, 2)
	assert.Equal(t, "Enzo Innocenzi", res.Contributors[0].Name)
	assert.Equal(t, "antfu", res.Contributors[1].Login)
}

func TestGenerator_DualPlacement(t *testing.T) {
	t.Parallel()

	gen := &Generator{Source: &fakeSource{commits: fixtureCommits()}}
	cfg := testConfig()
	cfg.DuplicateBreaking = true

	res, err := gen.Generate(context.Background(), cfg)
	require.NoError(t, err)

	require.Equal(t, []string{"🚨 Breaking Changes", "🚀 Features", "🐞 Bug Fixes"}, titles(res.Document.Sections))
	assert.Same(t, res.Document.Sections[0].Entries[0], res.Document.Sections[2].Entries[0])
	assert.Contains(t, res.Markdown, "### &nbsp;&nbsp;&nbsp;Bug Fixes\n\n- **cli**: Rename groupByScope to group")
}

func TestGenerator_SameUserCollapses(t *testing.T) {
	t.Parallel()

	gen := &Generator{
		Source: &fakeSource{commits: []commit.RawCommit{
			{Hash: "aaaaaaa1", Subject: "feat: one", Author: commit.Author{Name: "A", Email: "a@x.com"}},
			{Hash: "bbbbbbb2", Subject: "fix: two", Author: commit.Author{Name: "B", Email: "b@x.com"}},
		}},
		Provider: &fakeProvider{users: map[string]string{"a@x.com": "same-user", "b@x.com": "same-user"}},
	}

	res, err := gen.Generate(context.Background(), testConfig())
	require.NoError(t, err)

	require.Len(t, res.Contributors, 1)
	assert.Equal(t, "same-user", res.Contributors[0].Login)
	assert.Equal(t, []string{"aaaaa", "bbbbb"}, res.Contributors[0].Commits)
	assert.Equal(t, 2, strings.Count(res.Markdown, "by @same-user"))
}

func TestGenerator_AuthorWithoutEmail(t *testing.T) {
	t.Parallel()

	gen := &Generator{Source: &fakeSource{commits: []commit.RawCommit{
		{Hash: "aaaaaaa1", Subject: "feat: anonymous", Author: commit.Author{Name: "Ghost"}},
	}}}

	res, err := gen.Generate(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Empty(t, res.Contributors)
	assert.Contains(t, res.Markdown, "- Anonymous &nbsp;-&nbsp; aaaaaaa1")
	assert.NotContains(t, res.Markdown, "Ghost")
	assert.NotContains(t, res.Markdown, "View changes", "no compare link without a provider")
}

func TestGenerator_ContributorsDisabled(t *testing.T) {
	t.Parallel()

	gen := &Generator{
		Source:   &fakeSource{commits: fixtureCommits()},
		Provider: &fakeProvider{users: map[string]string{"anthony@example.com": "antfu"}},
	}
	cfg := testConfig()
	cfg.Contributors = false

	res, err := gen.Generate(context.Background(), cfg)
	require.NoError(t, err)

	assert.Nil(t, res.Contributors)
	assert.NotContains(t, res.Markdown, "by ")
}

func TestGenerator_ContributorsSection(t *testing.T) {
	t.Parallel()

	gen := &Generator{
		Source:   &fakeSource{commits: fixtureCommits()},
		Provider: &fakeProvider{users: map[string]string{"anthony@example.com": "antfu"}},
	}
	cfg := testConfig()
	cfg.ContributorsSection = true
	cfg.Emoji = true

	res, err := gen.Generate(context.Background(), cfg)
	require.NoError(t, err)

	assert.Contains(t, res.Markdown, "### &nbsp;&nbsp;&nbsp;❤️ Contributors\n\n- **Enzo Innocenzi**\n- @antfu")
}

func TestGenerator_ScopeMap(t *testing.T) {
	t.Parallel()

	gen := &Generator{Source: &fakeSource{commits: []commit.RawCommit{
		{Hash: "1111111", Subject: "feat(fe): a", Author: commit.Author{Name: "A", Email: "a@x.com"}},
		{Hash: "2222222", Subject: "feat(frontend): b", Author: commit.Author{Name: "A", Email: "a@x.com"}},
	}}}
	cfg := testConfig()
	cfg.ScopeMap = map[string]string{"fe": "frontend"}

	res, err := gen.Generate(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, res.Document.Sections, 1)
	require.Len(t, res.Document.Sections[0].Scopes, 1)
	assert.Equal(t, "frontend", res.Document.Sections[0].Scopes[0].Scope)
}

func TestGenerator_NoChanges(t *testing.T) {
	t.Parallel()

	gen := &Generator{
		Source:   &fakeSource{},
		Provider: &fakeProvider{},
	}

	res, err := gen.Generate(context.Background(), testConfig())
	require.NoError(t, err)
	assert.True(t, res.Document.IsEmpty())
	assert.True(t, strings.HasPrefix(res.Markdown, NoChanges))
	assert.Contains(t, res.Markdown, "compare/v0.0.1...v0.1.0")
}

func TestGenerator_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		gen     *Generator
		wantErr string
	}{
		"source failure": {
			gen:     &Generator{Source: &fakeSource{err: errors.New("bad revision")}},
			wantErr: "reading commits v0.0.1...v0.1.0: bad revision",
		},
		"no source": {
			gen:     &Generator{},
			wantErr: "no commit source",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.gen.Generate(context.Background(), testConfig())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
