package changelog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ariel-frischer/relnotes/internal/authors"
	"github.com/ariel-frischer/relnotes/internal/commit"
	"github.com/ariel-frischer/relnotes/internal/config"
	"github.com/ariel-frischer/relnotes/internal/git"
	"github.com/ariel-frischer/relnotes/internal/provider"
	"github.com/sirupsen/logrus"
)

// CommitSource returns the raw commits reachable from to and not from from,
// newest first.
type CommitSource interface {
	CommitsBetween(from, to string) ([]commit.RawCommit, error)
}

// GitSource reads commits from the repository at Path.
type GitSource struct {
	Path string
}

// CommitsBetween implements CommitSource.
func (s GitSource) CommitsBetween(from, to string) ([]commit.RawCommit, error) {
	return git.CommitsBetween(s.Path, from, to)
}

// Generator runs the release notes pipeline: read, parse, resolve authors,
// group and render.
type Generator struct {
	Source CommitSource
	// Provider resolves authors and builds links. When nil, authors stay
	// unresolved and references render as plain text.
	Provider provider.Provider
	Logger   *logrus.Logger
}

// Result is the outcome of one Generate run.
type Result struct {
	Config       *config.Resolved
	Markdown     string
	Commits      []*commit.Commit
	Contributors []*commit.AuthorInfo
	Document     Document
}

// Generate builds the release notes for cfg.From..cfg.To.
func (g *Generator) Generate(ctx context.Context, cfg *config.Resolved) (*Result, error) {
	if g.Source == nil {
		return nil, errors.New("generating release notes: no commit source")
	}
	logger := g.logger()

	raws, err := g.Source.CommitsBetween(cfg.From, cfg.To)
	if err != nil {
		return nil, fmt.Errorf("reading commits %s...%s: %w", cfg.From, cfg.To, err)
	}

	commits := commit.ParseAll(raws, commit.ParseOptions{ScopeMap: cfg.ScopeMap})
	logger.WithFields(logrus.Fields{
		"from":   cfg.From,
		"to":     cfg.To,
		"raw":    len(raws),
		"parsed": len(commits),
	}).Debug("Parsed commits")

	var contributors []*commit.AuthorInfo
	if cfg.Contributors {
		var lookup authors.Lookup
		if g.Provider != nil {
			lookup = g.Provider
		}
		contributors = authors.NewResolver(lookup, logger).Resolve(ctx, commits)
	}

	doc := Document{
		Sections: Group(commits, GroupOptions{
			Table:             SectionTable(cfg.Types),
			BreakingTitle:     cfg.Titles.BreakingChanges,
			Group:             cfg.Group,
			DuplicateBreaking: cfg.DuplicateBreaking,
		}),
		Contributors: contributors,
	}

	opts := RenderOptions{
		Capitalize:  cfg.Capitalize,
		Emoji:       cfg.Emoji,
		Authors:     cfg.Contributors,
		CommitLinks: true,
	}
	if g.Provider != nil {
		opts.Links = g.Provider.Links()
		if cfg.From != "" && cfg.To != "" {
			doc.CompareURL = opts.Links.Compare(cfg.From, cfg.To)
		}
	}
	if cfg.ContributorsSection {
		opts.ContributorsTitle = cfg.Titles.Contributors
	}

	md, err := RenderMarkdownString(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("rendering release notes: %w", err)
	}

	return &Result{
		Config:       cfg,
		Markdown:     md,
		Commits:      commits,
		Contributors: contributors,
		Document:     doc,
	}, nil
}

func (g *Generator) logger() *logrus.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
