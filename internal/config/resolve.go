package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/ariel-frischer/relnotes/internal/git"
)

// RemoteName is the remote whose URL identifies the repository.
const RemoteName = "origin"

// Resolved is a Configuration whose repository-derived fields (range, repo,
// provider hosts, token, prerelease) have all been filled in. It is built once
// per run by Resolve and not modified afterwards.
type Resolved struct {
	Configuration
}

// IsPrerelease reports whether the release should be marked as a prerelease.
func (r *Resolved) IsPrerelease() bool {
	return r.Prerelease != nil && *r.Prerelease
}

// ReleaseName returns the release title, defaulting to the tag.
func (r *Resolved) ReleaseName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.To
}

// Resolve completes cfg from the repository at repoPath and the environment.
// It fails when the origin remote cannot be mapped to the provider host, since
// no links or lookups are possible without the repository coordinates.
func Resolve(ctx context.Context, cfg *Configuration, repoPath string) (*Resolved, error) {
	if cfg == nil {
		return nil, errors.New("resolving config: nil configuration")
	}

	r := &Resolved{Configuration: *cfg}
	r.Types = slices.Clone(cfg.Types)
	r.ScopeMap = maps.Clone(cfg.ScopeMap)
	if r.Prerelease != nil {
		p := *r.Prerelease
		r.Prerelease = &p
	}

	applyProviderDefaults(&r.Configuration)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.To == "" {
		to, err := git.CurrentBranch(repoPath)
		if err != nil {
			return nil, fmt.Errorf("determining current branch: %w", err)
		}
		r.To = to
	}

	if r.From == "" {
		from, err := git.LastMatchingTag(repoPath, r.To)
		if err != nil {
			return nil, fmt.Errorf("finding previous tag: %w", err)
		}
		if from == "" {
			from, err = git.FirstCommit(repoPath)
			if err != nil {
				return nil, fmt.Errorf("finding first commit: %w", err)
			}
		}
		r.From = from
	}

	if r.Repo == "" {
		url, err := git.RemoteURL(repoPath, RemoteName)
		if err != nil {
			return nil, fmt.Errorf("reading repository remote: %w", err)
		}
		repo, err := git.ParseRepo(url, r.BaseURL)
		if err != nil {
			return nil, err
		}
		r.Repo = repo
	}

	if r.ReleaseRepo == "" {
		r.ReleaseRepo = r.Repo
	}

	if r.Prerelease == nil {
		p := git.IsPrerelease(r.To)
		r.Prerelease = &p
	}

	return r, nil
}

// applyProviderDefaults fills hosts and token for the selected provider.
func applyProviderDefaults(cfg *Configuration) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderGitHub
	}

	switch cfg.Provider {
	case ProviderGitLab:
		if cfg.Token == "" {
			cfg.Token = os.Getenv("GITLAB_TOKEN")
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "gitlab.com"
		}
		if cfg.BaseURLAPI == "" {
			cfg.BaseURLAPI = "gitlab.com/api/v4"
		}
	default:
		if cfg.Token == "" {
			cfg.Token = os.Getenv("GITHUB_TOKEN")
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = "github.com"
		}
		if cfg.BaseURLAPI == "" {
			cfg.BaseURLAPI = "api.github.com"
		}
	}

	cfg.BaseURL = git.HostOf(cfg.BaseURL)
}
