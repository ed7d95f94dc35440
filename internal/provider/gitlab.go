package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ariel-frischer/relnotes/internal/authors"
	"github.com/ariel-frischer/relnotes/internal/commit"
	"github.com/ariel-frischer/relnotes/internal/config"
	"github.com/sirupsen/logrus"
	gitlab "gitlab.com/gitlab-org/api/client-go"
	"golang.org/x/time/rate"
)

// GitLab implements Provider with the GitLab v4 REST API.
type GitLab struct {
	client      *gitlab.Client
	token       string
	repo        string
	releaseRepo string
	links       RepoLinks
	logger      *logrus.Logger
}

// NewGitLab creates a GitLab provider. The client makes one attempt per call
// and never waits on a rate limiter, so a failed lookup degrades to an
// unresolved author instead of stalling the run.
func NewGitLab(cfg *config.Resolved, httpClient *http.Client, logger *logrus.Logger) (*GitLab, error) {
	client, err := gitlab.NewClient(cfg.Token,
		gitlab.WithBaseURL(apiURL(cfg.BaseURLAPI)),
		gitlab.WithHTTPClient(httpClient),
		gitlab.WithoutRetries(),
		gitlab.WithCustomLimiter(rate.NewLimiter(rate.Inf, 0)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client for %q: %w", cfg.BaseURLAPI, err)
	}

	return &GitLab{
		client:      client,
		token:       cfg.Token,
		repo:        cfg.Repo,
		releaseRepo: cfg.ReleaseRepo,
		links:       RepoLinks{Name: "GitLab", BaseURL: cfg.BaseURL, Repo: cfg.Repo, Prefix: "/-"},
		logger:      logger,
	}, nil
}

// LookupUser searches users by email and takes the first match.
func (g *GitLab) LookupUser(ctx context.Context, info commit.AuthorInfo) authors.Result {
	if g.token == "" {
		return authors.Unresolved
	}

	opts := &gitlab.ListUsersOptions{Search: gitlab.Ptr(info.Email)}
	users, _, err := g.client.Users.ListUsers(opts, gitlab.WithContext(ctx))
	if err != nil {
		g.logger.WithError(err).WithField("email", info.Email).Debug("GitLab user search failed")
		return authors.Unresolved
	}
	if len(users) == 0 || users[0].Username == "" {
		return authors.Unresolved
	}
	return authors.Resolved(users[0].Username, users[0].AvatarURL)
}

// CreateOrUpdateRelease updates the release for req.Tag when it exists and
// creates it otherwise. GitLab has no draft or prerelease flags, so those
// fields of req are not sent.
func (g *GitLab) CreateOrUpdateRelease(ctx context.Context, req ReleaseRequest) (string, bool, error) {
	log := g.logger.WithField("tag", req.Tag)
	if req.Draft || req.Prerelease {
		log.Debug("GitLab releases do not support draft or prerelease")
	}

	_, resp, err := g.client.Releases.GetRelease(g.releaseRepo, req.Tag, gitlab.WithContext(ctx))
	switch {
	case err == nil:
		updated, _, err := g.client.Releases.UpdateRelease(g.releaseRepo, req.Tag, &gitlab.UpdateReleaseOptions{
			Name:        gitlab.Ptr(req.Title()),
			Description: gitlab.Ptr(req.Body),
		}, gitlab.WithContext(ctx))
		if err != nil {
			return "", false, fmt.Errorf("updating release %s: %w", req.Tag, err)
		}
		return g.releaseURL(updated, req.Tag), false, nil
	case notFound(resp):
		log.Debug("No release for tag yet")
	default:
		return "", false, fmt.Errorf("checking release %s: %w", req.Tag, err)
	}

	created, _, err := g.client.Releases.CreateRelease(g.releaseRepo, &gitlab.CreateReleaseOptions{
		TagName:     gitlab.Ptr(req.Tag),
		Name:        gitlab.Ptr(req.Title()),
		Description: gitlab.Ptr(req.Body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return "", false, fmt.Errorf("creating release %s: %w", req.Tag, err)
	}
	return g.releaseURL(created, req.Tag), true, nil
}

// HasTag reports whether the tag exists in the project.
func (g *GitLab) HasTag(ctx context.Context, tag string) bool {
	if _, _, err := g.client.Tags.GetTag(g.repo, tag, gitlab.WithContext(ctx)); err != nil {
		g.logger.WithError(err).WithField("tag", tag).Debug("Tag not found on GitLab")
		return false
	}
	return true
}

// Links returns the repository link builder.
func (g *GitLab) Links() Linker {
	return g.links
}

// ManualReleaseURL returns the "new release" page for the tag.
func (g *GitLab) ManualReleaseURL(req ReleaseRequest) string {
	links := g.links
	links.Repo = g.releaseRepo
	return links.Web() + "/-/releases/new?tag_name=" + url.QueryEscape(req.Tag)
}

// releaseURL prefers the page link the API returned and builds one from the
// repository otherwise.
func (g *GitLab) releaseURL(r *gitlab.Release, tag string) string {
	if r != nil && r.Links.Self != "" {
		return r.Links.Self
	}
	links := g.links
	links.Repo = g.releaseRepo
	return links.Web() + "/-/releases/" + url.PathEscape(tag)
}

func notFound(resp *gitlab.Response) bool {
	return resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound
}
