package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ariel-frischer/relnotes/internal/authors"
	"github.com/ariel-frischer/relnotes/internal/commit"
	"github.com/ariel-frischer/relnotes/internal/config"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

// GitHub implements Provider with the GitHub REST API.
type GitHub struct {
	client      *github.Client
	token       string
	repo        string
	releaseRepo string
	links       RepoLinks
	logger      *logrus.Logger
}

// NewGitHub creates a GitHub provider. A non-default API host (GitHub
// Enterprise or a proxy) replaces the client's base URL.
func NewGitHub(cfg *config.Resolved, httpClient *http.Client, logger *logrus.Logger) (*GitHub, error) {
	client := github.NewClient(httpClient)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}

	if cfg.BaseURLAPI != "" {
		base, err := url.Parse(apiURL(cfg.BaseURLAPI))
		if err != nil {
			return nil, fmt.Errorf("parsing API URL %q: %w", cfg.BaseURLAPI, err)
		}
		client.BaseURL = base
	}

	return &GitHub{
		client:      client,
		token:       cfg.Token,
		repo:        cfg.Repo,
		releaseRepo: cfg.ReleaseRepo,
		links:       RepoLinks{Name: "GitHub", BaseURL: cfg.BaseURL, Repo: cfg.Repo},
		logger:      logger,
	}, nil
}

// LookupUser finds the account behind an author email. It searches users by
// email first and falls back to the author of the contributor's first
// commit. Any failure leaves the author unresolved.
func (g *GitHub) LookupUser(ctx context.Context, info commit.AuthorInfo) authors.Result {
	if g.token == "" {
		return authors.Unresolved
	}

	log := g.logger.WithField("email", info.Email)

	users, _, err := g.client.Search.Users(ctx, info.Email, nil)
	switch {
	case err != nil:
		log.WithError(err).Debug("GitHub user search failed")
	case len(users.Users) > 0 && users.Users[0].GetLogin() != "":
		user := users.Users[0]
		return authors.Resolved(user.GetLogin(), user.GetAvatarURL())
	}

	if len(info.Commits) == 0 {
		return authors.Unresolved
	}

	owner, name := splitRepo(g.repo)
	rc, _, err := g.client.Repositories.GetCommit(ctx, owner, name, info.Commits[0], nil)
	if err != nil {
		log.WithError(err).WithField("commit", info.Commits[0]).Debug("GitHub commit lookup failed")
		return authors.Unresolved
	}
	if login := rc.GetAuthor().GetLogin(); login != "" {
		return authors.Resolved(login, rc.GetAuthor().GetAvatarURL())
	}
	return authors.Unresolved
}

// CreateOrUpdateRelease edits the release for req.Tag when it exists and
// creates it otherwise.
func (g *GitHub) CreateOrUpdateRelease(ctx context.Context, req ReleaseRequest) (string, bool, error) {
	owner, name := splitRepo(g.releaseRepo)
	release := &github.RepositoryRelease{
		TagName:    github.String(req.Tag),
		Name:       github.String(req.Title()),
		Body:       github.String(req.Body),
		Draft:      github.Bool(req.Draft),
		Prerelease: github.Bool(req.Prerelease),
	}

	existing, _, err := g.client.Repositories.GetReleaseByTag(ctx, owner, name, req.Tag)
	switch {
	case err == nil:
		g.logger.WithFields(logrus.Fields{"tag": req.Tag, "id": existing.GetID()}).Debug("Updating existing release")
		updated, _, err := g.client.Repositories.EditRelease(ctx, owner, name, existing.GetID(), release)
		if err != nil {
			return "", false, fmt.Errorf("updating release %s: %w", req.Tag, err)
		}
		return updated.GetHTMLURL(), false, nil
	case isNotFound(err):
		g.logger.WithField("tag", req.Tag).Debug("No release for tag yet")
	default:
		return "", false, fmt.Errorf("checking release %s: %w", req.Tag, err)
	}

	created, _, err := g.client.Repositories.CreateRelease(ctx, owner, name, release)
	if err != nil {
		return "", false, fmt.Errorf("creating release %s: %w", req.Tag, err)
	}
	return created.GetHTMLURL(), true, nil
}

// HasTag reports whether refs/tags/<tag> exists in the repository.
func (g *GitHub) HasTag(ctx context.Context, tag string) bool {
	owner, name := splitRepo(g.repo)
	_, _, err := g.client.Git.GetRef(ctx, owner, name, "tags/"+tag)
	if err != nil {
		g.logger.WithError(err).WithField("tag", tag).Debug("Tag not found on GitHub")
		return false
	}
	return true
}

// Links returns the repository link builder.
func (g *GitHub) Links() Linker {
	return g.links
}

// ManualReleaseURL returns the "new release" page prefilled with req.
func (g *GitHub) ManualReleaseURL(req ReleaseRequest) string {
	q := url.Values{}
	q.Set("title", req.Title())
	q.Set("body", req.Body)
	q.Set("tag", req.Tag)
	q.Set("prerelease", strconv.FormatBool(req.Prerelease))

	links := g.links
	links.Repo = g.releaseRepo
	return links.Web() + "/releases/new?" + q.Encode()
}

func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}
