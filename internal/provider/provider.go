// Package provider talks to the service hosting the repository. It resolves
// commit authors to account handles, builds commit, issue and compare links,
// and publishes releases. GitHub and GitLab are supported; the variant is
// chosen once from the resolved configuration.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ariel-frischer/relnotes/internal/authors"
	"github.com/ariel-frischer/relnotes/internal/config"
	"github.com/sirupsen/logrus"
)

// ReleaseRequest describes the release to create or update.
type ReleaseRequest struct {
	Tag        string
	Name       string
	Body       string
	Draft      bool
	Prerelease bool
}

// Title returns the release name, defaulting to the tag.
func (r ReleaseRequest) Title() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Tag
}

// Provider is the capability the pipeline needs from a hosting service.
type Provider interface {
	authors.Lookup

	// CreateOrUpdateRelease publishes req.Body for req.Tag, editing the
	// existing release in place when there is one. It returns the release
	// page URL and whether a new release was created.
	CreateOrUpdateRelease(ctx context.Context, req ReleaseRequest) (url string, created bool, err error)

	// HasTag reports whether the tag exists on the host. Any failure counts as absent.
	HasTag(ctx context.Context, tag string) bool

	// Links builds web URLs for the repository.
	Links() Linker

	// ManualReleaseURL returns a link that opens a prefilled release form,
	// for use when no API token is available.
	ManualReleaseURL(req ReleaseRequest) string
}

// Option configures a provider built by New.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *logrus.Logger
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New returns the provider selected by cfg.Provider.
func New(cfg *config.Resolved, opts ...Option) (Provider, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = http.DefaultClient
	}
	if o.logger == nil {
		o.logger = logrus.New()
		o.logger.SetOutput(io.Discard)
	}

	switch cfg.Provider {
	case config.ProviderGitHub, "":
		return NewGitHub(cfg, o.httpClient, o.logger)
	case config.ProviderGitLab:
		return NewGitLab(cfg, o.httpClient, o.logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// apiURL turns a configured API host (with or without scheme) into a base URL
// with a trailing slash.
func apiURL(host string) string {
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return strings.TrimRight(host, "/") + "/"
}

// splitRepo splits "owner/name". Nested GitLab groups stay in the owner part.
func splitRepo(repo string) (owner, name string) {
	i := strings.LastIndex(repo, "/")
	if i < 0 {
		return "", repo
	}
	return repo[:i], repo[i+1:]
}
