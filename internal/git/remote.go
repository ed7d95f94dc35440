package git

import (
	"fmt"
	"regexp"
	"strings"
)

// RepoParseError is returned when a remote URL cannot be mapped to an
// owner/name pair on the configured host. Nothing host-specific can run
// without it, so callers treat it as fatal.
type RepoParseError struct {
	URL  string
	Host string
}

func (e *RepoParseError) Error() string {
	return fmt.Sprintf("can not parse %s repo from url %s", e.Host, e.URL)
}

// RemoteURL returns the first configured URL of the named remote.
func RemoteURL(path, name string) (string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return "", err
	}

	remote, err := repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("getting remote %q: %w", name, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no URL", name)
	}

	logDebug("[git] RemoteURL %s: %s", name, urls[0])
	return urls[0], nil
}

// ParseRepo extracts "owner/name" from an SSH or HTTPS remote on host.
// Nested GitLab groups are kept in the owner part ("group/sub/name").
func ParseRepo(remoteURL, host string) (string, error) {
	host = HostOf(host)
	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(host) + `[/:]([\w.\-/]+?)/([\w.\-]+?)(?:\.git)?/?$`)

	match := pattern.FindStringSubmatch(strings.TrimSpace(remoteURL))
	if match == nil {
		return "", &RepoParseError{URL: remoteURL, Host: host}
	}
	return match[1] + "/" + match[2], nil
}

// HostOf strips the scheme and any trailing slash from a base URL,
// so "https://github.com/" and "github.com" both yield "github.com".
func HostOf(baseURL string) string {
	host := baseURL
	if _, rest, ok := strings.Cut(host, "://"); ok {
		host = rest
	}
	return strings.TrimRight(host, "/")
}
