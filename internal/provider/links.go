package provider

import (
	"fmt"
	"strings"
)

// Linker builds web URLs for commits, issues and ref comparisons.
type Linker interface {
	// Host is the display name of the service ("GitHub").
	Host() string
	Commit(hash string) string
	// Issue links an issue or pull request reference such as "#12".
	Issue(ref string) string
	Compare(from, to string) string
}

// RepoLinks is a Linker for one repository on a web host.
type RepoLinks struct {
	Name    string // display name
	BaseURL string // host, optionally with scheme
	Repo    string // owner/name
	// Prefix is inserted between the repository and the resource path.
	// GitLab uses "/-".
	Prefix string
}

// Host returns the display name of the service.
func (l RepoLinks) Host() string {
	return l.Name
}

// Commit links a commit by hash.
func (l RepoLinks) Commit(hash string) string {
	return fmt.Sprintf("%s/commit/%s", l.repoURL(), hash)
}

// Issue links an issue or pull request. A leading "#" is dropped.
func (l RepoLinks) Issue(ref string) string {
	return fmt.Sprintf("%s/issues/%s", l.repoURL(), strings.TrimPrefix(ref, "#"))
}

// Compare links the diff between two refs.
func (l RepoLinks) Compare(from, to string) string {
	return fmt.Sprintf("%s/compare/%s...%s", l.repoURL(), from, to)
}

// Web returns the repository home page.
func (l RepoLinks) Web() string {
	return webURL(l.BaseURL) + "/" + l.Repo
}

func (l RepoLinks) repoURL() string {
	return l.Web() + l.Prefix
}

// webURL prefixes a bare host with https:// and drops any trailing slash.
func webURL(host string) string {
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return strings.TrimRight(host, "/")
}
