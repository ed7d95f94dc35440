package commit

import (
	"regexp"
	"strings"
)

var (
	// conventionalPattern matches `type(scope)!: description` and `type: description`.
	conventionalPattern = regexp.MustCompile(`(?i)^(?P<type>[a-z]+)(?:\((?P<scope>[^)]*)\))?(?P<breaking>!)?: (?P<description>.+)$`)

	// pullRequestPattern matches GitHub squash-merge suffixes like "(#12)".
	pullRequestPattern = regexp.MustCompile(`\([ a-z]*(#\d+)\s*\)`)

	issuePattern    = regexp.MustCompile(`(#\d+)`)
	coAuthorPattern = regexp.MustCompile(`(?im)^\s*co-authored-by:\s*(.+?)\s*<([^>]+)>`)
)

// BreakingChangeMarker flags an incompatible change when found in the body.
const BreakingChangeMarker = "BREAKING CHANGE:"

// ParseOptions tunes parsing.
type ParseOptions struct {
	// ScopeMap rewrites scope aliases to a canonical scope name.
	ScopeMap map[string]string
}

// Parse turns a raw commit into a Commit. It returns false when the subject
// does not follow the conventional-commit grammar; such commits are excluded
// from the changelog and are not an error.
func Parse(raw RawCommit, opts ParseOptions) (*Commit, bool) {
	subject := strings.TrimSpace(firstLine(raw.Subject))
	match := conventionalPattern.FindStringSubmatch(subject)
	if match == nil {
		return nil, false
	}

	typ := strings.ToLower(match[conventionalPattern.SubexpIndex("type")])
	scope := strings.TrimSpace(match[conventionalPattern.SubexpIndex("scope")])
	if mapped, ok := opts.ScopeMap[scope]; ok && mapped != "" {
		scope = mapped
	}
	rawDescription := match[conventionalPattern.SubexpIndex("description")]

	breaking := match[conventionalPattern.SubexpIndex("breaking")] == "!" ||
		strings.Contains(raw.Body, BreakingChangeMarker)

	description := strings.TrimSpace(pullRequestPattern.ReplaceAllString(rawDescription, ""))
	if description == "" {
		return nil, false
	}

	return &Commit{
		Hash:        raw.Hash,
		ShortHash:   ShortenHash(raw.Hash),
		Type:        typ,
		Scope:       scope,
		Description: description,
		Breaking:    breaking,
		References:  extractReferences(raw.Hash, rawDescription, raw.Body),
		Authors:     extractAuthors(raw.Author, raw.Body),
	}, true
}

// ParseAll parses raw commits in order and drops the ones that do not parse.
func ParseAll(raws []RawCommit, opts ParseOptions) []*Commit {
	commits := make([]*Commit, 0, len(raws))
	for _, raw := range raws {
		if c, ok := Parse(raw, opts); ok {
			commits = append(commits, c)
		}
	}
	return commits
}

// extractReferences collects pull-request refs from the subject, issue refs
// from the subject and body, and finally the commit hash itself.
func extractReferences(hash, description, body string) []Reference {
	var refs []Reference
	seen := make(map[string]bool)

	for _, m := range pullRequestPattern.FindAllStringSubmatch(description, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		refs = append(refs, Reference{Type: RefPullRequest, Value: m[1]})
	}

	for _, text := range []string{description, body} {
		for _, m := range issuePattern.FindAllStringSubmatch(text, -1) {
			if seen[m[1]] {
				continue
			}
			seen[m[1]] = true
			refs = append(refs, Reference{Type: RefIssue, Value: m[1]})
		}
	}

	if hash != "" {
		refs = append(refs, Reference{Type: RefHash, Value: hash})
	}
	return refs
}

// extractAuthors returns the primary author followed by Co-authored-by trailers.
func extractAuthors(primary Author, body string) []Author {
	authors := []Author{primary}
	for _, m := range coAuthorPattern.FindAllStringSubmatch(body, -1) {
		authors = append(authors, Author{
			Name:  strings.TrimSpace(m[1]),
			Email: strings.TrimSpace(m[2]),
		})
	}
	return authors
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
