package changelog

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ariel-frischer/relnotes/internal/commit"
	"github.com/ariel-frischer/relnotes/internal/provider"
)

// NoChanges is rendered when no section has any commit.
const NoChanges = "*No significant changes*"

// RenderOptions are presentation toggles. The Document is rendered as is;
// no grouping or ordering decisions are made here.
type RenderOptions struct {
	// Capitalize upper-cases the first letter of each description.
	Capitalize bool
	// Emoji keeps emoji in section titles.
	Emoji bool
	// Authors adds the "by @login" byline.
	Authors bool
	// CommitLinks adds the short hash link to each bullet.
	CommitLinks bool
	// Links builds issue and commit URLs. When nil references render as plain text.
	Links provider.Linker
	// ContributorsTitle enables a trailing contributors section with this title.
	ContributorsTitle string
}

// RenderMarkdown writes doc as markdown release notes.
//
// The output is deterministic for a given Document and options and carries
// no trailing newline.
func RenderMarkdown(doc Document, opts RenderOptions, w io.Writer) error {
	var lines []string
	for _, s := range doc.Sections {
		lines = append(lines, renderSection(s, opts)...)
	}

	if opts.ContributorsTitle != "" && len(doc.Contributors) > 0 {
		lines = append(lines, renderContributors(doc.Contributors, opts)...)
	}

	if len(lines) == 0 {
		lines = append(lines, NoChanges)
	}

	if doc.CompareURL != "" {
		lines = append(lines, "", fmt.Sprintf("##### &nbsp;&nbsp;&nbsp;&nbsp;[%s](%s)", viewChangesLabel(opts.Links), doc.CompareURL))
	}

	out := strings.TrimSpace(strings.Join(lines, "\n"))
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("writing markdown: %w", err)
	}
	return nil
}

// RenderMarkdownString is a convenience function that renders to a string.
func RenderMarkdownString(doc Document, opts RenderOptions) (string, error) {
	var b strings.Builder
	if err := RenderMarkdown(doc, opts, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderSection(s Section, opts RenderOptions) []string {
	lines := []string{"", heading(s.Title, opts.Emoji), ""}

	for _, c := range s.Entries {
		prefix := ""
		if c.Scope != "" {
			prefix = "**" + c.Scope + "**: "
		}
		lines = append(lines, "- "+prefix+formatLine(c, opts))
	}

	for _, g := range s.Scopes {
		lines = append(lines, "- **"+g.Scope+"**:")
		for _, c := range g.Commits {
			lines = append(lines, "    - "+formatLine(c, opts))
		}
	}
	return lines
}

func renderContributors(contributors []*commit.AuthorInfo, opts RenderOptions) []string {
	lines := []string{"", heading(opts.ContributorsTitle, opts.Emoji), ""}
	for _, info := range contributors {
		lines = append(lines, "- "+authorHandle(info))
	}
	return lines
}

func heading(title string, emoji bool) string {
	if !emoji {
		title = StripEmoji(title)
	}
	return "### &nbsp;&nbsp;&nbsp;" + strings.TrimSpace(title)
}

// formatLine renders one bullet body:
// description &nbsp;-&nbsp; by <authors> in <issues> <hash link>.
func formatLine(c *commit.Commit, opts RenderOptions) string {
	var refs []string
	if opts.Authors {
		if authors := joinList(authorHandles(c.ResolvedAuthors)); authors != "" {
			refs = append(refs, "by "+authors)
		}
	}
	if issues := joinList(issueLinks(c, opts.Links)); issues != "" {
		refs = append(refs, "in "+issues)
	}
	if opts.CommitLinks {
		if hashes := joinList(hashLinks(c, opts.Links)); hashes != "" {
			refs = append(refs, hashes)
		}
	}

	description := c.Description
	if opts.Capitalize {
		description = capitalize(description)
	}

	if len(refs) == 0 {
		return description
	}
	return description + " &nbsp;-&nbsp; " + strings.Join(refs, " ")
}

// authorHandles returns unique display handles in resolved order.
func authorHandles(infos []*commit.AuthorInfo) []string {
	var handles []string
	seen := make(map[string]bool, len(infos))
	for _, info := range infos {
		h := authorHandle(info)
		if seen[h] {
			continue
		}
		seen[h] = true
		handles = append(handles, h)
	}
	return handles
}

func authorHandle(info *commit.AuthorInfo) string {
	if info.IsResolved() {
		return "@" + info.Login
	}
	return "**" + info.Name + "**"
}

func issueLinks(c *commit.Commit, links provider.Linker) []string {
	refs := c.ReferencesOf(commit.RefIssue, commit.RefPullRequest)
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if links == nil {
			out = append(out, ref.Value)
			continue
		}
		out = append(out, links.Issue(ref.Value))
	}
	return out
}

func hashLinks(c *commit.Commit, links provider.Linker) []string {
	refs := c.ReferencesOf(commit.RefHash)
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if links == nil {
			out = append(out, ref.Value)
			continue
		}
		out = append(out, fmt.Sprintf("[<samp>(%s)</samp>](%s)", commit.ShortenHash(ref.Value), links.Commit(ref.Value)))
	}
	return out
}

func viewChangesLabel(links provider.Linker) string {
	if links == nil || links.Host() == "" {
		return "View changes"
	}
	return "View changes on " + links.Host()
}

// joinList joins items as "a", "a and b" or "a, b and c".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// StripEmoji removes emoji from s: the pictograph planes at U+1F000-U+1FAFF
// (skin tone modifiers included), the Miscellaneous Symbols and Dingbats
// blocks, variation selector 16 and zero-width joiners. Other symbols such
// as © or ° are kept.
func StripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\uFE0F', r == '\u200D':
			return -1
		case r >= 0x1F000 && r <= 0x1FAFF, r >= 0x2600 && r <= 0x27BF:
			return -1
		}
		return r
	}, s)
}
