package changelog

import (
	"slices"

	"github.com/ariel-frischer/relnotes/internal/commit"
)

// Document is the grouped form of a release, ready to render.
type Document struct {
	Sections     []Section
	Contributors []*commit.AuthorInfo
	// CompareURL links the diff between the release refs. Empty when either
	// ref is unknown.
	CompareURL string
}

// IsEmpty reports whether no section has any commit.
func (d Document) IsEmpty() bool {
	return len(d.Sections) == 0
}

// CommitCount returns the number of entries across all sections. A breaking
// commit listed in two sections counts twice.
func (d Document) CommitCount() int {
	n := 0
	for _, s := range d.Sections {
		n += s.Len()
	}
	return n
}

// Section is one titled block of the release notes.
type Section struct {
	Title string
	// Entries are the commits rendered as flat bullets, in input order.
	Entries []*commit.Commit
	// Scopes are rendered after Entries, sorted by scope name.
	Scopes []ScopeGroup
}

// Len returns the number of commits in the section.
func (s Section) Len() int {
	n := len(s.Entries)
	for _, g := range s.Scopes {
		n += len(g.Commits)
	}
	return n
}

// ScopeGroup holds the commits of one scope nested under a scope heading.
type ScopeGroup struct {
	Scope   string
	Commits []*commit.Commit
}

// GroupOptions controls Group.
type GroupOptions struct {
	Table         SectionTable
	BreakingTitle string
	// Group nests scopes with more than one commit. When false every section
	// is a flat list.
	Group bool
	// DuplicateBreaking keeps breaking commits in their type section as well
	// as in the breaking section.
	DuplicateBreaking bool
}

// Group classifies commits into sections. Sections follow the breaking
// section and then the table order; empty sections are left out.
func Group(commits []*commit.Commit, opts GroupOptions) []Section {
	buckets := make(map[string][]*commit.Commit)
	for _, c := range commits {
		titles := Classify(c, opts.Table, opts.BreakingTitle)
		if c.Breaking && !opts.DuplicateBreaking && len(titles) > 1 {
			titles = titles[:1]
		}
		for _, title := range titles {
			buckets[title] = append(buckets[title], c)
		}
	}

	order := append([]string{opts.BreakingTitle}, opts.Table.Titles()...)

	var sections []Section
	seen := make(map[string]bool, len(order))
	for _, title := range order {
		if seen[title] {
			continue
		}
		seen[title] = true

		if items := buckets[title]; len(items) > 0 {
			sections = append(sections, newSection(title, items, opts.Group))
		}
	}
	return sections
}

func newSection(title string, commits []*commit.Commit, group bool) Section {
	s := Section{Title: title}
	if !group {
		s.Entries = commits
		return s
	}

	counts := make(map[string]int)
	for _, c := range commits {
		if c.Scope != "" {
			counts[c.Scope]++
		}
	}

	nested := make(map[string][]*commit.Commit)
	for _, c := range commits {
		if counts[c.Scope] > 1 {
			nested[c.Scope] = append(nested[c.Scope], c)
			continue
		}
		s.Entries = append(s.Entries, c)
	}

	scopes := make([]string, 0, len(nested))
	for scope := range nested {
		scopes = append(scopes, scope)
	}
	slices.Sort(scopes)

	for _, scope := range scopes {
		s.Scopes = append(s.Scopes, ScopeGroup{Scope: scope, Commits: nested[scope]})
	}
	return s
}
