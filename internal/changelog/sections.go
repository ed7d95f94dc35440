package changelog

import (
	"github.com/ariel-frischer/relnotes/internal/commit"
	"github.com/ariel-frischer/relnotes/internal/config"
)

// SectionTable maps commit types to section titles. Its order is the order
// sections are rendered in, after the breaking changes section.
type SectionTable []config.TypeTitle

// Title returns the section title for a commit type.
func (t SectionTable) Title(typ string) (string, bool) {
	for _, tt := range t {
		if tt.Type == typ {
			return tt.Title, true
		}
	}
	return "", false
}

// Titles returns the distinct section titles in table order.
func (t SectionTable) Titles() []string {
	titles := make([]string, 0, len(t))
	seen := make(map[string]bool, len(t))
	for _, tt := range t {
		if seen[tt.Title] {
			continue
		}
		seen[tt.Title] = true
		titles = append(titles, tt.Title)
	}
	return titles
}

// Classify returns the titles of the sections c belongs to. A breaking commit
// is listed under breakingTitle first and then under its type section when
// the type is in the table. A non-breaking commit whose type is not in the
// table belongs nowhere and yields nil.
func Classify(c *commit.Commit, table SectionTable, breakingTitle string) []string {
	var titles []string
	if c.Breaking {
		titles = append(titles, breakingTitle)
	}
	if title, ok := table.Title(c.Type); ok && title != breakingTitle {
		titles = append(titles, title)
	}
	return titles
}
