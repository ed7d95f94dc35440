package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ariel-frischer/relnotes/internal/commit"
	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	sectionColor = color.New(color.FgCyan, color.Bold)
	hashColor    = color.New(color.FgHiBlack)
	scopeColor   = color.New(color.FgBlue)
	breakColor   = color.New(color.FgRed)
)

// FormatOptions controls the terminal summary.
type FormatOptions struct {
	Plain    bool // Disable colors
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatTerminal writes a compact, colored overview of doc: one header per
// section and one line per commit with its short hash.
func FormatTerminal(doc Document, w io.Writer, opts FormatOptions) error {
	if doc.IsEmpty() {
		_, err := fmt.Fprintln(w, "No significant changes")
		return err
	}

	width := resolveWidth(opts.MaxWidth)
	for i, s := range doc.Sections {
		if err := formatSection(s, w, opts, width, i > 0); err != nil {
			return fmt.Errorf("formatting section %s: %w", s.Title, err)
		}
	}
	return nil
}

func formatSection(s Section, w io.Writer, opts FormatOptions, width int, addSeparator bool) error {
	if addSeparator {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	title := fmt.Sprintf("%s (%d)", strings.TrimSpace(StripEmoji(s.Title)), s.Len())
	if !opts.Plain {
		title = sectionColor.Sprint(title)
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	for _, c := range s.Entries {
		if err := writeEntry(c, c.Scope, w, opts, width); err != nil {
			return err
		}
	}
	for _, g := range s.Scopes {
		for _, c := range g.Commits {
			if err := writeEntry(c, g.Scope, w, opts, width); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeEntry writes "  <hash> <scope>: <description>", wrapped to width.
func writeEntry(c *commit.Commit, scope string, w io.Writer, opts FormatOptions, width int) error {
	hash := c.ShortHash
	label := ""
	if scope != "" {
		label = scope + ": "
	}
	marker := ""
	if c.Breaking {
		marker = "! "
	}

	prefix := "  " + hash + " "
	indent := strings.Repeat(" ", len(prefix))
	text := wrapText(marker+label+c.Description, width-len(prefix), indent)

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, text)
		return err
	}

	if c.Breaking {
		text = breakColor.Sprint(marker) + strings.TrimPrefix(text, marker)
	}
	if label != "" {
		text = strings.Replace(text, label, scopeColor.Sprint(label), 1)
	}
	_, err := fmt.Fprintf(w, "  %s %s\n", hashColor.Sprint(hash), text)
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		// Find the last space within maxWidth
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}
