// Package output provides terminal output formatting utilities for relnotes.
// This package is designed to have minimal dependencies to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintRange prints the commit range being released, e.g.
// "v0.0.1 -> v0.1.0 (3 commits)".
func PrintRange(out io.Writer, from, to string, commits int) {
	cyan := color.New(color.FgCyan).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	noun := "commits"
	if commits == 1 {
		noun = "commit"
	}
	fmt.Fprintf(out, "%s%s%s%s\n", cyan(from), gray(" -> "), blue(to), gray(fmt.Sprintf(" (%d %s)", commits, noun)))
}

// PrintSeparator prints a dim horizontal rule sized to the terminal.
func PrintSeparator(out io.Writer) {
	width := GetTerminalWidth()
	if width > 40 {
		width = 40
	}
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintln(out, dim(strings.Repeat("-", width)))
}

// PrintMarkdown prints rendered release notes between separators.
func PrintMarkdown(out io.Writer, markdown string) {
	PrintSeparator(out)
	fmt.Fprintln(out)
	fmt.Fprintln(out, markdown)
	fmt.Fprintln(out)
	PrintSeparator(out)
}

// PrintStatus prints an in-progress status line in cyan.
func PrintStatus(out io.Writer, message string) {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintln(out, cyan(message))
}

// PrintSuccess prints a green success line with a checkmark.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), green(message))
}

// PrintWarning prints a yellow warning line.
func PrintWarning(out io.Writer, message string) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintln(out, yellow(message))
}

// PrintManualRelease tells the user how to publish when no token is
// available and prints the prefilled release link.
func PrintManualRelease(out io.Writer, host, url string) {
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintln(out, yellow(fmt.Sprintf("No %s token found, specify it with --token or the environment variable.", host)))
	fmt.Fprintln(out, yellow("Open the link below to create the release manually:"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, bold(url))
	fmt.Fprintln(out)
}
