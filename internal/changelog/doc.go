// Package changelog turns parsed commits into release notes.
//
// This package implements:
//   - Section classification from the configured type table, with breaking
//     changes routed to their own section first
//   - Grouping of each section's commits, nesting scopes that have more than
//     one commit under a scope heading
//   - Markdown rendering with author bylines, issue and commit links, and a
//     trailing compare link
//   - The Generator pipeline that reads a commit range and produces a Result
package changelog
