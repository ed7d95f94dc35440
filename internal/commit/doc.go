// Package commit provides the conventional-commit data model and parser.
//
// This package implements:
//   - RawCommit, the opaque record handed over by the version-control layer
//   - Commit, the parsed form with type, scope, breaking flag and references
//   - AuthorInfo, the deduplicated contributor identity filled by package authors
//   - Parse/ParseAll, which turn raw records into commits and silently drop
//     anything that does not follow the `type(scope)!: description` grammar
package commit
