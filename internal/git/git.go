// Package git reads the commit history, tags and remotes that feed the
// changelog pipeline. All operations are read-only and go through the go-git
// library, so no git binary is required at runtime.
package git

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ariel-frischer/relnotes/internal/commit"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// openRepo opens a git repository at the specified path or current working directory.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree to find the repository root.
// If path is empty, the current working directory is used.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	return repo, nil
}

// IsNotRepository reports whether err means no repository was found at or
// above the requested path.
func IsNotRepository(err error) bool {
	return errors.Is(err, git.ErrRepositoryNotExists)
}

// CurrentBranch returns the name of the checked-out branch. In detached HEAD
// state it returns the HEAD commit hash instead, which is still a valid ref
// for comparison links.
func CurrentBranch(path string) (string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	if !head.Name().IsBranch() {
		logDebug("[git] CurrentBranch: detached HEAD at %s", head.Hash())
		return head.Hash().String(), nil
	}

	branch := head.Name().Short()
	logDebug("[git] CurrentBranch: %s", branch)
	return branch, nil
}

// CommitsBetween returns the commits reachable from `to` but not from `from`,
// newest first. An empty `from` returns the whole history of `to`.
func CommitsBetween(path, from, to string) ([]commit.RawCommit, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	toHash, err := resolve(repo, to)
	if err != nil {
		return nil, err
	}

	excluded := make(map[plumbing.Hash]struct{})
	if from != "" {
		fromHash, err := resolve(repo, from)
		if err != nil {
			return nil, err
		}
		if err := walk(repo, fromHash, func(c *object.Commit) error {
			excluded[c.Hash] = struct{}{}
			return nil
		}); err != nil {
			return nil, fmt.Errorf("walking history of %s: %w", from, err)
		}
	}

	var raws []commit.RawCommit
	err = walk(repo, toHash, func(c *object.Commit) error {
		if _, skip := excluded[c.Hash]; skip {
			return nil
		}
		raws = append(raws, toRawCommit(c))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history of %s: %w", to, err)
	}

	logDebug("[git] CommitsBetween %s..%s: %d commits", from, to, len(raws))
	return raws, nil
}

// FirstCommit returns the hash of the oldest root commit reachable from HEAD.
func FirstCommit(path string) (string, error) {
	repo, err := openRepo(path)
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}

	var root plumbing.Hash
	err = walk(repo, head.Hash(), func(c *object.Commit) error {
		if c.NumParents() == 0 {
			root = c.Hash
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walking history: %w", err)
	}
	if root.IsZero() {
		return "", errors.New("no root commit found")
	}

	logDebug("[git] FirstCommit: %s", root)
	return root.String(), nil
}

// IsShallow reports whether the repository is a shallow clone, in which case
// the history between two tags may be missing.
func IsShallow(path string) (bool, error) {
	repo, err := openRepo(path)
	if err != nil {
		return false, err
	}

	shallow, err := repo.Storer.Shallow()
	if err != nil {
		return false, fmt.Errorf("reading shallow commits: %w", err)
	}
	return len(shallow) > 0, nil
}

// resolve turns a branch, tag or hash into the commit hash it points at.
// Annotated tags are peeled to their target commit.
func resolve(repo *git.Repository, ref string) (plumbing.Hash, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving revision %q: %w", ref, err)
	}
	return *hash, nil
}

// walk visits every commit reachable from start, newest committer time first.
func walk(repo *git.Repository, start plumbing.Hash, fn func(*object.Commit) error) error {
	iter, err := repo.Log(&git.LogOptions{From: start, Order: git.LogOrderCommitterTime})
	if err != nil {
		return err
	}
	defer iter.Close()

	err = iter.ForEach(fn)
	if errors.Is(err, storer.ErrStop) {
		return nil
	}
	return err
}

func toRawCommit(c *object.Commit) commit.RawCommit {
	subject, body, _ := strings.Cut(strings.TrimRight(c.Message, "\n"), "\n")
	return commit.RawCommit{
		Hash:    c.Hash.String(),
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimSpace(body),
		Author: commit.Author{
			Name:  c.Author.Name,
			Email: c.Author.Email,
		},
	}
}
