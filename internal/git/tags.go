package git

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver/v4"
	"github.com/go-git/go-git/v5/plumbing"
)

// stablePattern matches refs that look like a plain release version
// (e.g. "v1.2.3" or "1.2"). Anything else is treated as a prerelease.
var stablePattern = regexp.MustCompile(`^[^.]*[\d.]+$`)

// Tag is a tag name together with the date used to order it.
// The date is the tagger date for annotated tags and the commit date otherwise.
type Tag struct {
	Name string
	Date time.Time
}

// Tags returns the repository's tags ordered newest first.
func Tags(path string) ([]Tag, error) {
	repo, err := openRepo(path)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var tags []Tag
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tag := Tag{Name: ref.Name().Short()}

		if annotated, err := repo.TagObject(ref.Hash()); err == nil {
			tag.Date = annotated.Tagger.When
		} else if c, err := repo.CommitObject(ref.Hash()); err == nil {
			tag.Date = c.Committer.When
		} else {
			logDebug("[git] Tags: skipping %s, target is neither tag nor commit", tag.Name)
			return nil
		}

		tags = append(tags, tag)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading tags: %w", err)
	}

	sort.SliceStable(tags, func(i, j int) bool {
		if tags[i].Date.Equal(tags[j].Date) {
			return tags[i].Name > tags[j].Name
		}
		return tags[i].Date.After(tags[j].Date)
	})

	logDebug("[git] Tags: %d found", len(tags))
	return tags, nil
}

// LastMatchingTag picks the tag to compare `to` against. When `to` is a
// stable semantic version the newest other stable version tag wins;
// otherwise (or when none exists) the newest tag different from `to` is used.
// It returns an empty string when the repository has no suitable tag.
func LastMatchingTag(path, to string) (string, error) {
	tags, err := Tags(path)
	if err != nil {
		return "", err
	}
	return lastMatchingTag(tags, to), nil
}

func lastMatchingTag(tags []Tag, to string) string {
	bare := strings.TrimPrefix(to, "v")

	if v, err := semver.Parse(bare); err == nil && len(v.Pre) == 0 {
		for _, tag := range tags {
			name := strings.TrimPrefix(tag.Name, "v")
			if name == bare {
				continue
			}
			if tv, err := semver.Parse(name); err == nil && len(tv.Pre) == 0 {
				return tag.Name
			}
		}
	}

	for _, tag := range tags {
		if tag.Name != to {
			return tag.Name
		}
	}
	return ""
}

// IsPrerelease reports whether ref should be published as a prerelease.
// Only refs shaped like a plain version number count as stable.
func IsPrerelease(ref string) bool {
	return !stablePattern.MatchString(ref)
}
