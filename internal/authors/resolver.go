package authors

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/ariel-frischer/relnotes/internal/commit"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Resolver collects contributors from commits and enriches them in parallel.
type Resolver struct {
	lookup Lookup
	logger *logrus.Logger
}

// NewResolver creates a Resolver. A nil lookup disables enrichment and a nil
// logger discards log output.
func NewResolver(lookup Lookup, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Resolver{lookup: lookup, logger: logger}
}

// Resolve fills ResolvedAuthors on every commit and returns the sorted,
// deduplicated contributor list.
//
// One lookup runs per distinct email, all in parallel and without a limit.
// A failed lookup leaves only that contributor unresolved. The returned order
// depends on the final sort only, never on lookup completion order.
func (r *Resolver) Resolve(ctx context.Context, commits []*commit.Commit) []*commit.AuthorInfo {
	infos := Collect(commits)
	r.logger.WithField("count", len(infos)).Debug("Collected contributors")

	if r.lookup != nil {
		r.enrich(ctx, infos)
	}

	contributors := Dedupe(infos)
	relink(commits, contributors)

	r.logger.WithFields(logrus.Fields{
		"distinct_emails": len(infos),
		"contributors":    len(contributors),
	}).Debug("Resolved contributors")
	return contributors
}

// enrich issues one lookup per contributor. Every task writes only to its own
// AuthorInfo, so no locking is needed.
func (r *Resolver) enrich(ctx context.Context, infos []*commit.AuthorInfo) {
	var g errgroup.Group
	for _, info := range infos {
		if info.Login != "" {
			continue
		}
		g.Go(func() error {
			res := r.lookupOne(ctx, *info)
			if !res.Found {
				r.logger.WithFields(logrus.Fields{
					"name":  info.Name,
					"email": info.Email,
				}).Debug("Contributor unresolved")
				return nil
			}
			info.Login = res.Login
			info.AvatarURL = res.AvatarURL
			return nil
		})
	}
	// Tasks never return errors; Wait is only the join point.
	_ = g.Wait()
}

// lookupOne isolates a single lookup so a panicking provider cannot take the
// whole batch down.
func (r *Resolver) lookupOne(ctx context.Context, info commit.AuthorInfo) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.WithError(fmt.Errorf("%v", p)).WithField("email", info.Email).Warn("Contributor lookup panicked")
			res = Unresolved
		}
	}()
	return r.lookup.LookupUser(ctx, info)
}

// Collect builds one AuthorInfo per distinct email in a single ordered pass
// and fills each commit's ResolvedAuthors. Authors without a name or email are
// skipped. A commit's short hash is credited only to its first-listed author.
func Collect(commits []*commit.Commit) []*commit.AuthorInfo {
	byEmail := make(map[string]*commit.AuthorInfo)
	var infos []*commit.AuthorInfo

	for _, c := range commits {
		resolved := make([]*commit.AuthorInfo, 0, len(c.Authors))
		for idx, a := range c.Authors {
			if a.Name == "" || a.Email == "" {
				continue
			}
			info, ok := byEmail[a.Email]
			if !ok {
				info = &commit.AuthorInfo{Name: a.Name, Email: a.Email}
				byEmail[a.Email] = info
				infos = append(infos, info)
			}
			if idx == 0 {
				info.Commits = append(info.Commits, c.ShortHash)
			}
			resolved = append(resolved, info)
		}
		c.ResolvedAuthors = resolved
	}

	return infos
}

// Key returns the identity used for deduplication: the login when resolved,
// otherwise the name. The two namespaces never collide.
func Key(info *commit.AuthorInfo) string {
	if info.Login != "" {
		return "login:" + info.Login
	}
	return "name:" + info.Name
}

// Dedupe sorts contributors by login (or name when unresolved) using
// case-sensitive byte order, then keeps the first entry per Key.
// The input slice is not modified.
func Dedupe(infos []*commit.AuthorInfo) []*commit.AuthorInfo {
	sorted := make([]*commit.AuthorInfo, len(infos))
	copy(sorted, infos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DisplayKey() < sorted[j].DisplayKey()
	})

	seen := make(map[string]bool, len(sorted))
	kept := make([]*commit.AuthorInfo, 0, len(sorted))
	for _, info := range sorted {
		key := Key(info)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, info)
	}
	return kept
}

// relink points every commit at the kept contributor for each of its authors
// and rebuilds each contributor's commit list in commit order, so entries
// that collapsed into one contributor share their commits.
func relink(commits []*commit.Commit, contributors []*commit.AuthorInfo) {
	byKey := make(map[string]*commit.AuthorInfo, len(contributors))
	for _, info := range contributors {
		byKey[Key(info)] = info
		info.Commits = nil
	}

	for _, c := range commits {
		primaryListed := len(c.Authors) > 0 && c.Authors[0].Name != "" && c.Authors[0].Email != ""

		linked := make([]*commit.AuthorInfo, 0, len(c.ResolvedAuthors))
		seen := make(map[*commit.AuthorInfo]bool, len(c.ResolvedAuthors))
		for i, info := range c.ResolvedAuthors {
			canonical := byKey[Key(info)]
			if i == 0 && primaryListed {
				canonical.Commits = append(canonical.Commits, c.ShortHash)
			}
			if seen[canonical] {
				continue
			}
			seen[canonical] = true
			linked = append(linked, canonical)
		}
		c.ResolvedAuthors = linked
	}
}
