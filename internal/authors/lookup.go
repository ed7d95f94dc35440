// Package authors builds the deduplicated contributor list for a commit range
// and enriches each contributor with a provider handle and avatar.
package authors

import (
	"context"

	"github.com/ariel-frischer/relnotes/internal/commit"
)

// Result is the outcome of one identity lookup. A zero Result means the
// contributor stays unresolved; that is an expected outcome, not an error.
type Result struct {
	Login     string
	AvatarURL string
	Found     bool
}

// Unresolved is the Result for a lookup that found nothing.
var Unresolved = Result{}

// Resolved builds a found Result. An empty login yields Unresolved.
func Resolved(login, avatarURL string) Result {
	if login == "" {
		return Unresolved
	}
	return Result{Login: login, AvatarURL: avatarURL, Found: true}
}

// Lookup resolves a contributor's provider identity from its name/email.
// Implementations must treat every failure (network, status, decoding) as
// Unresolved and must not block on other lookups.
type Lookup interface {
	LookupUser(ctx context.Context, info commit.AuthorInfo) Result
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, info commit.AuthorInfo) Result

// LookupUser calls f.
func (f LookupFunc) LookupUser(ctx context.Context, info commit.AuthorInfo) Result {
	return f(ctx, info)
}
