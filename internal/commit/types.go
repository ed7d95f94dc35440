package commit

// ShortHashLength is the number of hash characters shown in rendered output.
const ShortHashLength = 5

// Author is a raw name/email pair as recorded at commit time.
type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// RawCommit is a single commit as returned by the version-control provider,
// before any conventional-commit parsing.
type RawCommit struct {
	Hash    string `yaml:"hash"`
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
	Author  Author `yaml:"author"`
}

// RefType classifies a Reference.
type RefType string

const (
	RefHash        RefType = "hash"
	RefIssue       RefType = "issue"
	RefPullRequest RefType = "pull-request"
)

// Reference is an external identifier mentioned by a commit.
// Issue and pull-request values keep their leading '#'.
type Reference struct {
	Type  RefType `yaml:"type"`
	Value string  `yaml:"value"`
}

// Commit is one parsed conventional commit.
//
// Commits are created once per run and are never mutated afterwards except
// for ResolvedAuthors, which the author resolver fills exactly once.
type Commit struct {
	Hash        string      `yaml:"hash"`
	ShortHash   string      `yaml:"short_hash"`
	Type        string      `yaml:"type"`
	Scope       string      `yaml:"scope,omitempty"`
	Description string      `yaml:"description"`
	Breaking    bool        `yaml:"breaking"`
	References  []Reference `yaml:"references,omitempty"`
	// Authors holds the primary author first, followed by co-authors.
	Authors []Author `yaml:"authors"`
	// ResolvedAuthors is index-aligned in intent with Authors, minus the
	// authors that lack a name or email. Entries may be shared between commits.
	ResolvedAuthors []*AuthorInfo `yaml:"-"`
}

// AuthorInfo is one deduplicated contributor.
type AuthorInfo struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	// Login is the provider handle; empty means unresolved.
	Login     string `yaml:"login,omitempty"`
	AvatarURL string `yaml:"avatar_url,omitempty"`
	// Commits lists the short hashes of commits where this contributor is
	// the primary (first-listed) author.
	Commits []string `yaml:"commits"`
}

// IsResolved reports whether enrichment attached a provider handle.
func (a *AuthorInfo) IsResolved() bool {
	return a.Login != ""
}

// DisplayKey returns the login when resolved, otherwise the name.
func (a *AuthorInfo) DisplayKey() string {
	if a.Login != "" {
		return a.Login
	}
	return a.Name
}

// ReferencesOf returns the references of the given type, in order.
func (c *Commit) ReferencesOf(types ...RefType) []Reference {
	var refs []Reference
	for _, ref := range c.References {
		for _, t := range types {
			if ref.Type == t {
				refs = append(refs, ref)
				break
			}
		}
	}
	return refs
}

// ShortenHash truncates a hash to ShortHashLength characters.
func ShortenHash(hash string) string {
	if len(hash) <= ShortHashLength {
		return hash
	}
	return hash[:ShortHashLength]
}
