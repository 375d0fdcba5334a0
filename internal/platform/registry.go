package platform

import (
	"sort"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultPlatforms is probed when the caller does not name any platforms.
var DefaultPlatforms = []string{"github", "twitter", "instagram", "linkedin", "facebook", "reddit"}

// Registry maps normalized identifiers to platform specs.
// It is built once and only read afterwards, so lookups need no locking.
type Registry struct {
	specs map[string]Spec
}

// NewRegistry builds a registry from specs. Names are normalized; a later
// spec with the same name replaces an earlier one.
func NewRegistry(specs ...Spec) *Registry {
	r := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		r.add(s)
	}
	return r
}

// Builtin returns a registry holding the built-in platform table.
func Builtin() *Registry {
	return NewRegistry(BuiltinSpecs()...)
}

// With returns a copy of r extended with specs.
func (r *Registry) With(specs ...Spec) *Registry {
	out := &Registry{specs: make(map[string]Spec, len(r.specs)+len(specs))}
	for name, s := range r.specs {
		out.specs[name] = s
	}
	for _, s := range specs {
		out.add(s)
	}
	return out
}

func (r *Registry) add(s Spec) {
	s.Name = Normalize(s.Name)
	if s.Name == "" {
		return
	}
	r.specs[s.Name] = s
}

// Lookup finds the spec for an identifier that was already passed through Normalize.
func (r *Registry) Lookup(id string) (Spec, bool) {
	s, ok := r.specs[id]
	return s, ok
}

// Names returns the registered identifiers sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered platforms.
func (r *Registry) Len() int {
	return len(r.specs)
}

const unclaimedUsername = "noonewouldeverusethis7"

// BuiltinSpecs returns the built-in platform table.
func BuiltinSpecs() []Spec {
	return []Spec{
		{Name: "github", URLTemplate: "https://github.com/{username}", Claimed: "octocat", Unclaimed: unclaimedUsername},
		{Name: "twitter", URLTemplate: "https://twitter.com/{username}", Claimed: "twitter", Unclaimed: unclaimedUsername},
		{Name: "instagram", URLTemplate: "https://www.instagram.com/{username}/", Claimed: "instagram", Unclaimed: unclaimedUsername},
		{Name: "linkedin", URLTemplate: "https://www.linkedin.com/in/{username}/", Claimed: "williamhgates", Unclaimed: unclaimedUsername},
		{Name: "facebook", URLTemplate: "https://www.facebook.com/{username}", Claimed: "facebook", Unclaimed: unclaimedUsername},
		{Name: "reddit", URLTemplate: "https://www.reddit.com/user/{username}", Claimed: "spez", Unclaimed: unclaimedUsername},
		{
			Name:        "gitlab",
			URLTemplate: "https://gitlab.com/{username}",
			// Unknown users are sent to the sign-in page with a 200.
			Exists:    All(DefaultExists, NotRedirectedTo(mustCompile(`^https://gitlab\.com/users/sign_in`))),
			Claimed:   "gitlab-bot",
			Unclaimed: unclaimedUsername,
		},
		{Name: "devto", URLTemplate: "https://dev.to/{username}", Claimed: "ben", Unclaimed: unclaimedUsername},
		{Name: "medium", URLTemplate: "https://medium.com/@{username}", Claimed: "medium", Unclaimed: unclaimedUsername},
	}
}

func mustCompile(expr string) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, regexp2.None)
	re.MatchTimeout = time.Second
	return re
}
