// Package platform holds the table of known platforms: how to build a
// profile URL for a username and how to read a response as "profile exists".
package platform

import (
	"net/http"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Placeholder is replaced by the username in a URL template.
const Placeholder = "{username}"

// Response is what a Predicate gets to see of an HTTP response.
// The body is never part of it.
type Response struct {
	StatusCode int
	RequestURL string
	FinalURL   string // after redirects
}

// Predicate decides whether a response means the profile exists.
type Predicate func(Response) bool

// Spec describes one platform.
type Spec struct {
	Name        string
	URLTemplate string
	// Exists is nil for platforms using DefaultExists.
	Exists Predicate

	// Claimed and Unclaimed are usernames known to exist and known to be
	// free on the platform. Validate uses them; either may be empty.
	Claimed   string
	Unclaimed string
}

// Checkable reports whether the spec carries a claimed/unclaimed pair.
func (s Spec) Checkable() bool {
	return s.Claimed != "" && s.Unclaimed != ""
}

// Predicate returns the platform's existence predicate.
func (s Spec) Predicate() Predicate {
	if s.Exists == nil {
		return DefaultExists
	}
	return s.Exists
}

// ProfileURL substitutes username into the URL template verbatim.
func (s Spec) ProfileURL(username string) string {
	return strings.ReplaceAll(s.URLTemplate, Placeholder, username)
}

// DefaultExists treats anything but 404 as an existing profile. Redirects and
// 5xx count as "exists"; platforms needing better go through their own predicate.
func DefaultExists(r Response) bool {
	return r.StatusCode != http.StatusNotFound
}

// StatusNotIn reports existence unless the status is one of codes.
func StatusNotIn(codes ...int) Predicate {
	if len(codes) == 0 {
		return DefaultExists
	}
	set := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return func(r Response) bool {
		_, notFound := set[r.StatusCode]
		return !notFound
	}
}

// StatusOK reports existence for 2xx responses only.
func StatusOK(r Response) bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// FinalURLUnchanged reports existence when the request was not redirected
// away from the profile URL and did not end in an error status.
func FinalURLUnchanged(r Response) bool {
	return r.StatusCode >= 200 && r.StatusCode < 400 && r.FinalURL == r.RequestURL
}

// NotRedirectedTo reports non-existence when the final URL matches re.
func NotRedirectedTo(re *regexp2.Regexp) Predicate {
	return func(r Response) bool {
		matched, err := re.MatchString(r.FinalURL)
		if err != nil {
			// Match timeout: fall back to status only.
			return DefaultExists(r)
		}
		return !matched
	}
}

// All combines predicates; every one must report existence.
func All(preds ...Predicate) Predicate {
	return func(r Response) bool {
		for _, p := range preds {
			if p != nil && !p(r) {
				return false
			}
		}
		return true
	}
}

// Normalize trims and lower-cases a platform identifier.
func Normalize(id string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(id))
}

// DisplayName is the title-cased form of a platform name used in summaries.
func DisplayName(name string) string {
	return cases.Title(language.English).String(name)
}
