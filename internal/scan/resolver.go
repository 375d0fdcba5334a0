package scan

import (
	"time"

	"github.com/tdh8316/socialscan/internal/platform"
)

// BuildRequest resolves id against reg and builds the probe for username.
// It returns false when the platform is unknown; that is a regular result,
// not an error.
func BuildRequest(reg *platform.Registry, username, id string, timeout time.Duration) (Request, bool) {
	name := platform.Normalize(id)
	spec, ok := reg.Lookup(name)
	if !ok {
		return Request{}, false
	}

	return Request{
		Platform: name,
		Username: username,
		URL:      spec.ProfileURL(username),
		Timeout:  timeout,
		Exists:   spec.Predicate(),
	}, true
}

func unsupportedOutcome(id string) Outcome {
	return Outcome{
		Platform:  id,
		ErrorKind: UnsupportedPlatform,
		Error:     "unsupported platform",
	}
}
