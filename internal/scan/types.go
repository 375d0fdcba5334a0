package scan

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/tdh8316/socialscan/internal/platform"
)

// ErrorKind classifies why an outcome carries no answer.
type ErrorKind string

const (
	UnsupportedPlatform ErrorKind = "UnsupportedPlatform"
	NetworkError        ErrorKind = "NetworkError"
)

// ErrIncompleteReport means a requested platform ended up without an outcome.
// It is the one failure that escapes a run.
var ErrIncompleteReport = errors.New("report is missing outcomes")

// Request is one probe: a platform, a username and the URL built from them.
type Request struct {
	Platform string
	Username string
	URL      string
	Timeout  time.Duration
	Exists   platform.Predicate
}

// Outcome is the classified result of a single probe. URL is set only when
// the profile exists.
type Outcome struct {
	Platform   string    `json:"platform"`
	Exists     bool      `json:"exists"`
	URL        string    `json:"url,omitempty"`
	StatusCode int       `json:"statusCode,omitempty"`
	ErrorKind  ErrorKind `json:"errorKind,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Failed reports whether the outcome is an error rather than a found/not-found answer.
func (o Outcome) Failed() bool {
	return o.ErrorKind != ""
}

type Match struct {
	Platform string
	URL      string
}

// Report holds one outcome per requested platform, in request order.
type Report struct {
	Username string
	Outcomes []Outcome
}

// Found lists the platforms where the profile exists, in report order.
func (r *Report) Found() []Match {
	var out []Match
	for _, o := range r.Outcomes {
		if o.Exists {
			out = append(out, Match{Platform: o.Platform, URL: o.URL})
		}
	}
	return out
}

func (r *Report) FoundCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Exists {
			n++
		}
	}
	return n
}

// Policy selects how the scanner schedules probes.
type Policy string

const (
	// PolicyConcurrent launches every probe at once and waits for all of them.
	PolicyConcurrent Policy = "concurrent"
	// PolicySequential waits for each probe before starting the next.
	PolicySequential Policy = "sequential"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyConcurrent, PolicySequential:
		return p, nil
	case "":
		return PolicyConcurrent, nil
	default:
		return "", fmt.Errorf("unknown policy %q (want %s or %s)", s, PolicyConcurrent, PolicySequential)
	}
}

type Config struct {
	UserAgent string
	Policy    Policy
	// Concurrency caps in-flight probes under PolicyConcurrent; zero means no cap.
	Concurrency int
	// MaxDrainBytes bounds how much of a response body is read before closing it.
	MaxDrainBytes int64
}
