package scan

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tdh8316/socialscan/internal/platform"
)

// ValidationReason says why a platform failed validation.
type ValidationReason string

const (
	ReasonUnsupported ValidationReason = "unsupported platform"
	ReasonNoPair      ValidationReason = "no claimed/unclaimed usernames"
	ReasonProbeError  ValidationReason = "probe failed"
	ReasonMismatch    ValidationReason = "not working"
)

// ValidationFailure is a platform whose claimed username was not found or
// whose unclaimed username was. The outcomes are zero when no probe was sent.
type ValidationFailure struct {
	Platform  string
	Claimed   string
	Unclaimed string
	Reason    ValidationReason

	ClaimedOutcome   Outcome
	UnclaimedOutcome Outcome
}

// Validate checks each platform in ids against its claimed/unclaimed pair
// and calls onFailure, in the order of ids, for every platform that does not
// answer found/not found. Probes run under the scanner's policy. It returns
// the number of failures.
func (s *Scanner) Validate(
	ctx context.Context,
	ids []string,
	timeout time.Duration,
	onFailure func(ValidationFailure),
) (int, error) {
	if onFailure == nil {
		return 0, errors.New("onFailure callback is nil")
	}

	checks := make([]ValidationFailure, len(ids))
	probed := make([]bool, len(ids))

	// Platform i uses job indexes 2i (claimed) and 2i+1 (unclaimed).
	var jobs []job
	for i, id := range ids {
		name := platform.Normalize(id)
		spec, ok := s.registry.Lookup(name)
		switch {
		case !ok:
			checks[i] = ValidationFailure{Platform: id, Reason: ReasonUnsupported}
		case !spec.Checkable():
			checks[i] = ValidationFailure{Platform: name, Reason: ReasonNoPair}
		default:
			checks[i] = ValidationFailure{Platform: name, Claimed: spec.Claimed, Unclaimed: spec.Unclaimed}
			probed[i] = true

			claimed, _ := BuildRequest(s.registry, spec.Claimed, name, timeout)
			unclaimed, _ := BuildRequest(s.registry, spec.Unclaimed, name, timeout)
			jobs = append(jobs, job{index: 2 * i, req: claimed}, job{index: 2*i + 1, req: unclaimed})
		}
	}

	s.logger.WithFields(logrus.Fields{
		"platforms": len(ids),
		"probes":    len(jobs),
		"policy":    s.cfg.Policy,
	}).Debug("starting validation")

	results := make(chan indexedOutcome, len(jobs))
	go s.dispatch(ctx, jobs, results)

	for res := range results {
		c := &checks[res.index/2]
		if res.index%2 == 0 {
			c.ClaimedOutcome = res.outcome
		} else {
			c.UnclaimedOutcome = res.outcome
		}
	}

	failed := 0
	for i, c := range checks {
		if probed[i] {
			switch {
			case c.ClaimedOutcome.Failed() || c.UnclaimedOutcome.Failed():
				c.Reason = ReasonProbeError
			case !c.ClaimedOutcome.Exists || c.UnclaimedOutcome.Exists:
				c.Reason = ReasonMismatch
			default:
				continue
			}
		}
		failed++
		onFailure(c)
	}
	return failed, nil
}
