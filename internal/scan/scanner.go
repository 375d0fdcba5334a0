package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tdh8316/socialscan/internal/httpx"
	"github.com/tdh8316/socialscan/internal/platform"
)

type Scanner struct {
	registry *platform.Registry
	prober   *Prober
	cfg      Config
	logger   logrus.FieldLogger
}

func NewScanner(reg *platform.Registry, client httpx.Doer, cfg Config, logger logrus.FieldLogger) *Scanner {
	if cfg.Policy == "" {
		cfg.Policy = PolicyConcurrent
	}
	if cfg.Concurrency < 0 {
		cfg.Concurrency = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = httpx.DefaultUserAgent
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Scanner{
		registry: reg,
		prober:   NewProber(client, cfg.UserAgent, cfg.MaxDrainBytes),
		cfg:      cfg,
		logger:   logger,
	}
}

type job struct {
	index int
	req   Request
}

type indexedOutcome struct {
	index   int
	outcome Outcome
}

// Run probes username on every platform in ids and returns the report in the
// order of ids. onOutcome, if not nil, is called from the calling goroutine
// as each outcome arrives, so it needs no locking.
//
// A failing platform never stops the others. The returned error is non-nil
// only if the report could not be assembled.
func (s *Scanner) Run(
	ctx context.Context,
	username string,
	ids []string,
	timeout time.Duration,
	onOutcome func(index int, o Outcome),
) (*Report, error) {
	report := &Report{
		Username: username,
		Outcomes: make([]Outcome, len(ids)),
	}
	filled := make([]bool, len(ids))

	// Buffered for every platform: senders never wait on the consumer.
	results := make(chan indexedOutcome, len(ids))

	jobs := make([]job, 0, len(ids))
	for i, id := range ids {
		req, ok := BuildRequest(s.registry, username, id, timeout)
		if !ok {
			s.logger.WithField("platform", id).Debug("unsupported platform")
			results <- indexedOutcome{index: i, outcome: unsupportedOutcome(id)}
			continue
		}
		jobs = append(jobs, job{index: i, req: req})
	}

	s.logger.WithFields(logrus.Fields{
		"username":  username,
		"platforms": len(ids),
		"probes":    len(jobs),
		"policy":    s.cfg.Policy,
	}).Debug("starting scan")

	go s.dispatch(ctx, jobs, results)

	for res := range results {
		report.Outcomes[res.index] = res.outcome
		filled[res.index] = true
		if onOutcome != nil {
			onOutcome(res.index, res.outcome)
		}
	}

	for i, ok := range filled {
		if !ok {
			return report, errors.Wrapf(ErrIncompleteReport, "platform %q at position %d", ids[i], i)
		}
	}
	return report, nil
}

// dispatch runs jobs under the configured policy and closes results when
// every probe has produced an outcome.
func (s *Scanner) dispatch(ctx context.Context, jobs []job, results chan<- indexedOutcome) {
	defer close(results)

	if s.cfg.Policy == PolicySequential {
		for _, j := range jobs {
			results <- indexedOutcome{index: j.index, outcome: s.probe(ctx, j.req)}
		}
		return
	}

	// No errgroup.WithContext: one probe must never cancel its siblings.
	var g errgroup.Group
	if s.cfg.Concurrency > 0 {
		g.SetLimit(s.cfg.Concurrency)
	}
	for _, j := range jobs {
		g.Go(func() error {
			results <- indexedOutcome{index: j.index, outcome: s.probe(ctx, j.req)}
			return nil
		})
	}
	_ = g.Wait()
}

// probe runs one probe and turns a panic anywhere below it into a
// NetworkError outcome for that platform alone.
func (s *Scanner) probe(ctx context.Context, req Request) (out Outcome) {
	start := time.Now()
	log := s.logger.WithFields(logrus.Fields{
		"platform": req.Platform,
		"url":      req.URL,
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Warn("probe panicked")
			out = networkFailure(Outcome{Platform: req.Platform}, fmt.Errorf("probe panicked: %v", r))
		}
	}()

	out = s.prober.Probe(ctx, req)

	log.WithFields(logrus.Fields{
		"status":  out.StatusCode,
		"exists":  out.Exists,
		"error":   out.Error,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("probe finished")
	return out
}
