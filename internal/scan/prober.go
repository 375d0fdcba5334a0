package scan

import (
	"context"
	"io"
	"net/http"

	"github.com/tdh8316/socialscan/internal/httpx"
	"github.com/tdh8316/socialscan/internal/platform"
)

const defaultMaxDrainBytes = 64 << 10

// Prober performs single existence checks. It holds no mutable state, so one
// Prober serves any number of concurrent probes.
type Prober struct {
	client    httpx.Doer
	userAgent string
	maxDrain  int64
}

func NewProber(client httpx.Doer, userAgent string, maxDrain int64) *Prober {
	if userAgent == "" {
		userAgent = httpx.DefaultUserAgent
	}
	if maxDrain <= 0 {
		maxDrain = defaultMaxDrainBytes
	}
	return &Prober{client: client, userAgent: userAgent, maxDrain: maxDrain}
}

// Probe issues exactly one GET for req and classifies the response.
// Only the status code and the final URL are looked at.
func (p *Prober) Probe(ctx context.Context, req Request) Outcome {
	out := Outcome{Platform: req.Platform}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := httpx.NewRequest(ctx, http.MethodGet, req.URL, nil, p.userAgent)
	if err != nil {
		return networkFailure(out, err)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return networkFailure(out, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused; the content is discarded.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, p.maxDrain))

	requestURL := httpReq.URL.String()
	finalURL := requestURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	exists := req.Exists
	if exists == nil {
		exists = platform.DefaultExists
	}

	out.StatusCode = resp.StatusCode
	out.Exists = exists(platform.Response{
		StatusCode: resp.StatusCode,
		RequestURL: requestURL,
		FinalURL:   finalURL,
	})
	if out.Exists {
		out.URL = req.URL
	}
	return out
}

func networkFailure(out Outcome, err error) Outcome {
	out.Exists = false
	out.URL = ""
	out.ErrorKind = NetworkError
	out.Error = err.Error()
	return out
}
