package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tdh8316/socialscan/internal/platform"
)

func parse(t *testing.T, args ...string) (Options, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts, err := Parse(args, &stdout, &stderr, "v1.2.3")
	return opts, stdout.String(), err
}

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	opts, _, err := parse(t, "-u", "octocat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Username != "octocat" {
		t.Errorf("Username = %q", opts.Username)
	}

	// Untouched flags must not override file settings.
	o := opts.Overrides
	if o.Timeout != nil || o.Policy != nil || o.Concurrency != nil || o.UserAgent != nil ||
		o.Platforms != nil || o.WithTor != nil || o.ProxyURL != nil || o.SherlockPath != nil {
		t.Errorf("unexpected overrides: %+v", o)
	}
}

func TestParsePositionalUsername(t *testing.T) {
	t.Parallel()

	opts, _, err := parse(t, "octocat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Username != "octocat" {
		t.Errorf("Username = %q", opts.Username)
	}

	if _, _, err := parse(t, "-u", "octocat", "other"); err == nil {
		t.Error("expected error for two different usernames")
	}
	if _, _, err := parse(t, "-u", "octocat", "octocat"); err != nil {
		t.Errorf("same username twice should be accepted: %v", err)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Parallel()

	opts, _, err := parse(t,
		"-u", "octocat",
		"-p", "github,GitLab",
		"-t", "1200",
		"--policy", "sequential",
		"--concurrency", "3",
		"--user-agent", "agent/1.0",
		"--tor",
		"--proxy", "socks5://127.0.0.1:9150",
		"--sherlock", "data.json",
		"-o", "out.md",
		"--format", "markdown",
		"--history", "runs.db",
		"--verbose",
		"--no-color",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	o := opts.Overrides
	if len(o.Platforms) != 2 || o.Platforms[0] != "github" || o.Platforms[1] != "GitLab" {
		t.Errorf("Platforms = %v", o.Platforms)
	}
	if o.Timeout == nil || *o.Timeout != 1200*time.Millisecond {
		t.Errorf("Timeout = %v", o.Timeout)
	}
	if o.Policy == nil || *o.Policy != "sequential" {
		t.Errorf("Policy = %v", o.Policy)
	}
	if o.Concurrency == nil || *o.Concurrency != 3 {
		t.Errorf("Concurrency = %v", o.Concurrency)
	}
	if o.UserAgent == nil || *o.UserAgent != "agent/1.0" {
		t.Errorf("UserAgent = %v", o.UserAgent)
	}
	if o.WithTor == nil || !*o.WithTor {
		t.Errorf("WithTor = %v", o.WithTor)
	}
	if o.ProxyURL == nil || *o.ProxyURL != "socks5://127.0.0.1:9150" {
		t.Errorf("ProxyURL = %v", o.ProxyURL)
	}
	if o.SherlockPath == nil || *o.SherlockPath != "data.json" {
		t.Errorf("SherlockPath = %v", o.SherlockPath)
	}
	if opts.Output != "out.md" || opts.Format != "markdown" || opts.HistoryPath != "runs.db" {
		t.Errorf("output options = %+v", opts)
	}
	if !opts.Verbose || !opts.NoColor {
		t.Errorf("Verbose/NoColor = %v/%v", opts.Verbose, opts.NoColor)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	if _, _, err := parse(t); !errors.Is(err, ErrNoUsername) {
		t.Errorf("no username: err = %v", err)
	}
	if _, _, err := parse(t, "-u", "   "); !errors.Is(err, ErrNoUsername) {
		t.Errorf("blank username: err = %v", err)
	}
	if _, _, err := parse(t, "-u", "octocat", "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, _, err := parse(t, "-u", "octocat", "--bogus"); err == nil {
		t.Error("expected error for unknown flag")
	}
	if _, _, err := parse(t, "-u", "octocat", "-t", "soon"); err == nil {
		t.Error("expected error for non-numeric timeout")
	}
}

func TestParseListPlatformsNeedsNoUsername(t *testing.T) {
	t.Parallel()

	opts, _, err := parse(t, "--list-platforms")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.ListPlatforms {
		t.Error("ListPlatforms not set")
	}
}

func TestParseValidateNeedsNoUsername(t *testing.T) {
	t.Parallel()

	opts, _, err := parse(t, "--validate", "-p", "github,gitlab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !opts.Validate {
		t.Error("Validate not set")
	}
	if len(opts.Overrides.Platforms) != 2 {
		t.Errorf("Platforms = %v", opts.Overrides.Platforms)
	}
}

func TestParseHelpAndVersion(t *testing.T) {
	t.Parallel()

	_, out, err := parse(t, "--help")
	if !errors.Is(err, ErrHelp) {
		t.Fatalf("err = %v, want ErrHelp", err)
	}
	if !strings.Contains(out, "--platforms") {
		t.Errorf("help output lacks flags:\n%s", out)
	}
	if !strings.Contains(out, strings.Join(platform.DefaultPlatforms, ",")) {
		t.Errorf("help output lacks default platforms:\n%s", out)
	}

	for _, flag := range []string{"--version", "-v"} {
		_, out, err = parse(t, flag)
		if !errors.Is(err, ErrHelp) {
			t.Fatalf("%s: err = %v, want ErrHelp", flag, err)
		}
		if !strings.Contains(out, "v1.2.3") {
			t.Errorf("%s: version output = %q", flag, out)
		}
	}

	opts, _, err := parse(t, "-u", "octocat", "--verbose")
	if err != nil || !opts.Verbose {
		t.Errorf("--verbose: opts.Verbose = %v, err = %v", opts.Verbose, err)
	}
}
