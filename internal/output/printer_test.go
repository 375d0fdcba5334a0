package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tdh8316/socialscan/internal/scan"
)

func TestPrinterOutcomeLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	p.Start("octocat", []string{"github", "twitter", "nope"})
	p.Outcome(0, scan.Outcome{Platform: "github", Exists: true, URL: "https://github.com/octocat"})
	p.Outcome(1, scan.Outcome{Platform: "twitter"})
	p.Outcome(2, scan.Outcome{Platform: "nope", ErrorKind: scan.UnsupportedPlatform, Error: "unsupported platform"})

	out := buf.String()
	for _, want := range []string{
		"[+] Target: octocat",
		"[+] Checking platforms: github, twitter, nope",
		"[+] Found on github: https://github.com/octocat",
		"[-] Not found on twitter",
		"[!] Error checking nope: unsupported platform",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestPrinterSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	p.Summary(&scan.Report{
		Username: "octocat",
		Outcomes: []scan.Outcome{
			{Platform: "github", Exists: true, URL: "https://github.com/octocat"},
			{Platform: "reddit"},
		},
	})

	out := buf.String()
	for _, want := range []string{
		"========= Summary =========",
		`[+] Found 1 profiles for "octocat"`,
		"Github",
		"https://github.com/octocat",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Reddit") {
		t.Errorf("summary lists a platform without a match:\n%s", out)
	}
}

func TestPrinterSummaryNothingFound(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewPrinter(&buf, true).Summary(&scan.Report{
		Username: "nobody",
		Outcomes: []scan.Outcome{{Platform: "github"}},
	})

	if !strings.Contains(buf.String(), `Found 0 profiles for "nobody"`) {
		t.Errorf("unexpected summary:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "URL") {
		t.Errorf("empty summary printed a table:\n%s", buf.String())
	}
}

func TestPrinterInfoWarn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, true)
	p.Info("Results saved to %s", "out.json")
	p.Warn("Error saving results: %v", "disk full")

	out := buf.String()
	if !strings.Contains(out, "[i] Results saved to out.json") {
		t.Errorf("missing info line:\n%s", out)
	}
	if !strings.Contains(out, "[!] Error saving results: disk full") {
		t.Errorf("missing warn line:\n%s", out)
	}
}

func TestPrinterValidation(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, true)

	p.ValidationStart(3)
	p.ValidationFailure(scan.ValidationFailure{
		Platform: "gitlab", Claimed: "gitlab-bot", Unclaimed: "nobody", Reason: scan.ReasonMismatch,
		ClaimedOutcome:   scan.Outcome{Platform: "gitlab", Exists: true},
		UnclaimedOutcome: scan.Outcome{Platform: "gitlab", Exists: true},
	})
	p.ValidationFailure(scan.ValidationFailure{
		Platform: "reddit", Reason: scan.ReasonProbeError,
		ClaimedOutcome: scan.Outcome{Platform: "reddit", ErrorKind: scan.NetworkError, Error: "timeout"},
	})
	p.ValidationFailure(scan.ValidationFailure{Platform: "nope", Reason: scan.ReasonUnsupported})
	p.ValidationDone(3, 3)

	out := buf.String()
	for _, want := range []string{
		"[i] Checking 3 platform(s)",
		"[-] gitlab: Not working (gitlab-bot: expected true, result is true | nobody: expected false, result is true)",
		"[-] reddit: Failed with error [timeout]",
		"[-] nope: Cannot check: unsupported platform",
		"[Done] 3 of 3 platform(s) failed validation",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
