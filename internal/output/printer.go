package output

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/tdh8316/socialscan/internal/platform"
	"github.com/tdh8316/socialscan/internal/scan"
)

// Printer renders progress and the final summary for a run. Its methods are
// called from a single goroutine.
type Printer struct {
	noColor bool
	out     io.Writer
	logger  *log.Logger
	spin    *spinner.Spinner

	total int
	done  int
}

func NewPrinter(stdout io.Writer, noColor bool) *Printer {
	p := &Printer{
		noColor: noColor,
		out:     stdout,
		logger:  log.New(stdout, "", 0),
	}

	// Spin only on a real terminal; redirected output gets plain lines.
	if f, ok := stdout.(*os.File); ok && !noColor && isatty.IsTerminal(f.Fd()) {
		p.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(f))
	}
	return p
}

func (p *Printer) Banner() {
	line := "SocialScan - Username OSINT"
	if p.noColor {
		p.logger.Printf("\n%s\n", line)
		return
	}
	p.logger.Printf("\n%s\n", color.CyanString(line))
}

// Start announces a run over the given platforms.
func (p *Printer) Start(username string, platforms []string) {
	p.total = len(platforms)
	p.done = 0

	if p.noColor {
		p.logger.Printf("[+] Target: %s", username)
		p.logger.Printf("[+] Checking platforms: %s", strings.Join(platforms, ", "))
	} else {
		p.logger.Printf("[%s] Target: %s", color.HiGreenString("+"), color.HiWhiteString(username))
		p.logger.Printf("[%s] Checking platforms: %s", color.HiGreenString("+"), strings.Join(platforms, ", "))
	}
	p.startSpinner()
}

// Outcome prints one line as soon as an outcome is known.
func (p *Printer) Outcome(_ int, o scan.Outcome) {
	p.stopSpinner()
	defer p.startSpinner()
	p.done++

	switch {
	case o.Exists:
		if p.noColor {
			p.logger.Printf("[+] Found on %s: %s", o.Platform, o.URL)
		} else {
			p.logger.Printf("[%s] Found on %s: %s", color.HiGreenString("+"), color.HiWhiteString(o.Platform), o.URL)
		}
	case o.Failed():
		if p.noColor {
			p.logger.Printf("[!] Error checking %s: %s", o.Platform, o.Error)
		} else {
			p.logger.Printf("[%s] Error checking %s: %s",
				color.HiRedString("!"),
				o.Platform,
				color.HiRedString(o.Error),
			)
		}
	default:
		if p.noColor {
			p.logger.Printf("[-] Not found on %s", o.Platform)
		} else {
			p.logger.Printf("[%s] Not found on %s", color.HiRedString("-"), color.HiYellowString(o.Platform))
		}
	}
}

// Summary prints the found count and a table of matches.
func (p *Printer) Summary(r *scan.Report) {
	p.stopSpinner()

	found := r.Found()
	if p.noColor {
		p.logger.Printf("\n========= Summary =========")
		p.logger.Printf("[+] Found %d profiles for %q", len(found), r.Username)
	} else {
		p.logger.Printf("\n%s", color.CyanString("========= Summary ========="))
		p.logger.Printf("[%s] Found %s profiles for %q", color.HiGreenString("+"),
			color.HiGreenString("%d", len(found)), r.Username)
	}
	if len(found) == 0 {
		return
	}

	table := tablewriter.NewTable(p.out)
	table.Header("Platform", "URL")
	for _, m := range found {
		if err := table.Append(platform.DisplayName(m.Platform), m.URL); err != nil {
			p.Warn("summary table: %v", err)
			return
		}
	}
	if err := table.Render(); err != nil {
		p.Warn("summary table: %v", err)
	}
}

// Info prints a neutral status line.
func (p *Printer) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.noColor {
		p.logger.Printf("[i] %s", msg)
		return
	}
	p.logger.Printf("[%s] %s", color.HiBlueString("i"), msg)
}

// Warn prints a problem that does not stop the run.
func (p *Printer) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.noColor {
		p.logger.Printf("[!] %s", msg)
		return
	}
	p.logger.Printf("[%s] %s", color.HiRedString("!"), color.HiYellowString(msg))
}

func (p *Printer) startSpinner() {
	if p.spin == nil || p.done >= p.total {
		return
	}
	p.spin.Suffix = fmt.Sprintf(" checking %d/%d platforms...", p.done, p.total)
	p.spin.Start()
}

func (p *Printer) stopSpinner() {
	if p.spin != nil {
		p.spin.Stop()
	}
}

// ValidationStart announces a self-check over n platforms.
func (p *Printer) ValidationStart(n int) {
	p.Info("Checking %d platform(s) against their claimed/unclaimed usernames...", n)
}

// ValidationFailure prints one platform that failed the self-check.
func (p *Printer) ValidationFailure(f scan.ValidationFailure) {
	var detail string
	switch f.Reason {
	case scan.ReasonProbeError:
		var parts []string
		for _, o := range []scan.Outcome{f.ClaimedOutcome, f.UnclaimedOutcome} {
			if o.Failed() {
				parts = append(parts, "["+o.Error+"]")
			}
		}
		detail = "Failed with error " + strings.Join(parts, "")
	case scan.ReasonMismatch:
		detail = fmt.Sprintf("Not working (%s: expected true, result is %t | %s: expected false, result is %t)",
			f.Claimed, f.ClaimedOutcome.Exists, f.Unclaimed, f.UnclaimedOutcome.Exists)
	default:
		detail = "Cannot check: " + string(f.Reason)
	}

	if p.noColor {
		p.logger.Printf("[-] %s: %s", f.Platform, detail)
		return
	}
	p.logger.Printf("[%s] %s: %s", color.HiRedString("-"), color.HiWhiteString(f.Platform), color.YellowString(detail))
}

// ValidationDone prints the self-check tally.
func (p *Printer) ValidationDone(checked, failed int) {
	if p.noColor {
		p.logger.Printf("[Done] %d of %d platform(s) failed validation", failed, checked)
		return
	}
	p.logger.Printf("[%s] %d of %d platform(s) failed validation", color.GreenString("Done"), failed, checked)
}
