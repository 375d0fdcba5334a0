// Command socialscan checks whether a username exists on a set of web
// platforms.
//
// Usage:
//
//	socialscan [flags] USERNAME
//	socialscan --validate [-p platforms]
//	socialscan --list-platforms
//
// It exits 0 when the scan completed (whatever it found), 1 on a fatal
// error and 2 on a usage error.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tdh8316/socialscan/internal/app"
)

func main() {
	// An interrupt cancels probes still in flight; they are reported as errors.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}
