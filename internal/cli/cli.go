package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tdh8316/socialscan/internal/config"
	"github.com/tdh8316/socialscan/internal/platform"
)

// ErrHelp is returned when help or version output was requested and printed.
var ErrHelp = errors.New("help requested")

// ErrNoUsername is returned when neither -u nor a positional username is given.
var ErrNoUsername = errors.New("no username provided: use -u USERNAME or pass it as an argument")

type Options struct {
	Username      string
	ConfigPath    string
	Output        string
	Format        string
	HistoryPath   string
	UpdateDB      bool
	ListPlatforms bool
	Validate      bool
	Verbose       bool
	NoColor       bool

	// Overrides holds only the flags the user actually set.
	Overrides config.Overrides
}

const examples = `  socialscan octocat
  socialscan -u octocat -p github,gitlab,reddit -o octocat.json
  socialscan -u octocat --policy sequential --timeout 3000
  socialscan --list-platforms
  socialscan --validate --sherlock data.json`

// Parse turns command-line arguments into Options. Help and version output
// go to stdout, flag errors are returned.
func Parse(args []string, stdout, stderr io.Writer, version string) (Options, error) {
	var (
		opts        Options
		ran         bool
		timeoutMS   int
		userAgent   string
		policy      string
		concurrency int
		platforms   []string
		withTor     bool
		proxyURL    string
		sherlock    string
	)

	cmd := &cobra.Command{
		Use:           "socialscan [flags] [USERNAME]",
		Short:         "Check whether a username exists across social platforms",
		Example:       examples,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			ran = true

			if len(positional) == 1 {
				if opts.Username != "" && opts.Username != positional[0] {
					return fmt.Errorf("username given twice: %q and %q", opts.Username, positional[0])
				}
				opts.Username = positional[0]
			}
			opts.Username = strings.TrimSpace(opts.Username)
			if opts.Username == "" && !opts.ListPlatforms && !opts.Validate {
				return ErrNoUsername
			}

			f := cmd.Flags()
			if f.Changed("timeout") {
				d := time.Duration(timeoutMS) * time.Millisecond
				opts.Overrides.Timeout = &d
			}
			if f.Changed("user-agent") {
				opts.Overrides.UserAgent = &userAgent
			}
			if f.Changed("policy") {
				opts.Overrides.Policy = &policy
			}
			if f.Changed("concurrency") {
				opts.Overrides.Concurrency = &concurrency
			}
			if f.Changed("platforms") {
				opts.Overrides.Platforms = platforms
				if opts.Overrides.Platforms == nil {
					opts.Overrides.Platforms = []string{}
				}
			}
			if f.Changed("tor") {
				opts.Overrides.WithTor = &withTor
			}
			if f.Changed("proxy") {
				opts.Overrides.ProxyURL = &proxyURL
			}
			if f.Changed("sherlock") {
				opts.Overrides.SherlockPath = &sherlock
			}

			switch opts.Format {
			case "", "json", "markdown":
			default:
				return fmt.Errorf("unknown format %q (want json or markdown)", opts.Format)
			}
			return nil
		},
	}

	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVarP(&opts.Username, "username", "u", "", "username to search")
	f.StringSliceVarP(&platforms, "platforms", "p", platform.DefaultPlatforms, "comma-separated list of platforms to search")
	f.IntVarP(&timeoutMS, "timeout", "t", int(config.DefaultTimeout/time.Millisecond), "request timeout in milliseconds")
	f.StringVar(&policy, "policy", "concurrent", "probe scheduling: concurrent or sequential")
	f.IntVar(&concurrency, "concurrency", 0, "max in-flight probes under the concurrent policy (0 = no cap)")
	f.StringVar(&userAgent, "user-agent", "", "override the User-Agent header")
	f.BoolVar(&withTor, "tor", false, "route probes through a SOCKS5 (Tor) proxy")
	f.StringVar(&proxyURL, "proxy", "", "SOCKS5 proxy URL used with --tor (default socks5://127.0.0.1:9050)")
	f.StringVarP(&opts.Output, "output", "o", "", "write results to this file")
	f.StringVar(&opts.Format, "format", "", "output file format: json or markdown (default: from extension, else json)")
	f.StringVar(&opts.HistoryPath, "history", "", "record runs in this SQLite database")
	f.StringVar(&sherlock, "sherlock", "", "import extra platforms from a sherlock data.json")
	f.BoolVar(&opts.UpdateDB, "update-db", false, "download the sherlock database to --sherlock before running")
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ./"+config.DefaultConfigFile+", then XDG config dir)")
	f.BoolVar(&opts.ListPlatforms, "list-platforms", false, "print the registered platforms and exit")
	f.BoolVar(&opts.Validate, "validate", false, "check platforms against their claimed/unclaimed usernames and exit")
	// -v stays with --version, which cobra registers on Execute.
	f.BoolVar(&opts.Verbose, "verbose", false, "debug logging on stderr")
	f.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	if err := cmd.Execute(); err != nil {
		return Options{}, err
	}
	if !ran {
		return Options{}, ErrHelp
	}
	return opts, nil
}
