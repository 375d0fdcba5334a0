// Package config resolves run settings from built-in defaults, an optional
// YAML file and command-line overrides, in that order of precedence.
package config

import (
	"time"

	"github.com/pkg/errors"

	"github.com/tdh8316/socialscan/internal/httpx"
	"github.com/tdh8316/socialscan/internal/platform"
	"github.com/tdh8316/socialscan/internal/scan"
)

const (
	// DefaultTimeout bounds each probe individually.
	DefaultTimeout = 5000 * time.Millisecond

	AppName = "socialscan"
)

// Settings is the fully resolved configuration of a run. It is read-only
// once scanning starts.
type Settings struct {
	Timeout     time.Duration
	UserAgent   string
	Policy      scan.Policy
	Concurrency int

	// Platforms probed when none are given on the command line.
	Platforms []string

	WithTor  bool
	ProxyURL string

	// SherlockPath is a sherlock data.json to import extra platforms from.
	SherlockPath string
	// SherlockURL is where --update-db fetches SherlockPath from.
	SherlockURL string
	Definitions []platform.Definition
}

func Defaults() Settings {
	return Settings{
		Timeout:     DefaultTimeout,
		UserAgent:   httpx.DefaultUserAgent,
		Policy:      scan.PolicyConcurrent,
		Platforms:   append([]string(nil), platform.DefaultPlatforms...),
		ProxyURL:    httpx.DefaultTorProxyURL,
		SherlockURL: platform.SherlockDataURL,
	}
}

// Overrides carries values given explicitly on the command line.
// Nil fields were not set and leave the setting alone.
type Overrides struct {
	Timeout      *time.Duration
	UserAgent    *string
	Policy       *string
	Concurrency  *int
	Platforms    []string
	WithTor      *bool
	ProxyURL     *string
	SherlockPath *string
}

// ApplyFile layers a config file over s.
func (s Settings) ApplyFile(f *File) (Settings, error) {
	if f == nil {
		return s, nil
	}
	if f.TimeoutMS != nil {
		s.Timeout = time.Duration(*f.TimeoutMS) * time.Millisecond
	}
	if f.UserAgent != "" {
		s.UserAgent = f.UserAgent
	}
	if f.Policy != "" {
		p, err := scan.ParsePolicy(f.Policy)
		if err != nil {
			return s, errors.Wrap(ErrInvalidPolicy, err.Error())
		}
		s.Policy = p
	}
	if f.Concurrency != nil {
		s.Concurrency = *f.Concurrency
	}
	if len(f.Platforms) > 0 {
		s.Platforms = append([]string(nil), f.Platforms...)
	}
	if f.Tor != nil {
		s.WithTor = *f.Tor
	}
	if f.Proxy != "" {
		s.ProxyURL = f.Proxy
	}
	if f.Sherlock != "" {
		s.SherlockPath = f.Sherlock
	}
	if f.SherlockURL != "" {
		s.SherlockURL = f.SherlockURL
	}
	s.Definitions = append(s.Definitions, f.Definitions...)
	return s, nil
}

// ApplyOverrides layers command-line values over s.
func (s Settings) ApplyOverrides(o Overrides) (Settings, error) {
	if o.Timeout != nil {
		s.Timeout = *o.Timeout
	}
	if o.UserAgent != nil {
		s.UserAgent = *o.UserAgent
	}
	if o.Policy != nil {
		p, err := scan.ParsePolicy(*o.Policy)
		if err != nil {
			return s, errors.Wrap(ErrInvalidPolicy, err.Error())
		}
		s.Policy = p
	}
	if o.Concurrency != nil {
		s.Concurrency = *o.Concurrency
	}
	if o.Platforms != nil {
		s.Platforms = append([]string(nil), o.Platforms...)
	}
	if o.WithTor != nil {
		s.WithTor = *o.WithTor
	}
	if o.ProxyURL != nil {
		s.ProxyURL = *o.ProxyURL
	}
	if o.SherlockPath != nil {
		s.SherlockPath = *o.SherlockPath
	}
	return s, nil
}

func (s Settings) Validate() error {
	if s.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if s.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	switch s.Policy {
	case scan.PolicyConcurrent, scan.PolicySequential:
	default:
		return errors.Wrapf(ErrInvalidPolicy, "%q", s.Policy)
	}
	return nil
}

// Resolve builds the settings for a run. explicitPath may be empty, in which
// case the default locations are searched. It also returns the path of the
// config file used, if any.
func Resolve(explicitPath string, o Overrides) (Settings, string, error) {
	s := Defaults()

	path := FindFile(explicitPath)
	if path == "" && explicitPath != "" {
		return s, "", errors.Wrap(ErrConfigNotFound, explicitPath)
	}

	if path != "" {
		f, err := LoadFile(path)
		if err != nil {
			return s, path, err
		}
		if s, err = s.ApplyFile(f); err != nil {
			return s, path, errors.Wrap(err, path)
		}
	}

	s, err := s.ApplyOverrides(o)
	if err != nil {
		return s, path, err
	}
	if err := s.Validate(); err != nil {
		return s, path, err
	}
	return s, path, nil
}
