package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mcuadros/go-version"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tdh8316/socialscan/internal/platform"
)

// DefaultConfigFile is looked up in the current directory.
const DefaultConfigFile = ".socialscan.yaml"

// SupportedVersion is the newest config file format this build understands.
const SupportedVersion = "1"

// File mirrors the YAML config file. Pointer fields distinguish "absent"
// from an explicit zero.
type File struct {
	Version     string                `yaml:"version"`
	TimeoutMS   *int                  `yaml:"timeout_ms"`
	UserAgent   string                `yaml:"user_agent"`
	Policy      string                `yaml:"policy"`
	Concurrency *int                  `yaml:"concurrency"`
	Platforms   []string              `yaml:"platforms_default"`
	Sherlock    string                `yaml:"sherlock"`
	SherlockURL string                `yaml:"sherlock_url"`
	Proxy       string                `yaml:"proxy"`
	Tor         *bool                 `yaml:"tor"`
	Definitions []platform.Definition `yaml:"platforms"`
}

// LoadFile reads and version-checks a YAML config file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrConfigNotFound, path)
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}

	if f.Version != "" && version.Compare(f.Version, SupportedVersion, ">") {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "%s declares version %s, newest supported is %s",
			path, f.Version, SupportedVersion)
	}

	return &f, nil
}

// FindFile returns the config file to use:
//  1. explicitPath, if given and present
//  2. .socialscan.yaml in the current directory
//  3. socialscan/config.yaml under the XDG config directories
//
// It returns "" when nothing is found.
func FindFile(explicitPath string) string {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err == nil {
			return explicitPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if p, err := xdg.SearchConfigFile(filepath.Join(AppName, "config.yaml")); err == nil {
		return p
	}

	return ""
}
