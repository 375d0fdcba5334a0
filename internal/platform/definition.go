package platform

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/pkg/errors"
)

// Definition is a user-supplied platform as written in the config file.
type Definition struct {
	Name           string `yaml:"name"`
	URL            string `yaml:"url"`
	NotFoundStatus []int  `yaml:"not_found_status,omitempty"`
	// NotFoundURL is a regexp2 pattern; a final URL matching it means "not found".
	NotFoundURL string `yaml:"not_found_url,omitempty"`

	// Claimed and Unclaimed feed --validate.
	Claimed   string `yaml:"claimed,omitempty"`
	Unclaimed string `yaml:"unclaimed,omitempty"`
}

// SpecFromDefinition validates d and turns it into a Spec.
func SpecFromDefinition(d Definition) (Spec, error) {
	name := Normalize(d.Name)
	if name == "" {
		return Spec{}, errors.New("platform definition without a name")
	}
	if !strings.Contains(d.URL, Placeholder) {
		return Spec{}, fmt.Errorf("platform %q: url %q lacks the %s placeholder", name, d.URL, Placeholder)
	}

	pred := StatusNotIn(d.NotFoundStatus...)
	if d.NotFoundURL != "" {
		re, err := regexp2.Compile(d.NotFoundURL, regexp2.None)
		if err != nil {
			return Spec{}, errors.Wrapf(err, "platform %q: not_found_url", name)
		}
		re.MatchTimeout = time.Second
		pred = All(pred, NotRedirectedTo(re))
	}

	return Spec{
		Name:        name,
		URLTemplate: d.URL,
		Exists:      pred,
		Claimed:     d.Claimed,
		Unclaimed:   d.Unclaimed,
	}, nil
}

// SpecsFromDefinitions converts every definition, stopping at the first invalid one.
func SpecsFromDefinitions(defs []Definition) ([]Spec, error) {
	specs := make([]Spec, 0, len(defs))
	for _, d := range defs {
		s, err := SpecFromDefinition(d)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}
