package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/tdh8316/socialscan/internal/httpx"
)

// SherlockDataURL is where --update-db downloads the database from.
const SherlockDataURL = "https://raw.githubusercontent.com/sherlock-project/sherlock/refs/heads/master/sherlock_project/resources/data.json"

// LoadSherlock reads a sherlock-style data.json and returns the platforms it
// can express. Entries relying on page content are left out.
func LoadSherlock(filename string) ([]Spec, []string, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, nil, fmt.Errorf("parse %s: invalid json", filename)
	}
	specs, skipped := ParseSherlock(raw)
	return specs, skipped, nil
}

// ParseSherlock converts sherlock entries. It returns the converted specs and
// the names of entries that were skipped.
func ParseSherlock(raw []byte) ([]Spec, []string) {
	var (
		specs   []Spec
		skipped []string
	)

	gjson.ParseBytes(raw).ForEach(func(key, entry gjson.Result) bool {
		name := key.String()
		if name == "$schema" {
			return true
		}
		spec, ok := sherlockSpec(name, entry)
		if !ok {
			skipped = append(skipped, name)
			return true
		}
		specs = append(specs, spec)
		return true
	})

	return specs, skipped
}

func sherlockSpec(name string, entry gjson.Result) (Spec, bool) {
	url := entry.Get("url").String()
	if url == "" || !strings.Contains(url, "{}") {
		return Spec{}, false
	}
	// Rules for a separate probe endpoint don't hold for the profile URL.
	if entry.Get("urlProbe").Exists() {
		return Spec{}, false
	}

	var types []string
	if et := entry.Get("errorType"); et.IsArray() {
		for _, t := range et.Array() {
			types = append(types, t.String())
		}
	} else {
		types = append(types, et.String())
	}

	var preds []Predicate
	for _, t := range types {
		switch t {
		case "status_code":
			var codes []int
			ec := entry.Get("errorCode")
			if ec.IsArray() {
				for _, c := range ec.Array() {
					codes = append(codes, int(c.Int()))
				}
			} else if ec.Exists() {
				codes = append(codes, int(ec.Int()))
			}
			// errorCode narrows a 2xx answer further, it never widens it.
			preds = append(preds, StatusOK)
			if len(codes) > 0 {
				preds = append(preds, StatusNotIn(codes...))
			}
		case "response_url":
			preds = append(preds, FinalURLUnchanged)
		default:
			// "message" needs the body.
			return Spec{}, false
		}
	}

	return Spec{
		Name:        name,
		URLTemplate: strings.ReplaceAll(url, "{}", Placeholder),
		Exists:      All(preds...),
		Claimed:     entry.Get("username_claimed").String(),
		Unclaimed:   entry.Get("username_unclaimed").String(),
	}, true
}

// maxSherlockBytes bounds a downloaded database; upstream is a few hundred KB.
const maxSherlockBytes = 32 << 20

// FetchSherlock downloads a sherlock database from srcURL and atomically
// replaces destPath with it. On any error destPath is left as it was.
func FetchSherlock(ctx context.Context, client httpx.Doer, userAgent, srcURL, destPath string) error {
	req, err := httpx.NewRequest(ctx, http.MethodGet, srcURL, nil, userAgent)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "download sherlock database")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("download failed: %s (%s)", resp.Status, string(snippet))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSherlockBytes+1))
	if err != nil {
		return errors.Wrap(err, "read sherlock database")
	}
	if len(body) > maxSherlockBytes {
		return errors.Errorf("download failed: database exceeds %d bytes", maxSherlockBytes)
	}
	if !gjson.ValidBytes(body) {
		return errors.New("download failed: response is not valid json")
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}

	tmp := destPath + ".tmp"
	if err := os.WriteFile(tmp, body, 0o600); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, destPath); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
