package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const upstreamDB = `{"Fresh": {"errorType": "status_code", "url": "https://fresh.test/{}"}}`

func sherlockServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.UserAgent() != "socialscan-test" {
			t.Errorf("User-Agent = %q", r.UserAgent())
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeExisting(t *testing.T) string {
	t.Helper()
	dest := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(dest, []byte(sherlockSample), 0o600); err != nil {
		t.Fatal(err)
	}
	return dest
}

func TestFetchSherlock(t *testing.T) {
	t.Parallel()

	t.Run("replaces the database", func(t *testing.T) {
		t.Parallel()
		srv := sherlockServer(t, http.StatusOK, upstreamDB)
		dest := writeExisting(t)

		if err := FetchSherlock(context.Background(), srv.Client(), "socialscan-test", srv.URL, dest); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		specs, _, err := LoadSherlock(dest)
		if err != nil {
			t.Fatalf("LoadSherlock: %v", err)
		}
		if len(specs) != 1 || specs[0].Name != "Fresh" {
			t.Errorf("database not replaced: %+v", specs)
		}
		if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
			t.Errorf("temporary file left behind: %v", err)
		}
	})

	t.Run("creates missing directories", func(t *testing.T) {
		t.Parallel()
		srv := sherlockServer(t, http.StatusOK, upstreamDB)
		dest := filepath.Join(t.TempDir(), "a", "b", "data.json")

		if err := FetchSherlock(context.Background(), srv.Client(), "socialscan-test", srv.URL, dest); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(dest); err != nil {
			t.Errorf("database not written: %v", err)
		}
	})

	for name, tc := range map[string]struct {
		status int
		body   string
	}{
		"non-200 keeps the old file": {http.StatusBadGateway, upstreamDB},
		"invalid json is rejected":   {http.StatusOK, "<html>rate limited</html>"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := sherlockServer(t, tc.status, tc.body)
			dest := writeExisting(t)

			if err := FetchSherlock(context.Background(), srv.Client(), "socialscan-test", srv.URL, dest); err == nil {
				t.Fatal("expected an error")
			}

			got, err := os.ReadFile(dest)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != sherlockSample {
				t.Error("existing database was modified")
			}
			if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
				t.Errorf("temporary file left behind: %v", err)
			}
		})
	}

	t.Run("failed rename removes the temporary file", func(t *testing.T) {
		t.Parallel()
		srv := sherlockServer(t, http.StatusOK, upstreamDB)

		// A non-empty directory cannot be replaced by a file.
		dest := filepath.Join(t.TempDir(), "data.json")
		if err := os.MkdirAll(filepath.Join(dest, "keep"), 0o750); err != nil {
			t.Fatal(err)
		}

		if err := FetchSherlock(context.Background(), srv.Client(), "socialscan-test", srv.URL, dest); err == nil {
			t.Fatal("expected an error")
		}
		if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
			t.Errorf("temporary file left behind: %v", err)
		}
	})
}
