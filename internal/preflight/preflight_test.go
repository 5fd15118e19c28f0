package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gearboy/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCatalogFile(t *testing.T) {
	dir := t.TempDir()

	if r := CheckCatalogFile(filepath.Join(dir, "db.json")); !r.Passed {
		t.Fatalf("expected missing catalog to pass, got: %s", r.Detail)
	}

	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(`[{"id":1,"file":"a.gb"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckCatalogFile(good); !r.Passed || r.Detail != good+" (1 entries)" {
		t.Fatalf("unexpected result for valid catalog: %+v", r)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckCatalogFile(bad); r.Passed {
		t.Fatal("expected corrupt catalog to fail")
	}
}

func TestCheckTitleDatabase(t *testing.T) {
	if r := CheckTitleDatabase(""); !r.Passed {
		t.Fatalf("expected bundled database to pass, got: %s", r.Detail)
	}
	if r := CheckTitleDatabase(filepath.Join(t.TempDir(), "missing.db")); r.Passed {
		t.Fatal("expected missing index to fail")
	}
}

func TestCheckBoxArtService_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD request, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result := CheckBoxArtService(context.Background(), srv.URL, time.Second)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckBoxArtService_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	result := CheckBoxArtService(context.Background(), srv.URL, time.Second)
	if result.Passed {
		t.Fatal("expected failure for server error")
	}
}

func TestCheckBoxArtService_MissingURL(t *testing.T) {
	result := CheckBoxArtService(context.Background(), "", time.Second)
	if result.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_BoxArtDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.DatabaseDir = t.TempDir()
	cfg.BoxArt.Enabled = false

	results := RunAll(context.Background(), &cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if !Passed(results) {
		for _, r := range results {
			t.Errorf("check %q: passed=%v %s", r.Name, r.Passed, r.Detail)
		}
	}
}

func TestRunAll_IncludesBoxArtWhenEnabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.DatabaseDir = t.TempDir()
	cfg.BoxArt.Enabled = true
	cfg.BoxArt.BaseURL = srv.URL

	results := RunAll(context.Background(), &cfg)
	found := false
	for _, r := range results {
		if r.Name == "Box art service" {
			found = true
			if !r.Passed {
				t.Errorf("box art check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected box art check in results")
	}
}
