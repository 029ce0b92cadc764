package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wittefeng/juan-cli/internal/npm"
	"github.com/wittefeng/juan-cli/internal/platform"
)

func TestListCachedPackages(t *testing.T) {
	store := t.TempDir()
	for _, dir := range []string{
		npm.StoreDirName("@juan-cli/template-vue", "1.10.0"),
		npm.StoreDirName("@juan-cli/template-vue", "1.9.0"),
		npm.StoreDirName("left-pad", "1.3.0"),
		"template-vue",
	} {
		if err := os.MkdirAll(filepath.Join(store, filepath.FromSlash(dir)), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(store, "_stray@1.0.0@stray"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	linked := filepath.Join(store, filepath.FromSlash(npm.StoreDirName("@juan-cli/template-vue", "1.10.0")))
	if err := platform.LinkDir(linked, filepath.Join(store, "@juan-cli", "template-vue")); err != nil {
		t.Fatal(err)
	}

	entries, err := listCachedPackages(store)
	if err != nil {
		t.Fatalf("listCachedPackages: %v", err)
	}

	var got []string
	for _, e := range entries {
		got = append(got, e.Name+"@"+e.Version)
		if want := e.Version == "1.10.0"; e.Linked != want {
			t.Errorf("%s@%s linked = %v, want %v", e.Name, e.Version, e.Linked, want)
		}
	}
	want := []string{"@juan-cli/template-vue@1.9.0", "@juan-cli/template-vue@1.10.0", "left-pad@1.3.0"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestListCachedPackagesMissingStore(t *testing.T) {
	entries, err := listCachedPackages(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %v", entries)
	}
}

func TestPrintCacheEntries(t *testing.T) {
	entries := []cacheEntry{{Name: "left-pad", Version: "1.3.0", Path: "/store/_left-pad@1.3.0@left-pad", Linked: true}}

	var buf bytes.Buffer
	if err := printCacheEntries(&buf, entries, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "LINKED") || !strings.Contains(buf.String(), "left-pad") {
		t.Errorf("table output = %q", buf.String())
	}

	buf.Reset()
	if err := printCacheEntries(&buf, nil, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No templates cached") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	if err := printCacheEntries(&buf, nil, true); err != nil {
		t.Fatal(err)
	}
	var decoded []cacheEntry
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if decoded == nil || len(decoded) != 0 {
		t.Errorf("json output = %q, want []", buf.String())
	}
}

func TestKnownConfigKey(t *testing.T) {
	if !knownConfigKey("registry") || !knownConfigKey("target_path") {
		t.Error("registry and target_path should be known keys")
	}
	if knownConfigKey("mirror") {
		t.Error("mirror should not be a known key")
	}
}
