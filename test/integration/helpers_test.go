//go:build integration

package integration_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // HOME, holds .juan-cli
	CLIHome    string // <HomeDir>/.juan-cli
	ProjectDir string // where init runs
	NpmLog     string // every fake npm invocation is appended here
}

// setupTestEnv creates isolated temp directories, points HOME at one of them
// and puts a fake npm first on PATH. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake npm is a shell script")
	}

	home := t.TempDir()
	env := &testEnv{
		HomeDir:    home,
		CLIHome:    filepath.Join(home, ".juan-cli"),
		ProjectDir: t.TempDir(),
		NpmLog:     filepath.Join(t.TempDir(), "npm.log"),
	}
	t.Setenv("HOME", home)

	bin := t.TempDir()
	script := "#!/bin/sh\necho \"$@\" >> \"" + env.NpmLog + "\"\n"
	writeFile(t, filepath.Join(bin, "npm"), script)
	if err := os.Chmod(filepath.Join(bin, "npm"), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	return env
}

// templatePackage builds an npm tarball for a template package. Files are
// placed under package/ the way npm pack lays them out.
func templatePackage(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		hdr := &tar.Header{Name: "package/" + name, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// startRegistry serves a packument and tarballs for one package. versions
// maps each published version to its tarball.
func startRegistry(t *testing.T, name string, versions map[string][]byte) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.EscapedPath(), "/")
		if v, ok := strings.CutPrefix(path, "tarballs/"); ok {
			tgz, found := versions[strings.TrimSuffix(v, ".tgz")]
			if !found {
				http.NotFound(w, r)
				return
			}
			w.Write(tgz)
			return
		}
		if path != strings.ReplaceAll(name, "/", "%2F") {
			http.NotFound(w, r)
			return
		}

		doc := map[string]any{"name": name}
		vs := map[string]any{}
		for v, tgz := range versions {
			sum := sha512.Sum512(tgz)
			vs[v] = map[string]any{
				"name":    name,
				"version": v,
				"dist": map[string]string{
					"tarball":   srv.URL + "/tarballs/" + v + ".tgz",
					"integrity": "sha512-" + base64.StdEncoding.EncodeToString(sum[:]),
				},
			}
		}
		doc["versions"] = vs
		json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// startTemplateServer serves list at /project/template.
func startTemplateServer(t *testing.T, list string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/project/template" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(list))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeFile creates parent directories and writes content to path.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}

// assertDirEmpty fails if dir holds any entry.
func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	if len(entries) != 0 {
		t.Errorf("expected %s to be empty, found %d entries", dir, len(entries))
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
