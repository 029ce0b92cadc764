package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/wittefeng/juan-cli/internal/clierr"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading %s: %v", rel, err)
	}
	return string(data)
}

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt": "v=<%= version %>",
	})

	if err := Render(context.Background(), root, nil, map[string]any{"version": "1.0.0"}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got := readFile(t, root, "a.txt"); got != "v=1.0.0" {
		t.Errorf("a.txt = %q, want %q", got, "v=1.0.0")
	}
}

func TestRenderDotAndFunctionForms(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json": `{"name":"<%= className %>","version":"<%= .projectVersion %>"}`,
		"src/App.vue":  "<template><h1><%= projectName %></h1></template>",
	})

	data := map[string]any{
		"className":      "my-app",
		"projectName":    "MyApp",
		"projectVersion": "2.1.0",
	}
	if err := Render(context.Background(), root, DefaultIgnore, data); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if got := readFile(t, root, "package.json"); got != `{"name":"my-app","version":"2.1.0"}` {
		t.Errorf("package.json = %q", got)
	}
	if got := readFile(t, root, "src/App.vue"); !strings.Contains(got, "<h1>MyApp</h1>") {
		t.Errorf("App.vue = %q", got)
	}
}

func TestRenderLeavesIgnoredFilesIdentical(t *testing.T) {
	root := t.TempDir()
	original := "<%= notDefined %> and <% raw %>"
	writeTree(t, root, map[string]string{
		"index.js":                       "<%= name %>",
		"node_modules/dep/index.js":      original,
		"public/index.html":              original,
		"packages/web/dist/bundle.js":    original,
		"packages/web/node_modules/x.js": original,
	})

	if err := Render(context.Background(), root, DefaultIgnore, map[string]any{"name": "ok"}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if got := readFile(t, root, "index.js"); got != "ok" {
		t.Errorf("index.js = %q, want %q", got, "ok")
	}
	for _, rel := range []string{
		"node_modules/dep/index.js",
		"public/index.html",
		"packages/web/dist/bundle.js",
		"packages/web/node_modules/x.js",
	} {
		if got := readFile(t, root, rel); got != original {
			t.Errorf("%s changed: %q", rel, got)
		}
	}
}

func TestRenderSkipsDotEntries(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":         "# <%= name %>",
		".git/hooks/note":   "echo <%= user %>",
		".env":              "TOKEN=<%= token %>",
		".git/objects/ab/c": "blob",
	})
	obj := filepath.Join(root, ".git", "objects", "ab", "c")
	if err := os.Chmod(obj, 0444); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(obj, 0644) })

	if err := Render(context.Background(), root, DefaultIgnore, map[string]any{"name": "demo"}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got := readFile(t, root, "README.md"); got != "# demo" {
		t.Errorf("README.md = %q", got)
	}
	if got := readFile(t, root, ".git/hooks/note"); got != "echo <%= user %>" {
		t.Errorf(".git/hooks/note was rewritten: %q", got)
	}
	if got := readFile(t, root, ".env"); got != "TOKEN=<%= token %>" {
		t.Errorf(".env was rewritten: %q", got)
	}
}

func TestRenderUnknownVariableFails(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"bad.txt": "<%= missing %>"})

	err := Render(context.Background(), root, nil, map[string]any{"name": "x"})
	if err == nil {
		t.Fatal("expected error for unknown variable")
	}
	if !errors.Is(err, clierr.ErrRenderFailed) {
		t.Errorf("error %v should match ErrRenderFailed", err)
	}
	var fe *FileError
	if !errors.As(err, &fe) {
		t.Fatalf("error %T is not a *FileError", err)
	}
	if filepath.Base(fe.File) != "bad.txt" {
		t.Errorf("FileError.File = %q", fe.File)
	}
}

func TestRenderMissingMapKeyFails(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"bad.txt": "<%= .missing %>"})

	if err := Render(context.Background(), root, nil, map[string]any{}); !errors.Is(err, clierr.ErrRenderFailed) {
		t.Errorf("expected ErrRenderFailed, got %v", err)
	}
}

func TestRenderSkipsNonIdentifierKeys(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": `<%= index . "project-name" %>`})

	data := map[string]any{"project-name": "dashed"}
	if err := Render(context.Background(), root, nil, data); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got := readFile(t, root, "a.txt"); got != "dashed" {
		t.Errorf("a.txt = %q, want %q", got, "dashed")
	}
}

func TestRenderPreservesMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on Windows")
	}
	root := t.TempDir()
	script := filepath.Join(root, "run.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho <%= name %>\n"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := Render(context.Background(), root, nil, map[string]any{"name": "hi"}); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	info, err := os.Stat(script)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("mode = %o, want 755", info.Mode().Perm())
	}
}

func TestRenderInvalidIgnorePattern(t *testing.T) {
	err := Render(context.Background(), t.TempDir(), []string{"[unclosed"}, nil)
	if !errors.Is(err, clierr.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
}

func TestRenderCanceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "<%= name %>"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Render(ctx, root, nil, map[string]any{"name": "x"}); err == nil {
		t.Error("expected error from canceled context")
	}
	if got := readFile(t, root, "a.txt"); got != "<%= name %>" {
		t.Errorf("a.txt rendered despite cancellation: %q", got)
	}
}

func TestCopyTemplate(t *testing.T) {
	src := filepath.Join(t.TempDir(), "template")
	writeTree(t, src, map[string]string{
		"package.json": `{"name":"<%= className %>"}`,
		"src/main.js":  "import App from './App.vue'",
	})
	dst := t.TempDir()

	if err := CopyTemplate(src, dst); err != nil {
		t.Fatalf("CopyTemplate() error: %v", err)
	}
	if got := readFile(t, dst, "src/main.js"); got != "import App from './App.vue'" {
		t.Errorf("src/main.js = %q", got)
	}
}

func TestCopyTemplateCreatesMissingSource(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "missing")
	dst := filepath.Join(tmp, "out")

	if err := CopyTemplate(src, dst); err != nil {
		t.Fatalf("CopyTemplate() error: %v", err)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("destination not created: %v", err)
	}
}
