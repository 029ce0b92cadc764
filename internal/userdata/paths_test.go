package userdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wittefeng/juan-cli/internal/clierr"
)

func TestCLIHome(t *testing.T) {
	home := filepath.FromSlash("/home/dev")
	tests := []struct {
		name     string
		override string
		want     string
	}{
		{"default", "", filepath.Join(home, ".juan-cli")},
		{"relative override", ".scaffold", filepath.Join(home, ".scaffold")},
		{"absolute override", filepath.FromSlash("/opt/juan"), filepath.FromSlash("/opt/juan")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CLIHome(home, tt.override); got != tt.want {
				t.Errorf("CLIHome(%q, %q) = %q, want %q", home, tt.override, got, tt.want)
			}
		})
	}
}

func TestCacheRoots(t *testing.T) {
	cliHome := filepath.FromSlash("/home/dev/.juan-cli")

	if got, want := TemplateRoot(cliHome), filepath.Join(cliHome, "template"); got != want {
		t.Errorf("TemplateRoot = %q, want %q", got, want)
	}
	if got, want := TemplateStore(cliHome), filepath.Join(cliHome, "template", "node_modules"); got != want {
		t.Errorf("TemplateStore = %q, want %q", got, want)
	}
	if got, want := DependenciesRoot(cliHome), filepath.Join(cliHome, "dependencies"); got != want {
		t.Errorf("DependenciesRoot = %q, want %q", got, want)
	}
	if got, want := DependenciesStore(cliHome), filepath.Join(cliHome, "dependencies", "node_modules"); got != want {
		t.Errorf("DependenciesStore = %q, want %q", got, want)
	}
}

func TestCheckUserHome(t *testing.T) {
	tmp := t.TempDir()
	if err := CheckUserHome(tmp); err != nil {
		t.Fatalf("existing dir: unexpected error %v", err)
	}

	err := CheckUserHome(filepath.Join(tmp, "missing"))
	if !errors.Is(err, clierr.ErrPrecondition) {
		t.Errorf("missing dir: expected precondition error, got %v", err)
	}

	file := filepath.Join(tmp, "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := CheckUserHome(file); !errors.Is(err, clierr.ErrPrecondition) {
		t.Errorf("file path: expected precondition error, got %v", err)
	}
}

func TestDotenvPath(t *testing.T) {
	home := filepath.FromSlash("/home/dev")
	if got, want := DotenvPath(home), filepath.Join(home, ".env"); got != want {
		t.Errorf("DotenvPath = %q, want %q", got, want)
	}
}
