package updater

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeResolver struct {
	latest string
	ok     bool
	err    error
	base   string
}

func (f *fakeResolver) ResolveSatisfying(_ context.Context, base, _ string) (string, bool, error) {
	f.base = base
	return f.latest, f.ok, f.err
}

func TestCheck(t *testing.T) {
	r := &fakeResolver{latest: "1.4.0", ok: true}
	u := New("1.2.0", "@juan-cli/core", r)

	res, err := u.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if !res.UpdateAvailable || res.LatestVersion != "1.4.0" {
		t.Errorf("result = %+v, want update to 1.4.0", res)
	}
	if r.base != "1.2.0" {
		t.Errorf("resolver base = %q, want current version", r.base)
	}
}

func TestCheckComparesSemver(t *testing.T) {
	tests := []struct {
		current   string
		latest    string
		available bool
	}{
		{"1.9.0", "1.10.0", true},
		{"v1.0.0", "1.0.1", true},
		{"1.0.0-beta.1", "1.0.0", true},
		{"1.1.0", "1.1.0", false},
		{"1.2.0", "1.1.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.current+"->"+tt.latest, func(t *testing.T) {
			u := New(tt.current, "@juan-cli/core", &fakeResolver{latest: tt.latest, ok: true})
			res, err := u.Check(context.Background())
			if err != nil {
				t.Fatalf("Check() error: %v", err)
			}
			if res.UpdateAvailable != tt.available {
				t.Errorf("UpdateAvailable = %v, want %v", res.UpdateAvailable, tt.available)
			}
		})
	}
}

func TestReleaseVersionRejects(t *testing.T) {
	for _, v := range []string{"dev", "1.0", "notaversion", ""} {
		if _, err := releaseVersion(v); err == nil {
			t.Errorf("releaseVersion(%q) should fail", v)
		}
	}
}

func TestCheckNoMatch(t *testing.T) {
	u := New("1.2.0", "@juan-cli/core", &fakeResolver{})
	res, err := u.Check(context.Background())
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if res.UpdateAvailable || res.LatestVersion != "1.2.0" {
		t.Errorf("result = %+v, want no update", res)
	}
}

func TestCheckDevBuild(t *testing.T) {
	u := New("dev", "@juan-cli/core", &fakeResolver{})
	if _, err := u.Check(context.Background()); err == nil {
		t.Error("expected error for a non-release version")
	}
}

func TestCheckRegistryError(t *testing.T) {
	boom := errors.New("registry down")
	u := New("1.0.0", "@juan-cli/core", &fakeResolver{err: boom})
	if _, err := u.Check(context.Background()); !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

func TestCheckAndPrintBannerFromCache(t *testing.T) {
	dir := t.TempDir()
	cache := &VersionCache{
		PackageName:     "@juan-cli/core",
		CurrentVersion:  "1.0.0",
		LatestVersion:   "1.3.0",
		CheckedAt:       time.Now(),
		UpdateAvailable: true,
	}
	if err := SaveCache(dir, cache); err != nil {
		t.Fatal(err)
	}

	r := &fakeResolver{}
	var out bytes.Buffer
	<-New("1.0.0", "@juan-cli/core", r).CheckAndPrintBanner(&out, dir)

	if !strings.Contains(out.String(), "1.0.0 -> 1.3.0") {
		t.Errorf("banner missing, got %q", out.String())
	}
	if !strings.Contains(out.String(), "npm install -g @juan-cli/core") {
		t.Errorf("upgrade command missing, got %q", out.String())
	}
	if r.base != "" {
		t.Error("fresh cache must not trigger a registry lookup")
	}
}

func TestCheckAndPrintBannerIgnoresOtherVersionCache(t *testing.T) {
	dir := t.TempDir()
	cache := &VersionCache{CurrentVersion: "0.9.0", LatestVersion: "1.3.0", CheckedAt: time.Now(), UpdateAvailable: true}
	if err := SaveCache(dir, cache); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	<-New("1.3.0", "@juan-cli/core", &fakeResolver{}).CheckAndPrintBanner(&out, dir)
	if out.Len() != 0 {
		t.Errorf("unexpected banner after upgrading: %q", out.String())
	}
}

func TestCheckAndPrintBannerRefreshesStaleCache(t *testing.T) {
	dir := t.TempDir()
	r := &fakeResolver{latest: "2.1.0", ok: true}

	var out bytes.Buffer
	<-New("2.0.0", "@juan-cli/core", r).CheckAndPrintBanner(&out, dir)

	if out.Len() != 0 {
		t.Errorf("first run should print nothing, got %q", out.String())
	}
	cache, err := LoadCache(dir)
	if err != nil || cache == nil {
		t.Fatalf("cache not written: %v", err)
	}
	if !cache.UpdateAvailable || cache.LatestVersion != "2.1.0" {
		t.Errorf("cache = %+v", cache)
	}
}
