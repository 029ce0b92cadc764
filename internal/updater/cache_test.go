package updater

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCache_Missing(t *testing.T) {
	cache, err := LoadCache(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache != nil {
		t.Error("expected nil cache for missing file")
	}
}

func TestSaveAndLoadCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".juan-cli")

	original := &VersionCache{
		PackageName:     "@juan-cli/core",
		LatestVersion:   "1.2.0",
		CurrentVersion:  "1.1.0",
		CheckedAt:       time.Now().Truncate(time.Second),
		UpdateAvailable: true,
	}
	if err := SaveCache(dir, original); err != nil {
		t.Fatalf("SaveCache failed: %v", err)
	}
	if _, err := os.Stat(CachePath(dir) + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary cache file left behind")
	}

	loaded, err := LoadCache(dir)
	if err != nil {
		t.Fatalf("LoadCache failed: %v", err)
	}
	if loaded.PackageName != "@juan-cli/core" {
		t.Errorf("PackageName = %q", loaded.PackageName)
	}
	if loaded.LatestVersion != "1.2.0" || loaded.CurrentVersion != "1.1.0" {
		t.Errorf("versions = %q/%q, want 1.1.0/1.2.0", loaded.CurrentVersion, loaded.LatestVersion)
	}
	if !loaded.UpdateAvailable {
		t.Error("UpdateAvailable should be true")
	}
	if !loaded.CheckedAt.Equal(original.CheckedAt) {
		t.Errorf("CheckedAt = %v, want %v", loaded.CheckedAt, original.CheckedAt)
	}
}

func TestLoadCache_Corrupted(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(CachePath(dir), []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCache(dir); err == nil {
		t.Error("expected error for corrupted cache")
	}
}

func TestIsCacheStale(t *testing.T) {
	tests := []struct {
		name     string
		cache    *VersionCache
		expected bool
	}{
		{"nil cache is stale", nil, true},
		{"fresh cache", &VersionCache{CheckedAt: time.Now()}, false},
		{"a day and a second old", &VersionCache{CheckedAt: time.Now().Add(-DefaultCacheMaxAge - time.Second)}, true},
		{"zero time", &VersionCache{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCacheStale(tt.cache, DefaultCacheMaxAge); got != tt.expected {
				t.Errorf("IsCacheStale = %v, want %v", got, tt.expected)
			}
		})
	}
}
