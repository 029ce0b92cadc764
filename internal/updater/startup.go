package updater

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// CheckAndPrintBanner prints the update banner from the cached check and
// returns immediately. A stale or missing cache is refreshed by a
// background goroutine for the next invocation; the returned channel is
// closed when that refresh is done (at once when none was needed).
func (u *Updater) CheckAndPrintBanner(w io.Writer, configDir string) <-chan struct{} {
	done := make(chan struct{})
	if _, err := releaseVersion(u.currentVersion); err != nil {
		close(done)
		return done
	}

	cache, err := LoadCache(configDir)
	if err != nil {
		close(done)
		return done
	}

	if cache != nil && cache.UpdateAvailable && cache.CurrentVersion == u.currentVersion {
		PrintUpdateBanner(w, u.packageName, cache.CurrentVersion, cache.LatestVersion)
	}

	if !IsCacheStale(cache, DefaultCacheMaxAge) {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		u.refreshCache(configDir)
	}()
	return done
}

// PrintUpdateBanner prints the update notification to w.
func PrintUpdateBanner(w io.Writer, packageName, current, latest string) {
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)
	fmt.Fprintln(w)
	yellow.Fprintf(w, "Update available for %s: %s -> %s\n", packageName, current, latest)
	fmt.Fprint(w, "    Run ")
	bold.Fprintf(w, "npm install -g %s", packageName)
	fmt.Fprint(w, " to upgrade\n\n")
}

// refreshCache looks up the latest version and rewrites the cache file.
// Errors are dropped; the next run tries again.
func (u *Updater) refreshCache(configDir string) {
	ctx, cancel := context.WithTimeout(context.Background(), CheckTimeout)
	defer cancel()

	res, err := u.Check(ctx)
	if err != nil {
		return
	}
	_ = SaveCache(configDir, res.Cache(time.Now()))
}

// Cache converts a check result into its cached form.
func (r *Result) Cache(at time.Time) *VersionCache {
	return &VersionCache{
		PackageName:     r.PackageName,
		LatestVersion:   r.LatestVersion,
		CurrentVersion:  r.CurrentVersion,
		CheckedAt:       at,
		UpdateAvailable: r.UpdateAvailable,
	}
}
