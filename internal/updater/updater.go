package updater

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// CheckTimeout bounds a background registry lookup.
const CheckTimeout = 5 * time.Second

// SatisfyingResolver finds the newest published version matching ^base.
type SatisfyingResolver interface {
	ResolveSatisfying(ctx context.Context, base, name string) (string, bool, error)
}

// Result is the outcome of one version check.
type Result struct {
	PackageName     string
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
}

// Updater checks the registry for newer releases of the CLI package.
type Updater struct {
	currentVersion string
	packageName    string
	resolver       SatisfyingResolver
}

// New creates an Updater for packageName at currentVersion.
func New(currentVersion, packageName string, resolver SatisfyingResolver) *Updater {
	return &Updater{
		currentVersion: currentVersion,
		packageName:    packageName,
		resolver:       resolver,
	}
}

// CurrentVersion returns the version this updater was created with.
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}

// PackageName returns the npm package the CLI is published as.
func (u *Updater) PackageName() string {
	return u.packageName
}

// Check asks the registry for the newest release compatible with the
// current version.
func (u *Updater) Check(ctx context.Context) (*Result, error) {
	current, err := releaseVersion(u.currentVersion)
	if err != nil {
		return nil, err
	}

	res := &Result{PackageName: u.packageName, CurrentVersion: u.currentVersion, LatestVersion: u.currentVersion}
	latest, ok, err := u.resolver.ResolveSatisfying(ctx, u.currentVersion, u.packageName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return res, nil
	}

	lv, err := releaseVersion(latest)
	if err != nil {
		return nil, fmt.Errorf("registry returned %w", err)
	}
	res.LatestVersion = latest
	res.UpdateAvailable = lv.GreaterThan(current)
	return res, nil
}

// releaseVersion parses a full x.y.z version with an optional "v" prefix.
// Development builds ("dev") and partial versions are rejected.
func releaseVersion(v string) (*semver.Version, error) {
	sv, err := semver.StrictNewVersion(strings.TrimPrefix(v, "v"))
	if err != nil {
		return nil, fmt.Errorf("version %q is not a release version: %w", v, err)
	}
	return sv, nil
}
