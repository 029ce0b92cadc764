package npm

import (
	"context"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/wittefeng/juan-cli/internal/clierr"
)

// LatestTag is the symbolic version request resolved to the newest release.
const LatestTag = "latest"

// VersionLister returns every published version of a package.
type VersionLister interface {
	Versions(ctx context.Context, name string) ([]string, error)
}

// Resolver turns symbolic version requests into exact versions.
type Resolver struct {
	lister VersionLister
}

// NewResolver creates a Resolver backed by lister (usually a *Client).
func NewResolver(lister VersionLister) *Resolver {
	return &Resolver{lister: lister}
}

// ResolveLatest returns the highest semver version of name. Registry errors
// propagate unchanged; an empty version list is NoVersionsFound.
func (r *Resolver) ResolveLatest(ctx context.Context, name string) (string, error) {
	versions, err := r.lister.Versions(ctx, name)
	if err != nil {
		return "", err
	}
	sorted := SortDesc(versions)
	if len(sorted) == 0 {
		return "", clierr.Newf(clierr.NoVersionsFound, "no versions of %s found", name)
	}
	return sorted[0], nil
}

// ResolveSatisfying returns the highest version of name matching ^base.
// The bool is false when nothing matches; that is not an error.
func (r *Resolver) ResolveSatisfying(ctx context.Context, base, name string) (string, bool, error) {
	versions, err := r.lister.Versions(ctx, name)
	if err != nil {
		return "", false, err
	}
	matches := Satisfying(base, versions)
	if len(matches) == 0 {
		return "", false, nil
	}
	return matches[0], true, nil
}

// SortDesc returns the valid semver strings of versions ordered from highest
// to lowest. Strings that do not parse are dropped. The returned strings are
// the originals, not normalized forms.
func SortDesc(versions []string) []string {
	type parsed struct {
		raw string
		v   *semver.Version
	}
	valid := make([]parsed, 0, len(versions))
	for _, raw := range versions {
		v, err := parseSemver(raw)
		if err != nil {
			continue
		}
		valid = append(valid, parsed{raw: raw, v: v})
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].v.GreaterThan(valid[j].v)
	})

	out := make([]string, len(valid))
	for i, p := range valid {
		out[i] = p.raw
	}
	return out
}

// Satisfying returns versions matching the caret range ^base, highest first.
// An unparseable base matches nothing.
func Satisfying(base string, versions []string) []string {
	c, err := semver.NewConstraint("^" + strings.TrimPrefix(base, "v"))
	if err != nil {
		return nil
	}
	var matches []string
	for _, raw := range versions {
		v, err := parseSemver(raw)
		if err != nil {
			continue
		}
		if c.Check(v) {
			matches = append(matches, raw)
		}
	}
	return SortDesc(matches)
}

// IsExact reports whether version is a full, strict semver string.
func IsExact(version string) bool {
	_, err := semver.StrictNewVersion(strings.TrimPrefix(version, "v"))
	return err == nil
}

// parseSemver strips a leading "v" and parses strictly; registry versions
// are always full x.y.z strings.
func parseSemver(version string) (*semver.Version, error) {
	return semver.StrictNewVersion(strings.TrimPrefix(version, "v"))
}
