// Package pkgcache keeps version-pinned copies of registry packages in a
// local store and locates their entry points.
package pkgcache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/wittefeng/juan-cli/internal/clierr"
	"github.com/wittefeng/juan-cli/internal/npm"
)

// LatestResolver resolves the newest published version of a package.
type LatestResolver interface {
	ResolveLatest(ctx context.Context, name string) (string, error)
}

// Installer fetches packages into a store.
type Installer interface {
	Install(ctx context.Context, o npm.InstallOptions) error
}

// Options describes one package. With StorePath set the package lives in
// the store under its cache directory; without it TargetPath is a local
// override that is used as-is.
type Options struct {
	TargetPath     string
	StorePath      string
	PackageName    string
	PackageVersion string
	Registry       string
}

// Package is a package reference bound to a local cache location.
type Package struct {
	targetPath string
	storePath  string
	name       string
	version    string
	registry   string

	resolver  LatestResolver
	installer Installer
}

// New creates a Package. An empty version means "latest".
func New(o Options, resolver LatestResolver, installer Installer) (*Package, error) {
	if o.PackageName == "" {
		return nil, clierr.New(clierr.ValidationFailed, "package name is required")
	}
	version := o.PackageVersion
	if version == "" {
		version = npm.LatestTag
	}
	return &Package{
		targetPath: o.TargetPath,
		storePath:  o.StorePath,
		name:       o.PackageName,
		version:    version,
		registry:   o.Registry,
		resolver:   resolver,
		installer:  installer,
	}, nil
}

// Name returns the package name.
func (p *Package) Name() string { return p.name }

// Version returns the current version, which is "latest" until Prepare
// resolves it.
func (p *Package) Version() string { return p.version }

// StorePath returns the store root, empty for a local override.
func (p *Package) StorePath() string { return p.storePath }

// Prepare creates the store directory and pins "latest" to a concrete
// version. It is idempotent.
func (p *Package) Prepare(ctx context.Context) error {
	if p.storePath != "" {
		if err := os.MkdirAll(p.storePath, 0755); err != nil {
			return clierr.Wrap(err, clierr.Precondition, "creating cache directory "+p.storePath)
		}
	}
	if p.version == npm.LatestTag {
		v, err := p.resolver.ResolveLatest(ctx, p.name)
		if err != nil {
			return err
		}
		p.version = v
	}
	return nil
}

// CacheDirFor returns where version of this package lives in the store.
func (p *Package) CacheDirFor(version string) string {
	return filepath.Join(p.storePath, filepath.FromSlash(npm.StoreDirName(p.name, version)))
}

// CacheFilePath returns the cache directory of the current version.
func (p *Package) CacheFilePath() string {
	return p.CacheDirFor(p.version)
}

// Exists reports whether the package is present locally.
func (p *Package) Exists(ctx context.Context) (bool, error) {
	if p.storePath == "" {
		return pathExists(p.targetPath), nil
	}
	if err := p.Prepare(ctx); err != nil {
		return false, err
	}
	return pathExists(p.CacheFilePath()), nil
}

// Install fetches the current version into the store. Files written before
// a failure are left behind.
func (p *Package) Install(ctx context.Context) error {
	if err := p.Prepare(ctx); err != nil {
		return err
	}
	return p.install(ctx, p.version)
}

// Update moves the package to the newest published version and returns it.
// A cache directory that already exists for that version is adopted
// without reinstalling.
func (p *Package) Update(ctx context.Context) (string, error) {
	if err := p.Prepare(ctx); err != nil {
		return "", err
	}
	latest, err := p.resolver.ResolveLatest(ctx, p.name)
	if err != nil {
		return "", err
	}
	if !pathExists(p.CacheDirFor(latest)) {
		if err := p.install(ctx, latest); err != nil {
			return "", err
		}
	}
	p.version = latest
	return latest, nil
}

func (p *Package) install(ctx context.Context, version string) error {
	err := p.installer.Install(ctx, npm.InstallOptions{
		Root:     p.targetPath,
		StoreDir: p.storePath,
		Registry: p.registry,
		Pkgs:     []npm.PackageSpec{{Name: p.name, Version: version}},
	})
	if err != nil {
		return clierr.Wrap(err, clierr.InstallFailed, "installing "+p.name+"@"+version,
			"Check that the registry is reachable",
			"Remove "+p.CacheDirFor(version)+" and try again")
	}
	return nil
}

// RootFilePath returns the entry point declared by the "main" field of the
// nearest package.json at or above the package directory, with forward
// slashes. The bool is false when there is none.
func (p *Package) RootFilePath() (string, bool) {
	start := p.targetPath
	if p.storePath != "" {
		start = p.CacheFilePath()
	}
	if start == "" {
		return "", false
	}
	dir, ok := findPackageDir(start)
	if !ok {
		return "", false
	}
	main, err := readMain(filepath.Join(dir, "package.json"))
	if err != nil || main == "" {
		return "", false
	}
	return filepath.ToSlash(filepath.Join(dir, filepath.FromSlash(main))), true
}

// findPackageDir walks up from start to the first directory holding a
// package.json.
func findPackageDir(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, "package.json")); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func readMain(manifest string) (string, error) {
	data, err := os.ReadFile(manifest)
	if err != nil {
		return "", err
	}
	var pkg struct {
		Main string `json:"main"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", err
	}
	return pkg.Main, nil
}

func pathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
