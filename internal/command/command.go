// Package command dispatches CLI commands to their implementations. Each
// command is validated with Init before Exec runs it.
package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/wittefeng/juan-cli/internal/clierr"
	"github.com/wittefeng/juan-cli/internal/npm"
	"github.com/wittefeng/juan-cli/internal/pkgcache"
)

// Command is one executable CLI command.
type Command interface {
	Name() string
	// Init validates and stores the positional arguments.
	Init(args []string) error
	Exec(ctx context.Context) error
}

// Factory creates a fresh Command for one dispatch.
type Factory func() Command

// Packages maps command names to the npm package that provides them.
var Packages = map[string]string{
	"init": "@juan-cli/init",
}

// PackageStore is where command packages are cached when no target path is
// set: Root is the install root, Store holds the versioned package dirs.
type PackageStore struct {
	Root      string
	Store     string
	Registry  string
	Resolver  pkgcache.LatestResolver
	Installer pkgcache.Installer
}

// Registry holds the known commands.
type Registry struct {
	factories  map[string]Factory
	targetPath string
	store      *PackageStore
	logger     *slog.Logger
}

// NewRegistry creates an empty Registry. A non-empty targetPath points at a
// local checkout of the command packages.
func NewRegistry(targetPath string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		factories:  map[string]Factory{},
		targetPath: targetPath,
		logger:     logger,
	}
}

// UseStore makes Dispatch fetch the command's package into store before
// running it. It has no effect when a target path is set.
func (r *Registry) UseStore(store *PackageStore) {
	r.store = store
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Names returns the registered command names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the command registered as name. With a target path set, the
// local package for the command must declare an entry point; otherwise a
// warning is logged and nothing runs. Without one, the command package is
// installed or updated in the package store, if configured; a failure there
// is logged and the built-in command still runs.
func (r *Registry) Dispatch(ctx context.Context, name string, args []string) error {
	factory, ok := r.factories[name]
	if !ok {
		return clierr.Newf(clierr.ValidationFailed, "unknown command %q", name)
	}

	if r.targetPath != "" {
		runnable, err := r.checkLocalPackage(ctx, name)
		if err != nil {
			return err
		}
		if !runnable {
			return nil
		}
	} else if r.store != nil {
		if err := r.fetchPackage(ctx, name); err != nil {
			r.logger.Warn("could not update command package", "command", name, "error", err)
		}
	}

	cmd := factory()
	if err := cmd.Init(args); err != nil {
		return err
	}
	r.logger.Debug("executing command", "command", cmd.Name(), "args", args)
	return cmd.Exec(ctx)
}

func (r *Registry) checkLocalPackage(ctx context.Context, name string) (bool, error) {
	pkgName, ok := Packages[name]
	if !ok {
		return true, nil
	}
	r.logger.Debug("checking local command package", "package", pkgName, "target_path", r.targetPath)

	pkg, err := pkgcache.New(pkgcache.Options{
		TargetPath:     r.targetPath,
		PackageName:    pkgName,
		PackageVersion: npm.LatestTag,
	}, nil, nil)
	if err != nil {
		return false, err
	}

	exists, err := pkg.Exists(ctx)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, clierr.New(clierr.Precondition,
			fmt.Sprintf("target path %s does not exist", r.targetPath),
			"Fix --target-path or unset it to use the built-in commands")
	}

	entry, ok := pkg.RootFilePath()
	if !ok {
		r.logger.Warn("nothing to execute: package has no entry point", "package", pkgName, "target_path", r.targetPath)
		return false, nil
	}
	r.logger.Debug("local command package", "package", pkgName, "entry", entry)
	return true, nil
}

// fetchPackage installs the package behind command name into the store, or
// moves it to the latest version when it is already there.
func (r *Registry) fetchPackage(ctx context.Context, name string) error {
	pkgName, ok := Packages[name]
	if !ok {
		return nil
	}

	pkg, err := pkgcache.New(pkgcache.Options{
		TargetPath:     r.store.Root,
		StorePath:      r.store.Store,
		PackageName:    pkgName,
		PackageVersion: npm.LatestTag,
		Registry:       r.store.Registry,
	}, r.store.Resolver, r.store.Installer)
	if err != nil {
		return err
	}

	exists, err := pkg.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		_, err = pkg.Update(ctx)
	} else {
		err = pkg.Install(ctx)
	}
	if err != nil {
		return err
	}

	entry, _ := pkg.RootFilePath()
	r.logger.Debug("command package ready", "package", pkgName, "version", pkg.Version(), "entry", entry)
	return nil
}
