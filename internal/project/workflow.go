package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/wittefeng/juan-cli/internal/catalog"
	"github.com/wittefeng/juan-cli/internal/clierr"
	"github.com/wittefeng/juan-cli/internal/pkgcache"
	"github.com/wittefeng/juan-cli/internal/progress"
	"github.com/wittefeng/juan-cli/internal/render"
	"github.com/wittefeng/juan-cli/internal/userdata"
)

// State is a step of the init workflow.
type State int

const (
	StateStart State = iota
	StateSafetyCheck
	StateMetadataCollection
	StateTemplateResolution
	StateFetchOrUpdate
	StateRender
	StateDependencyInstall
	StateStartCommand
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StateSafetyCheck:
		return "SafetyCheck"
	case StateMetadataCollection:
		return "MetadataCollection"
	case StateTemplateResolution:
		return "TemplateResolution"
	case StateFetchOrUpdate:
		return "FetchOrUpdate"
	case StateRender:
		return "Render"
	case StateDependencyInstall:
		return "DependencyInstall"
	case StateStartCommand:
		return "StartCommand"
	case StateDone:
		return "Done"
	case StateAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrAborted means the user declined or cancelled a prompt.
var ErrAborted = errors.New("project creation aborted")

// Kinds of things init can create.
const (
	KindProject   = catalog.KindProject
	KindComponent = catalog.KindComponent
)

// Info is what the user told us about the new project.
type Info struct {
	Kind        string
	Name        string
	Version     string
	Template    string // npm name of the chosen template
	ClassName   string
	Description string // components only
}

// Data returns the render context for info.
func (i Info) Data() map[string]any {
	return map[string]any{
		"type":           i.Kind,
		"name":           i.Name,
		"projectName":    i.Name,
		"projectVersion": i.Version,
		"version":        i.Version,
		"className":      i.ClassName,
		"description":    i.Description,
		"templateName":   i.Template,
	}
}

// CommandRunner runs a template's install or start command.
type CommandRunner interface {
	Run(ctx context.Context, commandLine string) (int, error)
}

// Config wires a Workflow.
type Config struct {
	ProjectName string // from the command line, may be empty or invalid
	Force       bool
	Dir         string // directory the project is created in
	CLIHome     string
	Registry    string

	Prompter  Prompter
	Templates catalog.Source
	Resolver  pkgcache.LatestResolver
	Installer pkgcache.Installer
	Runner    CommandRunner
	Spinner   progress.Factory
	Logger    *slog.Logger
	Out       io.Writer
}

// Workflow creates a project from a template: it checks the target
// directory, asks for project details, fetches the template package,
// renders it and runs its install and start commands.
type Workflow struct {
	cfg   Config
	log   *slog.Logger
	state State

	templates []catalog.Template
	info      *Info
	template  catalog.Template
	pkg       *pkgcache.Package
}

// New creates a Workflow. Spinner, Logger and Out default to silent
// implementations.
func New(cfg Config) *Workflow {
	if cfg.Spinner == nil {
		cfg.Spinner = progress.Noop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	return &Workflow{cfg: cfg, log: cfg.Logger}
}

// State returns the step the workflow reached.
func (w *Workflow) State() State { return w.state }

// Info returns the collected project details, nil before Prepare succeeds.
func (w *Workflow) Info() *Info { return w.info }

// Package returns the template package, nil before DownloadTemplate.
func (w *Workflow) Package() *pkgcache.Package { return w.pkg }

// Run executes the whole workflow. Declined confirmations, template fetch
// failures, render failures and disallowed commands end the run early
// without an error; the reason is logged and State reports where it
// stopped. Errors returned are fatal.
func (w *Workflow) Run(ctx context.Context) error {
	w.state = StateStart

	if _, err := w.Prepare(ctx); err != nil {
		if errors.Is(err, ErrAborted) {
			w.state = StateAborted
			w.log.Info("project creation aborted")
			return nil
		}
		return err
	}

	if err := w.DownloadTemplate(ctx); err != nil {
		w.log.Warn("could not fetch template", "template", w.template.NpmName, "error", err)
		return nil
	}

	if err := w.InstallTemplate(ctx); err != nil {
		if recoverable(err) {
			w.log.Warn("project creation stopped", "stage", w.state.String(), "error", err)
			return nil
		}
		return err
	}
	return nil
}

// recoverable reports whether err stops the workflow with a warning rather
// than failing the process. Spawn errors and unclassified errors are fatal.
func recoverable(err error) bool {
	for _, target := range []error{
		clierr.ErrManifestMissing,
		clierr.ErrRenderFailed,
		clierr.ErrCommandNotAllowed,
		clierr.ErrInstallFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Prepare runs the directory safety check and collects project details.
func (w *Workflow) Prepare(ctx context.Context) (*Info, error) {
	templates, err := w.cfg.Templates.Templates(ctx)
	if err != nil {
		return nil, err
	}
	w.templates = templates

	w.state = StateSafetyCheck
	if err := w.checkDir(); err != nil {
		return nil, err
	}

	w.state = StateMetadataCollection
	info, err := w.collectInfo()
	if err != nil {
		return nil, err
	}
	w.info = info
	return info, nil
}

func (w *Workflow) checkDir() error {
	empty, err := IsDirEmpty(w.cfg.Dir)
	if err != nil {
		return err
	}
	if empty {
		return nil
	}

	if !w.cfg.Force {
		ok, err := w.cfg.Prompter.Confirm("The current directory is not empty. Continue creating the project?", false)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	ok, err := w.cfg.Prompter.Confirm("Delete everything in "+w.cfg.Dir+"? This cannot be undone.", false)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	w.log.Debug("clearing directory", "dir", w.cfg.Dir)
	return ClearDir(w.cfg.Dir)
}

func (w *Workflow) collectInfo() (*Info, error) {
	p := w.cfg.Prompter
	info := &Info{}

	kind, err := p.Select("Select what to create", []Choice{
		{Name: "Project", Value: KindProject},
		{Name: "Component", Value: KindComponent},
	})
	if err != nil {
		return nil, err
	}
	info.Kind = kind

	label := "project"
	if kind == KindComponent {
		label = "component"
	}

	if ValidName(w.cfg.ProjectName) {
		info.Name = w.cfg.ProjectName
	} else {
		info.Name, err = p.Input("Enter the "+label+" name", "", validateName)
		if err != nil {
			return nil, err
		}
	}

	version, err := p.Input("Enter the "+label+" version", DefaultVersion, validateVersion)
	if err != nil {
		return nil, err
	}
	if info.Version, err = NormalizeVersion(version); err != nil {
		return nil, clierr.Wrap(err, clierr.ValidationFailed, "project version")
	}

	if kind == KindComponent {
		info.Description, err = p.Input("Enter the component description", "", func(s string) error {
			if s == "" {
				return errors.New("a component description is required")
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	offered := catalog.FilterByKind(w.templates, kind)
	if len(offered) == 0 {
		return nil, clierr.New(clierr.Precondition, "no "+label+" templates available")
	}
	choices := make([]Choice, len(offered))
	for i, t := range offered {
		choices[i] = Choice{Name: t.Name, Value: t.NpmName}
	}
	info.Template, err = p.Select("Select a "+label+" template", choices)
	if err != nil {
		return nil, err
	}

	info.ClassName = ClassName(info.Name)
	return info, nil
}

// DownloadTemplate makes the chosen template package present in the
// template cache: an existing package is updated, a missing one installed.
func (w *Workflow) DownloadTemplate(ctx context.Context) error {
	if w.info == nil {
		return fmt.Errorf("download before prepare")
	}

	w.state = StateTemplateResolution
	tmpl, ok := catalog.Find(w.templates, w.info.Template)
	if !ok {
		return clierr.Newf(clierr.ValidationFailed, "template %q is not in the template list", w.info.Template)
	}
	w.template = tmpl

	root := userdata.TemplateRoot(w.cfg.CLIHome)
	pkg, err := pkgcache.New(pkgcache.Options{
		TargetPath:     root,
		StorePath:      userdata.TemplateStore(w.cfg.CLIHome),
		PackageName:    tmpl.NpmName,
		PackageVersion: tmpl.Version,
		Registry:       w.cfg.Registry,
	}, w.cfg.Resolver, w.cfg.Installer)
	if err != nil {
		return err
	}
	w.pkg = pkg

	w.state = StateFetchOrUpdate
	exists, err := pkg.Exists(ctx)
	if err != nil {
		return err
	}

	spin := w.cfg.Spinner("Downloading template...")
	spin.Start()
	if exists {
		_, err = pkg.Update(ctx)
	} else {
		err = pkg.Install(ctx)
	}
	spin.Stop()
	if err != nil {
		return err
	}

	w.log.Info("template ready", "template", pkg.Name(), "version", pkg.Version())
	return nil
}

// InstallTemplate copies the cached template into the project directory,
// renders it and runs the template's install and start commands.
func (w *Workflow) InstallTemplate(ctx context.Context) error {
	if w.pkg == nil {
		return fmt.Errorf("install before download")
	}

	w.state = StateRender
	if w.template.IsCustom() {
		entry, ok := w.pkg.RootFilePath()
		if !ok {
			return clierr.New(clierr.ManifestMissing,
				"custom template "+w.template.NpmName+" declares no entry point",
				"Add a \"main\" field to the template's package.json")
		}
		w.log.Debug("custom template entry point", "path", entry)
	}

	src := filepath.Join(w.pkg.CacheFilePath(), "template")
	spin := w.cfg.Spinner("Installing template...")
	spin.Start()
	err := render.CopyTemplate(src, w.cfg.Dir)
	spin.Stop()
	if err != nil {
		return clierr.Wrap(err, clierr.InstallFailed, "copying template into "+w.cfg.Dir)
	}

	if err := render.Render(ctx, w.cfg.Dir, render.DefaultIgnore, w.info.Data()); err != nil {
		return err
	}
	fmt.Fprintln(w.cfg.Out, "Template installed.")

	w.state = StateDependencyInstall
	if cmd := w.template.InstallCommand; cmd != "" {
		code, err := w.cfg.Runner.Run(ctx, cmd)
		if err != nil {
			return err
		}
		if code != 0 {
			w.log.Warn("dependency install failed", "command", cmd, "exit_code", code)
		}
	}

	w.state = StateStartCommand
	if cmd := w.template.StartCommand; cmd != "" {
		code, err := w.cfg.Runner.Run(ctx, cmd)
		if err != nil {
			return err
		}
		if code != 0 {
			w.log.Warn("start command failed", "command", cmd, "exit_code", code)
			return nil
		}
	}

	w.state = StateDone
	return nil
}
