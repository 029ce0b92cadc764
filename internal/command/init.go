package command

import (
	"context"
	"log/slog"

	"github.com/wittefeng/juan-cli/internal/clierr"
	"github.com/wittefeng/juan-cli/internal/project"
)

// InitCommand creates a project from a template.
type InitCommand struct {
	// Workflow carries every dependency of the run; ProjectName and Force
	// are filled in from Init and the flags.
	Workflow project.Config
	Force    bool

	projectName string
}

// NewInitFactory returns a Factory for InitCommand.
func NewInitFactory(cfg project.Config, force bool) Factory {
	return func() Command {
		return &InitCommand{Workflow: cfg, Force: force}
	}
}

// Name implements Command.
func (c *InitCommand) Name() string { return "init" }

// Init accepts an optional project name.
func (c *InitCommand) Init(args []string) error {
	if len(args) > 1 {
		return clierr.Newf(clierr.ValidationFailed, "init takes at most one project name, got %d arguments", len(args))
	}
	if len(args) == 1 {
		c.projectName = args[0]
	}
	if c.Workflow.Logger != nil {
		c.Workflow.Logger.Debug("init", slog.String("projectName", c.projectName), slog.Bool("force", c.Force))
	}
	return nil
}

// Exec implements Command.
func (c *InitCommand) Exec(ctx context.Context) error {
	cfg := c.Workflow
	cfg.ProjectName = c.projectName
	cfg.Force = c.Force
	return project.New(cfg).Run(ctx)
}
