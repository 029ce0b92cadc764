package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wittefeng/juan-cli/internal/catalog"
	"github.com/wittefeng/juan-cli/internal/command"
	"github.com/wittefeng/juan-cli/internal/npm"
	"github.com/wittefeng/juan-cli/internal/progress"
	"github.com/wittefeng/juan-cli/internal/project"
	"github.com/wittefeng/juan-cli/internal/runner"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Skip the first confirmation when the current directory is not empty")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [projectName]",
	Short: "Create a project or component from a template",
	Long: `Asks for the project details, fetches the chosen template package into the
template cache, renders it into the current directory and runs the template's
install and start commands.

A non-empty directory is only cleared after two confirmations; --force skips
the first one.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving current directory: %w", err)
	}

	resolver := npm.NewResolver(npm.NewClient(npm.WithRegistry(settings.Registry)))
	installer := npm.NewInstaller(npm.WithRegistry(settings.Registry))
	cfg := project.Config{
		Dir:       dir,
		CLIHome:   settings.CLIHome,
		Registry:  settings.Registry,
		Prompter:  project.NewLinePrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
		Templates: catalog.NewSource(settings.TemplatesFile, settings.ServerURL, settings.CLIHome, logger),
		Resolver:  resolver,
		Installer: installer,
		Runner: &runner.Runner{
			Dir:    dir,
			Stdin:  cmd.InOrStdin(),
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
			Logger: logger,
		},
		Spinner: progress.StderrFactory(),
		Logger:  logger,
		Out:     cmd.OutOrStdout(),
	}

	reg := command.NewRegistry(settings.TargetPath, logger)
	reg.UseStore(&command.PackageStore{
		Root:      settings.DependenciesRoot(),
		Store:     settings.DependenciesStore(),
		Registry:  settings.Registry,
		Resolver:  resolver,
		Installer: installer,
	})
	reg.Register("init", command.NewInitFactory(cfg, initForce))
	return reg.Dispatch(cmd.Context(), "init", args)
}
