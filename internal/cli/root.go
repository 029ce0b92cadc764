package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wittefeng/juan-cli/internal/branding"
	"github.com/wittefeng/juan-cli/internal/clierr"
	"github.com/wittefeng/juan-cli/internal/config"
	"github.com/wittefeng/juan-cli/internal/log"
	"github.com/wittefeng/juan-cli/internal/npm"
	"github.com/wittefeng/juan-cli/internal/platform"
	"github.com/wittefeng/juan-cli/internal/updater"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagDebug      bool
	flagTargetPath string

	// settings and logger are set by the root PersistentPreRunE.
	settings *config.Settings
	logger   = log.Discard()
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` creates projects and components from versioned npm template packages.
Templates are listed by the template server, cached under ~/` + branding.HomeDir() + `/template
and rendered into the current directory.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagTargetPath, "target-path", "", "Use command packages from a local directory")
	_ = viper.BindPFlag(config.KeyTargetPath, rootCmd.PersistentFlags().Lookup("target-path"))
}

// setup drops root privileges, loads the configuration, builds the logger
// and prints the cached update banner.
func setup(cmd *cobra.Command, args []string) error {
	dropped, err := platform.DropRoot()
	if err != nil {
		return err
	}

	config.Load()
	s, err := config.Resolve()
	if err != nil {
		return err
	}
	s.Debug = flagDebug
	settings = s

	level := log.ParseLevel(s.LogLevel)
	if s.Verbose() {
		level = slog.LevelDebug
	}
	logger = log.New(os.Stderr, level)
	if dropped {
		logger.Debug("dropped root privileges", "uid", os.Getuid(), "home", s.Home)
	}
	logger.Debug("settings resolved",
		"cli_home", s.CLIHome,
		"registry", s.Registry,
		"server", s.ServerURL,
		"target_path", s.TargetPath)

	switch cmd.Name() {
	case "update", "version", "config", "get", "set":
		return nil
	}
	newUpdater().CheckAndPrintBanner(os.Stderr, s.CLIHome)
	return nil
}

func newUpdater() *updater.Updater {
	client := npm.NewClient(npm.WithRegistry(settings.Registry))
	return updater.New(buildVersion, branding.NpmName(), npm.NewResolver(client))
}

// Execute runs the root command with build info injected via ldflags. An
// interrupt cancels the command's context. A failing command has its error
// printed to stderr before it is returned.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		clierr.Fprint(os.Stderr, err, flagDebug)
		fmt.Fprintln(os.Stderr)
	}
	return err
}
