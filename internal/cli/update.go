package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/wittefeng/juan-cli/internal/branding"
	"github.com/wittefeng/juan-cli/internal/progress"
	"github.com/wittefeng/juan-cli/internal/updater"
)

var updateCheck bool

func init() {
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "Only check for updates, don't print upgrade instructions")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check the registry for a newer " + branding.CLIName() + " release",
	Long: `Looks up the newest release compatible with the installed version and
refreshes the cached result used by the startup banner.

  ` + branding.CLIName() + ` update            # check and print upgrade instructions
  ` + branding.CLIName() + ` update --check    # check only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), updater.CheckTimeout)
		defer cancel()

		u := newUpdater()
		spin := progress.StderrFactory()("Checking for updates...")
		spin.Start()
		res, err := u.Check(ctx)
		spin.Stop()
		if err != nil {
			return fmt.Errorf("checking for updates: %w", err)
		}
		if err := updater.SaveCache(settings.CLIHome, res.Cache(time.Now())); err != nil {
			logger.Debug("could not save version cache", "error", err)
		}

		out := cmd.OutOrStdout()
		switch {
		case !res.UpdateAvailable:
			fmt.Fprintf(out, "You are on the latest version (%s)\n", res.CurrentVersion)
		case updateCheck:
			fmt.Fprintf(out, "Update available: %s -> %s\n", res.CurrentVersion, res.LatestVersion)
		default:
			updater.PrintUpdateBanner(out, res.PackageName, res.CurrentVersion, res.LatestVersion)
			fmt.Fprintf(out, "Changelog: %s%s\n", branding.ChangelogURL(), res.LatestVersion)
		}
		return nil
	},
}
