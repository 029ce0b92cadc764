package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wittefeng/juan-cli/internal/branding"
	"github.com/wittefeng/juan-cli/internal/clierr"
	"github.com/wittefeng/juan-cli/internal/config"
)

// configKeys are the keys config set accepts.
var configKeys = []string{
	config.KeyHome,
	config.KeyTargetPath,
	config.KeyRegistry,
	config.KeyServerURL,
	config.KeyTemplatesFile,
	config.KeyLogLevel,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write settings stored at ~/` + branding.HomeDir() + `/config.yaml.
Each key can also be set as ` + branding.EnvVar("<KEY>") + ` in the environment or in ~/.env.`,
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Set a configuration value",
	Args:      cobra.ExactArgs(2),
	ValidArgs: configKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if !knownConfigKey(key) {
			return clierr.New(clierr.ValidationFailed, fmt.Sprintf("unknown config key %q", key),
				fmt.Sprintf("Use one of: %v", configKeys))
		}
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}

func knownConfigKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}
