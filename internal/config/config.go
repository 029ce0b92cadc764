package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/wittefeng/juan-cli/internal/branding"
	"github.com/wittefeng/juan-cli/internal/userdata"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the CLI. Each can be set in config.yaml, in ~/.env as
// JUAN_CLI_<KEY>, or as the JUAN_CLI_<KEY> environment variable.
const (
	KeyHome          = "home"
	KeyTargetPath    = "target_path"
	KeyRegistry      = "registry"
	KeyServerURL     = "server_base_url"
	KeyTemplatesFile = "templates_file"
	KeyLogLevel      = "log_level"
)

// Dir returns the path to the CLI home directory (~/.juan-cli/ unless
// JUAN_CLI_HOME overrides it).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return userdata.CLIHome(home, os.Getenv(branding.EnvVar(KeyHome)))
}

// FilePath returns the full path to the config file (~/.juan-cli/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file, ~/.env and the
// environment. Precedence: env > config file > ~/.env > built-in defaults.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()

	if home, err := os.UserHomeDir(); err == nil {
		loadDotenv(userdata.DotenvPath(home))
	}
}

// loadDotenv reads a dotenv file and registers every JUAN_CLI_* entry as a
// default for the matching key.
func loadDotenv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	dv := viper.New()
	dv.SetConfigFile(path)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		return
	}

	prefix := strings.ToLower(branding.EnvPrefix()) + "_"
	for _, k := range dv.AllKeys() {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		viper.SetDefault(strings.TrimPrefix(k, prefix), dv.Get(k))
	}
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
