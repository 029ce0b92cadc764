// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Hard defaults apply when a key is missing.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	HomeDir      string `yaml:"home_dir"`
	EnvPrefix    string `yaml:"env_prefix"`
	GoModule     string `yaml:"go_module"`
	NpmName      string `yaml:"npm_name"`
	RegistryURL  string `yaml:"registry_url"`
	ServerURL    string `yaml:"server_url"`
	ChangelogURL string `yaml:"changelog_url"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:      "juan",
			DisplayName:  "juan-cli",
			Description:  "Scaffold projects and components from versioned npm templates",
			HomeDir:      ".juan-cli",
			EnvPrefix:    "JUAN_CLI",
			GoModule:     "github.com/wittefeng/juan-cli",
			NpmName:      "@juan-cli/core",
			RegistryURL:  "https://registry.npmmirror.com",
			ServerURL:    "http://juan-cli-server.fungwey.cn:7001",
			ChangelogURL: "https://github.com/wittefeng/juan-cli/tree/v",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "juan").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".juan-cli").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "JUAN_CLI").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// NpmName returns the npm package name the CLI is published under.
// The update banner compares the running version against it.
func NpmName() string { load(); return defaults.NpmName }

// RegistryURL returns the default npm registry mirror.
func RegistryURL() string { load(); return defaults.RegistryURL }

// OfficialRegistryURL is the upstream npm registry.
const OfficialRegistryURL = "https://registry.npmjs.org"

// ServerURL returns the default template server base URL.
func ServerURL() string { load(); return defaults.ServerURL }

// ChangelogURL returns the changelog URL prefix; a version is appended.
func ChangelogURL() string { load(); return defaults.ChangelogURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "JUAN_CLI_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
