package userdata

import (
	"os"
	"path/filepath"

	"github.com/wittefeng/juan-cli/internal/branding"
	"github.com/wittefeng/juan-cli/internal/clierr"
)

// Directory and file name constants for the CLI home layout.
const (
	TemplateDir     = "template"
	DependenciesDir = "dependencies"
	NodeModulesDir  = "node_modules"
	DotenvFile      = ".env"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// UserHome returns the current user's home directory. A missing home is a
// fatal precondition for the CLI.
func UserHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", clierr.Wrap(err, clierr.Precondition, "resolving home directory",
			"Set the HOME environment variable to an existing directory")
	}
	return home, nil
}

// CheckUserHome verifies that home exists and is a directory.
func CheckUserHome(home string) error {
	info, err := os.Stat(home)
	if err != nil {
		return clierr.Wrap(err, clierr.Precondition, "home directory "+home+" does not exist",
			"Set the HOME environment variable to an existing directory")
	}
	if !info.IsDir() {
		return clierr.New(clierr.Precondition, "home path "+home+" is not a directory")
	}
	return nil
}

// CLIHome returns the CLI home directory. An empty override yields
// <home>/.juan-cli; a relative override is joined onto home; an absolute
// override is used as-is.
func CLIHome(home, override string) string {
	switch {
	case override == "":
		return filepath.Join(home, branding.HomeDir())
	case filepath.IsAbs(override):
		return override
	default:
		return filepath.Join(home, override)
	}
}

// TemplateRoot returns the root the template packages are installed into.
func TemplateRoot(cliHome string) string {
	return filepath.Join(cliHome, TemplateDir)
}

// TemplateStore returns the store directory holding versioned template packages.
func TemplateStore(cliHome string) string {
	return filepath.Join(TemplateRoot(cliHome), NodeModulesDir)
}

// DependenciesRoot returns the root command packages are installed into.
func DependenciesRoot(cliHome string) string {
	return filepath.Join(cliHome, DependenciesDir)
}

// DependenciesStore returns the store directory holding versioned command packages.
func DependenciesStore(cliHome string) string {
	return filepath.Join(DependenciesRoot(cliHome), NodeModulesDir)
}

// DotenvPath returns the path of the optional dotenv file in the home directory.
func DotenvPath(home string) string {
	return filepath.Join(home, DotenvFile)
}
