package config

import (
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/wittefeng/juan-cli/internal/branding"
	"github.com/wittefeng/juan-cli/internal/userdata"
)

// Settings is the resolved configuration of one CLI run. It is built once
// at startup and handed to every stage; nothing downstream reads the
// environment.
type Settings struct {
	Home          string // user home directory
	CLIHome       string // ~/.juan-cli unless overridden
	TargetPath    string // local package override for command packages
	Registry      string // npm registry mirror
	ServerURL     string // template server base URL
	TemplatesFile string // optional local template list (yaml/json)
	LogLevel      string
	Debug         bool
}

// Resolve builds Settings from the loaded Viper state. Call Load first.
// A missing or unusable home directory is a fatal precondition.
func Resolve() (*Settings, error) {
	home, err := userdata.UserHome()
	if err != nil {
		return nil, err
	}
	if err := userdata.CheckUserHome(home); err != nil {
		return nil, err
	}

	s := &Settings{
		Home:          home,
		CLIHome:       userdata.CLIHome(home, viper.GetString(KeyHome)),
		TargetPath:    viper.GetString(KeyTargetPath),
		Registry:      viper.GetString(KeyRegistry),
		ServerURL:     viper.GetString(KeyServerURL),
		TemplatesFile: viper.GetString(KeyTemplatesFile),
		LogLevel:      viper.GetString(KeyLogLevel),
	}
	if s.Registry == "" {
		s.Registry = branding.RegistryURL()
	}
	if s.ServerURL == "" {
		s.ServerURL = branding.ServerURL()
	}
	if s.TargetPath != "" && !filepath.IsAbs(s.TargetPath) {
		if abs, err := filepath.Abs(s.TargetPath); err == nil {
			s.TargetPath = abs
		}
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	return s, nil
}

// Verbose reports whether debug output was requested by flag or log level.
func (s *Settings) Verbose() bool {
	return s.Debug || s.LogLevel == "debug" || s.LogLevel == "verbose"
}

// TemplateRoot returns the template cache root for these settings.
func (s *Settings) TemplateRoot() string { return userdata.TemplateRoot(s.CLIHome) }

// TemplateStore returns the template package store for these settings.
func (s *Settings) TemplateStore() string { return userdata.TemplateStore(s.CLIHome) }

// DependenciesRoot returns the command package root for these settings.
func (s *Settings) DependenciesRoot() string { return userdata.DependenciesRoot(s.CLIHome) }

// DependenciesStore returns the command package store for these settings.
func (s *Settings) DependenciesStore() string { return userdata.DependenciesStore(s.CLIHome) }
