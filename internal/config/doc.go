// Package config manages user-level settings stored at ~/.juan-cli/config.yaml,
// merged with JUAN_CLI_* entries from ~/.env and the environment. Resolve
// turns the loaded state into an explicit Settings value for the run.
package config
