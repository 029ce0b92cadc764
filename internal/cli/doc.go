// Package cli defines the Cobra command tree for the juan CLI. Each file in
// this package registers one top-level command (init, config, cache, etc.)
// with the root command. The commands only parse flags and wire
// collaborators; the work happens in the internal packages.
package cli
