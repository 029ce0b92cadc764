// Package npm is a small client for npm-compatible registries. It fetches
// package documents, resolves symbolic versions with semver ordering, and
// installs tarballs into an npminstall-style store.
package npm
