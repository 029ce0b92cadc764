// Package updater tells users when a newer juan release is published. The
// registry is asked at most once a day; the answer is cached in the CLI home
// and shown as a banner on later runs.
package updater
