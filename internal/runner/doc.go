// Package runner runs the install and start commands a template declares.
// Only allow-listed package managers can be executed.
package runner
