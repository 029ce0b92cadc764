// Package userdata resolves the on-disk layout under the user's home
// directory: the CLI home (~/.juan-cli by default), the template cache root,
// and the dependency cache root used by command packages. It also checks the
// home-directory precondition the CLI needs before doing anything else.
package userdata
