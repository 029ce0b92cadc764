// Package project implements "juan init": it checks the target directory,
// asks for project details, fetches the chosen template package into the
// template cache, renders it into the directory and runs its install and
// start commands.
package project
