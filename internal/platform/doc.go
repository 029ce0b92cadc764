// Package platform provides cross-platform filesystem operations used by the
// package installer and the template copier: directory links with a copy
// fallback on Windows, recursive copies, and permission management.
package platform
