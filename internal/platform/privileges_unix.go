//go:build unix

package platform

import (
	"fmt"
	"os"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"
)

// DropRoot gives up root privileges when the CLI was started through sudo,
// continuing as the invoking user with their home directory. It returns an
// error when running as root without sudo or when the switch fails.
func DropRoot() (bool, error) {
	return dropRoot(unix.Geteuid(), os.Getenv, become)
}

func become(id Identity) error {
	if err := unix.Setgroups([]int{id.GID}); err != nil {
		return fmt.Errorf("setgroups: %w", err)
	}
	if err := unix.Setgid(id.GID); err != nil {
		return fmt.Errorf("setgid: %w", err)
	}
	if err := unix.Setuid(id.UID); err != nil {
		return fmt.Errorf("setuid: %w", err)
	}
	if u, err := user.LookupId(strconv.Itoa(id.UID)); err == nil && u.HomeDir != "" {
		os.Setenv("HOME", u.HomeDir)
	}
	return nil
}
