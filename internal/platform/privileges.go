package platform

import (
	"strconv"

	"github.com/wittefeng/juan-cli/internal/clierr"
)

// Identity is a numeric user and group.
type Identity struct {
	UID int
	GID int
}

// SudoIdentity returns the invoking user recorded by sudo in SUDO_UID and
// SUDO_GID. The bool is false when either is missing or not a number.
func SudoIdentity(getenv func(string) string) (Identity, bool) {
	uid, err := strconv.Atoi(getenv("SUDO_UID"))
	if err != nil {
		return Identity{}, false
	}
	gid, err := strconv.Atoi(getenv("SUDO_GID"))
	if err != nil {
		return Identity{}, false
	}
	return Identity{UID: uid, GID: gid}, true
}

// dropRoot switches a root process to the sudo caller through become. It
// reports whether privileges were dropped. Root without a non-root sudo
// caller is refused.
func dropRoot(euid int, getenv func(string) string, become func(Identity) error) (bool, error) {
	if euid != 0 {
		return false, nil
	}
	id, ok := SudoIdentity(getenv)
	if !ok || id.UID == 0 {
		return false, clierr.New(clierr.Precondition, "refusing to run as root",
			"Run the command as a regular user",
			"Files written as root would not be usable by your account later")
	}
	if err := become(id); err != nil {
		return false, clierr.Wrap(err, clierr.Precondition,
			"dropping root privileges to uid "+strconv.Itoa(id.UID),
			"Run the command without sudo")
	}
	return true, nil
}
