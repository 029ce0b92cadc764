package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// LinkDir makes link point at the target directory, replacing whatever was
// at link before. Native symlinks are used where possible; when they are
// unavailable (Windows without developer mode) the directory is copied and
// a .target sidecar records the original target.
func LinkDir(target, link string) error {
	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		return fmt.Errorf("creating link parent: %w", err)
	}
	if err := RemoveLink(link); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing existing link %s: %w", link, err)
	}

	if err := os.Symlink(target, link); err == nil {
		return nil
	} else if runtime.GOOS != "windows" {
		return err
	}

	if err := CopyDir(target, link, nil); err != nil {
		return fmt.Errorf("symlink fallback (copy) failed: %w", err)
	}
	// Best-effort: the copy already succeeded.
	_ = os.WriteFile(link+".target", []byte(target), 0644)
	return nil
}

// RemoveLink removes a symlink, or a fallback copy and its sidecar.
func RemoveLink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	os.Remove(path + ".target")
	if info.Mode()&os.ModeSymlink != 0 {
		return os.Remove(path)
	}
	return os.RemoveAll(path)
}

// ReadLinkTarget returns the target of a link created by LinkDir.
// On Windows, if os.Readlink fails (because a copy fallback was used),
// it reads from the .target sidecar file.
func ReadLinkTarget(path string) (string, error) {
	target, err := os.Readlink(path)
	if err == nil {
		return target, nil
	}

	if runtime.GOOS != "windows" {
		return "", err
	}

	data, readErr := os.ReadFile(path + ".target")
	if readErr != nil {
		return "", fmt.Errorf("readlink failed and no .target sidecar found: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
