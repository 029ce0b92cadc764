//go:build !unix

package platform

// DropRoot is a no-op where there is no root user.
func DropRoot() (bool, error) {
	return false, nil
}
