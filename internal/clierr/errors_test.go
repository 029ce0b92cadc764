package clierr

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("installing template: %w",
		Wrap(errors.New("connection refused"), InstallFailed, "installing @juan-cli/tpl@1.0.0"))

	assert.ErrorIs(t, err, ErrInstallFailed)
	assert.NotErrorIs(t, err, ErrRegistryUnavailable)
	assert.Equal(t, InstallFailed, KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, RenderFailed, "ignored"))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
}

func TestErrorMessageFallsBackToKind(t *testing.T) {
	e := &Error{Kind: NoVersionsFound}
	assert.Equal(t, "No Versions Found", e.Error())
}

func TestFormatPlain(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := Wrap(cause, RegistryUnavailable, "fetching versions for foo",
		"Check your network connection",
		"Set JUAN_CLI_REGISTRY to a reachable mirror")

	out := FormatPlain(err, false)
	assert.True(t, strings.HasPrefix(out, "Error [Registry Unavailable]: fetching versions for foo"))
	assert.Contains(t, out, "To fix this:")
	assert.Contains(t, out, "  • Check your network connection")
	assert.NotContains(t, out, "caused by")

	verbose := FormatPlain(err, true)
	assert.Contains(t, verbose, "caused by: dial tcp: i/o timeout")
}

func TestFormatPlainUnknownKind(t *testing.T) {
	out := FormatPlain(errors.New("boom"), false)
	assert.Equal(t, "Error: boom\n", out)
}
