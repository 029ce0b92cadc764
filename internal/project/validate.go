package project

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// DefaultVersion is offered when asking for a project version.
const DefaultVersion = "1.0.0"

// A name starts with letters; "-" and "_" must each be followed by a
// letter, so names never end in a separator.
var namePattern = regexp.MustCompile(`^[a-zA-Z]+([-][a-zA-Z][a-zA-Z0-9]*|[_][a-zA-Z][a-zA-Z0-9]*|[a-zA-Z0-9])*$`)

// ValidName reports whether name is an acceptable project name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

func validateName(name string) error {
	if !ValidName(name) {
		return fmt.Errorf("invalid name %q: start with a letter, use letters, digits, \"-\" or \"_\", and end with a letter or digit", name)
	}
	return nil
}

// NormalizeVersion checks that v is a full semver version and returns its
// canonical form. A leading "v" is accepted.
func NormalizeVersion(v string) (string, error) {
	sv, err := semver.StrictNewVersion(strings.TrimPrefix(strings.TrimSpace(v), "v"))
	if err != nil {
		return "", fmt.Errorf("invalid version %q: use the form 1.0.0", v)
	}
	return sv.String(), nil
}

func validateVersion(v string) error {
	_, err := NormalizeVersion(v)
	return err
}

// ClassName derives the package identifier from a project name: upper-case
// letters become "-" plus their lower-case form, and a leading "-" is
// dropped. "MyApp" becomes "my-app".
func ClassName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimPrefix(b.String(), "-")
}
