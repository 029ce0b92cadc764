// Package catalog lists the project templates the init command can offer.
// Lists come from the template server or a local file and are validated
// against an embedded JSON Schema before use.
package catalog

import (
	"context"
	"slices"
)

// Template types.
const (
	TypeNormal = "normal"
	TypeCustom = "custom"
)

// Project kinds a template can be tagged with.
const (
	KindProject   = "project"
	KindComponent = "component"
)

// Template describes one installable project template.
type Template struct {
	Name           string   `json:"name" yaml:"name"`
	NpmName        string   `json:"npmName" yaml:"npmName"`
	Version        string   `json:"version" yaml:"version"`
	Type           string   `json:"type,omitempty" yaml:"type,omitempty"`
	InstallCommand string   `json:"installCommand,omitempty" yaml:"installCommand,omitempty"`
	StartCommand   string   `json:"startCommand,omitempty" yaml:"startCommand,omitempty"`
	Tag            []string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// IsCustom reports whether the template ships its own installer.
func (t Template) IsCustom() bool {
	return t.Type == TypeCustom
}

// Source yields the available templates.
type Source interface {
	Templates(ctx context.Context) ([]Template, error)
}

// FilterByKind returns the templates offered for kind. Untagged templates
// are offered for every kind.
func FilterByKind(templates []Template, kind string) []Template {
	var out []Template
	for _, t := range templates {
		if len(t.Tag) == 0 || slices.Contains(t.Tag, kind) {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the template whose npm name is npmName.
func Find(templates []Template, npmName string) (Template, bool) {
	for _, t := range templates {
		if t.NpmName == npmName {
			return t, true
		}
	}
	return Template{}, false
}
