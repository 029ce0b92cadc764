// Package render fills project templates. A template is a directory whose
// files may contain <%= name %> placeholders; Render substitutes them in
// place from a context map.
package render
