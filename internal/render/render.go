package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"text/template"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/wittefeng/juan-cli/internal/clierr"
	"github.com/wittefeng/juan-cli/internal/platform"
	"golang.org/x/sync/errgroup"
)

// Template delimiters, as in EJS.
const (
	LeftDelim  = "<%="
	RightDelim = "%>"
)

// DefaultIgnore lists files that are copied but never rendered.
var DefaultIgnore = []string{"**/node_modules/**", "**/public/**", "**/dist/**"}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// FileError reports the file that failed to render.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("rendering %s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Is makes a FileError match clierr.ErrRenderFailed.
func (e *FileError) Is(target error) bool {
	return errors.Is(clierr.ErrRenderFailed, target)
}

// Render substitutes data into every file under root in place. Files whose
// slash-separated path relative to root matches one of ignore are left
// untouched, as are dotfiles and everything under dot-directories such as
// .git. Files are rendered concurrently; the first failure is returned
// and files already written stay written.
func Render(ctx context.Context, root string, ignore []string, data map[string]any) error {
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return clierr.Newf(clierr.ValidationFailed, "invalid ignore pattern %q", pattern)
		}
	}

	files, err := collect(root, ignore)
	if err != nil {
		return err
	}

	funcs := dataFuncs(data)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4 * runtime.NumCPU())
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := renderFile(file, funcs, data); err != nil {
				return &FileError{File: file, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}

// collect lists the regular files under root that no ignore glob matches.
// Dotfiles and dot-directories below root are never collected.
func collect(root string, ignore []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range ignore {
			if doublestar.MatchUnvalidated(pattern, rel) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// dataFuncs exposes each identifier-shaped key of data as a niladic
// function so templates can write <%= version %> as well as <%= .version %>.
func dataFuncs(data map[string]any) template.FuncMap {
	funcs := template.FuncMap{}
	for k, v := range data {
		if !identifier.MatchString(k) {
			continue
		}
		val := v
		funcs[k] = func() any { return val }
	}
	return funcs
}

func renderFile(path string, funcs template.FuncMap, data map[string]any) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	tmpl, err := template.New(filepath.Base(path)).
		Delims(LeftDelim, RightDelim).
		Option("missingkey=error").
		Funcs(funcs).
		Parse(string(src))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), info.Mode().Perm())
}

// CopyTemplate copies the template directory src into dst, creating both
// when missing.
func CopyTemplate(src, dst string) error {
	for _, dir := range []string{src, dst} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := platform.CopyDir(src, dst, nil); err != nil {
		return fmt.Errorf("copying template: %w", err)
	}
	return nil
}
