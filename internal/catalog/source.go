package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wittefeng/juan-cli/internal/branding"
	"github.com/wittefeng/juan-cli/internal/clierr"
)

const (
	// DefaultTimeout bounds a template list request.
	DefaultTimeout = 5 * time.Second

	// TemplatePath is the template list endpoint of the template server.
	TemplatePath = "/project/template"

	// CacheFileName holds the last list fetched from the server.
	CacheFileName = "templates.json"

	tmpSuffix = ".tmp"
)

// HTTPSource fetches templates from the template server. When CacheFile is
// set, every good response is saved there and used as a fallback while the
// server is unreachable.
type HTTPSource struct {
	BaseURL    string
	CacheFile  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Templates implements Source.
func (s *HTTPSource) Templates(ctx context.Context) ([]Template, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		cached, cacheErr := s.readCache()
		if cacheErr != nil {
			return nil, err
		}
		if s.Logger != nil {
			s.Logger.Warn("template server unreachable, using cached template list",
				"error", err, "cache", s.CacheFile)
		}
		data = cached
	}

	templates, perr := Parse(data)
	if perr != nil {
		return nil, perr
	}
	if err == nil {
		s.writeCache(data)
	}
	return requireNonEmpty(templates, s.BaseURL)
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	base := s.BaseURL
	if base == "" {
		base = branding.ServerURL()
	}
	url := strings.TrimRight(base, "/") + TemplatePath

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, clierr.Wrap(err, clierr.Precondition, "creating template list request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", branding.DisplayName())

	resp, err := client.Do(req)
	if err != nil {
		return nil, clierr.Wrap(err, clierr.Precondition, "fetching template list from "+base,
			"Check your network connection",
			"Set "+branding.EnvVar("SERVER_BASE_URL")+" or point templates_file at a local list")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, clierr.Newf(clierr.Precondition, "template server returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, clierr.Wrap(err, clierr.Precondition, "reading template list")
	}
	return data, nil
}

func (s *HTTPSource) readCache() ([]byte, error) {
	if s.CacheFile == "" {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(s.CacheFile)
}

// writeCache replaces the cache file atomically. Errors are logged at debug
// level and dropped.
func (s *HTTPSource) writeCache(data []byte) {
	if s.CacheFile == "" {
		return
	}
	tmp := s.CacheFile + tmpSuffix
	err := os.MkdirAll(filepath.Dir(s.CacheFile), 0755)
	if err == nil {
		err = os.WriteFile(tmp, data, 0644)
	}
	if err == nil {
		err = os.Rename(tmp, s.CacheFile)
	}
	if err != nil {
		_ = os.Remove(tmp)
		if s.Logger != nil {
			s.Logger.Debug("could not cache template list", "error", err)
		}
	}
}

// FileSource reads templates from a local YAML or JSON file.
type FileSource struct {
	Path string
}

// Templates implements Source.
func (s *FileSource) Templates(context.Context) ([]Template, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, clierr.Wrap(err, clierr.Precondition, "reading template list "+s.Path)
	}
	templates, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return requireNonEmpty(templates, s.Path)
}

// NewSource returns a FileSource when file is set, otherwise an HTTPSource
// for serverURL that caches under cacheDir.
func NewSource(file, serverURL, cacheDir string, logger *slog.Logger) Source {
	if file != "" {
		return &FileSource{Path: file}
	}
	src := &HTTPSource{BaseURL: serverURL, Logger: logger}
	if cacheDir != "" {
		src.CacheFile = filepath.Join(cacheDir, CacheFileName)
	}
	return src
}

func requireNonEmpty(templates []Template, origin string) ([]Template, error) {
	if len(templates) == 0 {
		return nil, clierr.New(clierr.Precondition, "no project templates available from "+origin,
			"Publish at least one template to the template server",
			"Or set templates_file to a local template list")
	}
	return templates, nil
}
