package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wittefeng/juan-cli/internal/branding"
	"github.com/wittefeng/juan-cli/internal/clierr"
)

// DefaultTimeout bounds every registry request.
const DefaultTimeout = 10 * time.Second

// Packument is the subset of a registry package document the CLI uses.
type Packument struct {
	Name     string                    `json:"name"`
	DistTags map[string]string         `json:"dist-tags"`
	Versions map[string]PackageVersion `json:"versions"`
}

// PackageVersion is one entry of Packument.Versions.
type PackageVersion struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Main    string `json:"main"`
	Dist    Dist   `json:"dist"`
}

// Dist describes where a version's tarball lives and how to verify it.
type Dist struct {
	Tarball   string `json:"tarball"`
	Shasum    string `json:"shasum"`
	Integrity string `json:"integrity"`
}

// Client talks to an npm-compatible registry.
type Client struct {
	registry   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithRegistry sets the registry base URL.
func WithRegistry(registry string) Option {
	return func(cl *Client) {
		if registry != "" {
			cl.registry = registry
		}
	}
}

// NewClient creates a Client for the default mirror unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		registry:   branding.RegistryURL(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the registry base URL.
func (c *Client) Registry() string {
	return c.registry
}

// PackageURL returns the document URL for name. The scope separator of a
// scoped name is escaped, which every npm-compatible registry accepts.
func PackageURL(registry, name string) string {
	return strings.TrimRight(registry, "/") + "/" + strings.Replace(name, "/", "%2F", 1)
}

// Packument fetches the registry document for name. Any transport failure,
// non-200 status, or document without versions is RegistryUnavailable.
func (c *Client) Packument(ctx context.Context, name string) (*Packument, error) {
	if name == "" {
		return nil, clierr.New(clierr.ValidationFailed, "package name is empty")
	}
	url := PackageURL(c.registry, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, clierr.Wrap(err, clierr.RegistryUnavailable, "creating registry request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", branding.DisplayName())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, clierr.Wrap(err, clierr.RegistryUnavailable, "fetching "+name+" from "+c.registry,
			"Check your network connection",
			"Point "+branding.EnvVar("REGISTRY")+" at a reachable registry mirror")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, clierr.Newf(clierr.RegistryUnavailable, "registry returned status %d for %s", resp.StatusCode, name)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, clierr.Wrap(err, clierr.RegistryUnavailable, "reading registry response")
	}

	var doc Packument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, clierr.Wrap(err, clierr.RegistryUnavailable, "parsing registry document for "+name)
	}
	if doc.Versions == nil {
		return nil, clierr.Newf(clierr.RegistryUnavailable, "registry document for %s has no versions", name)
	}
	return &doc, nil
}

// Versions returns every published version string of name, in no particular order.
func (c *Client) Versions(ctx context.Context, name string) ([]string, error) {
	doc, err := c.Packument(ctx, name)
	if err != nil {
		return nil, err
	}
	versions := make([]string, 0, len(doc.Versions))
	for v := range doc.Versions {
		versions = append(versions, v)
	}
	return versions, nil
}

// Download streams url into w.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", branding.DisplayName())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s returned status %d", url, resp.StatusCode)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading download stream: %w", err)
	}
	return nil
}
