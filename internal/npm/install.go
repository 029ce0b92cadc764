package npm

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/wittefeng/juan-cli/internal/platform"
)

// PackageSpec names one package to install.
type PackageSpec struct {
	Name    string
	Version string
}

// InstallOptions mirrors the npminstall contract: packages are unpacked into
// StoreDir under their store directory name and linked from
// Root/node_modules/<name>. An empty Root skips the link.
type InstallOptions struct {
	Root     string
	StoreDir string
	Registry string
	Pkgs     []PackageSpec
}

// StoreDirName returns the store directory of name@version relative to a
// store root, with forward slashes: "_@scope_pkg@1.2.3@@scope/pkg". The
// name prefix keeps differently scoped packages with the same local name
// apart; the version keeps versions apart.
func StoreDirName(name, version string) string {
	prefix := strings.ReplaceAll(name, "/", "_")
	return "_" + prefix + "@" + version + "@" + name
}

// ParseStoreDirName reverses StoreDirName for a top-level store entry such
// as "_@scope_pkg@1.2.3@@scope". It reports false for entries that are not
// package directories.
func ParseStoreDirName(entry string) (name, version string, ok bool) {
	rest, found := strings.CutPrefix(entry, "_")
	if !found || len(rest) < 2 {
		return "", "", false
	}
	i := strings.Index(rest[1:], "@")
	if i < 0 {
		return "", "", false
	}
	flat, rest := rest[:i+1], rest[i+2:]
	version, _, found = strings.Cut(rest, "@")
	if !found || version == "" {
		return "", "", false
	}
	name = flat
	if strings.HasPrefix(flat, "@") {
		name = strings.Replace(flat, "_", "/", 1)
	}
	return name, version, true
}

// Installer downloads, verifies and unpacks registry tarballs.
type Installer struct {
	opts []Option
}

// NewInstaller creates an Installer. The options apply to every registry
// client it creates.
func NewInstaller(opts ...Option) *Installer {
	return &Installer{opts: opts}
}

// Install fetches every package of o. It stops at the first failure; files
// already written are left in place.
func (in *Installer) Install(ctx context.Context, o InstallOptions) error {
	if o.StoreDir == "" {
		return fmt.Errorf("install requires a store directory")
	}
	client := NewClient(append(append([]Option{}, in.opts...), WithRegistry(o.Registry))...)

	for _, spec := range o.Pkgs {
		if err := in.installOne(ctx, client, o, spec); err != nil {
			return fmt.Errorf("installing %s@%s: %w", spec.Name, spec.Version, err)
		}
	}
	return nil
}

func (in *Installer) installOne(ctx context.Context, client *Client, o InstallOptions, spec PackageSpec) error {
	doc, err := client.Packument(ctx, spec.Name)
	if err != nil {
		return err
	}

	version, err := pickVersion(doc, spec.Version)
	if err != nil {
		return err
	}
	pv := doc.Versions[version]
	if pv.Dist.Tarball == "" {
		return fmt.Errorf("registry lists no tarball for %s@%s", spec.Name, version)
	}

	if err := os.MkdirAll(o.StoreDir, 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	archive, err := os.CreateTemp(o.StoreDir, ".download-*.tgz")
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}
	defer os.Remove(archive.Name())
	defer archive.Close()

	verifier, err := newVerifier(pv.Dist)
	if err != nil {
		return err
	}
	if err := client.Download(ctx, pv.Dist.Tarball, io.MultiWriter(archive, verifier)); err != nil {
		return err
	}
	if err := verifier.verify(); err != nil {
		return fmt.Errorf("verifying %s: %w", path.Base(pv.Dist.Tarball), err)
	}
	if _, err := archive.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding download: %w", err)
	}

	dest := filepath.Join(o.StoreDir, filepath.FromSlash(StoreDirName(spec.Name, version)))
	tmp := dest + ".tmp"
	_ = os.RemoveAll(tmp)
	if err := os.MkdirAll(tmp, 0755); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	if err := ExtractTarball(archive, tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}

	// Atomic rename.
	if err := os.RemoveAll(dest); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("removing stale store directory: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("finalizing store directory: %w", err)
	}

	if o.Root != "" {
		link := filepath.Join(o.Root, "node_modules", filepath.FromSlash(spec.Name))
		if err := platform.LinkDir(dest, link); err != nil {
			return fmt.Errorf("linking %s: %w", spec.Name, err)
		}
	}
	return nil
}

// pickVersion maps a requested version (exact, dist-tag or range) to a
// version present in doc.
func pickVersion(doc *Packument, requested string) (string, error) {
	if requested == "" {
		requested = LatestTag
	}
	if _, ok := doc.Versions[requested]; ok {
		return requested, nil
	}
	if tagged, ok := doc.DistTags[requested]; ok {
		if _, ok := doc.Versions[tagged]; ok {
			return tagged, nil
		}
	}

	all := make([]string, 0, len(doc.Versions))
	for v := range doc.Versions {
		all = append(all, v)
	}
	if requested == LatestTag {
		if sorted := SortDesc(all); len(sorted) > 0 {
			return sorted[0], nil
		}
		return "", fmt.Errorf("no versions of %s published", doc.Name)
	}

	c, err := semver.NewConstraint(requested)
	if err != nil {
		return "", fmt.Errorf("version %q of %s not found", requested, doc.Name)
	}
	for _, v := range SortDesc(all) {
		if sv, err := parseSemver(v); err == nil && c.Check(sv) {
			return v, nil
		}
	}
	return "", fmt.Errorf("no version of %s satisfies %q", doc.Name, requested)
}

// verifier hashes a download and compares it with the registry's
// integrity (SRI) or shasum value.
type verifier struct {
	h        hash.Hash
	expected string
	encode   func([]byte) string
}

func newVerifier(d Dist) (*verifier, error) {
	if d.Integrity != "" {
		// Prefer the strongest algorithm listed.
		var best string
		for _, entry := range strings.Fields(d.Integrity) {
			algo, _, ok := strings.Cut(entry, "-")
			if !ok {
				continue
			}
			if best == "" || rank(algo) > rank(strings.SplitN(best, "-", 2)[0]) {
				best = entry
			}
		}
		if best != "" {
			algo, digest, _ := strings.Cut(best, "-")
			h := newHash(algo)
			if h == nil {
				return nil, fmt.Errorf("unsupported integrity algorithm %q", algo)
			}
			return &verifier{h: h, expected: digest, encode: base64.StdEncoding.EncodeToString}, nil
		}
	}
	if d.Shasum != "" {
		return &verifier{h: sha1.New(), expected: strings.ToLower(d.Shasum), encode: hex.EncodeToString}, nil
	}
	return &verifier{}, nil
}

func rank(algo string) int {
	switch algo {
	case "sha512":
		return 3
	case "sha384":
		return 2
	case "sha256":
		return 1
	default:
		return 0
	}
}

func newHash(algo string) hash.Hash {
	switch algo {
	case "sha512":
		return sha512.New()
	case "sha384":
		return sha512.New384()
	case "sha256":
		return sha256.New()
	case "sha1":
		return sha1.New()
	default:
		return nil
	}
}

func (v *verifier) Write(p []byte) (int, error) {
	if v.h == nil {
		return len(p), nil
	}
	return v.h.Write(p)
}

func (v *verifier) verify() error {
	if v.h == nil {
		return nil
	}
	actual := v.encode(v.h.Sum(nil))
	if actual != v.expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", v.expected, actual)
	}
	return nil
}

// ExtractTarball unpacks a gzipped npm tarball into destDir, dropping the
// leading path segment ("package/"). Entries that would land outside
// destDir are rejected. Symlinks and special files are skipped.
func ExtractTarball(r io.Reader, destDir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("resolving destination: %w", err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		rel := stripFirstSegment(hdr.Name)
		if rel == "" {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(rel))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("tar entry %q escapes the package directory", hdr.Name)
		}

		mode := hdr.FileInfo().Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating %s: %w", rel, err)
			}
		case mode.IsRegular():
			if err := writeEntry(tr, target, mode.Perm()); err != nil {
				return fmt.Errorf("extracting %s: %w", rel, err)
			}
		}
	}
	return nil
}

func writeEntry(r io.Reader, target string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	// npm normalizes modes; keep the execute bit and guarantee owner rw.
	perm = perm&0755 | 0644
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// stripFirstSegment turns "package/lib/index.js" into "lib/index.js".
func stripFirstSegment(name string) string {
	name = strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
	_, rest, ok := strings.Cut(name, "/")
	if !ok || path.Clean(rest) == "." {
		return ""
	}
	return rest
}
