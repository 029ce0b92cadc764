package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"
	"github.com/wittefeng/juan-cli/internal/npm"
	"github.com/wittefeng/juan-cli/internal/platform"
	"github.com/wittefeng/juan-cli/internal/project"
)

var (
	cacheListJSON bool
	cacheCleanYes bool
)

func init() {
	cacheListCmd.Flags().BoolVar(&cacheListJSON, "json", false, "Output in JSON format")
	cacheCleanCmd.Flags().BoolVarP(&cacheCleanYes, "yes", "y", false, "Don't ask for confirmation")
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the template cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached template packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := listCachedPackages(settings.TemplateStore())
		if err != nil {
			return err
		}
		return printCacheEntries(cmd.OutOrStdout(), entries, cacheListJSON)
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached template package",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := settings.TemplateRoot()
		if _, err := os.Stat(root); os.IsNotExist(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "Template cache is already empty.")
			return nil
		}

		if !cacheCleanYes {
			p := project.NewLinePrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			ok, err := p.Confirm("Remove "+root+"?", false)
			if err != nil || !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing removed.")
				return nil
			}
		}

		logger.Debug("removing template cache", "path", root)
		if err := os.RemoveAll(root); err != nil {
			return fmt.Errorf("removing %s: %w", root, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", root)
		return nil
	},
}

// cacheEntry is one package version in the store. Linked marks the version
// node_modules/<name> points at.
type cacheEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Path    string `json:"path"`
	Linked  bool   `json:"linked"`
}

// listCachedPackages reads the package versions present in storeDir. A
// missing store is an empty cache.
func listCachedPackages(storeDir string) ([]cacheEntry, error) {
	dirents, err := os.ReadDir(storeDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading template store: %w", err)
	}

	var entries []cacheEntry
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		name, version, ok := npm.ParseStoreDirName(d.Name())
		if !ok {
			continue
		}
		entries = append(entries, cacheEntry{
			Name:    name,
			Version: version,
			Path:    filepath.Join(storeDir, d.Name()),
			Linked:  linkedEntry(storeDir, name) == d.Name(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return versionLess(entries[i].Version, entries[j].Version)
	})
	return entries, nil
}

// linkedEntry returns the top-level store entry the link for name resolves
// into, or "" when there is no link.
func linkedEntry(storeDir, name string) string {
	link := filepath.Join(storeDir, filepath.FromSlash(name))
	target, err := platform.ReadLinkTarget(link)
	if err != nil {
		return ""
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	rel, err := filepath.Rel(storeDir, target)
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first
}

func versionLess(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return va.LessThan(vb)
}

func printCacheEntries(w io.Writer, entries []cacheEntry, asJSON bool) error {
	if asJSON {
		if entries == nil {
			entries = []cacheEntry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling cache entries: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No templates cached yet.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tLINKED\tPATH")
	for _, e := range entries {
		linked := ""
		if e.Linked {
			linked = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.Version, linked, e.Path)
	}
	return tw.Flush()
}
