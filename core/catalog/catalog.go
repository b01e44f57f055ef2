package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vintagefm/logger"
)

// DefaultExtensions is used when no extension list is configured.
var DefaultExtensions = []string{".mp3"}

// Catalog is the set of local audio files found at startup. It never changes
// after Scan returns.
type Catalog struct {
	dir   string
	files []string
}

// Scan lists dir (non-recursively) for files with one of exts. A missing or
// unreadable directory yields an empty catalog.
func Scan(dir string, exts []string) *Catalog {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	c := &Catalog{dir: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("music directory not found, catalog is empty", logger.String("dir", dir))
		} else {
			logger.Warn("failed to read music directory", logger.String("dir", dir), logger.ErrorField(err))
		}
		return c
	}

	for _, entry := range entries {
		if entry.IsDir() || !hasExtension(entry.Name(), exts) {
			continue
		}
		c.files = append(c.files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(c.files)

	logger.Info("catalog scanned", logger.String("dir", dir), logger.Int("files", len(c.files)))
	return c
}

// New builds a catalog from an explicit file list.
func New(dir string, files []string) *Catalog {
	out := make([]string, len(files))
	copy(out, files)
	return &Catalog{dir: dir, files: out}
}

// Dir returns the scanned directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// Files returns a copy of the catalog paths.
func (c *Catalog) Files() []string {
	out := make([]string, len(c.files))
	copy(out, c.files)
	return out
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.files)
}

// Contains reports whether path is a catalog entry.
func (c *Catalog) Contains(path string) bool {
	i := sort.SearchStrings(c.files, path)
	return i < len(c.files) && c.files[i] == path
}

// FileExists reports whether path names an existing regular file. This is
// the play-time check that decides whether an entry is still playable.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
