package xmlgen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arkantrust/abassist/models"
)

// DefaultExtension is the file suffix of XML templates.
const DefaultExtension = ".xml"

// Store reads templates from a directory on disk. It holds no state beyond
// its configuration: every call re-reads the directory.
type Store struct {
	dir string
	ext string
}

// NewStore returns a Store over dir. An empty ext means DefaultExtension.
func NewStore(dir, ext string) *Store {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &Store{dir: dir, ext: ext}
}

// Dir returns the directory the store scans.
func (s *Store) Dir() string { return s.dir }

// Scan lists the template names in the store, sorted lexicographically.
//
// When the directory is missing or unreadable Scan returns an empty list
// together with an error wrapping ErrStoreUnavailable.
func (s *Store) Scan() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return []string{}, fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.ext) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Read loads the named template. Only names returned by Scan are readable,
// so path components such as "../" never reach the filesystem.
func (s *Store) Read(name string) (*models.Template, error) {
	names, err := s.Scan()
	if err != nil {
		return nil, err
	}
	idx := sort.SearchStrings(names, name)
	if idx == len(names) || names[idx] != name {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	return &models.Template{Name: name, Content: string(data)}, nil
}
