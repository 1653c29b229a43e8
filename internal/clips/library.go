// ABOUTME: Haptic clip library backed by a directory of .haptic files
// ABOUTME: Clip names are file names without the extension
package clips

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the file suffix of haptic clips
const Extension = ".haptic"

// Library holds clip data keyed by name
type Library struct {
	dir   string
	names []string
	data  map[string][]byte
}

// NewLibrary creates an empty library
func NewLibrary() *Library {
	return &Library{data: make(map[string][]byte)}
}

// Scan reads every .haptic file directly inside dir
func Scan(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read clips directory: %w", err)
	}

	lib := NewLibrary()
	lib.dir = dir

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), Extension) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Skipping clip %s: %v", path, err)
			continue
		}

		lib.Add(Name(entry.Name()), data)
	}

	log.Printf("Loaded %d haptic clips from %s", lib.Len(), dir)
	return lib, nil
}

// Name returns the clip name for a file path
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Add inserts or replaces a clip
func (l *Library) Add(name string, data []byte) {
	if _, exists := l.data[name]; !exists {
		l.names = append(l.names, name)
		sort.Strings(l.names)
	}
	l.data[name] = data
}

// Get returns the clip data for name
func (l *Library) Get(name string) ([]byte, bool) {
	data, ok := l.data[name]
	return data, ok
}

// Names returns clip names in sorted order
func (l *Library) Names() []string {
	names := make([]string, len(l.names))
	copy(names, l.names)
	return names
}

// Len returns the number of clips
func (l *Library) Len() int {
	return len(l.names)
}

// Dir returns the scanned directory, empty for in-memory libraries
func (l *Library) Dir() string {
	return l.dir
}
