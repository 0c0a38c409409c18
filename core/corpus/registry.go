package corpus

import (
	"fmt"
	"sort"
	"sync"
)

// Format describes a registered single-file corpus backend.
type Format struct {
	// Name identifies the format (e.g. "jtm", "tmx").
	Name string
	// Detect reports whether path looks like this format.
	Detect func(path string) bool
	// Open builds a Corpus over path.
	Open func(path string) (Corpus, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Format)
)

// RegisterFormat registers a backend. Backends call this from init; a
// duplicate name panics.
func RegisterFormat(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[f.Name]; ok {
		panic(fmt.Sprintf("corpus: format %q registered twice", f.Name))
	}
	registry[f.Name] = f
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open detects the format of path among the registered backends and builds
// a Corpus over it. Two-file backends (aligned plain-text pairs) are not
// path-detectable and must be constructed directly.
func Open(path string) (Corpus, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, name := range sortedNames() {
		f := registry[name]
		if f.Detect(path) {
			return f.Open(path)
		}
	}
	return nil, fmt.Errorf("corpus: no registered format matches %q", path)
}

func sortedNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
