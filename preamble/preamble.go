// Package preamble holds the system instructions sent ahead of every chat
// turn, as named profiles with optional file overrides.
package preamble

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"raggen"
)

// Built-in profile names.
const (
	Default    = "default"
	Biomedical = "biomedical"
)

// DefaultText is the general-purpose instruction set.
//
//go:embed profiles/default.txt
var DefaultText string

// BiomedicalText tunes the instructions for biomedical literature.
//
//go:embed profiles/biomedical.txt
var BiomedicalText string

var builtin = map[string]string{
	Default:    DefaultText,
	Biomedical: BiomedicalText,
}

// Profiles returns the built-in profile names, sorted.
func Profiles() []string {
	return []string{Biomedical, Default}
}

// Store resolves instruction profiles, preferring {dir}/{name}.txt files
// over the built-ins (lazy, cached). A Store with an empty dir serves only
// the built-ins.
type Store struct {
	dir   string
	mu    sync.RWMutex
	cache map[string]string
}

// NewStore creates a Store that reads profile overrides from dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: make(map[string]string),
	}
}

// Get returns the instruction text for a profile. File resolution:
// {dir}/{name}.txt, fallback to the built-in of the same name. A name with
// neither fails with raggen.ErrInvalidConfig.
func (s *Store) Get(name string) (string, error) {
	s.mu.RLock()
	text, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if text, ok = s.cache[name]; ok {
		return text, nil
	}
	text, err := s.load(name)
	if err != nil {
		return "", err
	}
	s.cache[name] = text
	return text, nil
}

func (s *Store) load(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: bad preamble profile name %q", raggen.ErrInvalidConfig, name)
	}
	if s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, name+".txt")) // #nosec G304 -- name is checked against filepath.Base above
		if err == nil {
			return strings.TrimSpace(string(data)), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("preamble: read profile %q: %w", name, err)
		}
	}
	if text, ok := builtin[name]; ok {
		return text, nil
	}
	return "", fmt.Errorf("%w: unknown preamble profile %q (built-ins: %s)",
		raggen.ErrInvalidConfig, name, strings.Join(Profiles(), ", "))
}
