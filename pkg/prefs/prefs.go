// Package prefs persists the user's last-used composer selections
// between runs. Preferences are stored as a single JSON file in the
// user's config directory.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Prefs holds the selections worth restoring on the next run. Zero
// values mean "no preference saved"; consumers fall back to their own
// defaults.
type Prefs struct {
	Preset       string    `json:"preset,omitempty"`
	FontFamily   string    `json:"font_family,omitempty"`
	FamilyPinned bool      `json:"family_pinned,omitempty"`
	FontWeight   int       `json:"font_weight,omitempty"`
	LogoRef      string    `json:"logo_ref,omitempty"`
	LogoWidth    int       `json:"logo_width,omitempty"`
	LogoBlur     float64   `json:"logo_blur,omitempty"`
	LogoOpacity  float64   `json:"logo_opacity,omitempty"`
	OutputDir    string    `json:"output_dir,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FileStore is a file-based preference store for the CLI and studio.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

const prefsFile = "prefs.json"

// NewFileStore creates a preference store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/postframe/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "postframe")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}
	return &FileStore{path: filepath.Join(baseDir, prefsFile)}, nil
}

// Load reads the stored preferences. A missing file is not an error
// and returns zero Prefs.
func (s *FileStore) Load() (*Prefs, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Prefs{}, nil
		}
		return nil, fmt.Errorf("read prefs file: %w", err)
	}

	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prefs: %w", err)
	}
	return &p, nil
}

// Save writes the preferences, stamping UpdatedAt.
func (s *FileStore) Save(p *Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write prefs file: %w", err)
	}
	return nil
}

// Delete removes the preference file. Deleting a missing file is not
// an error.
func (s *FileStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove prefs file: %w", err)
	}
	return nil
}

// Path returns the preference file path.
func (s *FileStore) Path() string {
	return s.path
}
