package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Fixed entity keys. One JSON blob per key, mirroring the single-device
// storage contract: absence of a key is the entity's empty default.
const (
	KeySettings        = "settings"
	KeyProfiles        = "profiles"
	KeyCurrentPlan     = "current_plan"
	KeySchedule        = "schedule"
	KeyGroceryHistory  = "grocery_history"
	KeyCurrentProfile  = "current_profile"
	KeyArchiveSnapshot = "archive_snapshot"
)

// Store provides file-based JSON blob storage for the offline mode.
// Single writer assumed: one device, one process.
type Store struct {
	basePath string
}

// NewStore creates a Store and ensures the base directory exists.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) pathFor(key string) string {
	return filepath.Join(s.basePath, key+".json")
}

// Read unmarshals the blob under key into out. It returns false with a
// nil error when the key is absent, so callers can substitute the
// entity's empty default.
func (s *Store) Read(key string, out interface{}) (bool, error) {
	data, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Write serializes v and stores it under key.
func (s *Store) Write(key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := os.WriteFile(s.pathFor(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob under key. Deleting an absent key is not an
// error.
func (s *Store) Delete(key string) error {
	if err := os.Remove(s.pathFor(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Exists checks whether a blob is present under key.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.pathFor(key))
	return !os.IsNotExist(err)
}
