// Package manifest records what a generate run read and wrote.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/tagbuilder/internal/tagindex"
	"git.home.luguber.info/inful/tagbuilder/internal/tagpage"
)

// StatusSuccess is recorded for completed runs; manifests are only written
// after every page is on disk.
const StatusSuccess = "success"

// BuildManifest represents a complete record of a run's inputs and outputs.
type BuildManifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Inputs    Inputs    `json:"inputs"`
	Outputs   Outputs   `json:"outputs"`
	Status    string    `json:"status"`
	Duration  int64     `json:"duration_ms"`
}

// Inputs captures everything that determines the generated pages.
type Inputs struct {
	PostsDir     string `json:"posts_dir"`
	Extractor    string `json:"extractor"`
	PostsScanned int    `json:"posts_scanned"`
	ConfigHash   string `json:"config_hash"`
}

// Outputs captures the tag pages and anything left out.
type Outputs struct {
	TagDir  string          `json:"tag_dir"`
	Pages   []tagpage.Page  `json:"pages"`
	Skipped []tagindex.Skip `json:"skipped,omitempty"`
}

// New returns a manifest stamped with a fresh ID and the current time.
func New(version string) *BuildManifest {
	return &BuildManifest{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Version:   version,
	}
}

// Tags lists the tags of the recorded pages in order.
func (m *BuildManifest) Tags() []string {
	out := make([]string, 0, len(m.Outputs.Pages))
	for _, p := range m.Outputs.Pages {
		out = append(out, p.Tag)
	}
	return out
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Write stores the manifest at path, creating parent directories.
func (m *BuildManifest) Write(path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	// #nosec G306 -- manifest is a public build artifact.
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (*BuildManifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration.
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return FromJSON(data)
}

// HashConfig computes a deterministic hash of any JSON-serializable
// configuration value.
func HashConfig(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}
