package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/pretty"
)

// ManifestFile describes the run that produced a directory.
const ManifestFile = "manifest.json"

// Manifest records what a run ranked and how.
type Manifest struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Market     string    `json:"market"`
	Metric     string    `json:"metric"`
	Provider   string    `json:"provider"`
	Range      string    `json:"range,omitempty"`
	Start      string    `json:"start,omitempty"`
	Interval   string    `json:"interval"`
	Symbols    int       `json:"symbols"`
	Ranked     int       `json:"ranked"`
	Skipped    []string  `json:"skipped"`
	Images     int       `json:"images"`
}

// WriteManifest writes m as indented JSON into dir.
func WriteManifest(dir string, m Manifest) (string, error) {
	if m.Skipped == nil {
		m.Skipped = []string{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, pretty.Pretty(raw), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}
