package preflight

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MarkerFile records the last fully passing check.
const MarkerFile = ".preflight-passed"

// Marker is the content of MarkerFile.
type Marker struct {
	CheckedAt time.Time `json:"checked_at"`
	BaseURL   string    `json:"base_url"`
}

// NeedsCheck returns true unless a check against baseURL has passed before.
func NeedsCheck(dataDir, baseURL string) bool {
	m, ok := ReadMarker(dataDir)
	return !ok || m.BaseURL != baseURL
}

// MarkPassed records that every check against baseURL passed.
func MarkPassed(dataDir, baseURL string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create marker directory: %w", err)
	}

	data, err := json.Marshal(Marker{CheckedAt: time.Now().UTC(), BaseURL: baseURL})
	if err != nil {
		return fmt.Errorf("encode marker: %w", err)
	}
	return os.WriteFile(filepath.Join(dataDir, MarkerFile), data, 0o644)
}

// ClearMarker removes the marker, forcing a re-check on next run.
func ClearMarker(dataDir string) error {
	err := os.Remove(filepath.Join(dataDir, MarkerFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove marker file: %w", err)
	}
	return nil
}

// ReadMarker returns the recorded marker. Missing or unreadable markers
// report false.
func ReadMarker(dataDir string) (Marker, bool) {
	content, err := os.ReadFile(filepath.Join(dataDir, MarkerFile))
	if err != nil {
		return Marker{}, false
	}
	var m Marker
	if err := json.Unmarshal(content, &m); err != nil || m.CheckedAt.IsZero() {
		return Marker{}, false
	}
	return m, true
}
