// Package replaycatalog lists the range recordings kept under a replay root.
package replaycatalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shootingrange/rangesim/internal/replay"
)

// Entry captures a replay header alongside its manifest, when the run closed one.
type Entry struct {
	Dir      string           `json:"dir"`
	Header   replay.Header    `json:"header"`
	Manifest *replay.Manifest `json:"manifest,omitempty"`
}

// Complete reports whether the recording was closed cleanly.
func (e Entry) Complete() bool { return e.Manifest != nil }

// List returns the sessions under root, newest first.
func List(root string) ([]Entry, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root directory must be provided")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root must be a directory")
	}

	headers, err := replay.Sessions(root)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(headers))
	for _, header := range headers {
		//1.- Session directories are named after their id.
		dir := filepath.Join(root, header.SessionID)
		manifest, err := replay.ReadManifest(dir)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", header.SessionID, err)
		}
		entries = append(entries, Entry{Dir: dir, Header: header, Manifest: manifest})
	}
	return entries, nil
}

// MarshalEntries produces a stable JSON representation of the entries for CLI output.
func MarshalEntries(entries []Entry) ([]byte, error) {
	//1.- Marshal with indentation to keep CLI output legible for operators.
	return json.MarshalIndent(entries, "", "  ")
}
