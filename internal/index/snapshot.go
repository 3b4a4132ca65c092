// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meshintel/paperdex/pkg/types"
)

// snapshotEntry is the on-disk form of one indexed chunk.
type snapshotEntry struct {
	Chunk  types.Chunk `json:"chunk"`
	Vector []float32   `json:"vector"`
}

// SaveFile writes the index contents to path as JSON, creating parent
// directories as needed. The write goes through a temp file and rename
// so a crash never leaves a truncated snapshot.
func (m *MemoryIndex) SaveFile(path string) error {
	m.mu.RLock()
	entries := make([]snapshotEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, snapshotEntry{Chunk: entry.chunk, Vector: entry.vector})
	}
	m.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding index snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing index snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing index snapshot: %w", err)
	}
	return nil
}

// LoadMemoryIndex reads a snapshot written by SaveFile. A missing file
// yields an empty index, so first runs need no special casing.
func LoadMemoryIndex(path string) (*MemoryIndex, error) {
	m := NewMemoryIndex()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("reading index snapshot: %w", err)
	}

	var entries []snapshotEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding index snapshot %s: %w", path, err)
	}
	for _, entry := range entries {
		m.entries[entry.Chunk.ChunkID] = memoryEntry{chunk: entry.Chunk, vector: entry.Vector}
	}
	return m, nil
}
