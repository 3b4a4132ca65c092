// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/meshintel/paperdex/pkg/types"
)

// ExportEntry is one paper with its chunk inventory, as written to the
// export file.
type ExportEntry struct {
	types.MergedPaper `yaml:",inline"`
	ChunkCount        int `yaml:"chunk_count"`
}

// ExportYAML writes every stored paper to dataDir/export.yaml so the
// corpus can be inspected or diffed without SQLite tooling.
func (s *Store) ExportYAML(ctx context.Context) error {
	papers, err := s.ListPapers(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(papers))
	for i, paper := range papers {
		var count int
		if err := s.db.QueryRowContext(ctx,
			`SELECT count(*) FROM chunks WHERE paper_id = ?`, paper.PaperID,
		).Scan(&count); err != nil {
			return fmt.Errorf("counting chunks for %s: %w", paper.PaperID, err)
		}
		entries[i] = ExportEntry{MergedPaper: paper, ChunkCount: count}
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}

	path := filepath.Join(s.dataDir, "export.yaml")
	return os.WriteFile(path, data, 0o644)
}
