// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meshintel/paperdex/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored papers and chunk counts to YAML",
	Long: `Export writes every stored paper, its provenance, and its chunk count
to <data-dir>/export.yaml for inspection or downstream tooling.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	storeCfg := storeConfig(cmd)
	st, err := store.NewStore(storeCfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ExportYAML(context.Background()); err != nil {
		return err
	}
	fmt.Println("Exported to", filepath.Join(storeCfg.DataDir, "export.yaml"))
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
