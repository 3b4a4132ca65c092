// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meshintel/paperdex/internal/client"
	"github.com/meshintel/paperdex/internal/container"
)

// grobidContainerName is the fixed name of the managed service container.
const grobidContainerName = "paperdex-grobid"

var grobidCmd = &cobra.Command{
	Use:   "grobid",
	Short: "Manage the local GROBID full-text parsing service",
	Long: `Grobid starts, stops, and checks the GROBID container used by
ingest --pdf. Docker is preferred; podman is used when docker is not
available.`,
}

var grobidStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the GROBID service container",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}

		cfg := grobidClientConfig()
		if err := rt.ImageExists(cfg.Image); err != nil {
			return fmt.Errorf("%w\npull it first: %s pull %s", err, rt.Name(), cfg.Image)
		}
		if rt.ServiceRunning(grobidContainerName) {
			fmt.Println("GROBID is already running.")
			return nil
		}

		port, _ := cmd.Flags().GetInt("port")
		if err := rt.StartService(cfg.Image, grobidContainerName, port); err != nil {
			return err
		}
		fmt.Printf("Started %s via %s. The service takes a moment to come up;\ncheck with: paperdex grobid status\n",
			cfg.Image, rt.Name())
		return nil
	},
}

var grobidStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the GROBID service container",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}
		if !rt.ServiceRunning(grobidContainerName) {
			fmt.Println("GROBID is not running.")
			return nil
		}
		if err := rt.StopService(grobidContainerName); err != nil {
			return err
		}
		fmt.Println("Stopped GROBID.")
		return nil
	},
}

var grobidStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the GROBID service is answering",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := client.NewGrobid(grobidClientConfig())
		if err := g.Alive(context.Background()); err != nil {
			return fmt.Errorf("GROBID is not responding: %w", err)
		}
		fmt.Println("GROBID is up.")
		return nil
	},
}

func init() {
	grobidStartCmd.Flags().Int("port", 8070, "host port to publish the service on")

	grobidCmd.AddCommand(grobidStartCmd)
	grobidCmd.AddCommand(grobidStopCmd)
	grobidCmd.AddCommand(grobidStatusCmd)

	rootCmd.AddCommand(grobidCmd)
}
