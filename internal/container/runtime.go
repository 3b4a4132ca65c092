// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container implements container runtime detection and management
// of the local GROBID service.
// Implements: prd020-grobid R3.1-R3.6 (container runtime strategy);
//
//	docs/ARCHITECTURE § Full-text parsing.
package container

import (
	"fmt"
	"os/exec"
	"strconv"
)

const (
	binDocker = "docker"
	binPodman = "podman"

	// grobidPort is the port GROBID listens on inside the container.
	grobidPort = 8070
)

// Runtime provides container operations: checking availability, verifying
// images, and managing the GROBID service container.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available() bool

	// ImageExists checks whether the named image exists locally.
	// Returns nil when the image is found, or an error describing the failure.
	ImageExists(image string) error

	// StartService starts a detached container named name from image,
	// publishing hostPort to the GROBID service port.
	StartService(image, name string, hostPort int) error

	// StopService stops the named container. The container is started with
	// --rm, so stopping also removes it.
	StopService(name string) error

	// ServiceRunning reports whether the named container is running.
	ServiceRunning(name string) bool
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// runtime implements Runtime for a specific container binary. Both Docker
// and Podman share the same logic; they differ only in binary name and the
// subcommands used for image and container existence checks.
type runtime struct {
	bin           string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
	psCheckCmd    []string // e.g. ["container", "inspect"] for docker
	exec          executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *runtime) ImageExists(image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) StartService(image, name string, hostPort int) error {
	if hostPort <= 0 {
		hostPort = grobidPort
	}
	args := []string{
		"run", "--rm", "-d",
		"--name", name,
		"-p", strconv.Itoa(hostPort) + ":" + strconv.Itoa(grobidPort),
		image,
	}
	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("starting %s container %s: %w", r.bin, image, err)
	}
	return nil
}

func (r *runtime) StopService(name string) error {
	if err := r.exec.RunSilent(r.bin, "stop", name); err != nil {
		return fmt.Errorf("stopping %s container %s: %w", r.bin, name, err)
	}
	return nil
}

func (r *runtime) ServiceRunning(name string) bool {
	args := make([]string, 0, len(r.psCheckCmd)+1)
	args = append(args, r.psCheckCmd...)
	args = append(args, name)
	return r.exec.RunSilent(r.bin, args...) == nil
}

func newDockerRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		psCheckCmd:    []string{"container", "inspect"},
		exec:          exec,
	}
}

func newPodmanRuntime(exec executor) *runtime {
	return &runtime{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		psCheckCmd:    []string{"container", "exists"},
		exec:          exec,
	}
}

var defaultExec = &osExecutor{}

// DetectRuntime tries docker first, falls back to podman. Returns an error
// if neither runtime is available.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(defaultExec)
}

func detectRuntime(exec executor) (Runtime, error) {
	docker := newDockerRuntime(exec)
	if docker.Available() {
		return docker, nil
	}

	podman := newPodmanRuntime(exec)
	if podman.Available() {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
