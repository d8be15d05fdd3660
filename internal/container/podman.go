// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"os/exec"
)

// PodmanEngine implements the Engine interface using the Podman CLI. Podman
// is CLI-compatible with Docker for every operation this tool issues; only
// availability probing differs (rootless Podman has no daemon, so a missing
// server version is not an error).
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a new Podman engine.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	path, _ := exec.LookPath("podman")
	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine(string(EngineTypePodman), path, opts...),
	}
}

// Available checks if Podman is usable. Unlike Docker, a plain version query
// works without a running daemon.
func (e *PodmanEngine) Available() bool {
	if e.BinaryPath() == "" {
		return false
	}
	_, err := e.run(context.Background(), "version", "--format", "{{.Client.Version}}")
	return err == nil
}
