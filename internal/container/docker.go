// SPDX-License-Identifier: MPL-2.0

package container

import "os/exec"

// DockerEngine implements the Engine interface using the Docker CLI.
// All operations come from the embedded BaseCLIEngine.
type DockerEngine struct {
	*BaseCLIEngine
}

// NewDockerEngine creates a new Docker engine.
func NewDockerEngine(opts ...BaseCLIEngineOption) *DockerEngine {
	path, _ := exec.LookPath("docker")
	return &DockerEngine{
		BaseCLIEngine: NewBaseCLIEngine(string(EngineTypeDocker), path, opts...),
	}
}
