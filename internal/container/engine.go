// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"

	"dockstate-cli/pkg/statefile"
)

// Engine defines the container engine operations the reconciler depends on.
type Engine interface {
	// Name returns the engine name (docker or podman).
	Name() string
	// Available checks if the engine is usable on this system.
	Available() bool
	// Version returns the engine server version.
	Version(ctx context.Context) (string, error)

	// BuildImage builds a local image from its Dockerfile directory. The
	// builder's layer cache decides whether anything is actually rebuilt.
	BuildImage(ctx context.Context, ref statefile.ImageRef) error
	// PullImage pulls a remote image. Pulling is idempotent; it is safe to
	// invoke when no newer version exists.
	PullImage(ctx context.Context, ref statefile.ImageRef) error
	// ImageID returns the local content identifier for an image reference,
	// or "" if the image does not exist locally.
	ImageID(ctx context.Context, ref statefile.ImageRef) (string, error)

	// InspectContainer reports the live state of a named container, or nil
	// if no such container exists.
	InspectContainer(ctx context.Context, name string) (*ContainerInfo, error)
	// CreateAndStart creates and starts the container detached, attaching
	// the managed and config-hash labels.
	CreateAndStart(ctx context.Context, spec *statefile.ContainerSpec, configHash string) error
	// StartContainer starts an existing stopped container without recreating it.
	StartContainer(ctx context.Context, name string) error
	// StopContainer stops a running container.
	StopContainer(ctx context.Context, name string) error
	// RemoveContainer removes a stopped container.
	RemoveContainer(ctx context.Context, name string) error
}

// ContainerInfo is the observed state of an existing container, read fresh
// from the engine on every reconciliation pass and never cached.
type ContainerInfo struct {
	// ID is the container identifier.
	ID string
	// Running reports whether the container is currently running.
	Running bool
	// ImageID is the content identifier of the image the container was
	// created from.
	ImageID string
	// ConfigHash is the fingerprint label attached at creation time; empty
	// for containers not created by this tool.
	ConfigHash string
}

// EngineType identifies the container engine type.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
)

// ErrEngineNotAvailable is returned when no usable container engine is found.
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a container engine based on preference, falling back to
// the other engine when the preferred one is unavailable.
func NewEngine(preferred EngineType, opts ...BaseCLIEngineOption) (Engine, error) {
	switch preferred {
	case EngineTypeDocker:
		docker := NewDockerEngine(opts...)
		if docker.Available() {
			return docker, nil
		}
		podman := NewPodmanEngine(opts...)
		if podman.Available() {
			return podman, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypePodman:
		podman := NewPodmanEngine(opts...)
		if podman.Available() {
			return podman, nil
		}
		docker := NewDockerEngine(opts...)
		if docker.Available() {
			return docker, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferred)
	}
}

// AutoDetectEngine finds an available container engine, trying Docker first.
func AutoDetectEngine(opts ...BaseCLIEngineOption) (Engine, error) {
	docker := NewDockerEngine(opts...)
	if docker.Available() {
		return docker, nil
	}
	podman := NewPodmanEngine(opts...)
	if podman.Available() {
		return podman, nil
	}
	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}
