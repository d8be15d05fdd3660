// SPDX-License-Identifier: MPL-2.0

package statefile

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// LocalTag is the tag reserved for locally built images. A statefile with
	// a path gets this tag implied; a statefile without a path must not use it.
	LocalTag = "local"

	// ManagedLabel marks containers created by dockstate.
	ManagedLabel = "dockstate.managed"

	// ConfigHashLabel carries the fingerprint of the run configuration the
	// container was created with. It is the only record of that configuration;
	// it lives on the container itself, so there is no state to persist
	// between invocations.
	ConfigHashLabel = "dockstate.config-hash"
)

// DesiredState is the target state of the managed container.
type DesiredState string

const (
	StateRunning   DesiredState = "running"
	StateStopped   DesiredState = "stopped"
	StateRestarted DesiredState = "restarted"
	StateBuilt     DesiredState = "built"
)

// String returns the string representation of the DesiredState.
func (s DesiredState) String() string { return string(s) }

// Validate returns an error if the DesiredState is not one of the defined states.
func (s DesiredState) Validate() error {
	switch s {
	case StateRunning, StateStopped, StateRestarted, StateBuilt:
		return nil
	default:
		return &ValidationError{Field: "state", Message: fmt.Sprintf("unknown state %q (valid: running, stopped, restarted, built)", s)}
	}
}

// ImageKind distinguishes locally built images from registry pulls.
type ImageKind string

const (
	// ImageLocal is built from a Dockerfile directory; always tagged "local".
	ImageLocal ImageKind = "local"
	// ImageRemote is pulled from a registry; never tagged "local".
	ImageRemote ImageKind = "remote"
)

// ImageRef identifies the image backing the container. A ref is constructed
// by Compile and immutable afterwards.
type ImageRef struct {
	// Kind selects between build-from-Dockerfile and registry pull.
	Kind ImageKind
	// Name is the image name without tag.
	Name string
	// Tag is LocalTag for local images; for remote images it is whatever the
	// statefile declared (possibly empty, meaning the engine default).
	Tag string
	// ContextDir is the Dockerfile directory for local images.
	ContextDir string
	// BuildArgs are KEY=VALUE build-time variables in declaration order.
	BuildArgs []string
}

// IsZero reports whether the ref is unset (allowed only for state "stopped").
func (r ImageRef) IsZero() bool { return r.Name == "" }

// String returns the name:tag reference passed to the engine.
func (r ImageRef) String() string {
	if r.Tag == "" {
		return r.Name
	}
	return r.Name + ":" + r.Tag
}

// RunArg is one normalized run argument. Keys use underscores; rendering
// converts them back to the engine's dashed long-option form.
type RunArg struct {
	// Key is the normalized (underscore) argument name.
	Key string
	// Values holds one entry per flag repetition, in declaration order.
	// Empty for switch arguments.
	Values []string
	// Switch marks a value-less boolean flag (e.g. privileged: true).
	Switch bool
}

// Flag returns the dashed long-option name for the argument.
func (a RunArg) Flag() string {
	return "--" + strings.ReplaceAll(a.Key, "_", "-")
}

// ContainerSpec is the desired run configuration for the managed container.
type ContainerSpec struct {
	// Name is the container name, the unique key of the reconciliation.
	Name string
	// Image is the backing image; zero only when the desired state is stopped.
	Image ImageRef
	// Command is the in-container command, already split into argv.
	Command []string
	// RunArgs are the translated run arguments, sorted by normalized key so
	// that rendering is deterministic regardless of declaration order.
	RunArgs []RunArg
}

// Spec is a fully validated statefile: the desired state plus the container
// configuration to converge to.
type Spec struct {
	State     DesiredState
	Container ContainerSpec
}

// ErrInvalidStatefile is the sentinel wrapped by ValidationError.
var ErrInvalidStatefile = errors.New("invalid statefile")

// ValidationError reports a malformed statefile. It is always detected before
// any engine command runs.
type ValidationError struct {
	// Field is the statefile option at fault.
	Field string
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns ErrInvalidStatefile so callers can use errors.Is.
func (e *ValidationError) Unwrap() error { return ErrInvalidStatefile }

// NormalizeKey maps a run-argument key to its canonical underscore form.
func NormalizeKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}
