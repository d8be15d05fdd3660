// SPDX-License-Identifier: MPL-2.0

package container

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"dockstate-cli/pkg/statefile"
)

// DefaultStopTimeout is how many seconds the engine waits for a graceful
// container stop before killing it.
const DefaultStopTimeout = 10

// ErrCommandFailed is the sentinel error wrapped by CommandError.
var ErrCommandFailed = errors.New("engine command failed")

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// BaseCLIEngineOption configures a BaseCLIEngine.
	BaseCLIEngineOption func(*BaseCLIEngine)

	// BaseCLIEngine provides the shared implementation for CLI-based
	// container engines. Docker and Podman engines embed this struct; all
	// domain operations live here because the two CLIs agree on the argument
	// surface this tool uses.
	BaseCLIEngine struct {
		name        string // engine name for error messages
		binaryPath  string // resolved at construction via exec.LookPath
		execCommand ExecCommandFunc
		stopTimeout int // seconds passed to the stop command
	}

	// CommandError reports a failed engine command. ExitCode and Stderr are
	// kept so callers can surface the failure verbatim and distinguish
	// "not found" observations from real errors.
	CommandError struct {
		Binary   string
		Args     []string
		ExitCode int
		Stderr   string
		Err      error
	}
)

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Binary, strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrCommandFailed so callers can use errors.Is.
func (e *CommandError) Unwrap() error { return ErrCommandFailed }

// IsNotFound reports whether err is an engine "no such image/container"
// response rather than a real failure. Docker phrases these as "No such
// object" / "No such image"; Podman uses "no such container" and
// "image not known".
func IsNotFound(err error) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.ExitCode == 0 {
		return false
	}
	stderr := strings.ToLower(cmdErr.Stderr)
	return strings.Contains(stderr, "no such") || strings.Contains(stderr, "image not known") || strings.Contains(stderr, "not found")
}

// --- Options ---

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) { e.execCommand = fn }
}

// WithBinaryPath overrides the engine binary resolved via exec.LookPath.
func WithBinaryPath(path string) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) { e.binaryPath = path }
}

// WithStopTimeout sets the graceful stop timeout in seconds.
func WithStopTimeout(seconds int) BaseCLIEngineOption {
	return func(e *BaseCLIEngine) {
		if seconds > 0 {
			e.stopTimeout = seconds
		}
	}
}

// NewBaseCLIEngine creates a base engine for the given binary.
func NewBaseCLIEngine(name, binaryPath string, opts ...BaseCLIEngineOption) *BaseCLIEngine {
	e := &BaseCLIEngine{
		name:        name,
		binaryPath:  binaryPath,
		execCommand: exec.CommandContext,
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the engine name used in error messages.
func (e *BaseCLIEngine) Name() string { return e.name }

// BinaryPath returns the path to the container engine binary.
func (e *BaseCLIEngine) BinaryPath() string { return e.binaryPath }

// Available checks that the binary exists and the engine daemon answers.
func (e *BaseCLIEngine) Available() bool {
	if e.binaryPath == "" {
		return false
	}
	_, err := e.run(context.Background(), "version", "--format", "{{.Server.Version}}")
	return err == nil
}

// Version returns the engine server version.
func (e *BaseCLIEngine) Version(ctx context.Context) (string, error) {
	out, err := e.run(ctx, "version", "--format", "{{.Server.Version}}")
	if err != nil {
		return "", fmt.Errorf("failed to get %s version: %w", e.name, err)
	}
	return strings.TrimSpace(out), nil
}

// --- Argument builders ---

// BuildArgs constructs arguments for an image build.
//
// Generated command: <binary> build -t <name:local> [--build-arg KEY=VALUE]... <context-dir>
func (e *BaseCLIEngine) BuildArgs(ref statefile.ImageRef) []string {
	args := []string{"build", "-t", ref.String()}
	for _, kv := range ref.BuildArgs {
		args = append(args, "--build-arg", kv)
	}
	return append(args, ref.ContextDir)
}

// RunArgs constructs arguments for a detached container run.
//
// Generated command: <binary> run -d --name <name> --label ... [options] <image> [command...]
func (e *BaseCLIEngine) RunArgs(spec *statefile.ContainerSpec, configHash string) []string {
	args := []string{
		"run", "-d",
		"--name", spec.Name,
		"--label", statefile.ManagedLabel + "=true",
		"--label", statefile.ConfigHashLabel + "=" + configHash,
	}
	args = append(args, spec.RunFlags()...)
	args = append(args, spec.Image.String())
	return append(args, spec.Command...)
}

// StopArgs constructs arguments for a graceful container stop.
func (e *BaseCLIEngine) StopArgs(name string) []string {
	return []string{"stop", "-t", strconv.Itoa(e.stopTimeout), name}
}

// --- Domain operations ---

// BuildImage builds ref from its Dockerfile directory.
func (e *BaseCLIEngine) BuildImage(ctx context.Context, ref statefile.ImageRef) error {
	_, err := e.run(ctx, e.BuildArgs(ref)...)
	return err
}

// PullImage pulls ref from its registry.
func (e *BaseCLIEngine) PullImage(ctx context.Context, ref statefile.ImageRef) error {
	_, err := e.run(ctx, "pull", ref.String())
	return err
}

// ImageID returns the local content identifier of ref, or "" when the image
// does not exist locally.
func (e *BaseCLIEngine) ImageID(ctx context.Context, ref statefile.ImageRef) (string, error) {
	out, err := e.run(ctx, "image", "inspect", "--format", "{{.Id}}", ref.String())
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// inspectDoc is the subset of the engine's container-inspect JSON this tool
// reads. Docker and Podman agree on these fields.
type inspectDoc struct {
	ID    string `json:"Id"`
	State struct {
		Running bool `json:"Running"`
	} `json:"State"`
	Image  string `json:"Image"`
	Config struct {
		Labels map[string]string `json:"Labels"`
	} `json:"Config"`
}

// InspectContainer reports the live state of the named container, or nil when
// no such container exists.
func (e *BaseCLIEngine) InspectContainer(ctx context.Context, name string) (*ContainerInfo, error) {
	out, err := e.run(ctx, "container", "inspect", name)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var docs []inspectDoc
	if err := json.Unmarshal([]byte(out), &docs); err != nil {
		return nil, fmt.Errorf("parse %s inspect output for %q: %w", e.name, name, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	doc := docs[0]
	return &ContainerInfo{
		ID:         doc.ID,
		Running:    doc.State.Running,
		ImageID:    doc.Image,
		ConfigHash: doc.Config.Labels[statefile.ConfigHashLabel],
	}, nil
}

// CreateAndStart creates and starts the container detached.
func (e *BaseCLIEngine) CreateAndStart(ctx context.Context, spec *statefile.ContainerSpec, configHash string) error {
	_, err := e.run(ctx, e.RunArgs(spec, configHash)...)
	return err
}

// StartContainer starts an existing stopped container.
func (e *BaseCLIEngine) StartContainer(ctx context.Context, name string) error {
	_, err := e.run(ctx, "start", name)
	return err
}

// StopContainer gracefully stops a running container.
func (e *BaseCLIEngine) StopContainer(ctx context.Context, name string) error {
	_, err := e.run(ctx, e.StopArgs(name)...)
	return err
}

// RemoveContainer removes a stopped container.
func (e *BaseCLIEngine) RemoveContainer(ctx context.Context, name string) error {
	_, err := e.run(ctx, "rm", name)
	return err
}

// --- Command execution ---

// run executes one engine command, returning its stdout. Failures are wrapped
// in a CommandError carrying argv, exit code, and stderr. There is no retry
// and no timeout beyond ctx.
func (e *BaseCLIEngine) run(ctx context.Context, args ...string) (string, error) {
	cmd := e.execCommand(ctx, e.binaryPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{
			Binary: e.binaryPath,
			Args:   args,
			Stderr: stderr.String(),
			Err:    err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return stdout.String(), cmdErr
	}
	return stdout.String(), nil
}
