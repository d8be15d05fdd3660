// SPDX-License-Identifier: MPL-2.0

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"dockstate-cli/internal/container"
	"dockstate-cli/pkg/statefile"
)

// Reconciler converges a single container/image pair to a declared state.
type Reconciler struct {
	engine container.Engine
	logger *log.Logger
	dryRun bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger used for per-step progress.
func WithLogger(logger *log.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// WithDryRun makes the pass observation-only: planned actions are reported
// in the result but no side-effecting command is executed. With no build or
// pull performed, image freshness cannot be probed; drift detection in
// dry-run mode covers container absence, run-argument changes, and mismatch
// against the image currently present locally.
func WithDryRun(dryRun bool) Option {
	return func(r *Reconciler) { r.dryRun = dryRun }
}

// New creates a Reconciler driving the given engine.
func New(engine container.Engine, opts ...Option) *Reconciler {
	r := &Reconciler{engine: engine, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply runs one reconciliation pass. It either completes the full action
// sequence for the desired state or aborts at the first failure.
func (r *Reconciler) Apply(ctx context.Context, spec *statefile.Spec) (*Result, error) {
	r.logger.Debug("reconciling", "container", spec.Container.Name, "state", spec.State.String())

	switch spec.State {
	case statefile.StateBuilt:
		return r.ensureBuilt(ctx, &spec.Container)
	case statefile.StateStopped:
		return r.ensureStopped(ctx, &spec.Container)
	case statefile.StateRunning:
		return r.ensureRunning(ctx, &spec.Container, false)
	case statefile.StateRestarted:
		return r.ensureRunning(ctx, &spec.Container, true)
	default:
		return nil, spec.State.Validate()
	}
}

// ensureBuilt refreshes the image and never touches containers.
func (r *Reconciler) ensureBuilt(ctx context.Context, c *statefile.ContainerSpec) (*Result, error) {
	var reasons []string
	if _, err := r.refreshImage(ctx, c.Image, &reasons); err != nil {
		return nil, err
	}
	return newResult(fmt.Sprintf("image %q up to date", c.Image.String()), reasons, r.dryRun), nil
}

// ensureStopped stops the container if it runs and removes it if it exists.
// An absent container is a no-op.
func (r *Reconciler) ensureStopped(ctx context.Context, c *statefile.ContainerSpec) (*Result, error) {
	info, err := r.observe(ctx, c.Name)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return newResult(fmt.Sprintf("container %q does not exist", c.Name), nil, r.dryRun), nil
	}

	var reasons []string
	if info.Running {
		if err := r.act(ctx, &reasons, "stop container "+c.Name, "stopped container "+c.Name, func(ctx context.Context) error {
			return r.engine.StopContainer(ctx, c.Name)
		}); err != nil {
			return nil, err
		}
	}
	if err := r.act(ctx, &reasons, "remove container "+c.Name, "removed container "+c.Name, func(ctx context.Context) error {
		return r.engine.RemoveContainer(ctx, c.Name)
	}); err != nil {
		return nil, err
	}
	return newResult("", reasons, r.dryRun), nil
}

// ensureRunning refreshes the image, then converges the container. With
// recreate set (state "restarted") an existing container is always replaced
// so that a restart is observable even when nothing changed.
func (r *Reconciler) ensureRunning(ctx context.Context, c *statefile.ContainerSpec, recreate bool) (*Result, error) {
	var reasons []string

	imageID, err := r.refreshImage(ctx, c.Image, &reasons)
	if err != nil {
		return nil, err
	}

	info, err := r.observe(ctx, c.Name)
	if err != nil {
		return nil, err
	}

	fingerprint := c.Fingerprint()
	noChange := fmt.Sprintf("container %q already in desired state", c.Name)

	switch {
	case info == nil:
		if err := r.create(ctx, c, fingerprint, &reasons); err != nil {
			return nil, err
		}

	case recreate:
		reasons = append(reasons, "restart requested")
		if err := r.replace(ctx, c, fingerprint, info, &reasons); err != nil {
			return nil, err
		}

	default:
		// Image identity takes precedence over argument drift when deciding,
		// but both causes are surfaced so the caller knows why.
		imageMismatch := imageID != "" && info.ImageID != imageID
		argsMismatch := info.ConfigHash != fingerprint

		if imageMismatch {
			reasons = append(reasons, fmt.Sprintf("image %q changed (container created from %.19s, current %.19s)",
				c.Image.String(), info.ImageID, imageID))
		}
		if argsMismatch {
			reasons = append(reasons, "run arguments changed")
		}

		switch {
		case imageMismatch || argsMismatch:
			if err := r.replace(ctx, c, fingerprint, info, &reasons); err != nil {
				return nil, err
			}
		case !info.Running:
			if err := r.act(ctx, &reasons, "start container "+c.Name, "started existing container "+c.Name, func(ctx context.Context) error {
				return r.engine.StartContainer(ctx, c.Name)
			}); err != nil {
				return nil, err
			}
		default:
			// Running, same image, same arguments: converged.
		}
	}

	return newResult(noChange, reasons, r.dryRun), nil
}

// refreshImage brings the local image up to date and returns its content
// identifier. Staleness detection is delegated to the builder's layer cache
// and the registry: the image is always rebuilt or re-pulled, and change is
// detected by comparing the image identifier before and after.
func (r *Reconciler) refreshImage(ctx context.Context, ref statefile.ImageRef, reasons *[]string) (string, error) {
	oldID, err := r.engine.ImageID(ctx, ref)
	if err != nil {
		return "", &ObservationError{Op: "inspect image " + ref.String(), Cause: err}
	}

	local := ref.Kind == statefile.ImageLocal
	if r.dryRun {
		if oldID == "" {
			if local {
				*reasons = append(*reasons, fmt.Sprintf("would build image %q", ref.String()))
			} else {
				*reasons = append(*reasons, fmt.Sprintf("would pull image %q", ref.String()))
			}
		}
		return oldID, nil
	}

	var verb, done string
	if local {
		verb, done = "build", "built"
		r.logger.Debug("building image", "image", ref.String(), "context", ref.ContextDir)
		err = r.engine.BuildImage(ctx, ref)
	} else {
		verb, done = "pull", "pulled"
		r.logger.Debug("pulling image", "image", ref.String())
		err = r.engine.PullImage(ctx, ref)
	}
	if err != nil {
		return "", &ActionError{Action: verb + " image " + ref.String(), Cause: err}
	}

	newID, err := r.engine.ImageID(ctx, ref)
	if err != nil {
		return "", &ObservationError{Op: "inspect image " + ref.String(), Cause: err}
	}
	if newID == "" {
		return "", &ActionError{Action: verb + " image " + ref.String(), Cause: errors.New("image missing after " + verb)}
	}

	switch {
	case oldID == "":
		*reasons = append(*reasons, fmt.Sprintf("%s image %q", done, ref.String()))
	case newID != oldID:
		*reasons = append(*reasons, fmt.Sprintf("image %q updated (%s produced a new image id)", ref.String(), verb))
	}
	return newID, nil
}

// observe reads the container's live state. Absence is a valid observation.
func (r *Reconciler) observe(ctx context.Context, name string) (*container.ContainerInfo, error) {
	info, err := r.engine.InspectContainer(ctx, name)
	if err != nil {
		return nil, &ObservationError{Op: "inspect container " + name, Cause: err}
	}
	return info, nil
}

// replace stops (if running) and removes the existing container, then
// creates and starts a fresh one.
func (r *Reconciler) replace(ctx context.Context, c *statefile.ContainerSpec, fingerprint string, info *container.ContainerInfo, reasons *[]string) error {
	if info.Running {
		if err := r.act(ctx, reasons, "stop container "+c.Name, "stopped container "+c.Name, func(ctx context.Context) error {
			return r.engine.StopContainer(ctx, c.Name)
		}); err != nil {
			return err
		}
	}
	if err := r.act(ctx, reasons, "remove container "+c.Name, "removed container "+c.Name, func(ctx context.Context) error {
		return r.engine.RemoveContainer(ctx, c.Name)
	}); err != nil {
		return err
	}
	return r.create(ctx, c, fingerprint, reasons)
}

func (r *Reconciler) create(ctx context.Context, c *statefile.ContainerSpec, fingerprint string, reasons *[]string) error {
	action := fmt.Sprintf("create and start container %s from %q", c.Name, c.Image.String())
	done := fmt.Sprintf("created and started container %s from %q", c.Name, c.Image.String())
	return r.act(ctx, reasons, action, done, func(ctx context.Context) error {
		return r.engine.CreateAndStart(ctx, c, fingerprint)
	})
}

// act runs one side-effecting step, or records it in dry-run mode. A failed
// step aborts the pass; earlier steps are not undone.
func (r *Reconciler) act(ctx context.Context, reasons *[]string, action, done string, fn func(context.Context) error) error {
	if r.dryRun {
		*reasons = append(*reasons, "would "+action)
		return nil
	}
	r.logger.Info(action)
	if err := fn(ctx); err != nil {
		return &ActionError{Action: action, Cause: err}
	}
	*reasons = append(*reasons, done)
	return nil
}
