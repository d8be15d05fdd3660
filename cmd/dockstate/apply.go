// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"dockstate-cli/internal/config"
	"dockstate-cli/internal/container"
	"dockstate-cli/internal/issue"
	"dockstate-cli/internal/reconcile"
	"dockstate-cli/pkg/statefile"
)

var (
	applyFile   string
	applyJSON   bool
	applyDryRun bool
	applyEngine string

	// applyCmd converges the declared container to its desired state.
	applyCmd = &cobra.Command{
		Use:   "apply",
		Short: "Converge the declared container to its desired state",
		Long: `Read a statefile, observe the engine's actual state, and perform the
minimal set of build/pull/create/start/stop/remove actions needed to make
reality match the declaration.

The run is idempotent: applying the same statefile twice reports no change
on the second pass (except for state "restarted", which always recreates).`,
		RunE: runApply,
	}
)

func init() {
	applyCmd.Flags().StringVarP(&applyFile, "file", "f", statefile.DefaultFileName, "statefile to apply")
	applyCmd.Flags().BoolVar(&applyJSON, "json", false, "emit the result as JSON on stdout")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "report planned actions without executing them")
	applyCmd.Flags().StringVar(&applyEngine, "engine", "", "container engine to use (docker, podman, or auto)")
}

// applyOutput is the JSON shape emitted with --json.
type applyOutput struct {
	Changed bool     `json:"changed"`
	Failed  bool     `json:"failed,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
	Msg     string   `json:"msg"`
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := loadConfig(ctx)
	if applyEngine != "" {
		cfg.Engine = config.Engine(applyEngine)
		if valid, errs := cfg.Engine.IsValid(); !valid {
			return applyFailure(cmd, 0, errs[0])
		}
	}

	spec, err := loadStatefile(applyFile)
	if err != nil {
		return applyFailure(cmd, statefileIssue(err), err)
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return applyFailure(cmd, issue.EngineNotFoundId, err)
	}

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: false,
		Prefix:          engine.Name(),
	})
	if verbose {
		logger.SetLevel(charmlog.DebugLevel)
		if version, verr := engine.Version(ctx); verr == nil {
			logger.Debug("engine detected", "version", version)
		}
	}

	rec := reconcile.New(engine,
		reconcile.WithLogger(logger),
		reconcile.WithDryRun(applyDryRun),
	)

	result, err := rec.Apply(ctx, spec)
	if err != nil {
		return applyFailure(cmd, reconcileIssue(err), err)
	}

	return printResult(cmd.OutOrStdout(), result)
}

// loadStatefile parses the statefile at path. A missing default statefile is
// distinguished from a malformed one so the right guidance can be shown.
func loadStatefile(path string) (*statefile.Spec, error) {
	spec, err := statefile.Load(path)
	if err != nil {
		return nil, issue.WrapWithOperation(err, "load statefile "+path)
	}
	return spec, nil
}

// buildEngine creates the configured container engine.
func buildEngine(cfg *config.Config) (container.Engine, error) {
	var opts []container.BaseCLIEngineOption
	if cfg.BinaryPath != "" {
		opts = append(opts, container.WithBinaryPath(cfg.BinaryPath))
	}
	opts = append(opts, container.WithStopTimeout(cfg.StopTimeoutSeconds))

	switch cfg.Engine {
	case config.EngineDocker:
		return container.NewEngine(container.EngineTypeDocker, opts...)
	case config.EnginePodman:
		return container.NewEngine(container.EngineTypePodman, opts...)
	default:
		return container.AutoDetectEngine(opts...)
	}
}

// statefileIssue picks the catalog entry for a statefile loading failure.
func statefileIssue(err error) issue.Id {
	if errors.Is(err, os.ErrNotExist) {
		return issue.StatefileNotFoundId
	}
	return issue.StatefileParseErrorId
}

// reconcileIssue picks the catalog entry for a reconciliation failure, or 0
// when no guidance beyond the error itself is useful.
func reconcileIssue(err error) issue.Id {
	if daemonUnreachable(err) {
		return issue.DaemonUnreachableId
	}
	if permissionDenied(err) {
		return issue.PermissionDeniedId
	}
	var actErr *reconcile.ActionError
	if errors.As(err, &actErr) {
		switch {
		case actErr.Cause == nil:
			return 0
		case strings.Contains(actErr.Action, "build") && buildContextMissing(actErr.Cause):
			return issue.BuildContextNotFoundId
		case strings.Contains(actErr.Action, "pull"):
			return issue.ImagePullFailedId
		}
		return 0
	}
	if errors.Is(err, reconcile.ErrObservation) {
		return issue.DaemonUnreachableId
	}
	return 0
}

// engineCommandError extracts the CommandError behind a reconciliation
// failure. Observation and action errors keep their cause out of the Unwrap
// chain, so it must be pulled from the typed struct.
func engineCommandError(err error) *container.CommandError {
	var cmdErr *container.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr
	}
	var obsErr *reconcile.ObservationError
	var actErr *reconcile.ActionError
	switch {
	case errors.As(err, &obsErr):
		errors.As(obsErr.Cause, &cmdErr)
	case errors.As(err, &actErr):
		errors.As(actErr.Cause, &cmdErr)
	}
	return cmdErr
}

// daemonUnreachable reports whether the engine's stderr indicates the daemon
// itself did not answer, as opposed to the operation being rejected.
func daemonUnreachable(err error) bool {
	cmdErr := engineCommandError(err)
	if cmdErr == nil {
		return false
	}
	stderr := strings.ToLower(cmdErr.Stderr)
	return strings.Contains(stderr, "cannot connect") ||
		strings.Contains(stderr, "connection refused") ||
		strings.Contains(stderr, "is the docker daemon running")
}

// permissionDenied reports whether the engine refused the operation because
// the user lacks access to the socket.
func permissionDenied(err error) bool {
	cmdErr := engineCommandError(err)
	if cmdErr == nil {
		return false
	}
	return strings.Contains(strings.ToLower(cmdErr.Stderr), "permission denied")
}

// buildContextMissing reports whether a build failed because the context
// directory or its Dockerfile is absent.
func buildContextMissing(cause error) bool {
	if errors.Is(cause, os.ErrNotExist) {
		return true
	}
	var cmdErr *container.CommandError
	if !errors.As(cause, &cmdErr) {
		return false
	}
	stderr := strings.ToLower(cmdErr.Stderr)
	return strings.Contains(stderr, "unable to prepare context") ||
		strings.Contains(stderr, "no such file or directory") ||
		(strings.Contains(stderr, "dockerfile") && strings.Contains(stderr, "not found"))
}

// printResult writes the reconciliation outcome in the selected format.
func printResult(w io.Writer, result *reconcile.Result) error {
	if applyJSON {
		return json.NewEncoder(w).Encode(applyOutput{
			Changed: result.Changed,
			Reasons: result.Reasons,
			Msg:     result.Message,
		})
	}

	if result.Changed {
		fmt.Fprintf(w, "%s %s\n", ChangedStyle.Render("~"), result.Message)
		for _, reason := range result.Reasons {
			fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render("-"), reason)
		}
	} else {
		fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("✓"), result.Message)
	}
	return nil
}

// applyFailure reports a failed run, rendering catalog guidance in human
// mode and a machine-readable payload in JSON mode, and maps the failure to
// exit code 1.
func applyFailure(cmd *cobra.Command, id issue.Id, err error) error {
	if applyJSON {
		_ = json.NewEncoder(cmd.OutOrStdout()).Encode(applyOutput{
			Failed: true,
			Msg:    err.Error(),
		})
		return &ExitError{Code: 1, Err: err}
	}

	if id != 0 {
		if entry := issue.Get(id); entry != nil {
			rendered, renderErr := entry.Render("dark")
			if renderErr == nil {
				fmt.Fprint(cmd.ErrOrStderr(), rendered)
			}
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), ErrorStyle.Render("✗ ")+formatErrorForDisplay(err, verbose))
	return &ExitError{Code: 1, Err: err}
}
