// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dockstate-cli/internal/container"
	"dockstate-cli/internal/issue"
	"dockstate-cli/internal/reconcile"
	"dockstate-cli/pkg/statefile"
)

func TestPrintResultJSON(t *testing.T) {
	applyJSON = true
	defer func() { applyJSON = false }()

	var out bytes.Buffer
	result := &reconcile.Result{
		Changed: true,
		Reasons: []string{`pulled image "nginx:1.27"`, "created and started container web"},
		Message: `pulled image "nginx:1.27"; created and started container web`,
	}
	if err := printResult(&out, result); err != nil {
		t.Fatalf("printResult() error = %v", err)
	}

	var got applyOutput
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out.String())
	}
	if !got.Changed || got.Failed {
		t.Errorf("JSON output = %+v", got)
	}
	if len(got.Reasons) != 2 {
		t.Errorf("Reasons = %v, want 2 entries", got.Reasons)
	}
}

func TestPrintResultHumanChanged(t *testing.T) {
	var out bytes.Buffer
	result := &reconcile.Result{
		Changed: true,
		Reasons: []string{"stopped container web", "removed container web"},
		Message: "stopped container web; removed container web",
	}
	if err := printResult(&out, result); err != nil {
		t.Fatalf("printResult() error = %v", err)
	}
	for _, want := range []string{"stopped container web", "removed container web"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestPrintResultHumanUnchanged(t *testing.T) {
	var out bytes.Buffer
	result := &reconcile.Result{
		Changed: false,
		Message: `container "web" already in desired state`,
	}
	if err := printResult(&out, result); err != nil {
		t.Fatalf("printResult() error = %v", err)
	}
	if !strings.Contains(out.String(), "already in desired state") {
		t.Errorf("output = %q", out.String())
	}
}

func TestLoadStatefileMissing(t *testing.T) {
	_, err := loadStatefile(filepath.Join(t.TempDir(), "statefile.cue"))
	if err == nil {
		t.Fatal("loadStatefile() error = nil, want failure")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped os.ErrNotExist", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Errorf("error %v is not an *issue.ActionableError", err)
	}
	if statefileIssue(err) != issue.StatefileNotFoundId {
		t.Errorf("statefileIssue() = %d, want StatefileNotFoundId", statefileIssue(err))
	}
}

func TestLoadStatefileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statefile.cue")
	if err := os.WriteFile(path, []byte(`state: "paused"`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := loadStatefile(path)
	if err == nil {
		t.Fatal("loadStatefile() error = nil, want schema violation")
	}
	if statefileIssue(err) != issue.StatefileParseErrorId {
		t.Errorf("statefileIssue() = %d, want StatefileParseErrorId", statefileIssue(err))
	}
}

func TestLoadStatefileValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statefile.cue")
	content := `
state: "running"
name:  "web"
image: "nginx:1.27"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	spec, err := loadStatefile(path)
	if err != nil {
		t.Fatalf("loadStatefile() error = %v", err)
	}
	if spec.State != statefile.StateRunning || spec.Container.Name != "web" {
		t.Errorf("spec = %+v", spec)
	}
}

func TestReconcileIssueMapping(t *testing.T) {
	obsErr := &reconcile.ObservationError{Op: "inspect container web", Cause: errors.New("cannot connect to the docker daemon")}
	if got := reconcileIssue(obsErr); got != issue.DaemonUnreachableId {
		t.Errorf("reconcileIssue(observation) = %d, want DaemonUnreachableId", got)
	}

	pullErr := &reconcile.ActionError{Action: "pull image nginx:1.27", Cause: errors.New("manifest unknown")}
	if got := reconcileIssue(pullErr); got != issue.ImagePullFailedId {
		t.Errorf("reconcileIssue(pull action) = %d, want ImagePullFailedId", got)
	}

	rmErr := &reconcile.ActionError{Action: "remove container web", Cause: errors.New("container is in use")}
	if got := reconcileIssue(rmErr); got != 0 {
		t.Errorf("reconcileIssue(remove action) = %d, want 0", got)
	}

	deniedErr := &reconcile.ObservationError{Op: "inspect container web", Cause: &container.CommandError{
		Binary:   "docker",
		Args:     []string{"container", "inspect", "web"},
		ExitCode: 1,
		Stderr:   "permission denied while trying to connect to the Docker daemon socket",
	}}
	if got := reconcileIssue(deniedErr); got != issue.PermissionDeniedId {
		t.Errorf("reconcileIssue(permission denied) = %d, want PermissionDeniedId", got)
	}

	buildErr := &reconcile.ActionError{Action: "build image myapp:local", Cause: &container.CommandError{
		Binary:   "docker",
		Args:     []string{"build", "-t", "myapp:local", "./build"},
		ExitCode: 1,
		Stderr:   "unable to prepare context: path \"./build\" not found",
	}}
	if got := reconcileIssue(buildErr); got != issue.BuildContextNotFoundId {
		t.Errorf("reconcileIssue(missing build context) = %d, want BuildContextNotFoundId", got)
	}

	missingDir := &reconcile.ActionError{Action: "build image myapp:local", Cause: os.ErrNotExist}
	if got := reconcileIssue(missingDir); got != issue.BuildContextNotFoundId {
		t.Errorf("reconcileIssue(missing context dir) = %d, want BuildContextNotFoundId", got)
	}
}

func TestDaemonUnreachable(t *testing.T) {
	cmdErr := &container.CommandError{
		Binary:   "docker",
		Args:     []string{"container", "inspect", "web"},
		ExitCode: 1,
		Stderr:   "Cannot connect to the Docker daemon at unix:///var/run/docker.sock. Is the docker daemon running?",
	}
	obsErr := &reconcile.ObservationError{Op: "inspect container web", Cause: cmdErr}
	if !daemonUnreachable(obsErr) {
		t.Error("daemonUnreachable() = false for daemon connect failure")
	}

	denied := &reconcile.ActionError{Action: "remove container web", Cause: &container.CommandError{
		Binary:   "docker",
		Args:     []string{"rm", "web"},
		ExitCode: 1,
		Stderr:   "Error response from daemon: container is running",
	}}
	if daemonUnreachable(denied) {
		t.Error("daemonUnreachable() = true for an ordinary rejected operation")
	}
}

func TestExitErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ExitError{Code: 1, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("ExitError should unwrap its cause")
	}
	if err.Error() != "boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if (&ExitError{Code: 3}).Error() != "exit status 3" {
		t.Errorf("Error() without cause = %q", (&ExitError{Code: 3}).Error())
	}
}
