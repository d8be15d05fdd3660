// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "load statefile"},
			want: "failed to load statefile",
		},
		{
			name: "operation and resource",
			err:  &ActionableError{Operation: "load statefile", Resource: "./statefile.cue"},
			want: "failed to load statefile: ./statefile.cue",
		},
		{
			name: "operation, resource, and cause",
			err: &ActionableError{
				Operation: "pull image",
				Resource:  "nginx:1.27",
				Cause:     errors.New("network timeout"),
			},
			want: "failed to pull image: nginx:1.27: network timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := &ActionableError{Operation: "apply statefile", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	err := &ActionableError{
		Operation:   "load configuration",
		Resource:    "/etc/dockstate/config.cue",
		Suggestions: []string{"Check the syntax", "Remove the file to use defaults"},
		Cause:       errors.New("unexpected token"),
	}

	plain := err.Format(false)
	if !strings.Contains(plain, "• Check the syntax") {
		t.Errorf("Format(false) should include suggestions, got %q", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Errorf("Format(true) should include the error chain, got %q", verbose)
	}
	if !strings.Contains(verbose, "1. unexpected token") {
		t.Errorf("Format(true) should enumerate causes, got %q", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	cause := errors.New("boom")
	err := NewErrorContext().
		WithOperation("observe container").
		WithResource("web").
		WithSuggestion("Check the engine daemon is running").
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build() returned nil with operation set")
	}
	if err.Operation != "observe container" || err.Resource != "web" {
		t.Errorf("Build() = %+v", err)
	}
	if !err.HasSuggestions() {
		t.Error("HasSuggestions() = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("built error should wrap the cause")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	if got := NewErrorContext().WithResource("web").Build(); got != nil {
		t.Errorf("Build() without operation = %v, want nil", got)
	}
	if got := NewErrorContext().BuildError(); got != nil {
		t.Errorf("BuildError() without operation = %v, want nil", got)
	}
}

func TestWrapWithOperation(t *testing.T) {
	if got := WrapWithOperation(nil, "noop"); got != nil {
		t.Errorf("WrapWithOperation(nil) = %v, want nil", got)
	}

	cause := errors.New("boom")
	err := WrapWithOperation(cause, "remove container")
	if err == nil {
		t.Fatal("WrapWithOperation() returned nil")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error should expose cause via errors.Is")
	}
}
