// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"dockstate-cli/pkg/statefile"
)

func newTestEngine(recorder *MockCommandRecorder, t *testing.T) *BaseCLIEngine {
	t.Helper()
	return NewBaseCLIEngine("docker", "/usr/bin/docker", WithExecCommand(recorder.CommandFunc(t)))
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	engine := NewBaseCLIEngine("docker", "/usr/bin/docker")
	ref := statefile.ImageRef{
		Kind:       statefile.ImageLocal,
		Name:       "myimage",
		Tag:        statefile.LocalTag,
		ContextDir: "./build",
		BuildArgs:  []string{"VERSION=2", "MODE=prod"},
	}

	got := engine.BuildArgs(ref)
	want := []string{"build", "-t", "myimage:local", "--build-arg", "VERSION=2", "--build-arg", "MODE=prod", "./build"}
	if !slices.Equal(got, want) {
		t.Errorf("BuildArgs() = %v, want %v", got, want)
	}
}

func TestRunArgs(t *testing.T) {
	t.Parallel()

	engine := NewBaseCLIEngine("docker", "/usr/bin/docker")
	spec := &statefile.ContainerSpec{
		Name:    "web",
		Image:   statefile.ImageRef{Kind: statefile.ImageRemote, Name: "nginx", Tag: "1.27"},
		Command: []string{"nginx", "-g", "daemon off;"},
		RunArgs: []statefile.RunArg{
			{Key: "env", Values: []string{"A=1"}},
			{Key: "publish", Values: []string{"8080:80"}},
		},
	}

	got := engine.RunArgs(spec, "abc123")
	want := []string{
		"run", "-d",
		"--name", "web",
		"--label", "dockstate.managed=true",
		"--label", "dockstate.config-hash=abc123",
		"--env", "A=1",
		"--publish", "8080:80",
		"nginx:1.27",
		"nginx", "-g", "daemon off;",
	}
	if !slices.Equal(got, want) {
		t.Errorf("RunArgs() = %v, want %v", got, want)
	}
}

func TestRunArgs_Deterministic(t *testing.T) {
	t.Parallel()

	engine := NewBaseCLIEngine("docker", "/usr/bin/docker")
	spec := &statefile.ContainerSpec{
		Name:  "web",
		Image: statefile.ImageRef{Kind: statefile.ImageRemote, Name: "nginx"},
		RunArgs: []statefile.RunArg{
			{Key: "env", Values: []string{"A=1", "B=2"}},
			{Key: "privileged", Switch: true},
		},
	}

	first := engine.RunArgs(spec, "fp")
	for range 5 {
		if got := engine.RunArgs(spec, "fp"); !slices.Equal(got, first) {
			t.Fatalf("RunArgs not deterministic: %v vs %v", got, first)
		}
	}
}

func TestStopArgs_Timeout(t *testing.T) {
	t.Parallel()

	engine := NewBaseCLIEngine("docker", "/usr/bin/docker", WithStopTimeout(30))
	got := engine.StopArgs("web")
	want := []string{"stop", "-t", "30", "web"}
	if !slices.Equal(got, want) {
		t.Errorf("StopArgs() = %v, want %v", got, want)
	}
}

func TestImageID(t *testing.T) {
	t.Parallel()

	t.Run("present image returns trimmed id", func(t *testing.T) {
		t.Parallel()
		recorder := NewMockCommandRecorder()
		recorder.Stdout = "sha256:abcdef\n"
		engine := newTestEngine(recorder, t)

		id, err := engine.ImageID(context.Background(), statefile.ImageRef{Name: "nginx"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "sha256:abcdef" {
			t.Errorf("ImageID = %q, want sha256:abcdef", id)
		}
		recorder.AssertArgsContain(t, "image inspect")
	})

	t.Run("absent image is a valid observation", func(t *testing.T) {
		t.Parallel()
		recorder := NewMockCommandRecorder()
		recorder.ExitCode = 1
		recorder.Stderr = "Error: No such image: nginx:latest"
		engine := newTestEngine(recorder, t)

		id, err := engine.ImageID(context.Background(), statefile.ImageRef{Name: "nginx"})
		if err != nil {
			t.Fatalf("not-found must not be an error, got: %v", err)
		}
		if id != "" {
			t.Errorf("ImageID = %q, want empty", id)
		}
	})

	t.Run("permission error is surfaced verbatim", func(t *testing.T) {
		t.Parallel()
		recorder := NewMockCommandRecorder()
		recorder.ExitCode = 1
		recorder.Stderr = "permission denied while trying to connect to the Docker daemon socket"
		engine := newTestEngine(recorder, t)

		_, err := engine.ImageID(context.Background(), statefile.ImageRef{Name: "nginx"})
		if err == nil {
			t.Fatal("expected error for daemon permission failure")
		}
		if !strings.Contains(err.Error(), "permission denied") {
			t.Errorf("stderr should be surfaced, got: %v", err)
		}
		if !errors.Is(err, ErrCommandFailed) {
			t.Errorf("error should wrap ErrCommandFailed: %v", err)
		}
	})
}

func TestInspectContainer(t *testing.T) {
	t.Parallel()

	t.Run("running container parsed", func(t *testing.T) {
		t.Parallel()
		recorder := NewMockCommandRecorder()
		recorder.Stdout = `[{"Id":"c0ffee","State":{"Running":true},"Image":"sha256:abc","Config":{"Labels":{"dockstate.config-hash":"fp1","dockstate.managed":"true"}}}]`
		engine := newTestEngine(recorder, t)

		info, err := engine.InspectContainer(context.Background(), "web")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info == nil {
			t.Fatal("expected container info")
		}
		if info.ID != "c0ffee" || !info.Running || info.ImageID != "sha256:abc" || info.ConfigHash != "fp1" {
			t.Errorf("unexpected info: %+v", info)
		}
	})

	t.Run("stopped container parsed", func(t *testing.T) {
		t.Parallel()
		recorder := NewMockCommandRecorder()
		recorder.Stdout = `[{"Id":"c0ffee","State":{"Running":false},"Image":"sha256:abc","Config":{"Labels":{}}}]`
		engine := newTestEngine(recorder, t)

		info, err := engine.InspectContainer(context.Background(), "web")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Running {
			t.Error("container should be reported stopped")
		}
		if info.ConfigHash != "" {
			t.Errorf("ConfigHash = %q, want empty for unmanaged container", info.ConfigHash)
		}
	})

	t.Run("absent container returns nil", func(t *testing.T) {
		t.Parallel()
		recorder := NewMockCommandRecorder()
		recorder.ExitCode = 1
		recorder.Stderr = "Error: No such object: web"
		engine := newTestEngine(recorder, t)

		info, err := engine.InspectContainer(context.Background(), "web")
		if err != nil {
			t.Fatalf("not-found must not be an error, got: %v", err)
		}
		if info != nil {
			t.Errorf("expected nil info, got %+v", info)
		}
	})

	t.Run("malformed output is an error", func(t *testing.T) {
		t.Parallel()
		recorder := NewMockCommandRecorder()
		recorder.Stdout = "not json"
		engine := newTestEngine(recorder, t)

		if _, err := engine.InspectContainer(context.Background(), "web"); err == nil {
			t.Fatal("expected error for malformed inspect output")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "docker no such object", err: &CommandError{ExitCode: 1, Stderr: "Error: No such object: web"}, want: true},
		{name: "docker no such image", err: &CommandError{ExitCode: 1, Stderr: "Error: No such image: x"}, want: true},
		{name: "podman image not known", err: &CommandError{ExitCode: 125, Stderr: "Error: nginx: image not known"}, want: true},
		{name: "podman no such container", err: &CommandError{ExitCode: 125, Stderr: "Error: no such container web"}, want: true},
		{name: "daemon down", err: &CommandError{ExitCode: 1, Stderr: "Cannot connect to the Docker daemon"}, want: false},
		{name: "zero exit", err: &CommandError{ExitCode: 0, Stderr: "No such"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLifecycleCommands(t *testing.T) {
	t.Parallel()

	recorder := NewMockCommandRecorder()
	engine := newTestEngine(recorder, t)
	ctx := context.Background()

	if err := engine.StartContainer(ctx, "web"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := engine.StopContainer(ctx, "web"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := engine.RemoveContainer(ctx, "web"); err != nil {
		t.Fatalf("rm: %v", err)
	}

	want := []string{"start", "stop", "rm"}
	if got := recorder.Subcommands(); !slices.Equal(got, want) {
		t.Errorf("subcommands = %v, want %v", got, want)
	}
}
