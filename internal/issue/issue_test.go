// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	// Verify all IDs are unique and sequential
	ids := []Id{
		EngineNotFoundId,
		DaemonUnreachableId,
		StatefileNotFoundId,
		StatefileParseErrorId,
		BuildContextNotFoundId,
		ImagePullFailedId,
		ConfigLoadFailedId,
		PermissionDeniedId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	// Verify IDs start at 1 (iota + 1)
	if EngineNotFoundId != 1 {
		t.Errorf("EngineNotFoundId = %d, want 1", EngineNotFoundId)
	}
}

func TestGet_AllIdsRegistered(t *testing.T) {
	for id := EngineNotFoundId; id <= PermissionDeniedId; id++ {
		if Get(id) == nil {
			t.Errorf("Get(%d) = nil, want registered issue", id)
		}
	}
}

func TestIssue_Id(t *testing.T) {
	issue := Get(EngineNotFoundId)
	if issue == nil {
		t.Fatal("Get(EngineNotFoundId) returned nil")
	}

	if issue.Id() != EngineNotFoundId {
		t.Errorf("issue.Id() = %d, want %d", issue.Id(), EngineNotFoundId)
	}
}

func TestIssue_MarkdownMsg(t *testing.T) {
	tests := []struct {
		id   Id
		want string
	}{
		{StatefileNotFoundId, "No statefile found"},
		{StatefileParseErrorId, "Failed to parse statefile"},
		{EngineNotFoundId, "Container engine not found"},
		{DaemonUnreachableId, "Cannot talk to the container engine"},
	}

	for _, tt := range tests {
		issue := Get(tt.id)
		if issue == nil {
			t.Fatalf("Get(%d) returned nil", tt.id)
		}
		if !strings.Contains(string(issue.MarkdownMsg()), tt.want) {
			t.Errorf("MarkdownMsg() for id %d should contain %q", tt.id, tt.want)
		}
	}
}

func TestIssue_Render(t *testing.T) {
	// Stub the renderer so the test doesn't depend on terminal detection.
	original := render
	defer func() { render = original }()
	render = func(in, stylePath string) (string, error) {
		return "rendered:" + in, nil
	}

	issue := Get(StatefileNotFoundId)
	out, err := issue.Render("dark")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasPrefix(out, "rendered:") {
		t.Errorf("Render() = %q, want stubbed output", out)
	}
	if !strings.Contains(out, "No statefile found") {
		t.Errorf("Render() should include the markdown body")
	}
}

func TestValues(t *testing.T) {
	vals := Values()
	if len(vals) != len(issues) {
		t.Errorf("Values() returned %d issues, want %d", len(vals), len(issues))
	}
}

func TestIssue_DocLinksClone(t *testing.T) {
	issue := Get(EngineNotFoundId)
	links := issue.DocLinks()
	if len(links) == 0 {
		return
	}
	original := links[0]
	links[0] = "modified"
	newLinks := issue.DocLinks()
	if newLinks[0] != original {
		t.Error("DocLinks() should return a clone")
	}
}
