// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dockstate-cli/pkg/statefile"
)

// Every template must produce a statefile that parses and validates.
func TestGenerateStatefileTemplatesAreValid(t *testing.T) {
	for _, template := range []string{"remote", "local", "minimal", "unknown-falls-back"} {
		t.Run(template, func(t *testing.T) {
			content := generateStatefile(template)
			spec, err := statefile.Parse([]byte(content), "statefile.cue")
			if err != nil {
				t.Fatalf("template %q does not parse: %v", template, err)
			}
			if spec.Container.Name == "" {
				t.Error("template produced an empty container name")
			}
		})
	}
}

func TestGenerateStatefileLocalTemplate(t *testing.T) {
	spec, err := statefile.Parse([]byte(generateStatefile("local")), "statefile.cue")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if spec.Container.Image.Kind != statefile.ImageLocal {
		t.Errorf("Kind = %q, want local image", spec.Container.Image.Kind)
	}
	if spec.Container.Image.Tag != statefile.LocalTag {
		t.Errorf("Tag = %q, want %q", spec.Container.Image.Tag, statefile.LocalTag)
	}
}

func TestRunInitCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "statefile.cue")

	var out bytes.Buffer
	initCmd.SetOut(&out)
	defer initCmd.SetOut(nil)

	if err := runInit(initCmd, []string{path}); err != nil {
		t.Fatalf("runInit() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("statefile not created: %v", err)
	}
	if !strings.Contains(out.String(), "Created") {
		t.Errorf("output = %q, want creation notice", out.String())
	}

	// A second run without --force refuses to overwrite.
	if err := runInit(initCmd, []string{path}); err == nil {
		t.Error("runInit() on existing file should fail without --force")
	}

	initForce = true
	defer func() { initForce = false }()
	if err := runInit(initCmd, []string{path}); err != nil {
		t.Errorf("runInit() with --force error = %v", err)
	}
}
