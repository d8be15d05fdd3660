// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"dockstate-cli/pkg/statefile"
)

var (
	initForce    bool
	initTemplate string

	// initCmd creates a new statefile
	initCmd = &cobra.Command{
		Use:   "init [filename]",
		Short: "Create a new statefile in the current directory",
		Long: `Create a new statefile in the current directory with an example
container declaration.

This command generates a starter statefile to help you get started quickly.`,
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing statefile")
	initCmd.Flags().StringVarP(&initTemplate, "template", "t", "remote", "template to use (remote, local, minimal)")
}

func runInit(cmd *cobra.Command, args []string) error {
	filename := statefile.DefaultFileName
	if len(args) > 0 {
		filename = args[0]
	}

	if _, err := os.Stat(filename); err == nil && !initForce {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", filename)
	}

	content := generateStatefile(initTemplate)

	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	out := cmd.OutOrStdout()
	absPath, _ := filepath.Abs(filename)
	fmt.Fprintf(out, "%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, SubtitleStyle.Render("Next steps:"))
	fmt.Fprintln(out, "  1. Edit the statefile to declare your container")
	fmt.Fprintf(out, "  2. Run '%s' to preview the actions\n", CmdStyle.Render("dockstate apply --dry-run"))
	fmt.Fprintf(out, "  3. Run '%s' to converge\n", CmdStyle.Render("dockstate apply"))
	return nil
}

// generateStatefile returns starter statefile content for the given template.
func generateStatefile(template string) string {
	switch template {
	case "local":
		return `// Declares a container built from a local Dockerfile directory.
// The image tag is always "local" for path-built images.

state: "running"
name:  "myapp"
image: "myapp"
path:  "./build"
build_args: ["VERSION=dev"]

run_args: {
	publish: "8080:8080"
}
`
	case "minimal":
		return `state: "running"
name:    "myapp"
image:   "alpine:latest"
command: "sleep infinity"
`
	default:
		return `// Declares one container and the state it should be in.
// Apply with: dockstate apply

state: "running"
name:  "web"
image: "nginx:1.27"

// Keys map to 'docker run' flags; true means a bare switch,
// lists repeat the flag.
run_args: {
	publish: ["8080:80"]
	env: ["MODE=production"]
	restart: "unless-stopped"
}
`
	}
}
