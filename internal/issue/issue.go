// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	EngineNotFoundId Id = iota + 1
	DaemonUnreachableId
	StatefileNotFoundId
	StatefileParseErrorId
	BuildContextNotFoundId
	ImagePullFailedId
	ConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation links for this issue type
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	engineNotFoundIssue = &Issue{
		id: EngineNotFoundId,
		mdMsg: `
# Container engine not found!

No usable container engine was found on this system.

## Supported container engines:
- **Docker**
- **Podman**

## Things you can try:
- Install Docker:
  - https://docs.docker.com/get-docker/

- Install Podman:
  - Linux: ` + "`sudo apt install podman`" + ` or ` + "`sudo dnf install podman`" + `
  - macOS: ` + "`brew install podman`" + `
  - Windows: Download from https://podman.io

- Point at a specific binary in your config file:
~~~cue
engine: "podman"  // or "docker"
binary_path: "/usr/local/bin/podman"
~~~`,
	}

	daemonUnreachableIssue = &Issue{
		id: DaemonUnreachableId,
		mdMsg: `
# Cannot talk to the container engine!

The engine binary exists but its daemon did not answer.

## Common causes:
- The Docker daemon is not running
- Your user is not allowed to use the daemon socket
- A remote DOCKER_HOST is unreachable

## Things you can try:
- Start the daemon:
~~~
$ sudo systemctl start docker
~~~

- Ensure you're in the docker group:
~~~
$ sudo usermod -aG docker $USER
~~~

- Use rootless containers with Podman`,
	}

	statefileNotFoundIssue = &Issue{
		id: StatefileNotFoundId,
		mdMsg: `
# No statefile found!

We searched for a statefile but couldn't find one.

## Things you can try:
- Create a statefile in your current directory:
~~~
$ dockstate init
~~~

- Or point at one explicitly:
~~~
$ dockstate apply -f path/to/statefile.cue
~~~

## Example statefile structure:
~~~cue
state: "running"
name:  "web"
image: "nginx:1.27"
run_args: {
	publish: "8080:80"
}
~~~`,
	}

	statefileParseErrorIssue = &Issue{
		id: StatefileParseErrorId,
		mdMsg: `
# Failed to parse statefile!

Your statefile contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- state is not one of "running", "stopped", "restarted", "built"
- A tag on an image built from a local path (the tag is always "local")
- build_args without a path

## Things you can try:
- Check the error message above for the specific field
- Validate your CUE syntax using the cue command-line tool
- Run with verbose mode for more details:
~~~
$ dockstate --verbose apply
~~~`,
	}

	buildContextNotFoundIssue = &Issue{
		id: BuildContextNotFoundId,
		mdMsg: `
# Build context not found!

The statefile declares a locally built image but its path does not contain
a usable build context.

## Things you can try:
- Create a Dockerfile in the declared path:
~~~dockerfile
FROM alpine:latest
WORKDIR /app
~~~

- Or switch to a pre-built image:
~~~cue
image: "ubuntu:24.04"
~~~`,
	}

	imagePullFailedIssue = &Issue{
		id: ImagePullFailedId,
		mdMsg: `
# Image pull failed!

The engine could not pull the declared image.

## Common causes:
- The image name or tag is misspelled
- The registry requires authentication
- No network connectivity to the registry

## Things you can try:
- Check the image reference in your statefile
- Log in to the registry:
~~~
$ docker login registry.example.com
~~~

- Pull the image manually to see the full engine output`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the dockstate configuration file.

## Configuration file locations:
- Linux: ~/.config/dockstate/config.cue
- macOS: ~/Library/Application Support/dockstate/config.cue
- Windows: %APPDATA%\dockstate\config.cue

## Things you can try:
- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/dockstate/config.cue
~~~

## Example configuration:
~~~cue
engine: "podman"
stop_timeout_seconds: 10

ui: {
	color_scheme: "auto"
	verbose: false
}
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- The container engine requires elevated permissions
- The statefile or build context is not readable

## Things you can try:
- Check file/directory permissions
- For containers, ensure you're in the docker/podman group:
~~~
$ sudo usermod -aG docker $USER
~~~

- Use rootless containers with Podman`,
	}

	issues = map[Id]*Issue{
		engineNotFoundIssue.Id():       engineNotFoundIssue,
		daemonUnreachableIssue.Id():    daemonUnreachableIssue,
		statefileNotFoundIssue.Id():    statefileNotFoundIssue,
		statefileParseErrorIssue.Id():  statefileParseErrorIssue,
		buildContextNotFoundIssue.Id(): buildContextNotFoundIssue,
		imagePullFailedIssue.Id():      imagePullFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
