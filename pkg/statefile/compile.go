// SPDX-License-Identifier: MPL-2.0

package statefile

import (
	"fmt"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// Document is the raw decoded form of a statefile, before validation.
// Field tags cover both the CUE and the TOML encodings.
type Document struct {
	State     string         `json:"state" toml:"state"`
	Name      string         `json:"name" toml:"name"`
	Image     string         `json:"image,omitempty" toml:"image,omitempty"`
	Path      string         `json:"path,omitempty" toml:"path,omitempty"`
	Command   string         `json:"command,omitempty" toml:"command,omitempty"`
	BuildArgs []string       `json:"build_args,omitempty" toml:"build_args,omitempty"`
	RunArgs   map[string]any `json:"run_args,omitempty" toml:"run_args,omitempty"`
}

// reservedRunArgs are options the reconciler owns. Allowing them in run_args
// would let a statefile fight the reconciler over container identity.
var reservedRunArgs = map[string]string{
	"name":   "the container name is set by the top-level name option",
	"detach": "containers are always started detached",
	"d":      "containers are always started detached",
}

// Compile validates a raw document and produces an immutable Spec.
// No engine command runs before Compile succeeds.
func Compile(doc *Document) (*Spec, error) {
	state := DesiredState(doc.State)
	if err := state.Validate(); err != nil {
		return nil, err
	}
	if doc.Name == "" {
		return nil, &ValidationError{Field: "name", Message: "a container name is required"}
	}

	image, err := compileImageRef(doc, state)
	if err != nil {
		return nil, err
	}

	command, err := splitCommand(doc.Command)
	if err != nil {
		return nil, err
	}

	runArgs, err := translateRunArgs(doc.RunArgs)
	if err != nil {
		return nil, err
	}

	return &Spec{
		State: state,
		Container: ContainerSpec{
			Name:    doc.Name,
			Image:   image,
			Command: command,
			RunArgs: runArgs,
		},
	}, nil
}

func compileImageRef(doc *Document, state DesiredState) (ImageRef, error) {
	if doc.Image == "" {
		// The original interface only requires an image when there is
		// something to converge towards.
		if state == StateStopped {
			return ImageRef{}, nil
		}
		return ImageRef{}, &ValidationError{Field: "image", Message: fmt.Sprintf("an image name is required for state %q", state)}
	}

	if doc.Path != "" {
		if hasTag(doc.Image) {
			return ImageRef{}, &ValidationError{Field: "image", Message: "no tags are allowed when building a local image (the \"local\" tag is implied)"}
		}
		return ImageRef{
			Kind:       ImageLocal,
			Name:       doc.Image,
			Tag:        LocalTag,
			ContextDir: doc.Path,
			BuildArgs:  slices.Clone(doc.BuildArgs),
		}, nil
	}

	if len(doc.BuildArgs) > 0 {
		return ImageRef{}, &ValidationError{Field: "build_args", Message: "build_args require path (nothing is built for pulled images)"}
	}

	name, tag := splitTag(doc.Image)
	if tag == LocalTag {
		return ImageRef{}, &ValidationError{Field: "image", Message: "the \"local\" tag is reserved for locally built images"}
	}
	return ImageRef{Kind: ImageRemote, Name: name, Tag: tag}, nil
}

// hasTag reports whether ref carries a tag. The colon of a registry port
// (registry:5000/app) does not count.
func hasTag(ref string) bool {
	_, tag := splitTag(ref)
	return tag != ""
}

func splitTag(ref string) (name, tag string) {
	last := strings.LastIndex(ref, ":")
	if last < 0 || strings.Contains(ref[last:], "/") {
		return ref, ""
	}
	return ref[:last], ref[last+1:]
}

func splitCommand(command string) ([]string, error) {
	if command == "" {
		return nil, nil
	}
	fields, err := shell.Fields(command, nil)
	if err != nil {
		return nil, &ValidationError{Field: "command", Message: fmt.Sprintf("cannot split command: %v", err)}
	}
	return fields, nil
}

func translateRunArgs(raw map[string]any) ([]RunArg, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	byKey := make(map[string]RunArg, len(raw))
	for key, value := range raw {
		norm := NormalizeKey(key)
		if reason, ok := reservedRunArgs[norm]; ok {
			return nil, &ValidationError{Field: "run_args." + key, Message: reason}
		}
		if _, ok := byKey[norm]; ok {
			return nil, &ValidationError{Field: "run_args." + key, Message: fmt.Sprintf("duplicate argument (dash and underscore spellings of %q are the same key)", norm)}
		}

		arg, err := translateRunArg(norm, key, value)
		if err != nil {
			return nil, err
		}
		if arg != nil {
			byKey[norm] = *arg
		}
	}

	args := make([]RunArg, 0, len(byKey))
	for _, arg := range byKey {
		args = append(args, arg)
	}
	slices.SortFunc(args, func(a, b RunArg) int { return strings.Compare(a.Key, b.Key) })
	return args, nil
}

// translateRunArg converts one raw value. A false bool drops the argument
// entirely; a nil return with nil error means "omit".
func translateRunArg(norm, key string, value any) (*RunArg, error) {
	switch v := value.(type) {
	case bool:
		if !v {
			return nil, nil
		}
		return &RunArg{Key: norm, Switch: true}, nil
	case string:
		return &RunArg{Key: norm, Values: []string{v}}, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return &RunArg{Key: norm, Values: []string{fmt.Sprint(v)}}, nil
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			switch iv := item.(type) {
			case string:
				values = append(values, iv)
			case bool:
				return nil, &ValidationError{Field: "run_args." + key, Message: "list elements must be strings or numbers"}
			case nil:
				return nil, &ValidationError{Field: "run_args." + key, Message: "list elements must not be null"}
			default:
				values = append(values, fmt.Sprint(iv))
			}
		}
		return &RunArg{Key: norm, Values: values}, nil
	case []string:
		return &RunArg{Key: norm, Values: slices.Clone(v)}, nil
	case nil:
		return nil, nil
	default:
		return nil, &ValidationError{Field: "run_args." + key, Message: fmt.Sprintf("unsupported value type %T", value)}
	}
}
