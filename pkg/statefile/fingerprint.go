// SPDX-License-Identifier: MPL-2.0

package statefile

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// RunFlags renders the translated run arguments as command-line tokens.
// The rendering is deterministic: arguments are sorted by normalized key and
// list values keep their declaration order, so identical statefiles always
// produce byte-identical token sequences.
func (c *ContainerSpec) RunFlags() []string {
	var tokens []string
	for _, arg := range c.RunArgs {
		if arg.Switch {
			tokens = append(tokens, arg.Flag())
			continue
		}
		for _, value := range arg.Values {
			tokens = append(tokens, arg.Flag(), value)
		}
	}
	return tokens
}

// Fingerprint returns the identity of the desired run configuration: a sha256
// over the deterministic rendering of image reference, run arguments and
// command. The value is attached to the container as the ConfigHashLabel at
// creation time and read back from the live container on later runs, so
// configuration drift is detected without persisting anything on disk.
func (c *ContainerSpec) Fingerprint() string {
	tokens := make([]string, 0, 2+len(c.RunArgs)*2+len(c.Command))
	tokens = append(tokens, c.Image.String())
	tokens = append(tokens, c.RunFlags()...)
	tokens = append(tokens, c.Command...)

	// The separator cannot occur inside a token, so the rendering is
	// unambiguous even for values containing spaces.
	sum := sha256.Sum256([]byte(strings.Join(tokens, "\x1f")))
	return hex.EncodeToString(sum[:])
}
