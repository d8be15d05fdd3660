// SPDX-License-Identifier: MPL-2.0

package statefile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"dockstate-cli/pkg/cueutil"
)

//go:embed statefile_schema.cue
var schemaBytes []byte

// DefaultFileName is the statefile looked up when no -f flag is given.
const DefaultFileName = "statefile.cue"

// Load reads and compiles the statefile at path. The encoding is chosen by
// extension: .toml is decoded with go-toml, everything else is treated as CUE
// and validated against the embedded schema.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statefile: %w", err)
	}
	return Parse(data, path)
}

// Parse compiles statefile bytes. filename selects the encoding and is used
// in error messages.
func Parse(data []byte, filename string) (*Spec, error) {
	var doc *Document
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		doc = &Document{}
		if err := toml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	default:
		decoded, err := cueutil.ParseAndDecode[Document](schemaBytes, data, "#Statefile", filename)
		if err != nil {
			return nil, err
		}
		doc = decoded
	}
	return Compile(doc)
}
