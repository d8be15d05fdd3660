// SPDX-License-Identifier: MPL-2.0

// dockstate converges a single declared container to its desired state.
package main

import cmd "dockstate-cli/cmd/dockstate"

func main() {
	cmd.Execute()
}
