// SPDX-License-Identifier: MPL-2.0

// Package statefile defines the declarative container state model.
//
// A statefile names exactly one container, the image backing it, and the
// desired state (running, stopped, restarted, built). Every other key under
// run_args translates 1:1 into a long option of the engine's run command,
// with dashes in key names normalized to underscores so that "network-alias"
// and "network_alias" are the same key.
//
// Statefiles are CUE documents validated against an embedded schema; TOML is
// accepted as an alternate encoding. Parsing and validation never touch the
// container engine: a statefile that fails validation is rejected before any
// external command runs.
package statefile
