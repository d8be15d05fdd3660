// SPDX-License-Identifier: MPL-2.0

// Package reconcile converges one container to its declared state.
//
// A Reconciler runs exactly one synchronous pass per Apply call: it observes
// the live image and container through the engine, refreshes the image
// (build or pull, letting the builder's cache and the registry decide whether
// anything changes), compares image identity and run-configuration
// fingerprint, and issues the minimal action sequence. Nothing is cached
// between passes and nothing is persisted; the container's own labels carry
// the configuration fingerprint.
//
// Any failed action aborts the pass. Actions already taken are not rolled
// back; the caller must treat such a failure as "state unknown, re-run
// needed".
package reconcile
