// SPDX-License-Identifier: MPL-2.0

// Package container drives an external container engine CLI (Docker/Podman).
//
// The Engine interface covers exactly the operations the reconciler needs:
// image build/pull and identity lookup, container inspection, and the
// run/start/stop/remove lifecycle. DockerEngine and PodmanEngine both embed
// BaseCLIEngine, which owns argument construction and command execution.
//
// Every command is a single blocking invocation with no retries and no
// timeout of its own; failures carry the full argv, exit code, and stderr so
// callers can surface them verbatim. "Not found" from an inspect query is a
// valid observation, distinguished from real failures by IsNotFound.
//
// Engine selection uses NewEngine(EngineType) with automatic fallback if the
// preferred engine is unavailable, or AutoDetectEngine() for preference-less
// detection (Docker is tried first).
package container
