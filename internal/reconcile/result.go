// SPDX-License-Identifier: MPL-2.0

package reconcile

import "strings"

// Result reports the outcome of a single reconciliation pass.
type Result struct {
	// Changed is true when at least one action was taken, or in dry-run
	// mode when at least one action would have been taken.
	Changed bool `json:"changed"`

	// Reasons lists the individual actions taken (or planned), in order.
	Reasons []string `json:"reasons,omitempty"`

	// Message is a human-readable one-line summary.
	Message string `json:"msg"`
}

// newResult assembles a Result from the actions recorded during the pass.
// noChange is the summary used when nothing had to be done.
func newResult(noChange string, reasons []string, dryRun bool) *Result {
	if len(reasons) == 0 {
		return &Result{Changed: false, Message: noChange}
	}
	msg := strings.Join(reasons, "; ")
	if dryRun {
		msg = "dry-run: " + msg
	}
	return &Result{Changed: true, Reasons: reasons, Message: msg}
}
