// SPDX-License-Identifier: MPL-2.0

// Package runtime provides step execution runtimes for runner.
//
// Two runtime implementations are available:
//   - native: executes a step through the host shell (sh -c, or pwsh/cmd on Windows)
//   - virtual: executes a step using an embedded shell interpreter (mvdan/sh)
//
// Both implement the Runtime interface with Name(), Available() and Run().
// A step is always run as one blocking subprocess (or interpreter run); the
// caller supplies the complete environment, so nothing a step sets leaks into
// the runner process or into sibling steps.
//
// Environment building is handled by MergeEnv: the inherited environment is
// copied and recipe overrides replace inherited values of the same name.
package runtime
