// SPDX-License-Identifier: MPL-2.0

// Package dispatch resolves a task name against a recipe registry, binds the
// trailing command-line arguments to the recipe's parameters and runs the
// recipe's steps in order through a runtime.
//
// A dispatch moves through Idle, Resolving, Binding, Executing and ends in
// either Failed or Succeeded. Failing steps halt the recipe immediately; later
// steps never run and nothing is retried or rolled back.
package dispatch
