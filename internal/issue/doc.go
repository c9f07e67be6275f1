// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown help
// pages for the failures a runner user can fix themselves (a missing recipe
// file, a malformed recipe, an unknown task, bad arguments, a failing step).
package issue
