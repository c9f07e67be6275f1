// SPDX-License-Identifier: MPL-2.0

// Package discovery locates the recipe file for an invocation and loads it
// into a recipe registry.
//
// An explicit --file path is used as given. Otherwise the configured file name
// (Runnerfile by default, or its lowercase spelling) is looked up in the
// working directory and then in each parent directory up to the filesystem
// root; the nearest match wins. Steps run in the directory holding the file.
package discovery
