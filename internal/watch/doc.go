// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a task when files under a directory change.
//
// Every non-ignored directory below BaseDir is registered with fsnotify.
// Events for paths that match the watch patterns are collected until no new
// event has arrived for the debounce period; the collected paths are then
// handed to OnChange in one call. Calls never overlap: a batch that becomes
// ready while OnChange is still running waits for the next debounce cycle.
package watch
