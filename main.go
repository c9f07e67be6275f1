// SPDX-License-Identifier: MPL-2.0

// Command runner runs named, parameterized recipes from a Runnerfile.
package main

import cmd "github.com/recipe-runner/runner/cmd/runner"

func main() {
	cmd.Execute()
}
