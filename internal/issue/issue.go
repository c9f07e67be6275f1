// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

const (
	RecipeFileNotFoundId Id = iota + 1
	RecipeParseErrorId
	TaskNotFoundId
	MissingArgumentId
	UnexpectedArgumentsId
	StepFailedId
	ShellNotFoundId
	InvalidRuntimeId
	ConfigLoadFailedId
)

type (
	//nolint:revive // Id matches the catalog's exported constant names
	Id int

	MarkdownMsg string

	HttpLink string //nolint:revive // kept for symmetry with MarkdownMsg

	// Issue is one catalog entry: a Markdown help page for a failure the user can fix.
	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id { //nolint:revive // see Id
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the entry with the named glamour style ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	recipeFileNotFoundIssue = &Issue{
		id: RecipeFileNotFoundId,
		mdMsg: `
# No Runnerfile found!

runner looks for a file named ` + "`Runnerfile`" + ` in the current directory and
then in each parent directory up to the filesystem root.

## Things you can try:
- Create a starter recipe file in the project root:
~~~
$ runner --init
~~~

- Point runner at a file explicitly:
~~~
$ runner --file path/to/Runnerfile test
~~~

- Change the file name runner looks for:
~~~cue
recipe_file: "tasks.runner"
~~~`,
	}

	recipeParseErrorIssue = &Issue{
		id: RecipeParseErrorId,
		mdMsg: `
# The Runnerfile could not be parsed!

The error above names the line and the problem. Every recipe looks like this:

~~~
# Run the test-suite
test *ARGS:
    export RUST_BACKTRACE=1
    cargo test {{ARGS}}
~~~

## Common causes:
- Two recipes with the same name
- A placeholder such as ` + "`{{NAME}}`" + ` that is not a declared parameter
- A variadic parameter (` + "`*NAME`" + ` or ` + "`+NAME`" + `) that is not the last one
- A line ending in ` + "`\\`" + ` with no line after it
- A step line that is not indented under a recipe header`,
	}

	taskNotFoundIssue = &Issue{
		id: TaskNotFoundId,
		mdMsg: `
# Task not found!

No recipe in the Runnerfile has that name.

## Things you can try:
- List the available tasks:
~~~
$ runner --list
~~~

- Check for typos; recipe names are case-sensitive`,
	}

	missingArgumentIssue = &Issue{
		id: MissingArgumentId,
		mdMsg: `
# Missing argument!

The recipe declares a parameter that received no value and has no default.

## Things you can try:
- Show what the recipe expects:
~~~
$ runner --show <task>
~~~

- Give the parameter a default in the header:
~~~
bench name="arena":
    cargo bench {{name}}
~~~`,
	}

	unexpectedArgumentsIssue = &Issue{
		id: UnexpectedArgumentsId,
		mdMsg: `
# Too many arguments!

The recipe takes fewer arguments than were given and has no variadic parameter
to collect the rest.

## Things you can try:
- Show what the recipe expects:
~~~
$ runner --show <task>
~~~

- Declare a trailing variadic parameter to pass extra flags through:
~~~
test *ARGS:
    cargo test {{ARGS}}
~~~`,
	}

	stepFailedIssue = &Issue{
		id: StepFailedId,
		mdMsg: `
# A step failed!

A step exited with a non-zero status, so the remaining steps were skipped.
runner exits with the failing step's status.

## Things you can try:
- Check the step's own output above
- Preview the exact commands without running them:
~~~
$ runner --dry-run <task> [args...]
~~~

- Re-run with ` + "`--verbose`" + ` for timing and environment details`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

Could not find a suitable shell for the 'native' runtime.

## Shells we look for:
- Linux/macOS: sh, bash
- Windows: pwsh, powershell, cmd

## Things you can try:
- Install a POSIX shell or set ` + "`shell`" + ` in your config
- Use the 'virtual' runtime instead (built-in shell):
~~~cue
default_runtime: "virtual"
~~~`,
		extLinks: []HttpLink{"https://pkg.go.dev/mvdan.cc/sh/v3/interp"},
	}

	invalidRuntimeIssue = &Issue{
		id: InvalidRuntimeId,
		mdMsg: `
# Invalid runtime!

The runtime must be one of ` + "`native`" + ` or ` + "`virtual`" + `.

## Things you can try:
~~~
$ runner --runtime virtual test
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file exists but could not be read or does not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ runner --print-config
~~~

- Check the CUE syntax of ` + "`~/.config/runner/config.cue`" + ` or ` + "`./.runner.cue`",
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	issues = map[Id]*Issue{
		recipeFileNotFoundIssue.Id():  recipeFileNotFoundIssue,
		recipeParseErrorIssue.Id():    recipeParseErrorIssue,
		taskNotFoundIssue.Id():        taskNotFoundIssue,
		missingArgumentIssue.Id():     missingArgumentIssue,
		unexpectedArgumentsIssue.Id(): unexpectedArgumentsIssue,
		stepFailedIssue.Id():          stepFailedIssue,
		shellNotFoundIssue.Id():       shellNotFoundIssue,
		invalidRuntimeIssue.Id():      invalidRuntimeIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
