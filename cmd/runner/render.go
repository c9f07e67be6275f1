// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/recipe-runner/runner/internal/discovery"
	"github.com/recipe-runner/runner/internal/dispatch"
	"github.com/recipe-runner/runner/pkg/recipefile"
)

// renderList prints every recipe signature in declaration order, with its
// doc comment aligned to the right.
func renderList(w io.Writer, reg *recipefile.Registry, file *discovery.DiscoveredFile) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Available recipes"), SubtitleStyle.Render("("+file.Path+")"))

	recipes := reg.Recipes()
	if len(recipes) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("  (none)"))
		return
	}

	width := 0
	for _, r := range recipes {
		width = max(width, len(r.Signature()))
	}
	for _, r := range recipes {
		sig := r.Signature()
		if r.Doc == "" {
			fmt.Fprintf(w, "  %s\n", CmdStyle.Render(sig))
			continue
		}
		pad := strings.Repeat(" ", width-len(sig))
		fmt.Fprintf(w, "  %s%s  %s\n", CmdStyle.Render(sig), pad, docStyle.Render("# "+r.Doc))
	}
}

// renderShow prints a recipe the way it would be written in the recipe file.
func renderShow(w io.Writer, r *recipefile.Recipe) {
	if r.Doc != "" {
		fmt.Fprintln(w, docStyle.Render("# "+r.Doc))
	}
	header := r.Signature() + ":"
	if r.Quiet {
		header = "@" + header
	}
	fmt.Fprintln(w, CmdStyle.Render(header))
	for _, e := range r.Env {
		fmt.Fprintf(w, "    export %s=%s\n", e.Name, e.Value.String())
	}
	for _, s := range r.Steps {
		line := s.Template.String()
		if s.Quiet && !r.Quiet {
			line = "@" + line
		}
		fmt.Fprintf(w, "    %s\n", line)
	}
}

// renderDryRun prints the bound recipe without executing it: where it comes
// from, the parameter bindings and the script that would run.
func renderDryRun(w io.Writer, plan *dispatch.Plan, file *discovery.DiscoveredFile, runtimeName string) {
	fmt.Fprintln(w, TitleStyle.Render("Dry Run"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Recipe:"), plan.Recipe.Name)
	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Source:"), VerboseStyle.Render(fmt.Sprintf("%s:%d", file.Path, plan.Recipe.Line)))
	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("Runtime:"), runtimeName)
	fmt.Fprintf(w, "  %s %s\n", VerboseHighlightStyle.Render("WorkDir:"), VerboseStyle.Render(file.Dir))

	if names := plan.BindingNames(); len(names) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, VerboseHighlightStyle.Render("  Arguments:"))
		for _, name := range names {
			fmt.Fprintf(w, "    %s=%q\n", name, plan.Bindings[name])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, VerboseHighlightStyle.Render("  Script:"))
	for line := range strings.SplitSeq(strings.TrimSuffix(plan.Script(), "\n"), "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
	fmt.Fprintln(w)
}
