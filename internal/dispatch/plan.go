// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/recipe-runner/runner/pkg/recipefile"
)

type (
	// EnvVar is a rendered `export` override.
	EnvVar struct {
		Name  string
		Value string
	}

	// PlannedStep is a step with its placeholders substituted.
	PlannedStep struct {
		Index   int
		Command string
		Line    int
		Quiet   bool
	}

	// Plan is the fully bound form of one invocation: what Run would execute,
	// without executing anything.
	Plan struct {
		Recipe   *recipefile.Recipe
		Args     []string
		Bindings map[string]string
		// Env holds the overrides in declaration order.
		Env   []EnvVar
		Steps []PlannedStep
	}
)

// Plan resolves name and binds args without running any step.
func (d *Dispatcher) Plan(name string, args []string) (*Plan, error) {
	r, err := d.Resolve(name)
	if err != nil {
		return nil, err
	}
	return buildPlan(r, args)
}

func buildPlan(r *recipefile.Recipe, args []string) (*Plan, error) {
	bindings, err := Bind(r, args)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		Recipe:   r,
		Args:     append([]string(nil), args...),
		Bindings: bindings,
		Env:      make([]EnvVar, 0, len(r.Env)),
		Steps:    make([]PlannedStep, 0, len(r.Steps)),
	}
	for _, e := range r.Env {
		v, err := e.Value.Substitute(bindings)
		if err != nil {
			return nil, fmt.Errorf("recipe %q export %s: %w", r.Name, e.Name, err)
		}
		p.Env = append(p.Env, EnvVar{Name: e.Name, Value: v})
	}
	for i, s := range r.Steps {
		cmd, err := s.Template.Substitute(bindings)
		if err != nil {
			return nil, fmt.Errorf("recipe %q step %d: %w", r.Name, i+1, err)
		}
		p.Steps = append(p.Steps, PlannedStep{Index: i, Command: cmd, Line: s.Line, Quiet: s.Quiet || r.Quiet})
	}
	return p, nil
}

// EnvOverrides returns the overrides keyed by name.
func (p *Plan) EnvOverrides() map[string]string {
	m := make(map[string]string, len(p.Env))
	for _, e := range p.Env {
		m[e.Name] = e.Value
	}
	return m
}

// Script renders the plan as a POSIX shell script: one `export` line per
// override followed by one line per step.
func (p *Plan) Script() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", p.Recipe.Signature())
	for _, e := range p.Env {
		fmt.Fprintf(&b, "export %s=%s\n", e.Name, quote(e.Value))
	}
	for _, s := range p.Steps {
		b.WriteString(s.Command)
		b.WriteByte('\n')
	}
	return b.String()
}

// BindingNames returns the bound parameter names in declaration order.
func (p *Plan) BindingNames() []string {
	names := make([]string, 0, len(p.Bindings))
	for _, param := range p.Recipe.Parameters {
		if _, ok := p.Bindings[param.Name]; ok {
			names = append(names, param.Name)
		}
	}
	return names
}

func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		// Only strings the shell cannot represent at all fail to quote.
		return fmt.Sprintf("%q", s)
	}
	return q
}
