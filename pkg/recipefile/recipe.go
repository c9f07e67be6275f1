// SPDX-License-Identifier: MPL-2.0

package recipefile

import (
	"slices"
	"strconv"
	"strings"
)

const (
	// ParamFixed binds exactly one positional argument.
	ParamFixed ParamKind = iota
	// ParamStar binds zero or more remaining arguments (`*NAME`).
	ParamStar
	// ParamPlus binds one or more remaining arguments (`+NAME`).
	ParamPlus
)

type (
	// ParamKind tags a parameter as fixed or variadic.
	ParamKind int

	// Parameter is a named positional recipe parameter.
	Parameter struct {
		Name string
		Kind ParamKind
		// Default is used when no argument is supplied. Only meaningful when HasDefault is set.
		Default    string
		HasDefault bool
	}

	// Step is one command line of a recipe, run as a single subprocess.
	Step struct {
		Template Template
		// Line is the line of the recipe file the step starts on.
		Line int
		// Quiet suppresses echoing the command before it runs.
		Quiet bool
	}

	// EnvBinding is an `export NAME=value` override scoped to one recipe.
	EnvBinding struct {
		Name  string
		Value Template
		Line  int
	}

	// Recipe is a named, parameterized, ordered sequence of steps.
	// Recipes returned by a Registry must be treated as read-only.
	Recipe struct {
		Name       string
		Doc        string
		Parameters []Parameter
		Steps      []Step
		Env        []EnvBinding
		Line       int
		Quiet      bool
	}

	// Registry maps recipe names to recipes. It is built once by Load and is
	// read-only afterwards.
	Registry struct {
		file    string
		recipes map[string]*Recipe
		order   []string
	}
)

// IsVariadic reports whether the kind absorbs the remaining arguments.
func (k ParamKind) IsVariadic() bool { return k == ParamStar || k == ParamPlus }

// String returns the header marker for the kind.
func (k ParamKind) String() string {
	switch k {
	case ParamStar:
		return "*"
	case ParamPlus:
		return "+"
	default:
		return ""
	}
}

// String renders the parameter the way it is declared in a header.
func (p Parameter) String() string {
	s := p.Kind.String() + p.Name
	if p.HasDefault {
		s += "=" + strconv.Quote(p.Default)
	}
	return s
}

// Variadic returns the recipe's variadic parameter, if any.
func (r *Recipe) Variadic() (Parameter, bool) {
	if n := len(r.Parameters); n > 0 && r.Parameters[n-1].Kind.IsVariadic() {
		return r.Parameters[n-1], true
	}
	return Parameter{}, false
}

// Signature renders the recipe header without the trailing colon.
func (r *Recipe) Signature() string {
	parts := make([]string, 0, len(r.Parameters)+1)
	parts = append(parts, r.Name)
	for _, p := range r.Parameters {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, " ")
}

func (r *Recipe) hasParameter(name string) bool {
	return slices.ContainsFunc(r.Parameters, func(p Parameter) bool { return p.Name == name })
}

func newRegistry(file string) *Registry {
	return &Registry{file: file, recipes: make(map[string]*Recipe)}
}

// File returns the path the registry was loaded from, if any.
func (r *Registry) File() string { return r.file }

// Len returns the number of recipes.
func (r *Registry) Len() int { return len(r.order) }

// Lookup returns the recipe with the given name.
func (r *Registry) Lookup(name string) (*Recipe, bool) {
	rec, ok := r.recipes[name]
	return rec, ok
}

// Names returns recipe names in declaration order.
func (r *Registry) Names() []string { return slices.Clone(r.order) }

// Recipes returns the recipes in declaration order.
func (r *Registry) Recipes() []*Recipe {
	out := make([]*Recipe, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.recipes[name])
	}
	return out
}
