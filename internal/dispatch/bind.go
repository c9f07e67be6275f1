// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"strings"

	"github.com/recipe-runner/runner/pkg/recipefile"
)

// Bind assigns args to the recipe's parameters in declaration order.
//
// Fixed parameters take one argument each, falling back to their default.
// A `*NAME` parameter joins all remaining arguments with single spaces and
// may be empty; a `+NAME` parameter needs at least one. Either uses its
// default when no argument is left. Surplus arguments for a recipe without
// a variadic parameter are rejected.
func Bind(r *recipefile.Recipe, args []string) (map[string]string, error) {
	bindings := make(map[string]string, len(r.Parameters))
	rest := args

	for _, p := range r.Parameters {
		if p.Kind.IsVariadic() {
			switch {
			case len(rest) > 0:
				bindings[p.Name] = strings.Join(rest, " ")
			case p.HasDefault:
				bindings[p.Name] = p.Default
			case p.Kind == recipefile.ParamPlus:
				return nil, &MissingArgumentError{Recipe: r.Name, Parameter: p.Name, Variadic: true}
			default:
				bindings[p.Name] = ""
			}
			rest = nil
			continue
		}

		switch {
		case len(rest) > 0:
			bindings[p.Name] = rest[0]
			rest = rest[1:]
		case p.HasDefault:
			bindings[p.Name] = p.Default
		default:
			return nil, &MissingArgumentError{Recipe: r.Name, Parameter: p.Name}
		}
	}

	if len(rest) > 0 {
		return nil, &UnexpectedArgumentsError{Recipe: r.Name, Args: rest}
	}
	return bindings, nil
}
