// SPDX-License-Identifier: MPL-2.0

package recipefile

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

type genRecipe struct {
	name   string
	params []string
	star   bool
	steps  int
}

func drawRecipes(t *rapid.T) []genRecipe {
	n := rapid.IntRange(1, 8).Draw(t, "recipes")
	recipes := make([]genRecipe, n)
	for i := range recipes {
		recipes[i] = genRecipe{
			name:  fmt.Sprintf("task%d", i),
			star:  rapid.Bool().Draw(t, fmt.Sprintf("star_%d", i)),
			steps: rapid.IntRange(0, 5).Draw(t, fmt.Sprintf("steps_%d", i)),
		}
		fixed := rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("fixed_%d", i))
		for j := range fixed {
			recipes[i].params = append(recipes[i].params, fmt.Sprintf("p%d", j))
		}
	}
	return recipes
}

func renderRecipes(recipes []genRecipe) string {
	var src strings.Builder
	for _, r := range recipes {
		header := append([]string{r.name}, r.params...)
		refs := make([]string, 0, len(r.params)+1)
		for _, p := range r.params {
			refs = append(refs, "{{"+p+"}}")
		}
		if r.star {
			header = append(header, "*REST")
			refs = append(refs, "{{REST}}")
		}
		fmt.Fprintf(&src, "%s:\n", strings.Join(header, " "))
		for s := range r.steps {
			fmt.Fprintf(&src, "    echo step%d %s\n", s, strings.Join(refs, " "))
		}
		src.WriteString("\n")
	}
	return src.String()
}

func TestProperty_LoadPreservesCounts(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		recipes := drawRecipes(rt)

		reg, err := Load(renderRecipes(recipes))
		if err != nil {
			rt.Fatalf("Load() unexpected error: %v", err)
		}
		if reg.Len() != len(recipes) {
			rt.Fatalf("Len() = %d, want %d", reg.Len(), len(recipes))
		}

		for _, want := range recipes {
			got, ok := reg.Lookup(want.name)
			if !ok {
				rt.Fatalf("Lookup(%q) not found", want.name)
			}
			wantParams := len(want.params)
			if want.star {
				wantParams++
			}
			if len(got.Parameters) != wantParams {
				rt.Errorf("%s: %d parameters, want %d", want.name, len(got.Parameters), wantParams)
			}
			if len(got.Steps) != want.steps {
				rt.Errorf("%s: %d steps, want %d", want.name, len(got.Steps), want.steps)
			}
		}
	})
}

func TestProperty_DuplicateNameRejected(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		recipes := drawRecipes(rt)
		dup := rapid.SampledFrom(recipes).Draw(rt, "dup")
		recipes = append(recipes, dup)

		_, err := Load(renderRecipes(recipes))
		var pe *ParseError
		if !errors.As(err, &pe) {
			rt.Fatalf("Load() error = %v, want *ParseError", err)
		}
		if pe.Reason != ReasonDuplicateRecipe {
			rt.Fatalf("Reason = %q, want %q", pe.Reason, ReasonDuplicateRecipe)
		}
	})
}
