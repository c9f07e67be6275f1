// SPDX-License-Identifier: MPL-2.0

package recipefile

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// DefaultFileName is the conventional recipe file name.
const DefaultFileName = "Runnerfile"

// envNamePattern matches names accepted by `export`.
var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// parser holds the line-oriented state while a source is being read.
type parser struct {
	file string
	reg  *Registry
	cur  *Recipe
	// doc is the most recent column-0 comment, attached to the next header.
	doc string
	// cont accumulates a logical body line split with trailing backslashes.
	cont strings.Builder
	// contLine is the line a pending continuation started on, 0 when none is pending.
	contLine int
}

// Parse reads and parses the recipe file at path.
func Parse(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file at %s: %w", path, err)
	}
	return ParseBytes(data, path)
}

// Load parses an in-memory recipe source.
func Load(source string) (*Registry, error) {
	return ParseBytes([]byte(source), "")
}

// ParseBytes parses recipe content. file is only used in error messages and
// may be empty.
func ParseBytes(data []byte, file string) (*Registry, error) {
	p := &parser{file: file, reg: newRegistry(file)}

	src := strings.TrimPrefix(string(data), "\ufeff")
	for i, raw := range strings.Split(src, "\n") {
		if err := p.line(strings.TrimRight(raw, "\r"), i+1); err != nil {
			return nil, err
		}
	}
	if p.contLine != 0 {
		return nil, p.errorf(p.contLine, ReasonUnmatchedContinuation, "no body line follows the trailing backslash")
	}

	return p.reg, nil
}

func (p *parser) errorf(line int, reason ParseReason, format string, args ...any) *ParseError {
	return &ParseError{File: p.file, Line: line, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func (p *parser) line(line string, n int) error {
	trimmed := strings.TrimSpace(line)
	indented := trimmed != "" && (line[0] == ' ' || line[0] == '\t')

	if p.contLine != 0 {
		if !indented {
			return p.errorf(p.contLine, ReasonUnmatchedContinuation, "line %d does not continue the recipe body", n)
		}
		// Comment lines are dropped here just as between steps.
		if strings.HasPrefix(trimmed, "#") {
			return nil
		}
		return p.bodyFragment(trimmed)
	}

	switch {
	case trimmed == "":
		p.cur = nil
		p.doc = ""
		return nil
	case strings.HasPrefix(trimmed, "#"):
		if !indented {
			p.doc = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
		}
		return nil
	case indented:
		if p.cur == nil {
			return p.errorf(n, ReasonStepOutsideRecipe, "%q", trimmed)
		}
		p.contLine = n
		return p.bodyFragment(trimmed)
	default:
		return p.header(line, n)
	}
}

// bodyFragment appends one physical line to the pending logical line and
// flushes it once a line without a trailing backslash is seen.
func (p *parser) bodyFragment(text string) error {
	if rest, ok := strings.CutSuffix(text, `\`); ok {
		p.cont.WriteString(strings.TrimRight(rest, " \t"))
		p.cont.WriteString(" ")
		return nil
	}
	p.cont.WriteString(text)

	logical, start := p.cont.String(), p.contLine
	p.cont.Reset()
	p.contLine = 0

	return p.body(strings.TrimSpace(logical), start)
}

func (p *parser) header(line string, n int) error {
	p.cur = nil

	head, tail, ok := cutUnquoted(line, ':')
	if !ok {
		return p.errorf(n, ReasonMalformedHeader, "expected `name [params...]:`, got %q", line)
	}
	tail = strings.TrimSpace(tail)
	switch {
	case strings.HasPrefix(tail, "="):
		return p.errorf(n, ReasonMalformedHeader, "variable assignments are not supported")
	case tail != "" && !strings.HasPrefix(tail, "#"):
		return p.errorf(n, ReasonMalformedHeader, "unexpected %q after ':' (recipe dependencies are not supported)", tail)
	}

	fields, err := splitFields(head)
	if err != nil {
		return p.errorf(n, ReasonMalformedParameters, "%v", err)
	}
	if len(fields) == 0 {
		return p.errorf(n, ReasonMalformedHeader, "missing recipe name")
	}

	name, quiet := strings.CutPrefix(fields[0], "@")
	if !identifierPattern.MatchString(name) {
		return p.errorf(n, ReasonMalformedHeader, "invalid recipe name %q", name)
	}
	if prev, exists := p.reg.recipes[name]; exists {
		return p.errorf(n, ReasonDuplicateRecipe, "%q already defined on line %d", name, prev.Line)
	}

	rec := &Recipe{Name: name, Doc: p.doc, Line: n, Quiet: quiet}
	p.doc = ""

	for _, field := range fields[1:] {
		param, err := parseParameter(field)
		if err != nil {
			return p.errorf(n, ReasonMalformedParameters, "%v", err)
		}
		if rec.hasParameter(param.Name) {
			return p.errorf(n, ReasonMalformedParameters, "parameter %q declared twice", param.Name)
		}
		if last := len(rec.Parameters) - 1; last >= 0 && rec.Parameters[last].Kind.IsVariadic() {
			return p.errorf(n, ReasonVariadicNotLast, "%q follows variadic parameter %q", param.Name, rec.Parameters[last].Name)
		}
		rec.Parameters = append(rec.Parameters, param)
	}

	p.reg.recipes[name] = rec
	p.reg.order = append(p.reg.order, name)
	p.cur = rec

	return nil
}

func (p *parser) body(text string, n int) error {
	if rest, ok := strings.CutPrefix(text, "export "); ok {
		return p.export(strings.TrimSpace(rest), n)
	}

	quiet := p.cur.Quiet
	if rest, ok := strings.CutPrefix(text, "@"); ok {
		quiet = true
		text = strings.TrimSpace(rest)
		if text == "" {
			return p.errorf(n, ReasonEmptyStep, "'@' must be followed by a command")
		}
	}

	tmpl, err := p.template(text, n)
	if err != nil {
		return err
	}
	p.cur.Steps = append(p.cur.Steps, Step{Template: tmpl, Line: n, Quiet: quiet})

	return nil
}

func (p *parser) export(decl string, n int) error {
	name, value, ok := strings.Cut(decl, "=")
	name = strings.TrimSpace(name)
	if !ok || !envNamePattern.MatchString(name) {
		return p.errorf(n, ReasonMalformedExport, "expected `export NAME=value`, got %q", "export "+decl)
	}
	if slices.ContainsFunc(p.cur.Env, func(b EnvBinding) bool { return b.Name == name }) {
		return p.errorf(n, ReasonMalformedExport, "%s exported twice in recipe %q", name, p.cur.Name)
	}

	value, err := unquote(strings.TrimSpace(value))
	if err != nil {
		return p.errorf(n, ReasonMalformedExport, "%s: %v", name, err)
	}
	tmpl, err := p.template(value, n)
	if err != nil {
		return err
	}
	p.cur.Env = append(p.cur.Env, EnvBinding{Name: name, Value: tmpl, Line: n})

	return nil
}

// template parses text and checks every placeholder against the current
// recipe's parameters.
func (p *parser) template(text string, n int) (Template, error) {
	tmpl, err := ParseTemplate(text)
	if err != nil {
		var pe *placeholderError
		if errors.As(err, &pe) {
			return Template{}, p.errorf(n, pe.reason, "%s", pe.detail)
		}
		return Template{}, err
	}
	for _, ref := range tmpl.References() {
		if !p.cur.hasParameter(ref) {
			return Template{}, p.errorf(n, ReasonUnresolvedPlaceholder, "{{%s}} is not a parameter of recipe %q", ref, p.cur.Name)
		}
	}
	return tmpl, nil
}

func parseParameter(field string) (Parameter, error) {
	param := Parameter{Kind: ParamFixed}
	switch field[0] {
	case '*':
		param.Kind = ParamStar
		field = field[1:]
	case '+':
		param.Kind = ParamPlus
		field = field[1:]
	}

	name, def, hasDefault := strings.Cut(field, "=")
	if !identifierPattern.MatchString(name) {
		return Parameter{}, fmt.Errorf("invalid parameter name %q", name)
	}
	param.Name = name

	if hasDefault {
		v, err := unquote(def)
		if err != nil {
			return Parameter{}, fmt.Errorf("parameter %q: %w", name, err)
		}
		param.Default = v
		param.HasDefault = true
	}

	return param, nil
}

// unquote strips one level of matching single or double quotes. Double-quoted
// values accept Go escape sequences; single-quoted values are taken verbatim.
func unquote(s string) (string, error) {
	if len(s) >= 2 {
		switch {
		case s[0] == '\'' && s[len(s)-1] == '\'':
			inner := s[1 : len(s)-1]
			if strings.ContainsRune(inner, '\'') {
				return "", fmt.Errorf("unbalanced quotes in %s", s)
			}
			return inner, nil
		case s[0] == '"' && s[len(s)-1] == '"':
			v, err := strconv.Unquote(s)
			if err != nil {
				return "", fmt.Errorf("invalid quoted value %s", s)
			}
			return v, nil
		}
	}
	if s != "" && (s[0] == '\'' || s[0] == '"') {
		return "", fmt.Errorf("unterminated quoted value %s", s)
	}
	return s, nil
}

// splitFields splits a header on whitespace, keeping quoted sections intact.
func splitFields(s string) ([]string, error) {
	var (
		fields []string
		cur    strings.Builder
		quote  rune
	)
	for _, r := range s {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

// cutUnquoted slices s around the first sep that is not inside quotes.
func cutUnquoted(s string, sep byte) (before, after string, found bool) {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == sep:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}
