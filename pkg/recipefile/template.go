// SPDX-License-Identifier: MPL-2.0

package recipefile

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

const (
	// SegmentLiteral is verbatim text.
	SegmentLiteral SegmentKind = iota
	// SegmentParam is a reference to a recipe parameter.
	SegmentParam

	openDelim    = "{{"
	closeDelim   = "}}"
	escapedDelim = "{{{{"
)

// ErrUnboundPlaceholder is returned by Substitute when a referenced parameter has no value.
var ErrUnboundPlaceholder = errors.New("unbound placeholder")

// identifierPattern matches parameter and recipe names.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

type (
	// SegmentKind distinguishes literal text from parameter references.
	SegmentKind int

	// Segment is one piece of a Template.
	Segment struct {
		Kind SegmentKind
		// Text is the literal text for SegmentLiteral or the parameter name for SegmentParam.
		Text string
	}

	// Template is a parsed step or environment value. It is immutable once parsed.
	Template struct {
		raw      string
		segments []Segment
	}
)

// ParseTemplate splits s into literal and parameter segments.
//
// `{{NAME}}` and `{{ NAME }}` reference the parameter NAME. `{{{{` produces a
// literal `{{`. A `{{` without a closing `}}` is an error.
func ParseTemplate(s string) (Template, error) {
	t := Template{raw: s}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, Segment{Kind: SegmentLiteral, Text: lit.String()})
			lit.Reset()
		}
	}

	rest := s
	for {
		idx := strings.Index(rest, openDelim)
		if idx < 0 {
			lit.WriteString(rest)
			break
		}
		lit.WriteString(rest[:idx])
		rest = rest[idx:]

		if strings.HasPrefix(rest, escapedDelim) {
			lit.WriteString(openDelim)
			rest = rest[len(escapedDelim):]
			continue
		}

		end := strings.Index(rest[len(openDelim):], closeDelim)
		if end < 0 {
			return Template{}, &placeholderError{reason: ReasonUnterminatedPlaceholder, detail: fmt.Sprintf("%q", rest)}
		}
		name := strings.TrimSpace(rest[len(openDelim) : len(openDelim)+end])
		if !identifierPattern.MatchString(name) {
			return Template{}, &placeholderError{
				reason: ReasonUnresolvedPlaceholder,
				detail: fmt.Sprintf("%q is not a valid parameter name", name),
			}
		}
		flush()
		t.segments = append(t.segments, Segment{Kind: SegmentParam, Text: name})
		rest = rest[len(openDelim)+end+len(closeDelim):]
	}
	flush()

	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics on error. Intended for tests
// and package-level fixtures.
func MustParseTemplate(s string) Template {
	t, err := ParseTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template source text.
func (t Template) String() string { return t.raw }

// Segments returns a copy of the parsed segments.
func (t Template) Segments() []Segment { return slices.Clone(t.segments) }

// References returns the distinct parameter names referenced, in first-use order.
func (t Template) References() []string {
	var refs []string
	for _, seg := range t.segments {
		if seg.Kind == SegmentParam && !slices.Contains(refs, seg.Text) {
			refs = append(refs, seg.Text)
		}
	}
	return refs
}

// Substitute renders the template with every placeholder replaced verbatim by
// its value. No shell escaping is applied.
func (t Template) Substitute(values map[string]string) (string, error) {
	var out strings.Builder
	for _, seg := range t.segments {
		if seg.Kind == SegmentLiteral {
			out.WriteString(seg.Text)
			continue
		}
		v, ok := values[seg.Text]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnboundPlaceholder, seg.Text)
		}
		out.WriteString(v)
	}
	return out.String(), nil
}
