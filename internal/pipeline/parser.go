// Package pipeline parses a placeholder's inner expression into a structured
// pipeline and executes its operations against the value model.
//
// An expression is a key followed by zero or more pipe-separated operation
// calls, e.g.
//
//	genres | each:case_title() | join(', ')
//
// Operation calls accept either a parenthesized argument list or bare
// space-separated arguments (join ', ' is equivalent to join(', ')).
// Arguments are quoted literals, bare literals, or nested source references
// such as json.separator that are resolved right before the operation runs.
package pipeline

import "strings"

// Arg is a single operation argument: either a literal string or a nested
// reference into one of the placeholder sources.
type Arg struct {
	// Literal holds the argument text when Ref is unset. Surrounding
	// quotes have already been stripped.
	Literal string

	// RefSource and RefKey are set for nested references like
	// env.HASHTAG or json.items[0].name.
	RefSource string
	RefKey    string
}

// IsRef reports whether the argument is a nested source reference.
func (a Arg) IsRef() bool {
	return a.RefSource != ""
}

// OpCall is one parsed pipeline segment: an operation name, whether it was
// marked element-wise with the each: prefix, and its arguments in order.
type OpCall struct {
	Name string
	Each bool
	Args []Arg
}

// Pipeline is a parsed expression: the source key plus the ordered
// operations to thread the resolved value through.
type Pipeline struct {
	Key string
	Ops []OpCall
}

// refSources are the prefixes that mark an unquoted argument as a nested
// reference rather than a bare literal.
var refSources = []string{"json.", "env.", "builtin."}

// Parse splits an expression into its key and operation calls. Parsing never
// fails: malformed segments become operations the executor will not know,
// which it treats as fail-soft no-ops.
func Parse(expr string) Pipeline {
	segments := splitPipeline(expr)
	if len(segments) == 0 {
		return Pipeline{}
	}
	p := Pipeline{Key: segments[0]}
	for _, seg := range segments[1:] {
		p.Ops = append(p.Ops, parseCall(seg))
	}
	return p
}

// splitPipeline splits on | characters that are outside single quotes,
// double quotes and parentheses. Empty segments are dropped.
func splitPipeline(expr string) []string {
	var segments []string
	var (
		buf      strings.Builder
		inSingle bool
		inDouble bool
		depth    int
	)
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			segments = append(segments, s)
		}
		buf.Reset()
	}
	for _, r := range expr {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '(' && !inSingle && !inDouble:
			depth++
		case r == ')' && !inSingle && !inDouble && depth > 0:
			depth--
		case r == '|' && !inSingle && !inDouble && depth == 0:
			flush()
			continue
		}
		buf.WriteRune(r)
	}
	flush()
	return segments
}

// parseCall parses one segment into an operation call. Both call forms are
// accepted: name(arg1, arg2) and bare name arg1 arg2.
func parseCall(segment string) OpCall {
	name := segment
	var rawArgs []string

	if open := strings.IndexByte(segment, '('); open >= 0 && strings.HasSuffix(segment, ")") {
		head := strings.TrimSpace(segment[:open])
		if head != "" && !strings.ContainsAny(head, " \t") {
			name = head
			inner := segment[open+1 : len(segment)-1]
			rawArgs = splitTracked(inner, ',')
		}
	}
	if name == segment {
		// Bare call form: the first space-delimited token is the name,
		// the rest are positional arguments.
		fields := splitTracked(segment, ' ')
		if len(fields) > 0 {
			name = fields[0]
			rawArgs = fields[1:]
		}
	}

	call := OpCall{Name: name}
	if rest, ok := strings.CutPrefix(call.Name, "each:"); ok {
		call.Name = rest
		call.Each = true
	}
	for _, raw := range rawArgs {
		call.Args = append(call.Args, classifyArg(raw))
	}
	return call
}

// splitTracked splits s on sep occurrences that are outside quotes and
// parentheses, trimming each piece and dropping empties.
func splitTracked(s string, sep rune) []string {
	var parts []string
	var (
		buf      strings.Builder
		inSingle bool
		inDouble bool
		depth    int
	)
	flush := func() {
		if p := strings.TrimSpace(buf.String()); p != "" {
			parts = append(parts, p)
		}
		buf.Reset()
	}
	for _, r := range s {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '(' && !inSingle && !inDouble:
			depth++
		case r == ')' && !inSingle && !inDouble && depth > 0:
			depth--
		case r == sep && !inSingle && !inDouble && depth == 0:
			flush()
			continue
		}
		buf.WriteRune(r)
	}
	flush()
	return parts
}

// classifyArg turns one raw argument into a literal or a nested reference.
// Quoted text is always a literal, even when it looks like a reference.
func classifyArg(raw string) Arg {
	if unquoted, ok := stripQuotes(raw); ok {
		return Arg{Literal: unquoted}
	}
	for _, prefix := range refSources {
		if strings.HasPrefix(raw, prefix) {
			source := strings.TrimSuffix(prefix, ".")
			return Arg{RefSource: source, RefKey: raw[len(prefix):]}
		}
	}
	return Arg{Literal: raw}
}

// stripQuotes removes one matching pair of outer quotes. The second return
// reports whether the argument was quoted at all.
func stripQuotes(s string) (string, bool) {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1], true
		}
	}
	return s, false
}
