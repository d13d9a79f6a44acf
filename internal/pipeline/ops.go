package pipeline

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/postcraft/contentpipe/internal/value"
)

// OpError is the fail-hard error class: an operation whose type precondition
// was violated. It aborts the whole processing invocation, unlike argument
// mistakes which fail soft and pass the value through.
type OpError struct {
	Op     string
	Reason string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// LookupFunc resolves a nested source reference used as an operation
// argument. The bool reports whether the reference produced a value.
type LookupFunc func(source, key string) (value.Value, bool)

// Executor applies parsed pipelines to values. Operations are dispatched by
// name through a single table; unknown names and malformed arguments log a
// warning and pass the value through unchanged, while random() and attr()
// precondition violations return an *OpError.
type Executor struct {
	lookup  LookupFunc
	randInt func(n int) int
	logger  *slog.Logger
	title   cases.Caser
}

// NewExecutor returns an executor that resolves nested argument references
// through lookup and draws random() indexes from randInt.
func NewExecutor(lookup LookupFunc, randInt func(n int) int, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		lookup:  lookup,
		randInt: randInt,
		logger:  logger,
		title:   cases.Title(language.Und),
	}
}

// opFunc executes one operation. Arguments arrive already resolved.
type opFunc func(e *Executor, v value.Value, args []value.Value) (value.Value, error)

var opTable = map[string]opFunc{
	"case_title":    opCaseTitle,
	"case_sentence": opCaseSentence,
	"case_upper":    opCaseUpper,
	"case_lower":    opCaseLower,
	"case_pascal":   opCasePascal,
	"case_kebab":    opCaseKebab,
	"case_snake":    opCaseSnake,
	"prefix":        opPrefix,
	"max_length":    opMaxLength,
	"join":          opJoin,
	"join_while":    opJoinWhile,
	"random":        opRandom,
	"attr":          opAttr,
	"or":            opOr,
}

// Run threads v through every operation of the pipeline in order.
func (e *Executor) Run(p Pipeline, v value.Value) (value.Value, error) {
	for _, call := range p.Ops {
		next, err := e.apply(call, v)
		if err != nil {
			return value.Null(), err
		}
		v = next
	}
	return v, nil
}

func (e *Executor) apply(call OpCall, v value.Value) (value.Value, error) {
	op, ok := opTable[call.Name]
	if !ok {
		e.logger.Warn("unknown pipeline operation, value passed through", "op", call.Name)
		return v, nil
	}

	args := make([]value.Value, len(call.Args))
	for i, arg := range call.Args {
		args[i] = e.resolveArg(call.Name, arg)
	}

	if call.Each {
		if v.Kind() != value.KindList {
			e.logger.Warn("each: requires a list input, value passed through",
				"op", call.Name, "kind", v.Kind().String())
			return v, nil
		}
		items := v.List()
		out := make([]any, len(items))
		for i, item := range items {
			applied, err := op(e, item, args)
			if err != nil {
				return value.Null(), err
			}
			out[i] = applied.Interface()
		}
		return value.List(out), nil
	}

	return op(e, v, args)
}

// resolveArg materializes one argument, resolving nested source references
// through the executor's lookup. Unresolvable references degrade to null.
func (e *Executor) resolveArg(op string, arg Arg) value.Value {
	if !arg.IsRef() {
		return value.Str(arg.Literal)
	}
	v, ok := e.lookup(arg.RefSource, arg.RefKey)
	if !ok {
		e.logger.Warn("unresolvable operation argument",
			"op", op, "source", arg.RefSource, "key", arg.RefKey)
		return value.Null()
	}
	return v
}

// warnArgs logs a malformed-arguments condition; callers then pass the
// input through unchanged.
func (e *Executor) warnArgs(op, detail string) {
	e.logger.Warn("malformed operation arguments, value passed through", "op", op, "detail", detail)
}

func opCaseTitle(e *Executor, v value.Value, _ []value.Value) (value.Value, error) {
	return value.Str(e.title.String(v.String())), nil
}

func opCaseSentence(_ *Executor, v value.Value, _ []value.Value) (value.Value, error) {
	return value.Str(capitalize(v.String())), nil
}

func opCaseUpper(_ *Executor, v value.Value, _ []value.Value) (value.Value, error) {
	return value.Str(strings.ToUpper(v.String())), nil
}

func opCaseLower(_ *Executor, v value.Value, _ []value.Value) (value.Value, error) {
	return value.Str(strings.ToLower(v.String())), nil
}

func opCasePascal(_ *Executor, v value.Value, _ []value.Value) (value.Value, error) {
	fields := strings.FieldsFunc(v.String(), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(capitalize(f))
	}
	return value.Str(b.String()), nil
}

func opCaseKebab(_ *Executor, v value.Value, _ []value.Value) (value.Value, error) {
	return value.Str(delimitCase(v.String(), '-')), nil
}

func opCaseSnake(_ *Executor, v value.Value, _ []value.Value) (value.Value, error) {
	return value.Str(delimitCase(v.String(), '_')), nil
}

func opPrefix(e *Executor, v value.Value, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		e.warnArgs("prefix", "requires a prefix argument")
		return v, nil
	}
	return value.Str(args[0].String() + v.String()), nil
}

func opMaxLength(e *Executor, v value.Value, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		e.warnArgs("max_length", "requires a length argument")
		return v, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0].String()))
	if err != nil {
		e.warnArgs("max_length", "length is not a number: "+args[0].String())
		return v, nil
	}
	suffix := ""
	if len(args) > 1 {
		suffix = args[1].String()
	}
	return value.Str(clipAtWord(v.String(), n, suffix)), nil
}

func opJoin(e *Executor, v value.Value, args []value.Value) (value.Value, error) {
	if v.Kind() != value.KindList {
		e.logger.Warn("join requires a list input, value passed through", "kind", v.Kind().String())
		return v, nil
	}
	sep := ""
	if len(args) > 0 {
		sep = args[0].String()
	}
	items := v.List()
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return value.Str(strings.Join(parts, sep)), nil
}

func opJoinWhile(e *Executor, v value.Value, args []value.Value) (value.Value, error) {
	if v.Kind() != value.KindList {
		e.logger.Warn("join_while requires a list input, value passed through", "kind", v.Kind().String())
		return v, nil
	}
	if len(args) < 2 {
		e.warnArgs("join_while", "requires separator and max length arguments")
		return v, nil
	}
	maxLen, err := strconv.Atoi(strings.TrimSpace(args[1].String()))
	if err != nil {
		e.warnArgs("join_while", "max length is not a number: "+args[1].String())
		return v, nil
	}
	sep := args[0].String()

	joined := ""
	for _, item := range v.List() {
		candidate := item.String()
		if joined != "" {
			candidate = joined + sep + candidate
		}
		if len([]rune(candidate)) > maxLen {
			break
		}
		joined = candidate
	}
	return value.Str(joined), nil
}

func opRandom(e *Executor, v value.Value, _ []value.Value) (value.Value, error) {
	if v.Kind() != value.KindList {
		return value.Null(), &OpError{Op: "random", Reason: "requires a list input, got " + v.Kind().String()}
	}
	n := v.Len()
	if n == 0 {
		return value.Null(), &OpError{Op: "random", Reason: "requires a non-empty list"}
	}
	return v.List()[e.randInt(n)], nil
}

func opAttr(_ *Executor, v value.Value, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Null(), &OpError{Op: "attr", Reason: "requires an attribute name argument"}
	}
	if v.Kind() != value.KindMap {
		return value.Null(), &OpError{Op: "attr", Reason: "requires a map input, got " + v.Kind().String()}
	}
	name := args[0].String()
	field, ok := v.Field(name)
	if !ok {
		return value.Null(), &OpError{Op: "attr", Reason: fmt.Sprintf("attribute %q not found", name)}
	}
	return field, nil
}

func opOr(e *Executor, v value.Value, args []value.Value) (value.Value, error) {
	if !v.IsBlank() {
		return v, nil
	}
	if len(args) < 1 {
		e.warnArgs("or", "requires a fallback argument")
		return v, nil
	}
	return args[0], nil
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// delimitCase rewrites CamelCase boundaries and whitespace/underscore/hyphen
// runs as the given separator, lower-cases everything, collapses repeated
// separators and trims them from both ends.
func delimitCase(s string, sep rune) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteRune(sep)
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '_' || r == '-':
			b.WriteRune(sep)
		default:
			b.WriteRune(r)
		}
	}

	var out []rune
	for _, r := range b.String() {
		if r == sep && (len(out) == 0 || out[len(out)-1] == sep) {
			continue
		}
		out = append(out, r)
	}
	for len(out) > 0 && out[len(out)-1] == sep {
		out = out[:len(out)-1]
	}
	return string(out)
}

// clipAtWord truncates s to at most n runes, preferring the last space at or
// before the cut, then appends suffix. Short inputs come back unchanged; a
// non-positive n yields just the suffix.
func clipAtWord(s string, n int, suffix string) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 0 {
		return suffix
	}
	clipped := runes[:n]
	if idx := lastSpace(clipped); idx >= 0 {
		clipped = clipped[:idx]
	}
	return strings.TrimRight(string(clipped), " ") + suffix
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
