package pipeline

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/postcraft/contentpipe/internal/value"
)

// testExecutor builds an executor whose nested references resolve from refs
// and whose random() always picks index pick.
func testExecutor(refs map[string]any, pick int) *Executor {
	lookup := func(src, key string) (value.Value, bool) {
		v, ok := refs[src+"."+key]
		if !ok {
			return value.Null(), false
		}
		return value.FromAny(v), true
	}
	return NewExecutor(lookup, func(n int) int { return pick }, slog.Default())
}

func run(t *testing.T, expr string, input any) (string, error) {
	t.Helper()
	e := testExecutor(nil, 0)
	out, err := e.Run(Parse("k | "+expr), value.FromAny(input))
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

func mustRun(t *testing.T, expr string, input any) string {
	t.Helper()
	out, err := run(t, expr, input)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", expr, err)
	}
	return out
}

func TestCaseOperations(t *testing.T) {
	words := []any{"hello world", "foo bar", "test case"}
	tests := []struct {
		expr  string
		input any
		want  string
	}{
		{"each:case_title() | join(', ')", words, "Hello World, Foo Bar, Test Case"},
		{"each:case_sentence() | join(', ')", words, "Hello world, Foo bar, Test case"},
		{"each:case_upper() | join(', ')", []any{"hello world", "Foo Bar"}, "HELLO WORLD, FOO BAR"},
		{"each:case_lower() | join(', ')", []any{"HELLO WORLD", "Foo Bar"}, "hello world, foo bar"},
		{"each:case_pascal() | join(', ')", []any{"hello world", "foo bar baz", "test-case_item"}, "HelloWorld, FooBarBaz, TestCaseItem"},
		{"each:case_kebab() | join(', ')", []any{"hello world", "FooBar", "test_case_item"}, "hello-world, foo-bar, test-case-item"},
		{"each:case_snake() | join(', ')", []any{"hello world", "FooBar", "test-case-item"}, "hello_world, foo_bar, test_case_item"},
	}
	for _, tt := range tests {
		if got := mustRun(t, tt.expr, tt.input); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestEachOnNonListPassesThrough(t *testing.T) {
	if got := mustRun(t, "each:case_title()", "hello world"); got != "hello world" {
		t.Errorf("each: on a string must pass through, got %q", got)
	}
}

func TestChainedEachOperations(t *testing.T) {
	got := mustRun(t, "each:case_upper() | each:prefix('#') | join(' ')", []any{"hello world", "foo bar"})
	if got != "#HELLO WORLD #FOO BAR" {
		t.Errorf("got %q", got)
	}
}

func TestMaxLength(t *testing.T) {
	tests := []struct {
		expr  string
		input string
		want  string
	}{
		{"max_length(20, '...')", "This is a very long description that should be truncated", "This is a very long..."},
		{"max_length(50)", "Short text", "Short text"},
		{"max_length(20, '...')", "Exactly twenty chars", "Exactly twenty chars"},
		{"max_length(15, '...')", "This is a test sentence for word boundary", "This is a test..."},
		{"max_length(0, '...')", "anything at all", "..."},
		{"max_length(5, '…')", "unbroken", "unbro…"},
	}
	for _, tt := range tests {
		if got := mustRun(t, tt.expr, tt.input); got != tt.want {
			t.Errorf("%s on %q: got %q, want %q", tt.expr, tt.input, got, tt.want)
		}
	}
}

func TestEachMaxLength(t *testing.T) {
	got := mustRun(t, "each:max_length(10, '...') | join(', ')",
		[]any{"Short", "This is a longer description", "Medium length text"})
	if got != "Short, This is a..., Medium..." {
		t.Errorf("got %q", got)
	}
}

func TestMaxLengthMalformedArgumentsPassThrough(t *testing.T) {
	if got := mustRun(t, "max_length()", "hello world"); got != "hello world" {
		t.Errorf("missing argument must pass through, got %q", got)
	}
	if got := mustRun(t, "max_length(abc)", "hello world"); got != "hello world" {
		t.Errorf("non-numeric argument must pass through, got %q", got)
	}
}

func TestJoin(t *testing.T) {
	if got := mustRun(t, "join(', ')", []any{"python", "automation", "testing"}); got != "python, automation, testing" {
		t.Errorf("got %q", got)
	}
	// Non-list input passes through; the canonical string form of a plain
	// string is itself.
	if got := mustRun(t, "join(', ')", "solo"); got != "solo" {
		t.Errorf("join on non-list must pass through, got %q", got)
	}
}

func TestJoinWhile(t *testing.T) {
	tags := []any{"one", "two", "three", "four", "five"}
	if got := mustRun(t, "join_while(' ', 12)", tags); got != "one two" {
		t.Errorf("got %q, want %q", got, "one two")
	}
	if got := mustRun(t, "join_while(' ', 10)", []any{"verylongfirstitem", "short"}); got != "" {
		t.Errorf("oversized first element must yield empty string, got %q", got)
	}
	if got := mustRun(t, "join_while(' ', 10)", []any{"a", "b", "c"}); got != "a b c" {
		t.Errorf("got %q", got)
	}
	// Missing max length is malformed: the list passes through and
	// stringifies canonically.
	if got := mustRun(t, "join_while(' ')", []any{"a", "b", "c"}); got != "a,b,c" {
		t.Errorf("got %q", got)
	}
}

func TestChainedLengthOperations(t *testing.T) {
	items := []any{
		"This is a very long item description",
		"Short item",
		"Another moderately long item",
	}
	got := mustRun(t, "each:max_length(15, '...') | join_while(', ', 40)", items)
	if got != "This is a very..., Short item" {
		t.Errorf("got %q", got)
	}
}

func TestRandomPicksElement(t *testing.T) {
	e := testExecutor(nil, 1)
	out, err := e.Run(Parse("k | random()"), value.FromAny([]any{"first", "second", "third"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "second" {
		t.Errorf("got %q, want second", out.String())
	}
}

func TestRandomFailsHard(t *testing.T) {
	if _, err := run(t, "random()", []any{}); err == nil {
		t.Error("random() on an empty list must fail")
	}
	_, err := run(t, "random()", "not a list")
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *OpError, got %v", err)
	}
	if opErr.Op != "random" {
		t.Errorf("unexpected op in error: %q", opErr.Op)
	}
}

func TestAttr(t *testing.T) {
	obj := map[string]any{"name": "John", "age": 30}
	if got := mustRun(t, "attr(name)", obj); got != "John" {
		t.Errorf("got %q", got)
	}

	nested := map[string]any{"profile": map[string]any{"firstName": "Jane"}}
	if got := mustRun(t, "attr(profile) | attr(firstName)", nested); got != "Jane" {
		t.Errorf("got %q", got)
	}
}

func TestAttrFailsHard(t *testing.T) {
	obj := map[string]any{"name": "John"}
	for _, expr := range []string{"attr(missing)", "attr()"} {
		_, err := run(t, expr, obj)
		var opErr *OpError
		if !errors.As(err, &opErr) {
			t.Errorf("%s: expected *OpError, got %v", expr, err)
		}
	}
	if _, err := run(t, "attr(name)", "not a map"); err == nil {
		t.Error("attr() on a non-map must fail")
	}
}

func TestRandomWithAttr(t *testing.T) {
	e := testExecutor(nil, 0)
	users := []any{
		map[string]any{"name": "Alice", "role": "admin"},
		map[string]any{"name": "Bob", "role": "user"},
	}
	out, err := e.Run(Parse("k | random() | attr(name)"), value.FromAny(users))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "Alice" {
		t.Errorf("got %q, want Alice", out.String())
	}
}

func TestOr(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"truthy left wins", "https://youtube.com/watch?v=123", "https://youtube.com/watch?v=123"},
		{"empty left falls back", "", "https://example.com/article"},
		{"null left falls back", nil, "https://example.com/article"},
		{"blank left falls back", "   ", "https://example.com/article"},
	}
	refs := map[string]any{"json.permalink": "https://example.com/article"}
	for _, tt := range tests {
		e := testExecutor(refs, 0)
		out, err := e.Run(Parse("k | or(json.permalink)"), value.FromAny(tt.input))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if out.String() != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, out.String(), tt.want)
		}
	}
}

func TestOrChainStopsAtFirstTruthy(t *testing.T) {
	refs := map[string]any{"json.secondary": "second-value", "json.tertiary": "third-value"}
	e := testExecutor(refs, 0)
	out, err := e.Run(Parse("k | or(json.secondary) | or(json.tertiary)"), value.Str(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "second-value" {
		t.Errorf("got %q, want second-value", out.String())
	}
}

func TestOrWithLiteralFallback(t *testing.T) {
	if got := mustRun(t, "or('default-value')", ""); got != "default-value" {
		t.Errorf("got %q", got)
	}
}

func TestNestedReferenceArgumentsResolve(t *testing.T) {
	refs := map[string]any{"json.series": "Aesop", "json.separator": " | "}
	e := testExecutor(refs, 0)

	out, err := e.Run(Parse("k | each:prefix json.series | join(', ')"),
		value.FromAny([]any{"The Fox and the Grapes", "The Tortoise and the Hare"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "AesopThe Fox and the Grapes, AesopThe Tortoise and the Hare" {
		t.Errorf("got %q", out.String())
	}

	out, err = e.Run(Parse("k | join(json.separator)"), value.FromAny([]any{"alpha", "beta", "gamma"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "alpha | beta | gamma" {
		t.Errorf("got %q", out.String())
	}
}

func TestUnknownOperationPassesThrough(t *testing.T) {
	if got := mustRun(t, "sparkle()", "plain"); got != "plain" {
		t.Errorf("unknown operation must pass through, got %q", got)
	}
}
