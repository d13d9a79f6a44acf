package value

import (
	"strings"
	"testing"
)

func TestStringificationRules(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"string", "hello world", "hello world"},
		{"list joins with commas", []any{"tag1", "tag2", "tag3"}, "tag1,tag2,tag3"},
		{"mixed list", []any{"classic", 123, "frog"}, "classic,123,frog"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"integer", 24, "24"},
		{"null", nil, ""},
		{"empty list", []any{}, ""},
		{"map renders as JSON", map[string]any{"key": "value"}, `{"key":"value"}`},
	}
	for _, tt := range tests {
		if got := FromAny(tt.input).String(); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDecodePreservesNumberLiterals(t *testing.T) {
	doc, err := DecodeBytes([]byte(`{"pi": 3.14, "count": 24, "big": 1e3}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	for field, want := range map[string]string{"pi": "3.14", "count": "24", "big": "1e3"} {
		v, ok := doc.Field(field)
		if !ok {
			t.Fatalf("field %s missing", field)
		}
		if v.String() != want {
			t.Errorf("%s: got %q, want %q", field, v.String(), want)
		}
	}
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	if _, err := DecodeBytes([]byte(`{not json`)); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestKinds(t *testing.T) {
	doc, err := DecodeBytes([]byte(`{"s":"x","n":1,"b":true,"z":null,"l":[1],"m":{}}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := map[string]Kind{
		"s": KindString, "n": KindNumber, "b": KindBool,
		"z": KindNull, "l": KindList, "m": KindMap,
	}
	for field, kind := range want {
		v, _ := doc.Field(field)
		if v.Kind() != kind {
			t.Errorf("%s: got kind %s, want %s", field, v.Kind(), kind)
		}
	}
}

func TestListAccessors(t *testing.T) {
	v := FromAny([]any{"a", "b"})
	if v.Len() != 2 {
		t.Errorf("expected length 2, got %d", v.Len())
	}
	items := v.List()
	if items[1].String() != "b" {
		t.Errorf("unexpected element: %q", items[1].String())
	}
	if Str("scalar").List() != nil {
		t.Error("List() on a non-list must return nil")
	}
}

func TestFieldOnNonMap(t *testing.T) {
	if _, ok := Str("x").Field("anything"); ok {
		t.Error("Field() on a non-map must report absence")
	}
}

func TestIsBlank(t *testing.T) {
	blanks := []Value{Null(), Str(""), Str("   \t\n"), FromAny([]any{})}
	for _, v := range blanks {
		if !v.IsBlank() {
			t.Errorf("%s value %q should be blank", v.Kind(), v.String())
		}
	}
	solid := []Value{Str("x"), Bool(false), FromAny(0), FromAny(map[string]any{})}
	for _, v := range solid {
		if v.IsBlank() {
			t.Errorf("%s value %q should not be blank", v.Kind(), v.String())
		}
	}
}

func TestIsEmptyOrNA(t *testing.T) {
	empty := []string{
		"", "   ", "\t", "\n", "  \t\n  ",
		"N/A", "n/a", "N/a", "n/A",
		"n.a", "N.A", "n.a.", "N.A.",
		"na", "NA", "Na", "n a", "N A",
		"not applicable", "Not Applicable", "NOT APPLICABLE",
		"notapplicable", "NotApplicable", "not-applicable",
		"  n/a  ", "\tN/A\n", "  not applicable  ",
	}
	for _, s := range empty {
		if !IsEmptyOrNA(s) {
			t.Errorf("%q should be empty-or-n/a", s)
		}
	}
	valid := []string{
		"123456", "video_id_abc123", "abc", "This is a valid post",
		"This is n/a in the middle", "n/a_video_123", "post_n/a", "banana",
		"0", "1",
	}
	for _, s := range valid {
		if IsEmptyOrNA(s) {
			t.Errorf("%q should not be empty-or-n/a", s)
		}
	}
}

func TestNestedMapStringification(t *testing.T) {
	doc, err := DecodeBytes([]byte(`{"outer": {"b": 2, "a": [1, null, "x"]}}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	v, _ := doc.Field("outer")
	got := v.String()
	// Canonical JSON form: compact, keys sorted.
	if got != `{"a":[1,null,"x"],"b":2}` {
		t.Errorf("got %s", got)
	}
	if !strings.HasPrefix(got, "{") {
		t.Errorf("map must render as a JSON object, got %s", got)
	}
}
