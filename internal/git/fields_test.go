package git

import (
	"errors"
	"testing"
)

func TestParseField(t *testing.T) {
	t.Parallel()

	for _, f := range Fields {
		got, err := ParseField(string(f))
		if err != nil || got != f {
			t.Fatalf("ParseField(%q) = %q, %v", f, got, err)
		}
	}
	if _, err := ParseField("parents"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestPrettyFormat(t *testing.T) {
	t.Parallel()

	want := "format:%H%x00%s%x00%an%x00%ad%x00%at%x00%cn%x00%ct%x00%B%x00%b"
	if got := prettyFormat(Fields); got != want {
		t.Fatalf("prettyFormat = %q, want %q", got, want)
	}
	if got := prettyFormat([]Field{FieldBody}); got != "format:%b" {
		t.Fatalf("prettyFormat single = %q", got)
	}
}
