package fonts

import "testing"

func TestLoadAcceptsEmbedPrefix(t *testing.T) {
	a, err := Load("embed:go-regular")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Load("go-regular")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("expected identical non-empty blobs, got %d and %d bytes", len(a), len(b))
	}
}

func TestLoadUnknownFont(t *testing.T) {
	if _, err := Load("no-such-font"); err == nil {
		t.Fatalf("expected error for unknown font")
	}
}

func TestVariantTable(t *testing.T) {
	cases := []struct {
		generic      string
		bold, italic bool
		want         string
	}{
		{"sans-serif", false, false, "go-regular"},
		{"sans-serif", true, false, "go-bold"},
		{"sans-serif", true, true, "go-bold-italic"},
		{"serif", false, false, "lm-roman"},
		{"serif", false, true, "lm-roman-italic"},
		{"monospace", false, false, "go-mono"},
		{"monospace", true, true, "go-mono-bold"},
		{"cursive", false, false, "go-regular"},
	}
	for _, c := range cases {
		got := Variant(c.generic, c.bold, c.italic)
		if got != c.want {
			t.Fatalf("Variant(%q, %v, %v) = %q, want %q", c.generic, c.bold, c.italic, got, c.want)
		}
		if _, err := Load(got); err != nil {
			t.Fatalf("variant %q not loadable: %v", got, err)
		}
	}
}
