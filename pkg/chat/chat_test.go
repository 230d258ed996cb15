package chat

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"hello", "hello", true},
		{"  padded  ", "padded", true},
		{"line\nbreak", "linebreak", true},
		{"bell\x07char", "bellchar", true},
		{"", "", false},
		{"   ", "", false},
		{"\x00\x01\x02", "", false},
	}
	for _, tt := range tests {
		got, ok := Sanitize(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Sanitize(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSanitizeCapsLength(t *testing.T) {
	long := strings.Repeat("a", 500)
	got, ok := Sanitize(long)
	if !ok || len(got) != 200 {
		t.Errorf("long message trimmed to %d bytes, want 200", len(got))
	}
}

func TestSanitizeKeepsRuneBoundaries(t *testing.T) {
	long := strings.Repeat("é", 150) // 300 bytes of two-byte runes
	got, ok := Sanitize(long)
	if !ok {
		t.Fatal("sanitize should succeed")
	}
	for _, r := range got {
		if r != 'é' {
			t.Fatalf("truncation split a rune: found %q", r)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	if got, ok := SanitizeName("Rusty Digger"); !ok || got != "Rusty Digger" {
		t.Errorf("SanitizeName clean input = (%q, %v)", got, ok)
	}
	if _, ok := SanitizeName("\x00\x1f"); ok {
		t.Error("control-only name should be rejected")
	}
	if got, _ := SanitizeName(strings.Repeat("x", 100)); len(got) != 24 {
		t.Errorf("name trimmed to %d bytes, want 24", len(got))
	}
}
