package cursor_test

import (
	"testing"

	"github.com/resoltico/FTLLexEngine-sub005/cursor"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantVal string
		wantErr bool
	}{
		{"simple", "hello", "hello", false},
		{"with-hyphen", "brand-name = x", "brand-name", false},
		{"with-underscore", "file_name", "file_name", false},
		{"leading-digit", "1abc", "", true},
		{"empty", "", "", true},
		{"leading-unicode", "éabc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := cursor.ParseIdentifier(cursor.New(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got result %q", res.Value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Value != tt.wantVal {
				t.Errorf("got %q, want %q", res.Value, tt.wantVal)
			}
		})
	}
}

func TestParseIdentifierLengthLimit(t *testing.T) {
	long := make([]byte, cursor.MaxIdentifierLength+10)
	for i := range long {
		long[i] = 'a'
	}
	_, err := cursor.ParseIdentifier(cursor.New(string(long)))
	if err == nil {
		t.Fatal("expected length-limit error")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"integer", "42", "42", false},
		{"negative", "-3.14", "-3.14", false},
		{"leading-zero-decimal", "0.001", "0.001", false},
		{"no-digits", "abc", "", true},
		{"trailing-dot-no-digit", "1.", "", true},
		{"just-minus", "-", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := cursor.ParseNumber(cursor.New(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", res.Value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Value != tt.want {
				t.Errorf("got %q, want %q", res.Value, tt.want)
			}
		})
	}
}

func TestParseStringLiteral(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", `"hello"`, "hello", false},
		{"escaped-quote", `"with \"quotes\""`, `with "quotes"`, false},
		{"escaped-backslash", `"a\\b"`, `a\b`, false},
		{"newline-escape", `"a\nb"`, "a\nb", false},
		{"tab-escape", `"a\tb"`, "a\tb", false},
		{"unicode-short", "\"\\u00e4\"", "ä", false},
		{"unicode-long", `"\U01F600"`, "\U0001F600", false},
		{"raw-newline-rejected", "\"a\nb\"", "", true},
		{"unterminated", `"abc`, "", true},
		{"surrogate-rejected", `"\uD800"`, "", true},
		{"bad-escape", `"\q"`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := cursor.ParseStringLiteral(cursor.New(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", res.Value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Value != tt.want {
				t.Errorf("got %q, want %q", res.Value, tt.want)
			}
		})
	}
}

func TestCursorReentrancy(t *testing.T) {
	// Parsing twice from the same source must not interfere — primitives
	// carry no ambient state between calls.
	src := `"first" "second"`
	c := cursor.New(src)

	r1, err := cursor.ParseStringLiteral(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c2 := r1.Cursor.Advance() // skip space
	r2, err := cursor.ParseStringLiteral(c2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Value != "first" || r2.Value != "second" {
		t.Errorf("got %q, %q", r1.Value, r2.Value)
	}
}
