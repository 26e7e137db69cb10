package dub

import (
	"strings"
	"testing"
)

var typeNames = map[tokenType]string{
	typeInt:        "int",
	typeFloat:      "float",
	typeIdentifier: "ident",
	typeString:     "string",
	typeQuote:      "quote",
	typeComma:      "comma",
	typeColon:      "colon",
	typeSlash:      "slash",
	typeAsterisk:   "star",
	typeEOF:        "eof",
}

// describe renders tokens as "type:text" pairs.
func describe(tokens []token) string {
	var parts []string
	for _, t := range tokens {
		if t.typ == typeEOF {
			parts = append(parts, "eof")
			continue
		}
		parts = append(parts, typeNames[t.typ]+":"+t.text)
	}
	return strings.Join(parts, " ")
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"gate on", "ident:gate ident:on eof"},
		{"set\tattack  512", "ident:set ident:attack int:512 eof"},
		{"seq 120 '* 0.5", "ident:seq int:120 quote:' star:* float:0.5 eof"},
		{"'1:2 /    / 3,4", "quote:' int:1 colon:: int:2 slash:/ slash:/ int:3 comma:, int:4 eof"},
		{"'1,3/2", "quote:' int:1 comma:, int:3 slash:/ int:2 eof"},
		{"1.0", "float:1.0 eof"},
		{"-1.", "float:-1. eof"},
		{"-.1", "float:-.1 eof"},
		{".5 -3", "float:.5 int:-3 eof"},
		{`render "out file.wav" 100`, `ident:render string:"out file.wav" int:100 eof`},
		{"knob_2", "ident:knob_2 eof"},
		{"", "eof"},
	}
	for _, test := range tests {
		tokens, err := lex(test.input)
		if err != nil {
			t.Errorf("%q: unexpected lex error: %v", test.input, err)
			continue
		}
		if want, got := test.want, describe(tokens); want != got {
			t.Errorf("%q:\nwant: %s\ngot:  %s", test.input, want, got)
		}
	}
}

func TestLexerPositions(t *testing.T) {
	tokens, err := lex(`set  "a b" 7`)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{0, 5, 11, 12}
	if len(tokens) != len(want) {
		t.Fatalf("want %d tokens, got %s", len(want), describe(tokens))
	}
	for i, tok := range tokens {
		if want[i] != tok.pos {
			t.Errorf("token %d (%q): want position %d, got %d", i, tok.text, want[i], tok.pos)
		}
	}
}

func TestLexerErrors(t *testing.T) {
	for _, input := range []string{
		"a -",
		"a .-",
		"a 12b",
		"set attack;",
		`render "out.wav`,
		"a;",
		"gate=on",
	} {
		if _, err := lex(input); err == nil {
			t.Errorf("expected error for input: %q", input)
		}
	}
}
