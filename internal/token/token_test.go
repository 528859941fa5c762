package token

import "testing"

func TestNumberDecoding(t *testing.T) {
	ints := map[string]int64{
		"0":         0,
		"42":        42,
		"1_000_000": 1000000,
		"0x1f":      31,
		"0X1F":      31,
		"0o17":      15,
		"0b101":     5,
	}
	for text, want := range ints {
		tok := Token{Kind: NUMBER, Text: text}
		if tok.IsFloat() {
			t.Errorf("%s: IsFloat() = true, want false", text)
		}
		got, err := tok.Int()
		if err != nil {
			t.Errorf("%s: Int() error: %v", text, err)
			continue
		}
		if got != want {
			t.Errorf("%s: Int() = %d, want %d", text, got, want)
		}
	}

	floats := map[string]float64{
		"1.5":  1.5,
		".25":  0.25,
		"1e3":  1000,
		"2E-2": 0.02,
		"3.":   3,
	}
	for text, want := range floats {
		tok := Token{Kind: NUMBER, Text: text}
		if !tok.IsFloat() {
			t.Errorf("%s: IsFloat() = false, want true", text)
		}
		got, err := tok.Float()
		if err != nil {
			t.Errorf("%s: Float() error: %v", text, err)
			continue
		}
		if got != want {
			t.Errorf("%s: Float() = %g, want %g", text, got, want)
		}
	}
}

func TestIntOverflow(t *testing.T) {
	tok := Token{Kind: NUMBER, Text: "99999999999999999999"}
	if _, err := tok.Int(); err == nil {
		t.Error("expected overflow error")
	}
}

func TestStringValue(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{`'abc'`, "abc"},
		{`""`, ""},
		{`"a\nb"`, "a\nb"},
		{`'it\'s'`, "it's"},
		{`"tab\there"`, "tab\there"},
		{`'\x41é'`, "Aé"},
		{`'\q'`, `\q`},
		{`'''multi
line'''`, "multi\nline"},
		{`""""""`, ""},
		{`'a\
b'`, "ab"},
	}
	for _, tt := range tests {
		tok := Token{Kind: STRING, Text: tt.text}
		if got := tok.StringValue(); got != tt.want {
			t.Errorf("StringValue(%s) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestIs(t *testing.T) {
	if !(Token{Kind: OP, Text: "("}).Is("(") {
		t.Error("OP ( should match")
	}
	if !(Token{Kind: KEYWORD, Text: "if"}).Is("if") {
		t.Error("KEYWORD if should match")
	}
	if (Token{Kind: STRING, Text: "if"}).Is("if") {
		t.Error("STRING should never match Is")
	}
	if (Token{Kind: NAME, Text: "x"}).Is("x") {
		t.Error("NAME should never match Is")
	}
}

func TestKeywords(t *testing.T) {
	for _, kw := range []string{"if", "while", "None", "True", "False", "except", "finally"} {
		if !IsKeyword(kw) {
			t.Errorf("IsKeyword(%q) = false", kw)
		}
	}
	for _, name := range []string{"print", "self", "none", "continue"} {
		if IsKeyword(name) {
			t.Errorf("IsKeyword(%q) = true", name)
		}
	}
}
