package asm

import "testing"

func TestLexerBasicTokens(t *testing.T) {
	lex := NewLexer("add t0, t1, t2 ; sum\n.data\nfoo: .word 5")
	var kinds []TokenKind
	for {
		tok := lex.Next()
		kinds = append(kinds, tok.Kind)
		if tok.Kind == TokEOF {
			break
		}
	}
	want := []TokenKind{
		TokOpcode, TokReg, TokComma, TokReg, TokComma, TokReg,
		TokPseudoOp, TokLabel, TokColon, TokPseudoOp, TokNumber, TokEOF,
	}
	if len(kinds) != len(want) {
		t.Fatalf("got %d tokens %v, want %d %v", len(kinds), kinds, len(want), want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("token %d = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestLexerNegativeAndHexNumbers(t *testing.T) {
	lex := NewLexer("-5 0x1F")
	tok := lex.Next()
	if tok.Kind != TokNumber || tok.Value != -5 {
		t.Fatalf("got %v, want -5", tok)
	}
	tok = lex.Next()
	if tok.Kind != TokNumber || tok.Value != 0x1F {
		t.Fatalf("got %v, want 0x1F", tok)
	}
}

func TestLexerCommentSkipped(t *testing.T) {
	lex := NewLexer("nop # trailing comment\nhalt")
	first := lex.Next()
	second := lex.Next()
	if first.Kind != TokOpcode || first.Text != "nop" {
		t.Fatalf("first = %v", first)
	}
	if second.Kind != TokOpcode || second.Text != "halt" {
		t.Fatalf("second = %v", second)
	}
}
