package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabriquer/fabrique/internal/diagnostics"
)

func allTokens(src string) []Token {
	r := diagnostics.NewReporter()
	l := New("t.fab", Normalize([]byte(src)), r)
	var toks []Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}
	return toks
}

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestBasicAssignment(t *testing.T) {
	toks := allTokens(`x:int = 1 + 2;`)
	require.Equal(t, []Kind{IDENT, COLON, IDENT, ASSIGN, INT, PLUS, INT, SEMICOLON, EOF}, kinds(toks))
}

func TestKeywordsRecognized(t *testing.T) {
	toks := allTokens(`if true else false`)
	require.Equal(t, []Kind{IF, TRUE, ELSE, FALSE, EOF}, kinds(toks))
}

func TestStringLiteralRetainsQuoteStyle(t *testing.T) {
	toks := allTokens(`'a.c' "b.c"`)
	require.Len(t, toks, 3)
	assert.Equal(t, STRING, toks[0].Kind)
	assert.Equal(t, byte('\''), toks[0].Quote)
	assert.Equal(t, "a.c", toks[0].Literal)
	assert.Equal(t, byte('"'), toks[1].Quote)
	assert.Equal(t, "b.c", toks[1].Literal)
}

func TestCommentsSkippedToEndOfLine(t *testing.T) {
	toks := allTokens("x = 1 # trailing comment\ny = 2;")
	kinds := kinds(toks)
	assert.NotContains(t, kinds, COMMENT)
	assert.Equal(t, IDENT, toks[0].Kind)
}

func TestTwoCharOperators(t *testing.T) {
	toks := allTokens(`a :: b .+ 1 <- c => d == e != f`)
	require.Equal(t, []Kind{
		IDENT, PREFIX, IDENT, SCALARADD, INT, ARROW, IDENT, FARROW, IDENT,
		EQ, IDENT, NEQ, IDENT, EOF,
	}, kinds(toks))
}

func TestIllegalCharacterReportsDiagnosticAndContinues(t *testing.T) {
	r := diagnostics.NewReporter()
	l := New("t.fab", Normalize([]byte(`a ~ b`)), r)

	var got []Kind
	for {
		tok := l.Next()
		got = append(got, tok.Kind)
		if tok.Kind == EOF {
			break
		}
	}
	assert.Equal(t, []Kind{IDENT, ILLEGAL, IDENT, EOF}, got)
	assert.True(t, r.HasErrors())
}

func TestNextFilenameScansBarePaths(t *testing.T) {
	r := diagnostics.NewReporter()
	l := New("t.fab", Normalize([]byte(`a.c sub/b.o)`)), r)

	f1 := l.NextFilename()
	assert.Equal(t, "a.c", f1.Literal)
	f2 := l.NextFilename()
	assert.Equal(t, "sub/b.o", f2.Literal)
	f3 := l.NextFilename()
	assert.Equal(t, EOF, f3.Kind)
}

func TestNormalizeStripsBOM(t *testing.T) {
	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte("x = 1;")...)
	out := Normalize(withBOM)
	assert.Equal(t, "x = 1;", string(out))
}
