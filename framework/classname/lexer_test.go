package classname_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/km-arc/slim-bootstrap/framework/classname"
)

func kinds(tokens []classname.Token) []classname.TokenKind {
	out := make([]classname.TokenKind, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Kind != classname.TokenWhitespace {
			out = append(out, tok.Kind)
		}
	}
	return out
}

func TestTokenize_Kinds(t *testing.T) {
	tokens := classname.Tokenize([]byte(`namespace A\B; /* c */ class C { $v = 'x'; D::class; }`))

	assert.Equal(t, []classname.TokenKind{
		classname.TokenNamespace, classname.TokenIdent, classname.TokenSeparator, classname.TokenIdent, classname.TokenTerminator,
		classname.TokenComment,
		classname.TokenClass, classname.TokenIdent, classname.TokenBlockStart,
		classname.TokenVariable, classname.TokenPunct, classname.TokenString, classname.TokenTerminator,
		classname.TokenIdent, classname.TokenMember, classname.TokenClass, classname.TokenTerminator,
		classname.TokenPunct,
	}, kinds(tokens))
}

func TestTokenize_PartialTokensAtEnd(t *testing.T) {
	tokens := classname.Tokenize([]byte(`class A /* unterminated`))
	last := tokens[len(tokens)-1]
	assert.Equal(t, classname.TokenComment, last.Kind)
	assert.Equal(t, "/* unterminated", last.Text)
	assert.Equal(t, 8, last.Offset)

	tokens = classname.Tokenize([]byte(`$s = "open \" string`))
	assert.Equal(t, classname.TokenString, tokens[len(tokens)-1].Kind)
}

func TestTokenize_Heredoc(t *testing.T) {
	src := "$a = <<<EOT\nclass X {\n  EOT;\n$b = <<<'RAW'\n{\nRAW\n;"
	tokens := classname.Tokenize([]byte(src))

	assert.Equal(t, []classname.TokenKind{
		classname.TokenVariable, classname.TokenPunct, classname.TokenString, classname.TokenTerminator,
		classname.TokenVariable, classname.TokenPunct, classname.TokenString, classname.TokenTerminator,
	}, kinds(tokens))

	var strs []string
	for _, tok := range tokens {
		if tok.Kind == classname.TokenString {
			strs = append(strs, tok.Text)
		}
	}
	assert.Equal(t, []string{"<<<EOT\nclass X {\n  EOT", "<<<'RAW'\n{\nRAW"}, strs)
}

func TestTokenize_HeredocPartialAtEnd(t *testing.T) {
	for _, src := range []string{"$a = <<<", "$a = <<<EO", "$a = <<<EOT\nclass X {\nEO"} {
		tokens := classname.Tokenize([]byte(src))
		last := tokens[len(tokens)-1]
		assert.Equal(t, classname.TokenString, last.Kind, src)
		assert.Equal(t, 5, last.Offset, src)
	}

	tokens := classname.Tokenize([]byte("$a << "))
	assert.Equal(t, "<<", tokens[2].Text)
}

func TestTokenKind_String(t *testing.T) {
	assert.Equal(t, "block-start", classname.TokenBlockStart.String())
	assert.Equal(t, "unknown", classname.TokenKind(99).String())
}

func TestScanner_ResumesWithoutRescanning(t *testing.T) {
	var s classname.Scanner

	// The namespace is complete, the class body is not in view yet.
	buf := "namespace Foo\\Bar;\n/* {@see x} */\nclass Baz\n"
	name, ok := s.Scan(classname.Tokenize([]byte(buf)), false)
	assert.False(t, ok)
	assert.Empty(t, name)
	assert.Equal(t, `Foo\Bar`, s.Namespace)

	stuck := s.Pos
	tokens := classname.Tokenize([]byte(buf))
	assert.Equal(t, classname.TokenClass, tokens[stuck].Kind, "scan position stays on the class keyword")

	buf += "extends Base\n{\n}\n"
	name, ok = s.Scan(classname.Tokenize([]byte(buf)), false)
	assert.True(t, ok)
	assert.Equal(t, `Foo\Bar\Baz`, name)
	assert.Equal(t, stuck, s.Pos)
}

func TestScanner_LastTokenWaitsForMoreInput(t *testing.T) {
	var s classname.Scanner

	// "{" is the last token and could still be followed by anything.
	_, ok := s.Scan(classname.Tokenize([]byte(`class Baz {`)), false)
	assert.False(t, ok)

	name, ok := s.Scan(classname.Tokenize([]byte(`class Baz {`)), true)
	assert.True(t, ok)
	assert.Equal(t, "Baz", name)
}

func TestScanner_KeepsNamespaceAcrossPasses(t *testing.T) {
	var s classname.Scanner

	_, ok := s.Scan(classname.Tokenize([]byte("namespace Kept; {")), false)
	assert.False(t, ok)
	assert.Equal(t, "Kept", s.Namespace)

	name, ok := s.Scan(classname.Tokenize([]byte("namespace Kept; { } class K { }")), true)
	assert.True(t, ok)
	assert.Equal(t, `Kept\K`, name)
}
