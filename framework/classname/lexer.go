package classname

import (
	"bytes"
	"strings"
)

// TokenKind classifies a lexed token.
type TokenKind int

const (
	TokenWhitespace TokenKind = iota
	TokenComment
	TokenString
	TokenVariable
	TokenIdent
	TokenNamespace  // "namespace" keyword
	TokenClass      // "class" keyword
	TokenSeparator  // `\` between name segments
	TokenBlockStart // {
	TokenTerminator // ;
	TokenMember     // :: -> ?->
	TokenPunct
)

var kindNames = [...]string{
	TokenWhitespace: "whitespace",
	TokenComment:    "comment",
	TokenString:     "string",
	TokenVariable:   "variable",
	TokenIdent:      "ident",
	TokenNamespace:  "namespace",
	TokenClass:      "class",
	TokenSeparator:  "separator",
	TokenBlockStart: "block-start",
	TokenTerminator: "terminator",
	TokenMember:     "member",
	TokenPunct:      "punct",
}

func (k TokenKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token is one lexeme of the source buffer.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
}

// significant reports whether the token carries syntax.
func (t Token) significant() bool {
	return t.Kind != TokenWhitespace && t.Kind != TokenComment
}

// Tokenize lexes src into tokens. It never fails: an unterminated comment,
// string or heredoc at the end of src becomes a final partial token, which is
// how a buffer that ends mid-file is lexed.
func Tokenize(src []byte) []Token {
	l := &lexer{src: src}
	for l.pos < len(l.src) {
		l.next()
	}
	return l.tokens
}

// lexer is a byte-level state machine; next consumes exactly one token.
type lexer struct {
	src    []byte
	pos    int
	tokens []Token
}

func (l *lexer) emit(kind TokenKind, start int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: string(l.src[start:l.pos]), Offset: start})
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) next() {
	start := l.pos
	ch := l.src[l.pos]

	switch {
	case isSpace(ch):
		for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
			l.pos++
		}
		l.emit(TokenWhitespace, start)

	case ch == '/' && l.peek(1) == '/', ch == '#' && l.peek(1) != '[':
		l.lineComment()
		l.emit(TokenComment, start)

	case ch == '/' && l.peek(1) == '*':
		l.pos += 2
		end := bytes.Index(l.src[l.pos:], []byte("*/"))
		if end < 0 {
			l.pos = len(l.src)
		} else {
			l.pos += end + 2
		}
		l.emit(TokenComment, start)

	case ch == '\'' || ch == '"' || ch == '`':
		l.quoted(ch)
		l.emit(TokenString, start)

	case ch == '$' && isIdentStart(l.peek(1)):
		l.pos++
		l.ident()
		l.emit(TokenVariable, start)

	case isIdentStart(ch):
		l.ident()
		l.emit(keyword(string(l.src[start:l.pos])), start)

	case ch == '<' && l.peek(1) == '<':
		if l.peek(2) == '<' && l.heredoc() {
			l.emit(TokenString, start)
			return
		}
		l.pos += 2
		l.emit(TokenPunct, start)

	case ch == '\\':
		l.pos++
		l.emit(TokenSeparator, start)

	case ch == '{':
		l.pos++
		l.emit(TokenBlockStart, start)

	case ch == ';':
		l.pos++
		l.emit(TokenTerminator, start)

	case ch == ':' && l.peek(1) == ':', ch == '-' && l.peek(1) == '>':
		l.pos += 2
		l.emit(TokenMember, start)

	case ch == '?' && l.peek(1) == '-' && l.peek(2) == '>':
		l.pos += 3
		l.emit(TokenMember, start)

	default:
		l.pos++
		l.emit(TokenPunct, start)
	}
}

func (l *lexer) lineComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

// quoted consumes a string delimited by q, honouring backslash escapes.
func (l *lexer) quoted(q byte) {
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
		case q:
			l.pos++
			return
		default:
			l.pos++
		}
	}
	if l.pos > len(l.src) {
		l.pos = len(l.src)
	}
}

// heredoc consumes a heredoc or nowdoc, from <<< to the closing label. The
// closing label may be indented and must not run into an identifier. It
// reports false, consuming nothing, when no label follows <<<.
func (l *lexer) heredoc() bool {
	p := l.pos + 3
	for p < len(l.src) && (l.src[p] == ' ' || l.src[p] == '\t') {
		p++
	}
	var quote byte
	if p < len(l.src) && (l.src[p] == '\'' || l.src[p] == '"') {
		quote = l.src[p]
		p++
	}
	labelStart := p
	if p < len(l.src) && isIdentStart(l.src[p]) {
		for p < len(l.src) && isIdentPart(l.src[p]) {
			p++
		}
	}
	if p == len(l.src) {
		l.pos = p
		return true
	}
	label := l.src[labelStart:p]
	if len(label) == 0 {
		return false
	}
	if quote != 0 {
		if l.src[p] != quote {
			return false
		}
		if p++; p == len(l.src) {
			l.pos = p
			return true
		}
	}
	if l.src[p] != '\n' && l.src[p] != '\r' {
		return false
	}

	for {
		nl := bytes.IndexByte(l.src[p:], '\n')
		if nl < 0 {
			l.pos = len(l.src)
			return true
		}
		p += nl + 1
		for p < len(l.src) && (l.src[p] == ' ' || l.src[p] == '\t') {
			p++
		}
		if !bytes.HasPrefix(l.src[p:], label) {
			continue
		}
		if end := p + len(label); end == len(l.src) || !isIdentPart(l.src[end]) {
			l.pos = end
			return true
		}
	}
}

func (l *lexer) ident() {
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
}

// keyword maps an identifier to its keyword kind. Keywords are
// case-insensitive.
func keyword(word string) TokenKind {
	switch {
	case strings.EqualFold(word, "namespace"):
		return TokenNamespace
	case strings.EqualFold(word, "class"):
		return TokenClass
	}
	return TokenIdent
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch >= 0x80 || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
