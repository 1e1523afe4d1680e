package classname

import "strings"

// NamespaceSeparator joins namespace segments and the class name.
const NamespaceSeparator = `\`

// Scanner walks the tokens of a growing buffer and remembers how far it got.
// Each call to Scan receives the tokens of the whole buffer read so far and
// resumes at Pos; tokens before Pos are never examined again.
type Scanner struct {
	// Pos is the index of the first token not yet consumed.
	Pos int

	// Namespace is the most recent complete namespace declaration.
	Namespace string
}

// Scan looks for the first class declaration. final reports that tokens
// cover the whole file; otherwise the last token may still grow and is left
// unconsumed.
//
// It returns the fully-qualified name and true once a declaration and the
// opening brace of its body are both in view. A declaration that is not
// complete yet leaves Pos on its keyword, so the next call retries it
// against a larger buffer.
func (s *Scanner) Scan(tokens []Token, final bool) (string, bool) {
	limit := len(tokens)
	if !final && limit > 0 {
		limit--
	}
	tokens = tokens[:limit]

	for s.Pos < len(tokens) {
		switch tokens[s.Pos].Kind {
		case TokenNamespace:
			if !declares(tokens, s.Pos) {
				break
			}
			ns, next, complete := namespaceAt(tokens, s.Pos)
			if !complete {
				return "", false
			}
			s.Namespace = ns
			s.Pos = next
			continue

		case TokenClass:
			if !declares(tokens, s.Pos) {
				break
			}
			name, complete := classAt(tokens, s.Pos)
			if !complete {
				return "", false
			}
			if name != "" {
				return qualify(s.Namespace, name), true
			}
		}
		s.Pos++
	}
	return "", false
}

// declares reports whether the keyword at i opens a declaration rather than
// being used as a name: Foo::class, $obj->class, new class, namespace\fn().
func declares(tokens []Token, i int) bool {
	if prev, ok := prevSignificant(tokens, i); ok {
		switch {
		case prev.Kind == TokenMember:
			return false
		case prev.Kind == TokenIdent && strings.EqualFold(prev.Text, "new"):
			return false
		}
	}
	if tokens[i].Kind == TokenNamespace {
		if next, ok := nextSignificant(tokens, i); ok && next.Kind == TokenSeparator {
			return false
		}
	}
	return true
}

// namespaceAt reads the declaration starting at keyword i up to its `;` or
// `{`. It returns the joined name and the index after the terminator.
func namespaceAt(tokens []Token, i int) (string, int, bool) {
	var parts []string
	for j := i + 1; j < len(tokens); j++ {
		switch tokens[j].Kind {
		case TokenIdent, TokenClass, TokenNamespace:
			parts = append(parts, tokens[j].Text)
		case TokenBlockStart, TokenTerminator:
			return strings.Join(parts, NamespaceSeparator), j + 1, true
		}
	}
	return "", i, false
}

// classAt returns the simple name of the class declared at keyword i: the
// first identifier after the keyword. The declaration is complete once a
// block start follows it. A complete declaration without an identifier
// yields an empty name.
func classAt(tokens []Token, i int) (string, bool) {
	name := ""
	for j := i + 1; j < len(tokens); j++ {
		switch tokens[j].Kind {
		case TokenIdent:
			if name == "" {
				name = tokens[j].Text
			}
		case TokenBlockStart:
			return name, true
		}
	}
	return "", false
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + NamespaceSeparator + name
}

func prevSignificant(tokens []Token, i int) (Token, bool) {
	for j := i - 1; j >= 0; j-- {
		if tokens[j].significant() {
			return tokens[j], true
		}
	}
	return Token{}, false
}

func nextSignificant(tokens []Token, i int) (Token, bool) {
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].significant() {
			return tokens[j], true
		}
	}
	return Token{}, false
}
