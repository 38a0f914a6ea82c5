package lexer

// Keyword maps a literal spelling to a language-defined integer code.
// Identifier-like keywords (starting with a letter or underscore) are
// matched when they exactly cover an identifier token; operator-like
// keywords are matched greedily by longest prefix against the input
// starting at the cursor.
type Keyword struct {
	Text string
	Code int
}

func (k Keyword) identifierLike() bool {
	if len(k.Text) == 0 {
		return false
	}
	c := k.Text[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// DirectiveHandler continues scanning a preprocessor-style directive
// once its name has been recognized. Step is invoked with the zero-based
// directive index (matching the position in Language.Directives) and the
// lexer's current directive phase. The lexer keeps a single phase value
// and derives the directive index from it (index = phase - 1): the first
// invocation after the directive name token receives phase index+1, and
// a handler that returns a nonzero next phase p is next invoked with
// directive index p-1. It returns the token to emit and the next phase;
// a next phase of 0 ends the directive and returns the lexer to normal
// scanning.
type DirectiveHandler interface {
	Step(lx *Lexer, directive, phase int) (Token, int)
}

// Language is an immutable, shareable descriptor driving the lexer for
// one programming language.
type Language struct {
	Name                string
	Keywords            []Keyword
	Directives          []string
	PreprocessorTrigger byte // 0 means the language has no directives
	DirectiveHandler    DirectiveHandler
}

func (l *Language) keywordByText(text string) (Keyword, bool) {
	if l == nil {
		return Keyword{}, false
	}
	for _, kw := range l.Keywords {
		if kw.Text == text {
			return kw, true
		}
	}
	return Keyword{}, false
}

// longestOperatorKeyword returns the longest operator-like keyword that
// is a prefix of text, if any.
func (l *Language) longestOperatorKeyword(text string) (Keyword, bool) {
	if l == nil {
		return Keyword{}, false
	}
	var best Keyword
	found := false
	for _, kw := range l.Keywords {
		if kw.identifierLike() {
			continue
		}
		if len(kw.Text) == 0 || len(kw.Text) > len(text) {
			continue
		}
		if text[:len(kw.Text)] == kw.Text {
			if !found || len(kw.Text) > len(best.Text) {
				best = kw
				found = true
			}
		}
	}
	return best, found
}
