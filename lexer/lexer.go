package lexer

import (
	"fmt"

	"github.com/eddy-editor/eddy/ederrors"
)

// LexError is a located, non-fatal failure from Expect/ExpectSymbol/
// ExpectIdentifier.
type LexError struct {
	Location Location
	Message  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Location.File, e.Location.Line+1, e.Location.Column+1, e.Message)
}

// source is one entry of the lexer's LIFO include stack.
type source struct {
	name      string
	remaining string
	loc       Location
}

// Lexer scans a language-parameterised token stream. It is stateful only
// with respect to the current source stack, a one-token lookahead, and
// an in-progress directive or block comment.
type Lexer struct {
	language *Language
	sources  []*source
	current  *Token

	WhitespaceSignificant bool
	IncludeComments       bool

	inBlockComment bool
	directivePhase int
}

// New creates a lexer bound to the given language descriptor. Pass nil
// for a language-agnostic plain-text scan (no keywords, no directives).
func New(language *Language) *Lexer {
	return &Lexer{language: language}
}

// Language returns the lexer's language descriptor.
func (lx *Lexer) Language() *Language { return lx.language }

// PushSource opens a new innermost source (e.g. for #include processing).
func (lx *Lexer) PushSource(text, name string) {
	lx.sources = append(lx.sources, &source{name: name, remaining: text})
	lx.current = nil
}

// PopSource closes the innermost source.
func (lx *Lexer) PopSource() {
	if len(lx.sources) == 0 {
		return
	}
	lx.sources = lx.sources[:len(lx.sources)-1]
	lx.current = nil
}

func (lx *Lexer) top() *source {
	if len(lx.sources) == 0 {
		return nil
	}
	return lx.sources[len(lx.sources)-1]
}

// Peek returns the current token without consuming it.
func (lx *Lexer) Peek() Token {
	if lx.current != nil {
		return *lx.current
	}
	src := lx.top()
	if src == nil {
		return Token{Kind: EndOfFile}
	}
	if lx.directivePhase != 0 && lx.language != nil && lx.language.DirectiveHandler != nil {
		directive := lx.directivePhase - 1
		tok, next := lx.language.DirectiveHandler.Step(lx, directive, lx.directivePhase)
		tok.Location = src.loc
		lx.directivePhase = next
		lx.current = &tok
		return tok
	}
	tok := lx.scan(src)
	tok.Location = src.loc
	lx.current = &tok
	return tok
}

// Lex returns and consumes the current token (computing it via Peek if
// there is no pending lookahead).
func (lx *Lexer) Lex() Token {
	tok := lx.Peek()
	lx.current = nil
	lx.advance(tok)
	return tok
}

// Next skips whitespace/comments (unless the corresponding flags request
// they be kept), popping exhausted sources, then peeks.
func (lx *Lexer) Next() Token {
	for len(lx.sources) > 0 {
		tok := lx.Peek()
		for tok.Kind != EndOfFile {
			significant := true
			switch tok.Kind {
			case Whitespace, EndOfLine:
				significant = lx.WhitespaceSignificant
			case CommentTok:
				significant = lx.IncludeComments
			}
			if significant {
				return tok
			}
			lx.Lex()
			tok = lx.Peek()
		}
		lx.PopSource()
	}
	return Token{Kind: EndOfFile}
}

// Expect consumes the next significant token if it matches kind, else
// returns a located LexError.
func (lx *Lexer) Expect(kind Kind, format string, args ...interface{}) (Token, error) {
	tok := lx.Next()
	if tok.Kind != kind {
		return Token{}, &LexError{Location: tok.Location, Message: fmt.Sprintf(format, args...)}
	}
	return lx.Lex(), nil
}

// ExpectSymbol consumes the next significant token if it is the given
// symbol, else returns a located LexError.
func (lx *Lexer) ExpectSymbol(symbol byte, format string, args ...interface{}) (Token, error) {
	tok := lx.Next()
	if tok.Kind != SymbolTok || tok.Symbol != symbol {
		return Token{}, &LexError{Location: tok.Location, Message: fmt.Sprintf(format, args...)}
	}
	return lx.Lex(), nil
}

// ExpectIdentifier consumes the next significant token if it is an
// identifier, else returns a located LexError.
func (lx *Lexer) ExpectIdentifier(format string, args ...interface{}) (Token, error) {
	return lx.Expect(Identifier, format, args...)
}

// advance moves the top source's remaining text and position past the
// just-consumed token.
func (lx *Lexer) advance(tok Token) {
	src := lx.top()
	if src == nil {
		return
	}
	if len(tok.Text) > len(src.remaining) {
		// Defensive: directive handlers must not emit more text than
		// remains; treat as consuming everything left.
		src.remaining = ""
	} else {
		src.remaining = src.remaining[len(tok.Text):]
	}
	if tok.Kind == EndOfLine {
		src.loc.Line++
		src.loc.Column = 0
	} else {
		src.loc.Column += len(tok.Text)
	}
	src.loc.Index += len(tok.Text)
}

// scan applies the scanning rules (in spec order) to the top source's
// remaining text, without mutating lexer state other than the
// mid-block-comment flag.
func (lx *Lexer) scan(src *source) Token {
	text := src.remaining

	if lx.inBlockComment {
		if len(text) == 0 {
			return Token{Kind: EndOfFile}
		}
		if text[0] == '\n' {
			return Token{Kind: EndOfLine, Text: text[:1]}
		}
		return lx.scanBlockComment(text, 0)
	}

	if len(text) == 0 {
		return Token{Kind: EndOfFile}
	}

	switch text[0] {
	case '\'', '"', '`':
		return scanQuotedString(text)
	case '/':
		if len(text) > 1 && text[1] == '/' {
			return scanLineComment(text)
		}
		if len(text) > 1 && text[1] == '*' {
			return lx.scanBlockComment(text, 2)
		}
	}

	if text[0] == '\n' {
		return Token{Kind: EndOfLine, Text: text[:1]}
	}
	if isSpace(text[0]) {
		i := 0
		for i < len(text) && isSpace(text[i]) && text[i] != '\n' {
			i++
		}
		return Token{Kind: Whitespace, Text: text[:i]}
	}
	if isDigit(text[0]) {
		return scanNumber(text)
	}
	if isIdentStart(text[0]) {
		return lx.scanIdentifier(text)
	}
	return lx.scanOperatorOrSymbol(text)
}

func (lx *Lexer) scanIdentifier(text string) Token {
	i := 0
	for i < len(text) && isIdentPart(text[i]) {
		i++
	}
	word := text[:i]
	if kw, ok := lx.language.keywordByText(word); ok {
		return Token{Kind: KeywordTok, Text: word, KeywordCode: kw.Code}
	}
	return Token{Kind: Identifier, Text: word}
}

func (lx *Lexer) scanOperatorOrSymbol(text string) Token {
	if kw, ok := lx.language.longestOperatorKeyword(text); ok {
		return Token{Kind: KeywordTok, Text: kw.Text, KeywordCode: kw.Code}
	}
	ret := Token{Kind: SymbolTok, Text: text[:1], Symbol: text[0]}
	if lx.language != nil && lx.language.PreprocessorTrigger != 0 && lx.directivePhase == 0 &&
		ret.Symbol == lx.language.PreprocessorTrigger && len(lx.language.Directives) > 0 {
		return lx.detectDirective(text)
	}
	return ret
}

// detectDirective inspects the text right after a just-scanned trigger
// symbol for one of the language's known directive names.
func (lx *Lexer) detectDirective(text string) Token {
	i := 1
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	start := i
	for i < len(text) && isAlpha(text[i]) {
		i++
	}
	if i == start {
		return Token{Kind: SymbolTok, Text: text[:1], Symbol: text[0]}
	}
	word := text[start:i]
	for idx, name := range lx.language.Directives {
		if name == word {
			lx.directivePhase = idx + 1
			return Token{Kind: DirectiveTok, Text: text[:i], DirectiveIndex: idx}
		}
	}
	return Token{Kind: SymbolTok, Text: text[:1], Symbol: text[0]}
}

func scanQuotedString(text string) Token {
	quote := text[0]
	triple := len(text) >= 3 && text[1] == quote && text[2] == quote
	i := 1
	if triple {
		i = 3
	}
	for i < len(text) {
		if text[i] == '\\' {
			i++
			if i < len(text) {
				i++
			}
			continue
		}
		if triple {
			if i+2 < len(text) && text[i] == quote && text[i+1] == quote && text[i+2] == quote {
				i += 3
				return Token{Kind: QuotedStringTok, Text: text[:i], QuoteChar: quote, Triple: true, Terminated: true}
			}
			i++
			continue
		}
		if text[i] == quote {
			i++
			return Token{Kind: QuotedStringTok, Text: text[:i], QuoteChar: quote, Terminated: true}
		}
		i++
	}
	return Token{Kind: QuotedStringTok, Text: text[:i], QuoteChar: quote, Triple: triple, Terminated: false}
}

func scanLineComment(text string) Token {
	i := 2
	for i < len(text) && text[i] != '\n' {
		i++
	}
	return Token{Kind: CommentTok, Text: text[:i], CommentType: LineComment, Terminated: true}
}

// scanBlockComment implements scanning rule 4 (and its continuation,
// rule 1): it scans from start until a closing "*/", an embedded
// newline (which pauses the scan, setting the mid-block-comment flag for
// the next call), or EOF (unterminated).
func (lx *Lexer) scanBlockComment(text string, start int) Token {
	i := start
	for i < len(text) && text[i] != '\n' && !(i > 0 && text[i-1] == '*' && text[i] == '/') {
		i++
	}
	if i >= len(text) {
		lx.inBlockComment = false
		return Token{Kind: CommentTok, Text: text[:i], CommentType: BlockComment, Terminated: false}
	}
	if text[i] == '\n' {
		lx.inBlockComment = true
		return Token{Kind: CommentTok, Text: text[:i], CommentType: BlockComment, Terminated: true}
	}
	lx.inBlockComment = false
	return Token{Kind: CommentTok, Text: text[:i+1], CommentType: BlockComment, Terminated: true}
}

// scanNumber implements scanning rule 6, with the REDESIGN FLAG fix: a
// second consecutive '.' makes the first one the start of a Range
// operator rather than a decimal point, so "1..10" lexes as Number(1),
// then whatever the language's keyword table says about "..", rather
// than absorbing the first '.' into the number (spec.md §9).
func scanNumber(text string) Token {
	typ := Integer
	pred := isDigit
	i := 0
	if len(text) > 1 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			if len(text) < 3 || !isHexDigit(text[2]) {
				return Token{Kind: NumberTok, Text: text[:1], NumberType: Integer}
			}
			typ, pred, i = Hex, isHexDigit, 2
		case 'b', 'B':
			if len(text) < 3 || !isBinDigit(text[2]) {
				return Token{Kind: NumberTok, Text: text[:1], NumberType: Integer}
			}
			typ, pred, i = Binary, isBinDigit, 2
		}
	}
	for {
		if i >= len(text) {
			return Token{Kind: NumberTok, Text: text[:i], NumberType: typ}
		}
		ch := text[i]
		if ch == '.' {
			if typ != Integer {
				return Token{Kind: NumberTok, Text: text[:i], NumberType: typ}
			}
			if i+1 < len(text) && text[i+1] == '.' {
				return Token{Kind: NumberTok, Text: text[:i], NumberType: typ}
			}
			typ = Decimal
			i++
			continue
		}
		if !pred(ch) {
			return Token{Kind: NumberTok, Text: text[:i], NumberType: typ}
		}
		i++
	}
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\v' || b == '\f' }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
func isBinDigit(b byte) bool { return b == '0' || b == '1' }
func isAlpha(b byte) bool    { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isIdentStart(b byte) bool { return isAlpha(b) || b == '_' }
func isIdentPart(b byte) bool  { return isIdentStart(b) || isDigit(b) }

// AssertInvariant is a small wrapper so callers can signal a fatal
// programming-error condition (spec.md §7 "Invariant") from within
// lexer-adjacent code without importing ederrors directly.
func AssertInvariant(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(ederrors.AssertionFailedf(format, args...))
	}
}
