// Package lexer implements a language-parameterised tokenizer: a pure
// function from (language descriptor, source text, position) to a stream
// of tokens, stateful only with respect to the current source stack and
// any in-progress preprocessor directive.
package lexer

// Kind classifies a Token.
type Kind int

const (
	Unknown Kind = iota
	Identifier
	KeywordTok
	NumberTok
	QuotedStringTok
	CommentTok
	SymbolTok
	Whitespace
	EndOfLine
	EndOfFile
	DirectiveTok
	DirectiveArg
)

func (k Kind) String() string {
	switch k {
	case Identifier:
		return "Identifier"
	case KeywordTok:
		return "Keyword"
	case NumberTok:
		return "Number"
	case QuotedStringTok:
		return "QuotedString"
	case CommentTok:
		return "Comment"
	case SymbolTok:
		return "Symbol"
	case Whitespace:
		return "Whitespace"
	case EndOfLine:
		return "EndOfLine"
	case EndOfFile:
		return "EndOfFile"
	case DirectiveTok:
		return "Directive"
	case DirectiveArg:
		return "DirectiveArg"
	default:
		return "Unknown"
	}
}

// NumberType distinguishes the numeric literal sub-kinds.
type NumberType int

const (
	Integer NumberType = iota
	Hex
	Binary
	Decimal
)

// CommentType distinguishes line and block comments.
type CommentType int

const (
	LineComment CommentType = iota
	BlockComment
)

// Location pinpoints a token's start: the source name, a 0-based byte
// offset from the start of that source's original text, and a 0-based
// line/column pair (LSP convention, since Location feeds directly into
// buffer.Event ranges handed to the LSP runtime).
type Location struct {
	File   string
	Index  int
	Line   int
	Column int
}

// Token is a single lexical unit. Only the fields relevant to Kind are
// meaningful; the rest are zero.
type Token struct {
	Kind     Kind
	Text     string
	Location Location

	KeywordCode    int
	NumberType     NumberType
	QuoteChar      byte
	Triple         bool
	Terminated     bool
	CommentType    CommentType
	Symbol         byte
	DirectiveIndex int
}

// End returns the location immediately after this token, used to stamp
// event ranges and to detect line/column deltas.
func (t Token) End() Location {
	loc := t.Location
	for i := 0; i < len(t.Text); i++ {
		if t.Text[i] == '\n' {
			loc.Line++
			loc.Column = 0
		} else {
			loc.Column++
		}
	}
	loc.Index += len(t.Text)
	return loc
}
