package buffer

import "github.com/eddy-editor/eddy/elog"

// ApplySemanticTokens walks a decoded LSP semantic-tokens delta array
// ([deltaLine, deltaChar, length, tokenType, modifiers] quintuples,
// each relative to the previous entry) against the buffer's current
// display-token index, in order, and stamps each matching entry's
// StyleIndex via styleFor.
//
// The walk assumes the server's response was computed against the text
// this buffer had when it requested tokens: if a decoded token's
// position and length don't land exactly on a display token the index
// already has -- the buffer was edited since the request went out --
// the whole response is out of sync and is discarded rather than
// partially applied, matching the original's abort-on-mismatch
// behaviour rather than risk colouring the wrong span.
func (b *Buffer) ApplySemanticTokens(data []uint32, styleFor func(typeIndex int) (int, bool)) {
	if len(data)%5 != 0 {
		elog.Warnw("semantic tokens: malformed data length", "len", len(data))
		return
	}

	line, char := 0, 0
	pending := make([]DisplayToken, 0, len(data)/5)

	for i := 0; i+4 < len(data); i += 5 {
		deltaLine := int(data[i])
		deltaChar := int(data[i+1])
		length := int(data[i+2])
		typeIndex := int(data[i+3])

		if deltaLine > 0 {
			line += deltaLine
			char = deltaChar
		} else {
			char += deltaChar
		}

		if line >= len(b.lines) {
			elog.Warnw("semantic tokens: out of sync, line beyond buffer", "line", line, "lines", len(b.lines))
			return
		}
		index := b.lines[line].StartOffset + char

		tok, ok := b.findToken(line, index, length)
		if !ok {
			elog.Warnw("semantic tokens: out of sync, no matching display token", "line", line, "index", index, "length", length)
			return
		}

		styleIndex, ok := styleFor(typeIndex)
		if !ok {
			styleIndex = NoStyle
		}
		tok.StyleIndex = styleIndex
		pending = append(pending, tok)
	}

	for _, tok := range pending {
		b.setTokenStyle(tok)
	}
}

// findToken locates the display token on the given line starting
// exactly at index with exactly length bytes.
func (b *Buffer) findToken(line, index, length int) (DisplayToken, bool) {
	l := b.lines[line]
	for i := l.FirstToken; i < l.FirstToken+l.NumTokens && i < len(b.tokens); i++ {
		tok := b.tokens[i]
		if tok.Index == index && tok.Length == length {
			return tok, true
		}
	}
	return DisplayToken{}, false
}

func (b *Buffer) setTokenStyle(match DisplayToken) {
	for i := range b.tokens {
		if b.tokens[i].Index == match.Index && b.tokens[i].Length == match.Length {
			b.tokens[i].StyleIndex = match.StyleIndex
			return
		}
	}
}
