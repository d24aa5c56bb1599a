package analysis

import (
	"errors"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
	"go.lsp.dev/protocol"

	"github.com/digitallyserviced/flux-lsp/flux"
)

// ErrInvertedRange is returned when a range's end resolves before its start.
var ErrInvertedRange = errors.New("range end not found after range start")

// PositionToLexer converts a 0-based LSP position to the 1-based coordinates
// used by the tree. Positions are treated as code points; no UTF-16
// conversion is performed.
func PositionToLexer(pos protocol.Position) lexer.Position {
	return lexer.Position{
		Line:   int(pos.Line) + 1,
		Column: int(pos.Character) + 1,
	}
}

// SpanToRange converts a 1-based node span to a 0-based LSP range.
func SpanToRange(span flux.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(max(0, span.Start.Line-1)),   //nolint:gosec // G115: small line numbers
			Character: uint32(max(0, span.Start.Column-1)), //nolint:gosec // G115: small column numbers
		},
		End: protocol.Position{
			Line:      uint32(max(0, span.End.Line-1)),   //nolint:gosec // G115: small line numbers
			Character: uint32(max(0, span.End.Column-1)), //nolint:gosec // G115: small column numbers
		},
	}
}

// NodeLocation builds an LSP location for a node in the given document.
func NodeLocation(uri protocol.DocumentURI, node flux.Node) protocol.Location {
	return protocol.Location{
		URI:   uri,
		Range: SpanToRange(node.Span()),
	}
}

// EndOfText returns the 0-based position just past the last character of
// text.
func EndOfText(text string) protocol.Position {
	line, col := 0, 0
	for _, r := range text {
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}

	return protocol.Position{
		Line:      uint32(line), //nolint:gosec // G115: small line numbers
		Character: uint32(col),  //nolint:gosec // G115: small column numbers
	}
}

// ReplaceRange substitutes the given 0-based range of contents with newText.
// The walk accumulates a 1-based (line, column) index per code point and
// records the byte offset where each endpoint first occurs; the end point is
// inclusive, so the replaced region extends one character past it. When the
// computed end lands before the start the original text is returned with
// ErrInvertedRange so that a misbehaving client cannot corrupt the buffer.
func ReplaceRange(contents string, rng protocol.Range, newText string) (string, error) {
	startLine := int(rng.Start.Line) + 1
	startCol := int(rng.Start.Character) + 1
	endLine := int(rng.End.Line) + 1
	endCol := int(rng.End.Character) + 1

	var start, end int
	line, col := 1, 1
	for i, r := range contents {
		if line == startLine && col == startCol {
			start = i
		}
		if line == endLine && col == endCol {
			end = i + utf8.RuneLen(r)

			break
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	if end < start {
		return contents, ErrInvertedRange
	}

	return contents[:start] + newText + contents[end:], nil
}
