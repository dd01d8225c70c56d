package token

import (
	"fmt"
	"io"
)

// NameEOF is the type name of the end-of-input marker.
const NameEOF = "$end"

// SourcePos is a position in a source text. Idx counts characters (runes) from the beginning of the text,
// and Line and Col start at 1.
type SourcePos struct {
	Idx  int
	Line int
	Col  int
}

func (p SourcePos) String() string {
	return fmt.Sprintf("%v:%v", p.Line, p.Col)
}

type Token struct {
	Type  string
	Value string
	Pos   SourcePos
}

func New(typ string, value string, pos SourcePos) *Token {
	return &Token{
		Type:  typ,
		Value: value,
		Pos:   pos,
	}
}

func (t *Token) String() string {
	return fmt.Sprintf("%v(%q)", t.Type, t.Value)
}

// Stream is a lazy and non-restartable sequence of tokens. Next returns io.EOF when the stream is exhausted.
type Stream interface {
	Next() (*Token, error)
}

type sliceStream struct {
	toks []*Token
	next int
}

// NewSliceStream returns a stream yielding the given tokens in order.
func NewSliceStream(toks ...*Token) Stream {
	return &sliceStream{
		toks: toks,
	}
}

func (s *sliceStream) Next() (*Token, error) {
	if s.next >= len(s.toks) {
		return nil, io.EOF
	}
	tok := s.toks[s.next]
	s.next++
	return tok, nil
}
