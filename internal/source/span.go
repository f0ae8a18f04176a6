package source

import "fmt"

// Pos is a location in a source file as emitted by a frontend.
// Positions are ordered by byte offset; Line and Column are 1-based and
// carried along for reporting only.
type Pos struct {
	Offset uint32
	Line   uint32
	Column uint32
}

// Compare returns -1, 0 or +1 depending on whether p is before, at or after q.
func (p Pos) Compare(q Pos) int {
	switch {
	case p.Offset < q.Offset:
		return -1
	case p.Offset > q.Offset:
		return 1
	}
	return 0
}

func (p Pos) Less(q Pos) bool {
	return p.Offset < q.Offset
}

func (p Pos) String() string {
	if p.Line == 0 {
		return fmt.Sprintf("@%d", p.Offset)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open range [Start, End) in a source file.
type Span struct {
	Start Pos
	End   Pos
}

// NewSpan builds a span from two byte offsets with no line information.
func NewSpan(start, end uint32) Span {
	return Span{Start: Pos{Offset: start}, End: Pos{Offset: end}}
}

// Valid reports whether Start <= End.
func (s Span) Valid() bool {
	return s.Start.Compare(s.End) <= 0
}

// Empty reports whether the span is an insertion point.
func (s Span) Empty() bool {
	return s.Start.Offset == s.End.Offset
}

func (s Span) Len() uint32 {
	if !s.Valid() {
		return 0
	}
	return s.End.Offset - s.Start.Offset
}

// Contains reports whether other lies within s (inclusive on both ends).
func (s Span) Contains(other Span) bool {
	return s.Start.Compare(other.Start) <= 0 && other.End.Compare(s.End) <= 0
}

// Cover returns the smallest span enclosing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start.Less(s.Start) {
		s.Start = other.Start
	}
	if s.End.Less(other.End) {
		s.End = other.End
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}
