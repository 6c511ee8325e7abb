// Package source holds decoded Cursive0 source files and the span
// arithmetic every later pipeline stage builds on.
package source

import (
	"bytes"
	"fmt"

	"golang.org/x/text/width"
)

// Pos is a single point in a source file.
type Pos struct {
	File   string
	Offset int // byte offset
	Line   int // 1-based
	Column int // 1-based, width-aware
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a half-open byte range plus its resolved line/column range.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%s:%d:%d-%d", s.Start.File, s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", s.Start.File, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// Between composes the span covering two nested spans, widest first.
func Between(a, b Span) Span {
	start, end := a.Start, b.End
	if b.Start.Offset < start.Offset {
		start = b.Start
	}
	if a.End.Offset > end.Offset {
		end = a.End
	}
	return Span{Start: start, End: end}
}

// File is a decoded Cursive0 source file: its byte buffer plus a
// line-start index used to turn offsets into line/column pairs.
type File struct {
	Name       string
	Bytes      []byte
	lineStarts []int // byte offset of the first byte of each line
}

// NewFile decodes buf into a File, building the line-start index.
func NewFile(name string, buf []byte) *File {
	f := &File{Name: name, Bytes: buf, lineStarts: []int{0}}
	for i, b := range buf {
		if b == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// PosAt resolves a byte offset to a Pos, using East-Asian-width-aware
// column counting so wide runes (e.g. CJK, emoji) advance the column by
// more than one, matching what a terminal/editor would report.
func (f *File) PosAt(offset int) Pos {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Bytes) {
		offset = len(f.Bytes)
	}
	line := f.lineForOffset(offset)
	lineStart := f.lineStarts[line-1]
	col := 1
	for _, r := range string(f.Bytes[lineStart:offset]) {
		col += runeWidth(r)
	}
	return Pos{File: f.Name, Offset: offset, Line: line, Column: col}
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

func (f *File) lineForOffset(offset int) int {
	// binary search over lineStarts for the last start <= offset
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// Span builds the Span covering [start, end) of this file.
func (f *File) Span(start, end int) Span {
	return Span{Start: f.PosAt(start), End: f.PosAt(end)}
}

// Text returns the raw bytes covered by sp, for diagnostics snippets.
func (f *File) Text(sp Span) string {
	return string(f.Bytes[sp.Start.Offset:sp.End.Offset])
}

// Line returns the text of the 1-based line number line, without the
// trailing newline, for caret-style diagnostic rendering; it returns ""
// for a line number out of range.
func (f *File) Line(line int) string {
	if line < 1 || line > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[line-1]
	end := len(f.Bytes)
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	}
	if i := bytes.IndexByte(f.Bytes[start:end], '\n'); i >= 0 {
		end = start + i
	}
	return string(f.Bytes[start:end])
}
