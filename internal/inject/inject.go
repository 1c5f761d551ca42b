// Package inject performs the final text surgery: writing accepted
// documentation blocks back into the original source without disturbing any
// unrelated byte. Patches are applied in descending span-start order so an
// edit never invalidates the spans of elements not yet processed.
package inject

import (
	"bytes"
	"sort"
	"strings"

	"docgen/internal/types"
)

// Patch pairs an element with its accepted documentation block. Text is the
// full block, newline-separated and unindented; the injector re-indents and
// converts line endings to match the file.
type Patch struct {
	Element types.CodeElement
	Text    string
}

// Apply rewrites src with the given patches. Elements that already carry a
// documentation block are replaced in place when overwrite is set and
// skipped entirely otherwise — enforced here, not upstream, since callers
// may score existing blocks for reporting without meaning to rewrite them.
// With no applicable patches the input is returned unchanged.
func Apply(src []byte, patches []Patch, overwrite bool) []byte {
	applicable := make([]Patch, 0, len(patches))
	for _, p := range patches {
		if p.Text == "" {
			continue
		}
		if p.Element.ExistingDoc != nil && !overwrite {
			continue
		}
		applicable = append(applicable, p)
	}
	if len(applicable) == 0 {
		return src
	}

	// Descending start offset: edits run bottom-up through the file.
	sort.Slice(applicable, func(i, j int) bool {
		return applicable[i].Element.Span.StartByte > applicable[j].Element.Span.StartByte
	})

	eol := detectEOL(src)
	out := src
	for _, p := range applicable {
		if p.Element.ExistingDoc != nil {
			out = replaceBlock(out, p, eol)
		} else {
			out = insertBlock(out, p, eol)
		}
	}
	return out
}

// detectEOL picks the file's line-ending convention.
func detectEOL(src []byte) string {
	if bytes.Contains(src, []byte("\r\n")) {
		return "\r\n"
	}
	return "\n"
}

// replaceBlock swaps the existing documentation block's exact span for the
// new text, preserving the indentation observed at the start of the span.
func replaceBlock(src []byte, p Patch, eol string) []byte {
	span := p.Element.ExistingDoc.Span
	if span.StartByte < 0 || span.EndByte > len(src) || span.StartByte > span.EndByte {
		return src
	}

	indent := indentOfLine(src, span.StartByte)
	lines := strings.Split(p.Text, "\n")
	// The span starts after the line's indentation, so the first line
	// carries none; continuation lines are indented to match. Empty lines
	// stay empty rather than picking up trailing whitespace.
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteString(eol)
			if line != "" {
				sb.WriteString(indent)
			}
		}
		sb.WriteString(line)
	}
	replacement := sb.String()

	var buf bytes.Buffer
	buf.Grow(len(src) + len(replacement))
	buf.Write(src[:span.StartByte])
	buf.WriteString(replacement)
	buf.Write(src[span.EndByte:])
	return buf.Bytes()
}

// insertBlock adds a fresh block immediately after the element's header
// line, indented to the element's body indentation.
func insertBlock(src []byte, p Patch, eol string) []byte {
	offset, atEOF := offsetAfterLine(src, p.Element.DocInsertLine)

	indent := p.Element.BodyIndent
	lines := strings.Split(p.Text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}

	var insertion string
	if atEOF {
		// The header line has no terminator; open a new line first and
		// leave the file unterminated, as it was.
		insertion = eol + strings.Join(lines, eol)
	} else {
		insertion = strings.Join(lines, eol) + eol
	}

	var buf bytes.Buffer
	buf.Grow(len(src) + len(insertion))
	buf.Write(src[:offset])
	buf.WriteString(insertion)
	buf.Write(src[offset:])
	return buf.Bytes()
}

// offsetAfterLine returns the byte offset just past the terminator of the
// given 1-based line. When the line is the last one and unterminated, it
// returns len(src) and atEOF=true.
func offsetAfterLine(src []byte, line int) (int, bool) {
	current := 1
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			if current == line {
				return i + 1, false
			}
			current++
		}
	}
	return len(src), true
}

// indentOfLine returns the leading whitespace of the line containing pos.
func indentOfLine(src []byte, pos int) string {
	start := pos
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}
