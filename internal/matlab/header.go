package matlab

import (
	"regexp"
	"strings"
	"unicode"
)

// headerRe matches one function header line: optional indentation, the
// `function` keyword, an optional bracketed-or-bare return clause, the
// function name, and the rest of the line (the argument clause).
var headerRe = regexp.MustCompile(
	`(?m)^[ \t]*function[ \t]+(?:(\[[^\]\n]*\]|[A-Za-z]\w*)[ \t]*=[ \t]*)?([A-Za-z]\w*)[ \t]*([^\n]*)`)

var (
	// %NAME description — the uppercase-tag doc comment convention.
	docTagRe = regexp.MustCompile(`^[ \t]*%+[ \t]*([A-Z][A-Z0-9_]*)\b[ \t]*(.*)`)

	// An indented generic comment directly under the header.
	docCommentRe = regexp.MustCompile(`^[ \t]+%+[ \t]*(.*)`)
)

// headerMatch is one recognized header with its logical-line extent.
type headerMatch struct {
	start   int // offset of the header line's first char
	lineEnd int // offset just past the logical line (continuations folded)
	retRaw  string
	name    string
	argRaw  string
}

// matchHeader finds the next function header at or after from. The
// argument clause is everything between the name and the end of the
// logical line; `...` continuations are folded in and comment tails
// stripped.
func matchHeader(src string, from int) (headerMatch, bool) {
	if from < 0 || from > len(src) {
		return headerMatch{}, false
	}
	loc := headerRe.FindStringSubmatchIndex(src[from:])
	if loc == nil {
		return headerMatch{}, false
	}
	h := headerMatch{
		start:   from + loc[0],
		lineEnd: from + loc[1],
		name:    src[from+loc[4] : from+loc[5]],
	}
	if loc[2] >= 0 {
		h.retRaw = src[from+loc[2] : from+loc[3]]
	}
	if loc[6] >= 0 {
		h.argRaw = src[from+loc[6] : from+loc[7]]
	}
	h.foldContinuations(src)
	h.argRaw = argClause(h.argRaw)
	return h, true
}

// foldContinuations extends the logical line across `...` continuations.
// Everything after `...` on a physical line is a comment in MATLAB, so
// the tail is dropped; a `%` before the `...` ends the logical line.
func (h *headerMatch) foldContinuations(src string) {
	for {
		pc := strings.IndexByte(h.argRaw, '%')
		ct := strings.Index(h.argRaw, "...")
		if pc >= 0 && (ct < 0 || pc < ct) {
			h.argRaw = h.argRaw[:pc]
			return
		}
		if ct < 0 {
			return
		}
		head := h.argRaw[:ct]
		if h.lineEnd >= len(src) {
			h.argRaw = head
			return
		}
		next := h.lineEnd + 1 // past the newline
		rest := src[next:]
		lineLen := strings.IndexByte(rest, '\n')
		if lineLen < 0 {
			lineLen = len(rest)
		}
		h.argRaw = head + " " + strings.TrimSpace(rest[:lineLen])
		h.lineEnd = next + lineLen
	}
}

// argClause trims the raw clause down to the parenthesized argument
// list, or to the comment-free remainder when no parens are present.
func argClause(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '%'); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	if strings.HasPrefix(raw, "(") {
		depth := 0
		for j := 0; j < len(raw); j++ {
			switch raw[j] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return raw[:j+1]
				}
			}
		}
	}
	return raw
}

// splitIdents tokenizes a return or argument clause into identifiers,
// splitting on brackets, parens, commas, equals, dots, semicolons, the
// argument-ignore tilde, and whitespace. Empty tokens are discarded.
func splitIdents(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case '[', ']', '(', ')', '{', '}', ',', '=', '.', ';', '~':
			return true
		}
		return unicode.IsSpace(r)
	})
}

// docstringAfter extracts a one-line description from the lines below a
// header using three ordered heuristics; the first match wins:
//
//  1. an uppercase-tag comment (%NAME description) on the next line;
//  2. an indented generic % comment on the next line;
//  3. the first non-blank line further down, if it is a comment.
func docstringAfter(src string, lineEnd int) string {
	if lineEnd >= len(src) {
		return ""
	}
	rest := src[lineEnd:]
	rest = strings.TrimPrefix(rest, "\n")
	lines := strings.Split(rest, "\n")
	if len(lines) == 0 {
		return ""
	}
	if m := docTagRe.FindStringSubmatch(lines[0]); m != nil {
		return strings.TrimSpace(m[2])
	}
	if m := docCommentRe.FindStringSubmatch(lines[0]); m != nil {
		return strings.TrimSpace(m[1])
	}
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "%") {
			return strings.TrimSpace(strings.TrimLeft(t, "% \t"))
		}
		return ""
	}
	return ""
}
