package matlab

import "strings"

// blockKeywords open a block that a bare `end` closes. Only counted at
// group level zero; `end` inside parens or brackets is a subscript.
var blockKeywords = map[string]bool{
	"if":       true,
	"for":      true,
	"parfor":   true,
	"while":    true,
	"switch":   true,
	"try":      true,
	"function": true,
}

// resolveExtent computes the end offset of the function whose header is
// h. In the end-terminated dialect a balanced block skip runs from the
// header; any structural failure falls back to end of text so the scan
// always makes forward progress. In the no-end dialect the definition
// runs until the next header or end of text.
func resolveExtent(src string, h headerMatch, d Dialect) int {
	if d == DialectNoEnd {
		if next, ok := matchHeader(src, h.lineEnd); ok {
			return next.start
		}
		return len(src)
	}
	end, ok := skipBalanced(src, h.start)
	if !ok || end <= h.start {
		return len(src)
	}
	return end
}

// skipBalanced scans forward from start counting block keywords against
// `end` until the opening `function` is closed, returning the offset
// just past its terminating `end`. Comments, block comments, quoted
// strings and subscript `end` are skipped. Returns ok=false on
// unbalanced input.
func skipBalanced(src string, start int) (int, bool) {
	depth := 0
	group := 0 // paren/bracket/brace nesting
	var prev byte
	n := len(src)
	for i := start; i < n; {
		c := src[i]
		switch {
		case c == '%':
			if isBlockCommentOpen(src, i) {
				i = skipBlockComment(src, i)
			} else {
				for i < n && src[i] != '\n' {
					i++
				}
			}
			prev = '\n'
			continue
		case c == '"' || (c == '\'' && !isTranspose(prev)):
			i = skipQuoted(src, i)
			prev = c
			continue
		case isIdentStart(c):
			j := i
			for j < n && isIdentChar(src[j]) {
				j++
			}
			word := src[i:j]
			if group == 0 && prev != '.' {
				switch {
				case word == "end":
					depth--
					if depth == 0 {
						return j, true
					}
					if depth < 0 {
						return 0, false
					}
				case blockKeywords[word]:
					depth++
				}
			}
			prev = src[j-1]
			i = j
			continue
		case c == '(' || c == '[' || c == '{':
			group++
		case c == ')' || c == ']' || c == '}':
			if group > 0 {
				group--
			}
		}
		prev = c
		i++
	}
	return 0, false
}

// isTranspose reports whether a quote following prev is the transpose
// operator rather than a string delimiter.
func isTranspose(prev byte) bool {
	return isIdentChar(prev) || prev == ')' || prev == ']' || prev == '}' || prev == '\'' || prev == '.'
}

func skipQuoted(src string, i int) int {
	q := src[i]
	n := len(src)
	i++
	for i < n {
		switch src[i] {
		case q:
			if i+1 < n && src[i+1] == q {
				i += 2 // doubled quote inside the string
				continue
			}
			return i + 1
		case '\n':
			return i // unterminated string, resync at the newline
		}
		i++
	}
	return n
}

// isBlockCommentOpen reports whether i begins a %{ line, which must be
// the only content on its line.
func isBlockCommentOpen(src string, i int) bool {
	if i+1 >= len(src) || src[i+1] != '{' {
		return false
	}
	rest := src[i+2:]
	if j := strings.IndexByte(rest, '\n'); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest) == ""
}

func skipBlockComment(src string, i int) int {
	n := len(src)
	for i < n {
		lineEnd := strings.IndexByte(src[i:], '\n')
		if lineEnd < 0 {
			return n
		}
		line := src[i : i+lineEnd]
		if strings.TrimSpace(line) == "%}" {
			return i + lineEnd
		}
		i += lineEnd + 1
	}
	return n
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
