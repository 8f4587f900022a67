package matlab

import (
	"path/filepath"
	"strings"
)

// record is one raw scanner hit, flat and ordered by start. Nesting is
// reconstructed afterwards from the resolved extents.
type record struct {
	start   int
	end     int
	line    int
	name    string
	returns []string
	args    []string
	doc     string
	builtin bool
}

// scanAll produces the complete position-ordered record list for src.
// The scan resumes after each matched header line, not after the
// resolved extent — subfunctions are found independently and reconciled
// by the nesting pass.
func scanAll(src, path string, opts Options) []record {
	if rec, ok := builtinRecord(src, path, opts.SystemRoots); ok {
		return []record{rec}
	}
	var recs []record
	pos := 0
	for pos < len(src) {
		h, ok := matchHeader(src, pos)
		if !ok {
			break
		}
		end := resolveExtent(src, h, opts.Dialect)
		if end <= h.start || end > len(src) {
			end = len(src)
		}
		recs = append(recs, record{
			start:   h.start,
			end:     end,
			line:    1 + strings.Count(src[:h.start], "\n"),
			name:    h.name,
			returns: splitIdents(h.retRaw),
			args:    splitIdents(h.argRaw),
			doc:     docstringAfter(src, h.lineEnd),
		})
		if h.lineEnd <= pos {
			break // no forward progress, bail out
		}
		pos = h.lineEnd
	}
	return recs
}

// builtinRecord recognizes a doc-only file: the path lies under a
// configured system root and the first meaningful line is an uppercase
// short-name doc header rather than a function header. Such a file
// yields exactly one synthetic record with the 0,0 sentinel extent and
// an unknown (empty) argument list.
func builtinRecord(src, path string, roots []string) (record, bool) {
	if !underSystemRoot(path, roots) {
		return record{}, false
	}
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := docTagRe.FindStringSubmatch(line)
		if m == nil {
			return record{}, false
		}
		return record{
			name:    strings.ToLower(m[1]),
			doc:     strings.TrimSpace(m[2]),
			builtin: true,
		}, true
	}
	return record{}, false
}

// underSystemRoot reports whether path lies under any configured root.
func underSystemRoot(path string, roots []string) bool {
	if path == "" || len(roots) == 0 {
		return false
	}
	path = filepath.Clean(path)
	for _, root := range roots {
		root = filepath.Clean(root)
		if root == "" || root == "." {
			continue
		}
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
