package matlab

import "github.com/dgallion1/mtags/internal/mtag"

// nest partitions a start-ordered record list into a forest bounded by
// boundary. While the head record starts before the boundary it becomes
// the next node; the rest of the list is recursively partitioned
// against that node's own end, yielding its subfunctions and the true
// remainder. Containment is strict: a record starting exactly at its
// would-be parent's end is a sibling, not a child.
func nest(recs []record, boundary int) ([]*mtag.FunctionTag, []record) {
	var tags []*mtag.FunctionTag
	for len(recs) > 0 && recs[0].start < boundary {
		cur := recs[0]
		children, rest := nest(recs[1:], cur.end)
		tags = append(tags, cur.toTag(children))
		recs = rest
	}
	return tags, recs
}

func (r record) toTag(children []*mtag.FunctionTag) *mtag.FunctionTag {
	if r.builtin {
		children = nil
	}
	return &mtag.FunctionTag{
		Name:        r.name,
		ReturnNames: r.returns,
		ArgNames:    r.args,
		Docstring:   r.doc,
		Builtin:     r.builtin,
		Start:       r.start,
		End:         r.end,
		Line:        r.line,
		Children:    children,
	}
}
