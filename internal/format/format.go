// Package format renders function tags for display. It is stateless and
// consumes only the tag accessors; nothing here feeds back into the
// scanner.
package format

import (
	"strings"

	"github.com/dgallion1/mtags/internal/mtag"
)

// Prototype renders a one-line prototype for a tag. Builtins carry a
// marker and an "arguments unavailable" argument list, since their real
// signature is unknown rather than empty.
func Prototype(t *mtag.FunctionTag) string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	if t.Builtin {
		sb.WriteString(" [builtin]")
	}
	sb.WriteString(" (")
	if t.Builtin {
		sb.WriteString("arguments unavailable")
	} else {
		sb.WriteString(strings.Join(t.ArgNames, ", "))
	}
	sb.WriteString(")")
	return sb.String()
}

// Outline renders an indented textual outline of a tag forest, two
// spaces per nesting level.
func Outline(tags []*mtag.FunctionTag) string {
	var sb strings.Builder
	mtag.Walk(tags, func(t *mtag.FunctionTag, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(Prototype(t))
		sb.WriteString("\n")
	})
	return sb.String()
}
