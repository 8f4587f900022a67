package matlab

import (
	"reflect"
	"testing"

	"github.com/dgallion1/mtags/internal/mtag"
)

func TestParse_SingleFunction(t *testing.T) {
	src := "function y = foo(a,b)\n%FOO Computes foo.\ny = a+b;\nend\n"
	tags := Parse(src, "foo.m", Options{})

	if len(tags) != 1 {
		t.Fatalf("expected 1 root tag, got %d", len(tags))
	}
	tag := tags[0]
	if tag.Name != "foo" {
		t.Errorf("expected name %q, got %q", "foo", tag.Name)
	}
	if !reflect.DeepEqual(tag.ReturnNames, []string{"y"}) {
		t.Errorf("expected return names [y], got %v", tag.ReturnNames)
	}
	if !reflect.DeepEqual(tag.ArgNames, []string{"a", "b"}) {
		t.Errorf("expected arg names [a b], got %v", tag.ArgNames)
	}
	if tag.Docstring != "Computes foo." {
		t.Errorf("expected docstring %q, got %q", "Computes foo.", tag.Docstring)
	}
	if tag.Builtin {
		t.Error("expected a user function, got builtin")
	}
	if err := mtag.Validate(tags, len(src)); err != nil {
		t.Errorf("invariant violation: %v", err)
	}
}

func TestParse_BuiltinDocFile(t *testing.T) {
	src := "%BAR Short description\n%   More detail that is not the docstring.\n"
	path := "/opt/matlab/toolbox/bar.m"
	tags := Parse(src, path, Options{SystemRoots: []string{"/opt/matlab"}})

	if len(tags) != 1 {
		t.Fatalf("expected 1 builtin tag, got %d", len(tags))
	}
	tag := tags[0]
	if !tag.Builtin {
		t.Fatal("expected builtin tag")
	}
	if tag.Name != "bar" {
		t.Errorf("expected lowercased name %q, got %q", "bar", tag.Name)
	}
	if tag.Start != 0 || tag.End != 0 {
		t.Errorf("expected sentinel extent 0,0, got %d,%d", tag.Start, tag.End)
	}
	if len(tag.ArgNames) != 0 {
		t.Errorf("expected no arg names for builtin, got %v", tag.ArgNames)
	}
	if tag.Docstring != "Short description" {
		t.Errorf("expected docstring %q, got %q", "Short description", tag.Docstring)
	}
	if len(tag.Children) != 0 {
		t.Errorf("expected no children for builtin, got %d", len(tag.Children))
	}
}

func TestParse_BuiltinRequiresSystemRoot(t *testing.T) {
	src := "%BAR Short description\n"
	tags := Parse(src, "/home/user/bar.m", Options{SystemRoots: []string{"/opt/matlab"}})
	if len(tags) != 0 {
		t.Errorf("expected no tags outside system roots, got %d", len(tags))
	}
}

func TestParse_NestedSubfunction(t *testing.T) {
	src := "function outer(x)\ny = helper(x);\n\tfunction z = helper(a)\n\tz = a * 2;\n\tend\nend\n"
	tags := Parse(src, "outer.m", Options{})

	if len(tags) != 1 {
		t.Fatalf("expected 1 root tag, got %d", len(tags))
	}
	outer := tags[0]
	if outer.Name != "outer" {
		t.Errorf("expected root %q, got %q", "outer", outer.Name)
	}
	if len(outer.Children) != 1 {
		t.Fatalf("expected 1 subfunction, got %d", len(outer.Children))
	}
	inner := outer.Children[0]
	if inner.Name != "helper" {
		t.Errorf("expected child %q, got %q", "helper", inner.Name)
	}
	if inner.Start < outer.Start || inner.End > outer.End {
		t.Errorf("child range [%d,%d) not contained in parent [%d,%d)",
			inner.Start, inner.End, outer.Start, outer.End)
	}
	if err := mtag.Validate(tags, len(src)); err != nil {
		t.Errorf("invariant violation: %v", err)
	}
}

func TestParse_SiblingFunctions(t *testing.T) {
	src := "function a()\ndisp(1);\nend\nfunction b()\ndisp(2);\nend\n"
	tags := Parse(src, "two.m", Options{})

	if len(tags) != 2 {
		t.Fatalf("expected 2 root tags, got %d", len(tags))
	}
	if tags[0].Name != "a" || tags[1].Name != "b" {
		t.Errorf("expected [a b] in source order, got [%s %s]", tags[0].Name, tags[1].Name)
	}
	for _, tag := range tags {
		if len(tag.Children) != 0 {
			t.Errorf("expected no children for %q, got %d", tag.Name, len(tag.Children))
		}
	}
	if tags[0].End > tags[1].Start {
		t.Errorf("sibling extents overlap: %d > %d", tags[0].End, tags[1].Start)
	}
}

func TestParse_UnbalancedFallsBackToEndOfText(t *testing.T) {
	src := "function broken(x)\nif x > 0\ny = 1;\n"
	tags := Parse(src, "broken.m", Options{})

	if len(tags) != 1 {
		t.Fatalf("expected 1 tag despite malformed body, got %d", len(tags))
	}
	if tags[0].End != len(src) {
		t.Errorf("expected fallback end %d, got %d", len(src), tags[0].End)
	}
	if err := mtag.Validate(tags, len(src)); err != nil {
		t.Errorf("invariant violation: %v", err)
	}
}

func TestParse_NoEndDialect(t *testing.T) {
	src := "function a(x)\ndisp(x)\nfunction b(y)\ndisp(y)\n"
	tags := Parse(src, "old.m", Options{Dialect: DialectNoEnd})

	if len(tags) != 2 {
		t.Fatalf("expected 2 sibling tags, got %d", len(tags))
	}
	if tags[0].End != tags[1].Start {
		t.Errorf("expected first extent to stop at second header (%d), got %d",
			tags[1].Start, tags[0].End)
	}
	if tags[1].End != len(src) {
		t.Errorf("expected last extent to reach end of text (%d), got %d", len(src), tags[1].End)
	}
}

func TestParse_Idempotent(t *testing.T) {
	src := "function outer(x)\n\tfunction inner(a)\n\tend\nend\nfunction other()\nend\n"
	first := Parse(src, "f.m", Options{})
	second := Parse(src, "f.m", Options{})
	if !reflect.DeepEqual(first, second) {
		t.Error("expected structurally identical trees from repeated parses")
	}
}

func TestParse_EmptyInput(t *testing.T) {
	tags := Parse("", "empty.m", Options{})
	if len(tags) != 0 {
		t.Errorf("expected no tags for empty input, got %d", len(tags))
	}
}

func TestParse_NoFunctions(t *testing.T) {
	src := "x = 1;\ny = x + 2;\ndisp(y);\n"
	tags := Parse(src, "script.m", Options{})
	if len(tags) != 0 {
		t.Errorf("expected no tags for a script file, got %d", len(tags))
	}
}

func TestParse_LineNumbers(t *testing.T) {
	src := "% leading comment\n\nfunction f()\nend\n"
	tags := Parse(src, "f.m", Options{})
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if tags[0].Line != 3 {
		t.Errorf("expected line 3, got %d", tags[0].Line)
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"", DialectFunctionEnd, false},
		{"end", DialectFunctionEnd, false},
		{"no-end", DialectNoEnd, false},
		{"NoEnd", DialectNoEnd, false},
		{"fortran", DialectFunctionEnd, true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDialect(%q): unexpected error state: %v", tt.in, err)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseDialect(%q): expected %v, got %v", tt.in, got, tt.want)
		}
	}
}
