package matlab

import (
	"strings"
	"testing"
)

func TestSkipBalanced_SimpleBody(t *testing.T) {
	src := "function f()\nif true\ny = 1;\nend\nend\ntrailing = 1;\n"
	end, ok := skipBalanced(src, 0)
	if !ok {
		t.Fatal("expected a balanced skip")
	}
	want := strings.LastIndex(src, "end") + len("end")
	if end != want {
		t.Errorf("expected end %d, got %d", want, end)
	}
}

func TestSkipBalanced_SubscriptEnd(t *testing.T) {
	src := "function y = last(v)\ny = v(end);\nend\n"
	end, ok := skipBalanced(src, 0)
	if !ok {
		t.Fatal("expected a balanced skip")
	}
	if end != strings.LastIndex(src, "end")+len("end") {
		t.Errorf("subscript end miscounted, got %d", end)
	}
}

func TestSkipBalanced_EndInComment(t *testing.T) {
	src := "function f()\n% this is the end of nothing\nx = 1;\nend\n"
	end, ok := skipBalanced(src, 0)
	if !ok {
		t.Fatal("expected a balanced skip")
	}
	if end != strings.LastIndex(src, "end")+len("end") {
		t.Errorf("commented end miscounted, got %d", end)
	}
}

func TestSkipBalanced_EndInString(t *testing.T) {
	src := "function f()\ns = 'the end is near';\nt = \"end\";\nend\n"
	end, ok := skipBalanced(src, 0)
	if !ok {
		t.Fatal("expected a balanced skip")
	}
	if end != strings.LastIndex(src, "end")+len("end") {
		t.Errorf("quoted end miscounted, got %d", end)
	}
}

func TestSkipBalanced_TransposeIsNotString(t *testing.T) {
	// x' is a transpose, not an unterminated string.
	src := "function g(x)\ny = x';\nz = y;\nend\n"
	end, ok := skipBalanced(src, 0)
	if !ok {
		t.Fatal("expected a balanced skip")
	}
	if end != strings.LastIndex(src, "end")+len("end") {
		t.Errorf("transpose confused the skip, got %d", end)
	}
}

func TestSkipBalanced_BlockComment(t *testing.T) {
	src := "function f()\n%{\nend\nfor\n%}\nx = 1;\nend\n"
	end, ok := skipBalanced(src, 0)
	if !ok {
		t.Fatal("expected a balanced skip")
	}
	if end != strings.LastIndex(src, "end")+len("end") {
		t.Errorf("block comment contents miscounted, got %d", end)
	}
}

func TestSkipBalanced_StructFieldEnd(t *testing.T) {
	src := "function f(s)\nx = s.end;\nend\n"
	end, ok := skipBalanced(src, 0)
	if !ok {
		t.Fatal("expected a balanced skip")
	}
	if end != strings.LastIndex(src, "end")+len("end") {
		t.Errorf("field access end miscounted, got %d", end)
	}
}

func TestSkipBalanced_Unbalanced(t *testing.T) {
	src := "function f()\nfor i = 1:10\nx = i;\n"
	if _, ok := skipBalanced(src, 0); ok {
		t.Error("expected failure on unbalanced input")
	}
}

func TestResolveExtent_FallbackOnFailure(t *testing.T) {
	src := "function f()\nwhile true\n"
	h, ok := matchHeader(src, 0)
	if !ok {
		t.Fatal("expected a header match")
	}
	if end := resolveExtent(src, h, DialectFunctionEnd); end != len(src) {
		t.Errorf("expected fallback to end of text %d, got %d", len(src), end)
	}
}

func TestResolveExtent_NoEndDialect(t *testing.T) {
	src := "function a()\nx = 1;\nfunction b()\ny = 2;\n"
	h, ok := matchHeader(src, 0)
	if !ok {
		t.Fatal("expected a header match")
	}
	end := resolveExtent(src, h, DialectNoEnd)
	next := strings.Index(src, "function b")
	if end != next {
		t.Errorf("expected extent to stop at next header %d, got %d", next, end)
	}
}
