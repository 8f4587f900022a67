// Package source extracts MATLAB source units from files. A plain .m
// file is one unit; Markdown docs contribute one unit per ```matlab
// fenced block, and publish-style HTML pages one unit per code <pre>
// block. Each unit is outlined independently.
package source

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// Unit is one scannable piece of MATLAB source.
type Unit struct {
	Name string // display name: filename, or filename#n for embedded blocks
	Path string // originating file path, used for the system-root check
	Text string
	Line int // 1-based line of the unit's first char in the file, 0 if unknown
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".m":        true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// UnitsForFile extracts the MATLAB source units contained in a file.
// A file with a supported extension but no MATLAB content yields an
// empty slice, not an error.
func UnitsForFile(path string, data []byte) ([]Unit, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m":
		return []Unit{{Name: filepath.Base(path), Path: path, Text: string(data), Line: 1}}, nil
	case ".md", ".markdown":
		return markdownUnits(path, data), nil
	case ".html", ".htm":
		return htmlUnits(path, data)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
	}
}

// matlabInfo reports whether a fence info string names MATLAB.
func matlabInfo(info string) bool {
	lang, _, _ := strings.Cut(strings.TrimSpace(strings.ToLower(info)), " ")
	return lang == "matlab" || lang == "octave"
}

// markdownUnits walks the goldmark AST collecting matlab fenced blocks.
func markdownUnits(path string, data []byte) []Unit {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(data))

	var units []Unit
	base := filepath.Base(path)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		var info string
		if fc.Info != nil {
			info = string(fc.Info.Value(data))
		}
		if !matlabInfo(info) {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		lines := fc.Lines()
		line := 0
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if i == 0 {
				line = 1 + bytes.Count(data[:seg.Start], []byte("\n"))
			}
			buf.Write(seg.Value(data))
		}
		units = append(units, Unit{
			Name: fmt.Sprintf("%s#%d", base, len(units)+1),
			Path: path,
			Text: buf.String(),
			Line: line,
		})
		return ast.WalkContinue, nil
	})
	return units
}

// htmlUnits collects code <pre> blocks from an HTML page. MATLAB's
// publish output marks them with class="codeinput"; as a fallback, any
// <pre> whose text contains a function header is taken.
func htmlUnits(path string, data []byte) ([]Unit, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var units []Unit
	base := filepath.Base(path)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "pre" {
			code := textContent(n)
			if isCodeInput(n) || strings.Contains(code, "function ") {
				units = append(units, Unit{
					Name: fmt.Sprintf("%s#%d", base, len(units)+1),
					Path: path,
					Text: code,
				})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return units, nil
}

func isCodeInput(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" && strings.Contains(attr.Val, "codeinput") {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}
