// Package markup turns HTML fragments into the text a browser would show
// for them, one block per line.
package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms start a new line when opened or closed.
var blockAtoms = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Caption: true, atom.Dd: true, atom.Div: true, atom.Dl: true,
	atom.Dt: true, atom.Footer: true, atom.Form: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true, atom.Ol: true,
	atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Tbody: true, atom.Thead: true, atom.Tfoot: true, atom.Tr: true, atom.Ul: true,
}

// cell separators inside a row
var cellAtoms = map[atom.Atom]bool{atom.Td: true, atom.Th: true}

// skipped subtrees
var hiddenAtoms = map[atom.Atom]bool{atom.Script: true, atom.Style: true, atom.Template: true}

// Text returns the visible text of an HTML fragment. Block elements and <br>
// produce line breaks, table cells are separated by a space, runs of
// whitespace collapse and empty lines are dropped.
func Text(fragment string) string {
	return strings.Join(Lines(fragment), "\n")
}

// Lines returns the non-empty visible text lines of an HTML fragment.
func Lines(fragment string) []string {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var (
		lines   []string
		current strings.Builder
		hidden  int
	)

	flush := func() {
		line := strings.Join(strings.Fields(current.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF, or a reader error which a strings.Reader never returns
			flush()
			return lines
		case html.TextToken:
			if hidden == 0 {
				current.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if hiddenAtoms[a] {
				if tt == html.StartTagToken {
					hidden++
				} else if tt == html.EndTagToken && hidden > 0 {
					hidden--
				}
				continue
			}
			if hidden > 0 {
				continue
			}
			switch {
			case blockAtoms[a]:
				flush()
			case cellAtoms[a]:
				current.WriteByte(' ')
			}
		}
	}
}
