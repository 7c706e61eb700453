package document

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Tree is the root of a parsed upload.
type Tree struct {
	Title string  // From metadata or filename
	Nodes []*Node // Top-level sections
}

// Node is a heading with its text and nested subsections.
type Node struct {
	Title    string
	Text     string
	Page     int // Source page or line, 0 if N/A
	Children []*Node
}

// Passage is a node's text together with the headings above it.
type Passage struct {
	Breadcrumb []string
	Text       string
	Page       int
}

// outline builds a Tree from a flat stream of headings and paragraphs,
// nesting each heading under the nearest shallower one.
type outline struct {
	root  *Node
	stack []outlineEntry
	buf   strings.Builder
}

type outlineEntry struct {
	node  *Node
	level int
}

func newOutline(title string) *outline {
	root := &Node{Title: title}
	return &outline{root: root, stack: []outlineEntry{{node: root, level: 0}}}
}

func (o *outline) heading(level int, title string) {
	o.flush()
	n := &Node{Title: title}
	for len(o.stack) > 1 && o.stack[len(o.stack)-1].level >= level {
		o.stack = o.stack[:len(o.stack)-1]
	}
	parent := o.stack[len(o.stack)-1].node
	parent.Children = append(parent.Children, n)
	o.stack = append(o.stack, outlineEntry{node: n, level: level})
}

func (o *outline) paragraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if o.buf.Len() > 0 {
		o.buf.WriteString("\n\n")
	}
	o.buf.WriteString(text)
}

func (o *outline) flush() {
	t := strings.TrimSpace(o.buf.String())
	o.buf.Reset()
	if t == "" {
		return
	}
	top := o.stack[len(o.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

func (o *outline) tree() *Tree {
	o.flush()
	t := &Tree{Title: o.root.Title, Nodes: o.root.Children}
	if len(t.Nodes) == 0 && o.root.Text != "" {
		t.Nodes = []*Node{{Text: o.root.Text}}
	} else if o.root.Text != "" {
		// Text before the first heading.
		t.Nodes = append([]*Node{{Text: o.root.Text}}, t.Nodes...)
	}
	return t
}

// Passages walks the tree depth first and returns every node that has text.
func Passages(t *Tree) []Passage {
	var out []Passage
	var walk func(n *Node, crumbs []string)
	walk = func(n *Node, crumbs []string) {
		bc := append([]string(nil), crumbs...)
		if n.Title != "" {
			bc = append(bc, n.Title)
		}
		if strings.TrimSpace(n.Text) != "" {
			out = append(out, Passage{Breadcrumb: bc, Text: n.Text, Page: n.Page})
		}
		for _, c := range n.Children {
			walk(c, bc)
		}
	}
	for _, n := range t.Nodes {
		walk(n, nil)
	}
	return out
}

// Flatten joins all passage text into one string, separated by blank lines.
func Flatten(t *Tree) string {
	passages := Passages(t)
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// normalize folds compatibility characters (ligatures, full-width forms)
// that PDF and Word exports tend to produce.
func normalize(t *Tree) *Tree {
	t.Title = norm.NFKC.String(t.Title)
	var walk func(n *Node)
	walk = func(n *Node) {
		n.Title = norm.NFKC.String(n.Title)
		n.Text = norm.NFKC.String(n.Text)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range t.Nodes {
		walk(n)
	}
	return t
}
