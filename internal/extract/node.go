package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// entityDecl matches an internal general entity declaration in a DOCTYPE,
// e.g. <!ENTITY co "Acme">. Parameter and external entities are not read.
var entityDecl = regexp.MustCompile(`<!ENTITY\s+([A-Za-z_][\w.:-]*)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

// node is a minimal element tree. Unlike struct-tag unmarshalling it keeps
// mixed content in order and the raw inner markup of every element, which
// the inline-HTML fields need verbatim.
type node struct {
	name     string
	attrs    []xml.Attr
	parent   *node
	index    int // position among the parent's element children
	children []*node
	parts    []part
	inner    string
}

// part is one piece of mixed content: either text or a child element.
type part struct {
	text string
	elem *node
}

// parseTree decodes raw into a tree. Any decoder error, a missing root,
// unclosed elements, or non-whitespace content after the root is reported
// as *MalformedDocumentError.
func parseTree(raw string) (*node, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))
	dec.Strict = true

	var (
		root     *node
		stack    []*node
		starts   []int64
		entities *strings.Replacer
	)

	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("invalid XML", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, &MalformedDocumentError{Message: fmt.Sprintf("unexpected element <%s> after root element", t.Name.Local)}
			}
			n := &node{name: t.Name.Local, attrs: t.Attr}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				n.parent = parent
				n.index = len(parent.children)
				parent.children = append(parent.children, n)
				parent.parts = append(parent.parts, part{elem: n})
			} else {
				root = n
			}
			stack = append(stack, n)
			starts = append(starts, dec.InputOffset())

		case xml.EndElement:
			n := stack[len(stack)-1]
			start := starts[len(starts)-1]
			if before > start {
				n.inner = raw[start:before]
				if entities != nil {
					n.inner = entities.Replace(n.inner)
				}
			}
			stack = stack[:len(stack)-1]
			starts = starts[:len(starts)-1]

		case xml.Directive:
			if decls := declaredEntities(string(t)); len(decls) > 0 {
				dec.Entity = decls
				pairs := make([]string, 0, 2*len(decls))
				for name, value := range decls {
					pairs = append(pairs, "&"+name+";", value)
				}
				entities = strings.NewReplacer(pairs...)
			}

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, &MalformedDocumentError{Message: "text content outside root element"}
				}
				continue
			}
			cur := stack[len(stack)-1]
			cur.parts = append(cur.parts, part{text: string(t)})
		}
	}

	if root == nil {
		return nil, &MalformedDocumentError{Message: "document has no root element"}
	}
	if len(stack) > 0 {
		return nil, &MalformedDocumentError{Message: fmt.Sprintf("element <%s> is not closed", stack[len(stack)-1].name)}
	}
	return root, nil
}

// declaredEntities reads the internal general entities of a DOCTYPE directive.
func declaredEntities(directive string) map[string]string {
	if !strings.HasPrefix(strings.TrimSpace(directive), "DOCTYPE") {
		return nil
	}
	matches := entityDecl.FindAllStringSubmatch(directive, -1)
	if len(matches) == 0 {
		return nil
	}
	decls := make(map[string]string, len(matches))
	for _, m := range matches {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		if _, ok := decls[m[1]]; !ok {
			decls[m[1]] = value
		}
	}
	return decls
}

func malformed(message string, cause error) *MalformedDocumentError {
	e := &MalformedDocumentError{Message: message, Cause: cause}
	var syntaxErr *xml.SyntaxError
	if errors.As(cause, &syntaxErr) {
		e.Line = syntaxErr.Line
	}
	return e
}

// attr returns the named attribute, matched on its local name.
func (n *node) attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// text is the concatenated character data of n and all its descendants,
// like the DOM's textContent.
func (n *node) text() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *node) writeText(sb *strings.Builder) {
	for _, p := range n.parts {
		if p.elem != nil {
			p.elem.writeText(sb)
			continue
		}
		sb.WriteString(p.text)
	}
}

// childrenNamed returns the direct element children called name.
func (n *node) childrenNamed(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// descendants returns every element below n called name, in document order.
func (n *node) descendants(name string) []*node {
	var out []*node
	n.walk(func(d *node) {
		if d != n && d.name == name {
			out = append(out, d)
		}
	})
	return out
}

// first returns the first descendant called name, or nil.
func (n *node) first(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
		if d := c.first(name); d != nil {
			return d
		}
	}
	return nil
}

// walk visits n and its descendants in document order.
func (n *node) walk(fn func(*node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

// hasAncestor reports whether an element called name sits between n and stop
// (exclusive on both ends).
func (n *node) hasAncestor(name string, stop *node) bool {
	for p := n.parent; p != nil && p != stop; p = p.parent {
		if p.name == name {
			return true
		}
	}
	return false
}

// path identifies n structurally, e.g. "/resume[0]/skill-list[0]/skill[2]".
func (n *node) path() string {
	if n.parent == nil {
		return fmt.Sprintf("/%s[0]", n.name)
	}
	return fmt.Sprintf("%s/%s[%d]", n.parent.path(), n.name, n.index)
}

// selectChildren mirrors the CSS selector "container > child": direct
// children called child of every element called container at or below root.
func selectChildren(root *node, container, child string) []*node {
	var out []*node
	root.walk(func(c *node) {
		if c.name == container {
			out = append(out, c.childrenNamed(child)...)
		}
	})
	return out
}
