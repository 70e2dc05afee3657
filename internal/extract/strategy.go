package extract

import (
	"strings"

	"github.com/jonathan/resume-viewer/internal/types"
)

// strategy is one way of reading a field from an element. It reports false
// when the element does not supply a usable value.
type strategy func(n *node) (string, bool)

// firstOf applies strategies in order and returns the first value found,
// or "" when none matches.
func firstOf(n *node, strategies ...strategy) string {
	if n == nil {
		return ""
	}
	for _, s := range strategies {
		if v, ok := s(n); ok {
			return v
		}
	}
	return ""
}

// fromAttr reads a non-empty attribute.
func fromAttr(name string) strategy {
	return func(n *node) (string, bool) {
		v, ok := n.attr(name)
		return v, ok && v != ""
	}
}

// fromText reads the element's own trimmed text content.
func fromText() strategy {
	return func(n *node) (string, bool) {
		v := strings.TrimSpace(n.text())
		return v, v != ""
	}
}

// fromChildText reads the trimmed text of the first descendant called name.
func fromChildText(name string) strategy {
	return func(n *node) (string, bool) {
		c := n.first(name)
		if c == nil {
			return "", false
		}
		v := strings.TrimSpace(c.text())
		return v, v != ""
	}
}

// markup returns the trimmed raw inner markup of n as a trusted fragment.
func markup(n *node) types.TrustedHTML {
	if n == nil {
		return ""
	}
	return types.TrustedHTML(strings.TrimSpace(n.inner))
}

// fragment reads a description-labelled inline-HTML element.
func fragment(n *node) types.Fragment {
	return types.Fragment{
		Description: firstOf(n, fromAttr("description")),
		Body:        markup(n),
	}
}
