package extract

import (
	"strings"

	"github.com/google/uuid"
)

// idNamespace scopes generated identifiers to this project.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/jonathan/resume-viewer/ids"))

// fallbackID derives an identifier for an element that has no natural one.
// It depends only on the element's position and content, so re-parsing the
// same document yields the same identifiers.
func fallbackID(kind string, n *node) string {
	var sb strings.Builder
	sb.WriteString(kind)
	sb.WriteByte(0)
	sb.WriteString(n.path())
	for _, a := range n.attrs {
		sb.WriteByte(0)
		sb.WriteString(a.Name.Local)
		sb.WriteByte('=')
		sb.WriteString(a.Value)
	}
	sb.WriteByte(0)
	sb.WriteString(n.inner)

	sum := uuid.NewSHA1(idNamespace, []byte(sb.String()))
	return kind + "-" + strings.ReplaceAll(sum.String(), "-", "")[:12]
}

// generatedID wraps fallbackID so it can terminate a firstOf chain.
func generatedID(kind string) strategy {
	return func(n *node) (string, bool) {
		return fallbackID(kind, n), true
	}
}
