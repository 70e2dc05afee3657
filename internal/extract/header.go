package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/jonathan/resume-viewer/internal/types"
)

var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*://`)

// EnsureScheme prefixes u with "http://" unless it already names a scheme.
// Empty input stays empty.
func EnsureScheme(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || schemePattern.MatchString(u) {
		return u
	}
	return "http://" + u
}

// FormatHeader builds the header fragment shared by companies and
// assignments. With a URL the name (or the URL itself when there is no
// name) becomes a link opening in a new browsing context; a department is
// appended as ", department". Name and department are author content and
// are passed through as markup.
func FormatHeader(url, name, department string) types.TrustedHTML {
	var sb strings.Builder

	url = strings.TrimSpace(url)
	if url != "" {
		label := name
		if label == "" {
			label = html.EscapeString(url)
		}
		sb.WriteString(`<a href="`)
		sb.WriteString(html.EscapeString(EnsureScheme(url)))
		sb.WriteString(`" target="_blank">`)
		sb.WriteString(label)
		sb.WriteString(`</a>`)
	} else {
		sb.WriteString(name)
	}

	if department != "" {
		sb.WriteString(", ")
		sb.WriteString(department)
	}

	return types.TrustedHTML(sb.String())
}

// isAbsoluteHTTP reports whether v starts with an http or https scheme.
func isAbsoluteHTTP(v string) bool {
	lower := strings.ToLower(strings.TrimSpace(v))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
