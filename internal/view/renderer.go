package view

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/jonathan/resume-viewer/internal/types"
)

//go:embed templates/*.tmpl templates/style.css
var templateFiles embed.FS

// Renderer turns a ResumeDocument into an HTML page. Trusted fragments are
// inserted as raw markup; every plain string is escaped.
type Renderer struct {
	tmpl       *template.Template
	stylesheet template.CSS
}

// page is the data handed to the templates.
type page struct {
	Doc        *types.ResumeDocument
	State      *ToggleState
	Stylesheet template.CSS
	Message    string
}

// Open reports whether a section is expanded in this render.
func (p page) Open(id ToggleID) bool {
	return p.State.Expanded(id)
}

var funcs = template.FuncMap{
	// trusted marks author-controlled markup as safe. Only TrustedHTML
	// values reach it, never plain strings.
	"trusted": func(h types.TrustedHTML) template.HTML {
		return template.HTML(h) //nolint:gosec // author-controlled document content
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"pair": func(a, b any) []any {
		return []any{a, b}
	},
	"inc":              func(i int) int { return i + 1 },
	"skillToggle":      SkillDetailsToggle,
	"assignmentToggle": AssignmentDetailsToggle,
	"detailToggle":     AssignmentDetailToggle,
	"moreToggle":       func() ToggleID { return MoreHistoryToggle },
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("views").Funcs(funcs).ParseFS(templateFiles, "templates/*.tmpl")
	if err != nil {
		return nil, &RenderError{Message: "failed to parse templates", Cause: err}
	}

	css, err := templateFiles.ReadFile("templates/style.css")
	if err != nil {
		return nil, &RenderError{Message: "failed to read stylesheet", Cause: err}
	}

	return &Renderer{
		tmpl:       tmpl,
		stylesheet: template.CSS(css), //nolint:gosec // embedded at build time
	}, nil
}

// Render writes the résumé page. A nil state renders every section collapsed.
func (r *Renderer) Render(w io.Writer, doc *types.ResumeDocument, state *ToggleState) error {
	if doc == nil {
		return &RenderError{Message: "no document to render"}
	}
	return r.execute(w, "resume", page{Doc: doc, State: state, Stylesheet: r.stylesheet})
}

// RenderString renders the résumé page into a string.
func (r *Renderer) RenderString(doc *types.ResumeDocument, state *ToggleState) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, doc, state); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderError writes the visible error page shown when loading or parsing
// failed.
func (r *Renderer) RenderError(w io.Writer, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return r.execute(w, "error", page{Message: msg, Stylesheet: r.stylesheet})
}

// RenderLoading writes the placeholder shown before the first load
// completes.
func (r *Renderer) RenderLoading(w io.Writer) error {
	return r.execute(w, "loading", page{Stylesheet: r.stylesheet})
}

// RenderSnapshot renders whichever page matches the session state.
func (r *Renderer) RenderSnapshot(w io.Writer, snap Snapshot, state *ToggleState) error {
	switch snap.Status {
	case StatusReady:
		return r.Render(w, snap.Document, state)
	case StatusFailed:
		return r.RenderError(w, snap.Err)
	default:
		return r.RenderLoading(w)
	}
}

func (r *Renderer) execute(w io.Writer, name string, data page) error {
	// Render into a buffer so a template failure never leaves half a page.
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return &RenderError{Message: "failed to execute template " + name, Cause: err}
	}
	if _, err := buf.WriteTo(w); err != nil {
		return &RenderError{Message: "failed to write output", Cause: err}
	}
	return nil
}
