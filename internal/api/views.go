package api

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/phrazzld/task-tracker/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	pageIndex   = "index"
	pageCreate  = "create"
	pageEdit    = "edit"
	pageDetails = "details"
	pageDelete  = "delete"
	pageError   = "error"
)

// pageFiles lists the templates each page is built from, besides the layout.
var pageFiles = map[string][]string{
	pageIndex:   {"index.html"},
	pageCreate:  {"create.html", "form.html"},
	pageEdit:    {"edit.html", "form.html"},
	pageDetails: {"details.html"},
	pageDelete:  {"delete.html"},
	pageError:   {"error.html"},
}

var templateFuncs = template.FuncMap{
	"errorsFor": func(errs domain.ValidationErrors, field string) []string {
		return errs.For(field)
	},
}

// views holds the parsed page templates.
type views struct {
	pages map[string]*template.Template
}

// newViews parses every page template. It fails if any template is malformed.
func newViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageFiles))}
	for name, files := range pageFiles {
		patterns := make([]string, 0, len(files)+1)
		patterns = append(patterns, "templates/layout.html")
		for _, f := range files {
			patterns = append(patterns, "templates/"+f)
		}

		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, patterns...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s page: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// render executes the named page into w.
func (v *views) render(w io.Writer, page string, data any) error {
	t, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// View models.

type listPage struct {
	Title string
	Tasks []*domain.Task
}

type formPage struct {
	Title  string
	Form   taskForm
	Errors domain.ValidationErrors
}

type taskPage struct {
	Title string
	Task  *domain.Task
}

type errorPage struct {
	Title   string
	Message string
	TraceID string
}
