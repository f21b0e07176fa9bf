// Package views renders the server side pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Ramsey-B/poppy/pkg/tracing"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutFile = "layout.html"

// ErrorPage is the page rendered for failed page requests.
const ErrorPage = "error"

// ErrorData is the data the error page expects.
type ErrorData struct {
	Status    int
	Message   string
	RequestID string
}

// Renderer renders pages wrapped in the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// NewRenderer parses every page in the embedded templates.
func NewRenderer() (*Renderer, error) {
	return NewRendererFS(templatesFS, "templates")
}

// NewRendererFS parses every page under dir in fsys. Each page is parsed
// together with dir/layout.html.
func NewRendererFS(fsys fs.FS, dir string) (*Renderer, error) {
	files, err := fs.Glob(fsys, dir+"/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to list templates")
	}

	layoutPath := dir + "/" + layoutFile
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutPath {
			continue
		}

		name := strings.TrimSuffix(file[len(dir)+1:], ".html")
		page, err := template.New(layoutFile).Funcs(funcs).ParseFS(fsys, layoutPath, file)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse template %s", name)
		}
		pages[name] = page
	}

	if _, ok := pages[ErrorPage]; !ok {
		return nil, fmt.Errorf("missing %s template", ErrorPage)
	}
	return &Renderer{pages: pages}, nil
}

// Render executes the named page. Nothing is written when rendering fails.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	_, span := tracing.StartSpan(c.Request().Context(), "Renderer.Render")
	defer span.End()

	page, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s does not exist", name)
	}

	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, layoutFile, data); err != nil {
		return errors.Wrapf(err, "failed to render %s", name)
	}

	_, err := buf.WriteTo(w)
	return err
}

// Has reports whether a page exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

var funcs = template.FuncMap{
	"length": length,
	"join":   join,
}

// length returns the length of a slice, map or string and 0 for anything else.
func length(v any) int {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Chan, reflect.Map, reflect.Slice, reflect.String:
		return rv.Len()
	default:
		return 0
	}
}

func join(values []any, sep string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, sep)
}
