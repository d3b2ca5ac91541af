package httpcontroller

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/coldchain-go/coldchain/internal/logger"
)

//go:embed views/*.html
var ViewsFs embed.FS

// TemplateRenderer is a custom HTML template renderer for Echo framework.
type TemplateRenderer struct {
	templates *template.Template
}

// Render renders a template with the given data. Output is buffered so a
// failed execution never writes a partial page.
func (t *TemplateRenderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, data); err != nil {
		GetLogger().WithContext(c.Request().Context()).Error("template execution failed",
			logger.String("template", name),
			logger.Error(err))
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// setupTemplateRenderer parses the embedded views.
func (s *Server) setupTemplateRenderer() {
	tmpl := template.Must(template.New("").Funcs(templateFunctions()).ParseFS(ViewsFs, "views/*.html"))
	s.Echo.Renderer = &TemplateRenderer{templates: tmpl}
}

// templateFunctions returns the functions available in views.
func templateFunctions() template.FuncMap {
	return template.FuncMap{
		"num": formatNumber,
	}
}

// formatNumber prints a float with the fewest digits that round-trip, so
// 3 renders as "3" and 2.75 as "2.75".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
