package view

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Render writes v as a full HTML page.
func Render(w io.Writer, v View) error {
	return pages.ExecuteTemplate(w, "page", v)
}
