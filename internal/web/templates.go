package web

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/portfolio-builder/portfolio-backend/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"linkRel": func() string { return render.LinkRel },
	"field":   projectFieldName,
	"add":     func(a, b int) int { return a + b },
}

// projectFieldName is the form key of one project input, e.g. projects.0.title.
func projectFieldName(index int, name string) string {
	return fmt.Sprintf("projects.%d.%s", index, name)
}
