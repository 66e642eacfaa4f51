package server

import (
	"embed"
	"fmt"
	"html/template"
	"path"
)

//go:embed templates/*.html
var templateFiles embed.FS

// ParseTemplate parses one page template from the embedded templates directory.
func ParseTemplate(name string) (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFiles, path.Join("templates", name))
	if err != nil {
		return nil, fmt.Errorf("[server ParseTemplate] %s: %w", name, err)
	}
	return tmpl, nil
}
