package view

import (
	"embed"
	"html/template"
	"io/fs"
	"time"
)

//go:embed templates/*.html static
var files embed.FS

// Templates parses the embedded page templates. Each file is addressable by
// its base name, e.g. "page_view.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"formatTime": formatTime,
	}).ParseFS(files, "templates/*.html")
}

// Static returns the embedded stylesheet tree rooted at static/.
func Static() (fs.FS, error) {
	return fs.Sub(files, "static")
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("2006-01-02 15:04")
}
