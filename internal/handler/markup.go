package handler

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/folio/internal/db"
	"github.com/folio/internal/service"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	captionEngine = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))
	sanitizer     = bluemonday.UGCPolicy()
)

type pictureView struct {
	URL     string
	Alt     string
	Caption template.HTML
}

// renderCaption renders Markdown captions. Unlike page content, captions go
// through the UGC sanitizer.
func renderCaption(caption string) (template.HTML, error) {
	if strings.TrimSpace(caption) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := captionEngine.Convert([]byte(caption), &buf); err != nil {
		return "", err
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

// pictureURL resolves a stored filename. Absolute paths and URLs are kept,
// relative names live under the media path.
func (a *API) pictureURL(filename string) string {
	name := strings.TrimSpace(filename)
	switch {
	case name == "":
		return ""
	case strings.HasPrefix(name, "/"), strings.HasPrefix(name, "http://"), strings.HasPrefix(name, "https://"):
		return name
	default:
		return a.mediaURL + "/" + name
	}
}

func (a *API) pictureViews(pictures []db.Picture) []pictureView {
	views := make([]pictureView, 0, len(pictures))
	for _, pic := range pictures {
		view := pictureView{URL: a.pictureURL(pic.Filename)}
		if pic.Caption != nil {
			if rendered, err := renderCaption(*pic.Caption); err == nil {
				view.Caption = rendered
			} else {
				view.Caption = template.HTML(template.HTMLEscapeString(*pic.Caption))
			}
			view.Alt = service.Summarize(string(view.Caption))
		}
		views = append(views, view)
	}
	return views
}
