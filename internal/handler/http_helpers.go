package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

// pageForm echoes submitted values back into the editor.
type pageForm struct {
	ID       string
	Title    string
	Content  string
	Slug     string
	Sequence string
}

func readPageForm(c *gin.Context) (pageForm, service.PageInput) {
	form := pageForm{
		ID:       strings.TrimSpace(c.PostForm("id")),
		Title:    c.PostForm("title"),
		Content:  c.PostForm("content"),
		Slug:     c.PostForm("slug"),
		Sequence: strings.TrimSpace(c.PostForm("sequence")),
	}

	input := service.PageInput{
		Title:    form.Title,
		Content:  form.Content,
		Slug:     form.Slug,
		Sequence: parseIntDefault(form.Sequence, 0),
	}
	return form, input
}

// parseIntDefault returns fallback for empty or non-numeric values.
func parseIntDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func parseIDField(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid page id %q", service.ErrInvalidInput, raw)
	}
	return uint(id), nil
}

// validationMessage strips the sentinel prefix for display.
func validationMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, service.ErrInvalidInput) {
		msg = strings.TrimPrefix(msg, service.ErrInvalidInput.Error()+": ")
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
