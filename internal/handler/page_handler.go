package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/folio/internal/db"
	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

const adminIndexPath = "/admin"

// ShowAdminIndex renders the page list.
func (a *API) ShowAdminIndex(c *gin.Context) {
	flashes := popFlashes(c)

	pages, err := a.pages.ListOrdered()
	if err != nil {
		a.renderStoreError(c, true, "ShowAdminIndex", err)
		return
	}

	a.renderHTML(c, http.StatusOK, "admin_index.html", gin.H{
		"title":   "Admin",
		"pages":   pages,
		"flashes": flashes,
		"nav":     navFromPages(pages, true, "admin"),
	})
}

// ShowCreatePage renders an empty editor.
func (a *API) ShowCreatePage(c *gin.Context) {
	a.renderPageForm(c, http.StatusOK, pageFormView{
		heading: "Create New Page",
		action:  "/admin/page/create",
	})
}

// CreatePage inserts a page from the submitted form.
func (a *API) CreatePage(c *gin.Context) {
	form, input := readPageForm(c)

	page, err := a.pages.Insert(input)
	if err != nil {
		view := pageFormView{
			heading: "Create New Page",
			action:  "/admin/page/create",
			form:    form,
		}
		if a.renderPageFormError(c, view, input, err) {
			return
		}
		a.renderStoreError(c, true, "CreatePage", err)
		return
	}

	addFlash(c, fmt.Sprintf("Created “%s” at /%s", page.Title, page.Slug))
	c.Redirect(http.StatusFound, adminIndexPath)
}

// ShowEditPage renders the editor for the page at :slug with its gallery.
func (a *API) ShowEditPage(c *gin.Context) {
	key := c.Param("slug")

	page, err := a.pages.GetBySlug(key)
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			a.renderMessage(c, http.StatusOK, true, "Not found", "Page not found")
			return
		}
		a.renderStoreError(c, true, "ShowEditPage", err)
		return
	}

	pictures, err := a.pages.PicturesForPage(page.ID)
	if err != nil {
		a.renderStoreError(c, true, "ShowEditPage", err)
		return
	}

	a.renderPageForm(c, http.StatusOK, pageFormView{
		heading:   "Edit " + page.Title,
		action:    "/admin/page/edit/" + page.Slug,
		editing:   true,
		key:       page.Slug,
		updatedAt: formatUpdatedAt(page),
		pictures:  a.pictureViews(pictures),
		form: pageForm{
			ID:       strconv.FormatUint(uint64(page.ID), 10),
			Title:    page.Title,
			Content:  page.Content,
			Slug:     page.Slug,
			Sequence: strconv.Itoa(page.Sequence),
		},
	})
}

// UpdatePage applies the submitted form to the page at :slug. The hidden id
// field must name the same page.
func (a *API) UpdatePage(c *gin.Context) {
	key := c.Param("slug")
	form, input := readPageForm(c)

	view := pageFormView{
		heading: "Edit " + form.Title,
		action:  "/admin/page/edit/" + key,
		editing: true,
		key:     key,
		form:    form,
	}

	id, err := parseIDField(form.ID)
	if err != nil {
		a.renderPageFormError(c, view, input, err)
		return
	}

	affected, err := a.pages.Update(key, id, input)
	if err != nil {
		if a.renderPageFormError(c, view, input, err) {
			return
		}
		a.renderStoreError(c, true, "UpdatePage", err)
		return
	}
	if affected == 0 {
		a.renderMessage(c, http.StatusOK, true, "Not found", "Page not found")
		return
	}

	addFlash(c, fmt.Sprintf("Updated “%s”", input.Title))
	c.Redirect(http.StatusFound, adminIndexPath)
}

// DeletePage removes the page at :slug and returns to the index either way.
func (a *API) DeletePage(c *gin.Context) {
	key := c.Param("slug")

	affected, err := a.pages.Delete(key)
	if err != nil {
		a.renderStoreError(c, true, "DeletePage", err)
		return
	}

	if affected > 0 {
		addFlash(c, fmt.Sprintf("Deleted /%s", key))
	}
	c.Redirect(http.StatusFound, adminIndexPath)
}

type pageFormView struct {
	heading   string
	action    string
	editing   bool
	key       string
	updatedAt string
	errorText string
	pictures  []pictureView
	form      pageForm
}

func (a *API) renderPageForm(c *gin.Context, status int, view pageFormView) {
	active := view.key
	if !view.editing {
		active = "admin"
	}
	a.renderHTML(c, status, "page_form.html", gin.H{
		"title":     view.heading,
		"heading":   view.heading,
		"action":    view.action,
		"editing":   view.editing,
		"key":       view.key,
		"updatedAt": view.updatedAt,
		"error":     view.errorText,
		"pictures":  view.pictures,
		"form":      view.form,
		"nav":       a.navigation(c, true, active),
	})
}

// renderPageFormError re-renders the editor for validation and slug
// conflicts. It reports false for errors the form cannot explain.
func (a *API) renderPageFormError(c *gin.Context, view pageFormView, input service.PageInput, err error) bool {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		view.errorText = validationMessage(err)
		a.renderPageForm(c, http.StatusBadRequest, view)
		return true
	case errors.Is(err, service.ErrSlugConflict):
		view.errorText = fmt.Sprintf("A page with the slug %q already exists. Choose a different slug.", input.ResolveSlug())
		a.renderPageForm(c, http.StatusConflict, view)
		return true
	default:
		return false
	}
}

func formatUpdatedAt(page *db.Page) string {
	if page.UpdatedAt == nil || page.UpdatedAt.IsZero() {
		return ""
	}
	return page.UpdatedAt.Local().Format("2006-01-02 15:04")
}
