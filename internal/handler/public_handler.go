package handler

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/folio/internal/db"
	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
)

// ShowHome renders the reserved home page.
func (a *API) ShowHome(c *gin.Context) {
	a.showPage(c, db.HomeSlug)
}

// ShowPage renders the public page at :slug.
func (a *API) ShowPage(c *gin.Context) {
	a.showPage(c, c.Param("slug"))
}

func (a *API) showPage(c *gin.Context, slug string) {
	page, err := a.pages.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			a.renderHTML(c, http.StatusOK, "message.html", gin.H{
				"title":   "Not found",
				"message": "Page not found",
				"nav":     a.navigation(c, false, slug),
			})
			return
		}
		a.renderStoreError(c, false, "ShowPage", err)
		return
	}

	pictures, err := a.pages.PicturesForPage(page.ID)
	if err != nil {
		a.renderStoreError(c, false, "ShowPage", err)
		return
	}

	// Page content comes from the authenticated author and is emitted as-is.
	a.renderHTML(c, http.StatusOK, "page_view.html", gin.H{
		"title":       page.Title,
		"description": service.Summarize(page.Content),
		"page":        page,
		"content":     template.HTML(page.Content),
		"pictures":    a.pictureViews(pictures),
		"nav":         a.navigation(c, false, page.Slug),
	})
}

// NotFound renders unmatched paths.
func (a *API) NotFound(c *gin.Context) {
	a.renderMessage(c, http.StatusNotFound, IsAdminPath(c.Request.URL.Path), "Not found", "Page not found")
}

// Healthz reports process liveness and store availability.
func (a *API) Healthz(c *gin.Context) {
	if err := a.pages.Available(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}
