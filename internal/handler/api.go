package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/folio/internal/db"
	"github.com/folio/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"k8s.io/klog/v2"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	pages    *service.PageService
	siteName string
	mediaURL string
}

type navItem struct {
	Title  string
	Href   string
	Active bool
}

type navView struct {
	Admin bool
	Items []navItem
}

// NewAPI constructs a handler set backed by gdb. A nil gdb serves every page
// in degraded mode.
func NewAPI(gdb *gorm.DB, siteName, mediaURL string) *API {
	siteName = strings.TrimSpace(siteName)
	if siteName == "" {
		siteName = "Folio"
	}
	return &API{
		pages:    service.NewPageService(gdb),
		siteName: siteName,
		mediaURL: strings.TrimRight(mediaURL, "/"),
	}
}

// navigation lists every page in sequence order. Failures degrade to an
// empty menu.
func (a *API) navigation(c *gin.Context, admin bool, active string) navView {
	pages, err := a.pages.ListOrdered()
	if err != nil {
		if !errors.Is(err, service.ErrStoreUnavailable) {
			klog.Errorf("[%s] navigation: %v", requestID(c), err)
		}
		return navView{Admin: admin}
	}

	return navFromPages(pages, admin, active)
}

func navFromPages(pages []db.Page, admin bool, active string) navView {
	view := navView{Admin: admin}
	for _, page := range pages {
		href := "/admin/page/edit/" + page.Slug
		if !admin {
			href = "/" + page.Slug
			if page.Slug == db.HomeSlug {
				href = "/"
			}
		}
		view.Items = append(view.Items, navItem{
			Title:  page.Title,
			Href:   href,
			Active: page.Slug == active,
		})
	}
	return view
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.siteName
	}
	if _, exists := payload["nav"]; !exists {
		payload["nav"] = navView{}
	}

	c.HTML(status, template, payload)
}

// renderMessage shows a single in-page message inside the site chrome.
func (a *API) renderMessage(c *gin.Context, status int, admin bool, title, message string) {
	a.renderHTML(c, status, "message.html", gin.H{
		"title":   title,
		"message": message,
		"admin":   admin,
		"error":   status >= http.StatusBadRequest,
		"nav":     a.navigation(c, admin, ""),
	})
}

// renderStoreError converts a store failure into a degraded page.
func (a *API) renderStoreError(c *gin.Context, admin bool, op string, err error) {
	if errors.Is(err, service.ErrStoreUnavailable) {
		klog.Warningf("[%s] %s: %v", requestID(c), op, err)
		a.renderHTML(c, http.StatusServiceUnavailable, "message.html", gin.H{
			"title":   "Unavailable",
			"message": "Database not available in this environment",
			"admin":   admin,
			"error":   true,
		})
		return
	}

	klog.Errorf("[%s] %s: %v", requestID(c), op, err)
	a.renderMessage(c, http.StatusInternalServerError, admin, "Error", "Internal Server Error")
}
