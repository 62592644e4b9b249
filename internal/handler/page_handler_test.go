package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/folio/internal/db"
	"github.com/folio/internal/view"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "test-secret"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func testCredentials(t *testing.T) *AdminCredentials {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	creds, err := NewAdminCredentials(testAdminUser, "", string(hash))
	if err != nil {
		t.Fatalf("failed to build credentials: %v", err)
	}
	return creds
}

// newTestEngine mirrors the production route table on a bare engine.
func newTestEngine(t *testing.T, api *API, creds *AdminCredentials) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	templates, err := view.Templates()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}

	r := gin.New()
	r.Use(RequestID())
	r.Use(sessions.Sessions("folio_session", cookie.NewStore([]byte("test-secret"))))
	r.SetHTMLTemplate(templates)

	admin := r.Group("/admin", api.AdminRequired(creds))
	admin.GET("", api.ShowAdminIndex)
	admin.GET("/page/create", api.ShowCreatePage)
	admin.POST("/page/create", api.CreatePage)
	admin.GET("/page/edit/:slug", api.ShowEditPage)
	admin.POST("/page/edit/:slug", api.UpdatePage)
	admin.POST("/page/delete/:slug", api.DeletePage)

	r.GET("/", api.ShowHome)
	r.GET("/:slug", api.ShowPage)
	r.NoRoute(api.AdminPathGate(creds), api.NotFound)
	return r
}

func setupHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gdb := setupTestDB(t)
	api := NewAPI(gdb, "Test Site", "/media")
	return newTestEngine(t, api, testCredentials(t)), gdb
}

func adminForm(t *testing.T, r http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(testAdminUser, testAdminPassword)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func adminGet(t *testing.T, r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.SetBasicAuth(testAdminUser, testAdminPassword)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedPage(t *testing.T, gdb *gorm.DB, title, slug, content string, sequence int) db.Page {
	t.Helper()
	page := db.Page{Title: title, Slug: slug, Content: content, Sequence: sequence}
	if err := gdb.Create(&page).Error; err != nil {
		t.Fatalf("failed to seed page %q: %v", slug, err)
	}
	return page
}

func TestCreatePageRedirectsAndDerivesSlug(t *testing.T) {
	r, gdb := setupHandlerTest(t)

	w := adminForm(t, r, "/admin/page/create", url.Values{
		"title":    {"My Page"},
		"content":  {"<p>hi</p>"},
		"sequence": {"2"},
	})

	if w.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/admin" {
		t.Fatalf("expected redirect to /admin, got %q", loc)
	}

	var page db.Page
	if err := gdb.Where("slug = ?", "my-page").First(&page).Error; err != nil {
		t.Fatalf("expected page with slug my-page: %v", err)
	}
	if page.Sequence != 2 || page.Content != "<p>hi</p>" {
		t.Fatalf("unexpected stored page: %+v", page)
	}
}

func TestCreatePageDefaultsSequence(t *testing.T) {
	r, gdb := setupHandlerTest(t)

	w := adminForm(t, r, "/admin/page/create", url.Values{
		"title":    {"Contact"},
		"sequence": {"soon"},
	})
	if w.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", w.Code)
	}

	var page db.Page
	if err := gdb.Where("slug = ?", "contact").First(&page).Error; err != nil {
		t.Fatalf("expected contact page: %v", err)
	}
	if page.Sequence != 0 {
		t.Fatalf("expected sequence to default to 0, got %d", page.Sequence)
	}
}

func TestCreatePageDuplicateSlugShowsConflict(t *testing.T) {
	r, gdb := setupHandlerTest(t)
	seedPage(t, gdb, "About", "about", "original", 1)

	w := adminForm(t, r, "/admin/page/create", url.Values{
		"title":   {"About"},
		"content": {"replacement"},
	})

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already exists") {
		t.Fatalf("expected slug conflict message, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "replacement") {
		t.Fatal("expected submitted content to be echoed back into the form")
	}

	var count int64
	gdb.Model(&db.Page{}).Where("slug = ?", "about").Count(&count)
	if count != 1 {
		t.Fatalf("expected a single about page, found %d", count)
	}
	var page db.Page
	gdb.Where("slug = ?", "about").First(&page)
	if page.Content != "original" {
		t.Fatalf("expected original row untouched, got %q", page.Content)
	}
}

func TestCreatePageRequiresTitle(t *testing.T) {
	r, gdb := setupHandlerTest(t)

	w := adminForm(t, r, "/admin/page/create", url.Values{"title": {"   "}, "content": {"x"}})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Title is required") {
		t.Fatalf("expected inline validation message, got %s", w.Body.String())
	}

	var count int64
	gdb.Model(&db.Page{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no page to be created, found %d", count)
	}
}

func TestUpdatePageRejectsMalformedID(t *testing.T) {
	r, gdb := setupHandlerTest(t)
	seedPage(t, gdb, "Studio", "studio", "before", 1)

	for _, id := range []string{"abc", "", "-1", "99999999999999999999", "0"} {
		w := adminForm(t, r, "/admin/page/edit/studio", url.Values{
			"id":      {id},
			"title":   {"Changed"},
			"content": {"after"},
			"slug":    {"studio"},
		})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("id %q: expected status 400, got %d", id, w.Code)
		}
		if !strings.Contains(w.Body.String(), "Invalid page id") {
			t.Fatalf("id %q: expected invalid id message, got %s", id, w.Body.String())
		}
	}

	var page db.Page
	gdb.Where("slug = ?", "studio").First(&page)
	if page.Title != "Studio" || page.Content != "before" || page.UpdatedAt != nil {
		t.Fatalf("expected page to be untouched, got %+v", page)
	}
}

func TestUpdatePageAppliesChanges(t *testing.T) {
	r, gdb := setupHandlerTest(t)
	page := seedPage(t, gdb, "Studio", "studio", "before", 1)

	w := adminForm(t, r, "/admin/page/edit/studio", url.Values{
		"id":       {fmt.Sprint(page.ID)},
		"title":    {"The Studio"},
		"content":  {"after"},
		"slug":     {"The Studio!"},
		"sequence": {"5"},
	})
	if w.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d: %s", w.Code, w.Body.String())
	}

	var updated db.Page
	if err := gdb.First(&updated, page.ID).Error; err != nil {
		t.Fatalf("failed to reload page: %v", err)
	}
	if updated.Slug != "the-studio" || updated.Title != "The Studio" || updated.Sequence != 5 {
		t.Fatalf("unexpected updated page: %+v", updated)
	}
	if updated.UpdatedAt == nil {
		t.Fatal("expected updated_at to be set")
	}
}

func TestUpdatePageWithForeignIDIsNotFound(t *testing.T) {
	r, gdb := setupHandlerTest(t)
	seedPage(t, gdb, "One", "one", "first", 1)
	other := seedPage(t, gdb, "Two", "two", "second", 2)

	w := adminForm(t, r, "/admin/page/edit/one", url.Values{
		"id":    {fmt.Sprint(other.ID)},
		"title": {"Hijacked"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Page not found") {
		t.Fatalf("expected not found message, got %s", w.Body.String())
	}

	var page db.Page
	gdb.Where("slug = ?", "one").First(&page)
	if page.Title != "One" {
		t.Fatalf("expected page one untouched, got %q", page.Title)
	}
}

func TestUpdatePageSlugConflict(t *testing.T) {
	r, gdb := setupHandlerTest(t)
	seedPage(t, gdb, "One", "one", "first", 1)
	two := seedPage(t, gdb, "Two", "two", "second", 2)

	w := adminForm(t, r, "/admin/page/edit/two", url.Values{
		"id":    {fmt.Sprint(two.ID)},
		"title": {"Two"},
		"slug":  {"one"},
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
}

func TestShowEditPageNotFoundRendersMessage(t *testing.T) {
	r, _ := setupHandlerTest(t)

	w := adminGet(t, r, "/admin/page/edit/missing")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Page not found") {
		t.Fatalf("expected not found message, got %s", w.Body.String())
	}
}

func TestShowEditPageListsPictures(t *testing.T) {
	r, gdb := setupHandlerTest(t)
	page := seedPage(t, gdb, "Paintings", "paintings", "<p>works</p>", 1)

	caption := "Harbor, *oil on linen*"
	pictures := []db.Picture{
		{PageID: page.ID, Filename: "harbor.jpg", Caption: &caption, Sequence: 1},
		{PageID: page.ID, Filename: "/static/field.jpg", Sequence: 2},
	}
	if err := gdb.Create(&pictures).Error; err != nil {
		t.Fatalf("failed to seed pictures: %v", err)
	}

	w := adminGet(t, r, "/admin/page/edit/paintings")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`src="/media/harbor.jpg"`,
		`src="/static/field.jpg"`,
		"<em>oil on linen</em>",
		`name="id" value="` + fmt.Sprint(page.ID) + `"`,
		`action="/admin/page/delete/paintings"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %q, got %s", want, body)
		}
	}
}

func TestDeletePageRedirectsEvenWhenMissing(t *testing.T) {
	r, gdb := setupHandlerTest(t)
	seedPage(t, gdb, "Old", "old", "", 1)

	for _, slug := range []string{"old", "old", "never-existed"} {
		w := adminForm(t, r, "/admin/page/delete/"+slug, url.Values{})
		if w.Code != http.StatusFound {
			t.Fatalf("delete %q: expected status 302, got %d", slug, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != "/admin" {
			t.Fatalf("delete %q: expected redirect to /admin, got %q", slug, loc)
		}
	}

	var count int64
	gdb.Model(&db.Page{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected page to be deleted, found %d", count)
	}
}

func TestAdminIndexShowsPagesAndFlash(t *testing.T) {
	r, gdb := setupHandlerTest(t)
	seedPage(t, gdb, "Second", "second", "", 2)
	seedPage(t, gdb, "First", "first", "", 1)

	created := adminForm(t, r, "/admin/page/create", url.Values{"title": {"Third"}, "sequence": {"3"}})
	if created.Code != http.StatusFound {
		t.Fatalf("expected create to redirect, got %d", created.Code)
	}

	w := adminGet(t, r, "/admin", created.Result().Cookies()...)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Created") {
		t.Fatalf("expected flash message, got %s", body)
	}

	first := strings.Index(body, `href="/admin/page/edit/first"`)
	second := strings.Index(body, `href="/admin/page/edit/second"`)
	third := strings.Index(body, `href="/admin/page/edit/third"`)
	if first < 0 || second < 0 || third < 0 || !(first < second && second < third) {
		t.Fatalf("expected pages ordered by sequence, got positions %d %d %d", first, second, third)
	}
	if !strings.Contains(body, "Live website") {
		t.Fatal("expected admin navigation to link to the live website")
	}
}

func TestAdminIndexStoreUnavailable(t *testing.T) {
	api := NewAPI(nil, "Test Site", "/media")
	r := newTestEngine(t, api, testCredentials(t))

	w := adminGet(t, r, "/admin")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Database not available in this environment") {
		t.Fatalf("expected unavailable message, got %s", w.Body.String())
	}

	create := adminForm(t, r, "/admin/page/create", url.Values{"title": {"Anything"}})
	if create.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected create to report 503, got %d", create.Code)
	}
}
