package router

import (
	"net/http"

	"github.com/folio/internal/config"
	"github.com/folio/internal/handler"
	"github.com/folio/internal/view"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"k8s.io/klog/v2"
)

// SetupRouter 配置 Gin 引擎和路由。gdb 为 nil 时站点以降级模式运行。
func SetupRouter(cfg config.AppConfig, gdb *gorm.DB) (*gin.Engine, error) {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	templates, err := view.Templates()
	if err != nil {
		return nil, err
	}
	staticFS, err := view.Static()
	if err != nil {
		return nil, err
	}
	creds, err := handler.NewAdminCredentials(cfg.AdminUsername, cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		return nil, err
	}
	if !cfg.AdminEnabled() {
		klog.Warning("no admin secret configured, /admin will refuse every login")
	}

	api := handler.NewAPI(gdb, cfg.SiteName, cfg.MediaURLPath)

	r := gin.Default()
	r.Use(handler.RequestID())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 配置会话中间件，仅用于后台的一次性提示
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: 3600})
	r.Use(sessions.Sessions("folio_session", store))

	r.SetHTMLTemplate(templates)

	// 静态文件服务
	r.StaticFS("/static", http.FS(staticFS))
	if cfg.MediaDir != "" {
		r.Static(cfg.MediaURLPath, cfg.MediaDir)
	}

	r.GET("/healthz", api.Healthz)

	// 后台管理路由，整个 /admin 子树都需要认证。
	// gin 的路由树让静态段优先于 /:slug，所以 /admin 不会被当成页面。
	admin := r.Group("/admin", api.AdminRequired(creds))
	{
		admin.GET("", api.ShowAdminIndex)
		admin.GET("/page/create", api.ShowCreatePage)
		admin.POST("/page/create", api.CreatePage)
		admin.GET("/page/edit/:slug", api.ShowEditPage)
		admin.POST("/page/edit/:slug", api.UpdatePage)
		admin.POST("/page/delete/:slug", api.DeletePage)
	}

	// 公开页面放在最后
	r.GET("/", api.ShowHome)
	r.GET("/:slug", api.ShowPage)

	r.NoRoute(api.AdminPathGate(creds), api.NotFound)

	return r, nil
}
