package router

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pressroom/internal/adminsession"
	"github.com/pressroom/internal/handler"
	"github.com/pressroom/internal/middleware"
	"github.com/pressroom/internal/service"
	"github.com/pressroom/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const sessionCookieName = "pressroom_session"

// Options 汇总构建路由所需的依赖。
type Options struct {
	DB            *gorm.DB
	Verifier      *adminsession.KeywordVerifier
	SessionSecret string
	SiteName      string
	BaseURL       string
	UploadDir     string
	UploadURL     string
	// SecureCookie 为 true 时 session cookie 只通过 HTTPS 发送
	SecureCookie bool
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery(), middleware.Metrics())

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookieName, store))

	// 加载模板并添加自定义函数
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs()).ParseFS(web.FS, "template/*.html")))

	// 静态文件服务
	staticFS, err := fs.Sub(web.FS, "static")
	if err != nil {
		panic(fmt.Sprintf("embedded static assets missing: %v", err))
	}
	r.StaticFS("/static", http.FS(staticFS))

	uploadURL := "/" + strings.Trim(strings.TrimSpace(opts.UploadURL), "/")
	if uploadURL == "/" {
		uploadURL = "/uploads"
	}
	if opts.UploadDir != "" {
		r.Static(uploadURL, opts.UploadDir)
	}

	api := handler.NewAPI(opts.DB, opts.Verifier, handler.Options{
		SiteName:  opts.SiteName,
		BaseURL:   opts.BaseURL,
		UploadDir: opts.UploadDir,
		UploadURL: uploadURL,
	})

	r.GET("/healthz", api.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/rss.xml", api.ShowFeed)

	// 前台页面
	r.GET("/", api.ShowHome)
	r.GET("/category/:slug", api.ShowCategory)
	r.GET("/article/:id", api.ShowArticle)
	r.GET("/about", api.ShowAbout)
	r.GET("/contact", api.ShowContact)
	r.GET("/404", api.ShowNotFound)
	r.GET("/admin-login", api.ShowAdminLogin)
	r.POST("/admin-login", api.AdminLogin)

	// 公开只读 JSON 接口
	publicAPI := r.Group("/api")
	{
		publicAPI.GET("/articles", api.ListArticlesJSON)
		publicAPI.GET("/articles/:id", api.GetArticleJSON)
		publicAPI.GET("/categories/:slug/articles", api.ListCategoryArticlesJSON)
		publicAPI.GET("/settings", api.GetSettingsJSON)
	}

	// 后台管理路由，需要管理员模式
	admin := r.Group("/admin")
	admin.Use(api.AdminRequired())
	{
		admin.GET("", api.ShowDashboard)
		admin.POST("/logout", api.AdminLogout)
		admin.GET("/new-article", api.ShowNewArticle)
		admin.POST("/new-article", api.CreateArticleForm)
		admin.GET("/edit/:id", api.ShowEditArticle)
		admin.POST("/edit/:id", api.UpdateArticleForm)
		admin.POST("/articles/:id/publish", api.PublishArticleAction)
		admin.POST("/articles/:id/unpublish", api.UnpublishArticleAction)
		admin.POST("/articles/:id/delete", api.DeleteArticleAction)
		admin.GET("/settings", api.ShowSettings)
		admin.POST("/settings", api.UpdateSettingsForm)

		// API路由
		adminAPI := admin.Group("/api")
		{
			adminAPI.GET("/articles", api.AdminListArticles)
			adminAPI.POST("/articles", api.AdminCreateArticle)
			adminAPI.GET("/articles/:id", api.AdminGetArticle)
			adminAPI.PUT("/articles/:id", api.AdminReplaceArticle)
			adminAPI.PATCH("/articles/:id", api.AdminPatchArticle)
			adminAPI.DELETE("/articles/:id", api.AdminDeleteArticle)
			adminAPI.POST("/articles/:id/publish", api.AdminPublishArticle)
			adminAPI.POST("/articles/:id/unpublish", api.AdminUnpublishArticle)
			adminAPI.GET("/settings", api.GetSettingsJSON)
			adminAPI.PUT("/settings", api.AdminUpdateSettings)
			adminAPI.POST("/uploads", api.UploadCoverImage)
		}
	}

	r.NoRoute(api.ShowNotFound)

	return r
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"timeAgo": func(t time.Time) string {
			return formatRelativeTime(time.Now(), t)
		},
		"categorySlug": service.CategorySlug,
		"fieldError": func(errors map[string]string, field string) string {
			return errors[field]
		},
		"isoTime": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
	}
}

// formatRelativeTime 把时间转为 "5 minutes ago" 这样的相对描述。
func formatRelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	diff := now.Sub(t)
	if diff < time.Minute {
		return "just now"
	}

	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case diff < time.Hour:
		return plural(int(diff/time.Minute), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff/time.Hour), "hour")
	case diff < 30*24*time.Hour:
		return plural(int(diff/(24*time.Hour)), "day")
	case diff < 365*24*time.Hour:
		return plural(int(diff/(30*24*time.Hour)), "month")
	default:
		return plural(int(diff/(365*24*time.Hour)), "year")
	}
}
