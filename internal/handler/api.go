package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pressroom/internal/adminsession"
	"github.com/pressroom/internal/service"
	"gorm.io/gorm"
)

// Options carries the site level settings handlers need.
type Options struct {
	SiteName  string
	BaseURL   string
	UploadDir string
	UploadURL string
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	articles  *service.ArticleService
	settings  *service.SettingsService
	verifier  *adminsession.KeywordVerifier
	siteName  string
	baseURL   string
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(db *gorm.DB, verifier *adminsession.KeywordVerifier, opts Options) *API {
	siteName := strings.TrimSpace(opts.SiteName)
	if siteName == "" {
		siteName = "Pressroom"
	}
	uploadURL := "/" + strings.Trim(strings.TrimSpace(opts.UploadURL), "/")
	if uploadURL == "/" {
		uploadURL = "/uploads"
	}

	return &API{
		db:        db,
		articles:  service.NewArticleService(db),
		settings:  service.NewSettingsService(db),
		verifier:  verifier,
		siteName:  siteName,
		baseURL:   strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		uploadDir: opts.UploadDir,
		uploadURL: uploadURL,
	}
}

// Articles exposes the article store client, mainly for tests and tooling.
func (a *API) Articles() *service.ArticleService {
	return a.articles
}

// Settings exposes the settings store client.
func (a *API) Settings() *service.SettingsService {
	return a.settings
}

// SetClock 同时替换两个存储客户端的时间来源。
func (a *API) SetClock(now func() time.Time) {
	a.articles.SetClock(now)
	a.settings.SetClock(now)
}

// renderHTML 在渲染前附加站点名、分类导航、管理员状态与一次性提示。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = a.siteName
	}
	if _, exists := payload["categories"]; !exists {
		payload["categories"] = service.CategoryLinks()
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = time.Now().Year()
	}
	payload["isAdmin"] = a.isAdmin(c)
	payload["flashes"] = popFlashes(c)

	c.HTML(status, template, payload)
}

// absoluteURL joins a site relative path onto the configured base URL.
func (a *API) absoluteURL(path string) string {
	if a.baseURL == "" {
		return path
	}
	return a.baseURL + path
}
