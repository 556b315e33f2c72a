package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/pressroom/internal/adminsession"
	"github.com/pressroom/internal/db"
	"github.com/pressroom/internal/service"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testKeyword = "open-sesame"

var ginOnce sync.Once

// stubHTMLRender 记录最近一次渲染的模板名与数据。
type stubHTMLRender struct {
	mu   sync.Mutex
	name string
	data gin.H
}

type stubHTMLInstance struct {
	parent *stubHTMLRender
	name   string
	data   interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	return &stubHTMLInstance{parent: r, name: name, data: data}
}

func (r *stubHTMLRender) last() (string, gin.H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name, r.data
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	r.parent.mu.Lock()
	defer r.parent.mu.Unlock()
	r.parent.name = r.name
	r.parent.data, _ = r.data.(gin.H)
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

type testServer struct {
	t        *testing.T
	engine   *gin.Engine
	api      *API
	renderer *stubHTMLRender
	cookies  map[string]*http.Cookie
}

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
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

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	hash, err := bcrypt.GenerateFromPassword([]byte(testKeyword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash keyword: %v", err)
	}
	verifier, err := adminsession.NewKeywordVerifier(string(hash))
	if err != nil {
		t.Fatalf("build verifier: %v", err)
	}

	api := NewAPI(setupHandlerTestDB(t), verifier, Options{
		SiteName:  "Test Press",
		BaseURL:   "https://press.example.com/",
		UploadDir: t.TempDir(),
		UploadURL: "/uploads",
	})

	renderer := &stubHTMLRender{}
	engine := gin.New()
	engine.HTMLRender = renderer
	engine.Use(sessions.Sessions("pressroom_session", cookie.NewStore([]byte("test-secret"))))

	engine.GET("/", api.ShowHome)
	engine.GET("/category/:slug", api.ShowCategory)
	engine.GET("/article/:id", api.ShowArticle)
	engine.GET("/about", api.ShowAbout)
	engine.GET("/contact", api.ShowContact)
	engine.GET("/rss.xml", api.ShowFeed)
	engine.GET("/healthz", api.HealthCheck)
	engine.GET("/admin-login", api.ShowAdminLogin)
	engine.POST("/admin-login", api.AdminLogin)

	publicAPI := engine.Group("/api")
	publicAPI.GET("/articles", api.ListArticlesJSON)
	publicAPI.GET("/articles/:id", api.GetArticleJSON)
	publicAPI.GET("/categories/:slug/articles", api.ListCategoryArticlesJSON)
	publicAPI.GET("/settings", api.GetSettingsJSON)

	admin := engine.Group("/admin", api.AdminRequired())
	admin.POST("/logout", api.AdminLogout)
	admin.GET("", api.ShowDashboard)
	admin.GET("/new-article", api.ShowNewArticle)
	admin.POST("/new-article", api.CreateArticleForm)
	admin.GET("/edit/:id", api.ShowEditArticle)
	admin.POST("/edit/:id", api.UpdateArticleForm)
	admin.POST("/articles/:id/publish", api.PublishArticleAction)
	admin.POST("/articles/:id/unpublish", api.UnpublishArticleAction)
	admin.POST("/articles/:id/delete", api.DeleteArticleAction)
	admin.GET("/settings", api.ShowSettings)
	admin.POST("/settings", api.UpdateSettingsForm)

	adminAPI := admin.Group("/api")
	adminAPI.GET("/articles", api.AdminListArticles)
	adminAPI.POST("/articles", api.AdminCreateArticle)
	adminAPI.GET("/articles/:id", api.AdminGetArticle)
	adminAPI.PUT("/articles/:id", api.AdminReplaceArticle)
	adminAPI.PATCH("/articles/:id", api.AdminPatchArticle)
	adminAPI.DELETE("/articles/:id", api.AdminDeleteArticle)
	adminAPI.POST("/articles/:id/publish", api.AdminPublishArticle)
	adminAPI.POST("/articles/:id/unpublish", api.AdminUnpublishArticle)
	adminAPI.PUT("/settings", api.AdminUpdateSettings)
	adminAPI.POST("/uploads", api.UploadCoverImage)

	return &testServer{
		t:        t,
		engine:   engine,
		api:      api,
		renderer: renderer,
		cookies:  map[string]*http.Cookie{},
	}
}

// do 发送请求并像浏览器一样保留 cookie。
func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	s.t.Helper()
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		s.cookies[c.Name] = c
	}
	return w
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) sendJSON(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *testServer) unlock() {
	s.t.Helper()
	w := s.postForm("/admin-login", url.Values{"keyword": {testKeyword}})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin" {
		s.t.Fatalf("unlock failed: status %d location %q", w.Code, w.Header().Get("Location"))
	}
}

// flashes 渲染一次登录页来读取当前 session 中的提示。
func (s *testServer) flashes() []Flash {
	s.t.Helper()
	s.get("/admin-login")
	_, data := s.renderer.last()
	flashes, _ := data["flashes"].([]Flash)
	return flashes
}

func (s *testServer) createArticle(title string, published bool) *db.Article {
	s.t.Helper()
	input := service.ArticleInput{
		Title:      title,
		Author:     "Ada Writer",
		CoverImage: "https://example.com/cover.jpg",
		Summary:    "A summary that is long enough to pass the form rules.",
		Content:    "<p>" + strings.Repeat("Body text. ", 8) + "</p>",
		Category:   "Science",
		Published:  published,
	}
	article, err := s.api.Articles().Create(context.Background(), input)
	if err != nil {
		s.t.Fatalf("create article: %v", err)
	}
	return article
}

// breakStore 关闭底层连接，模拟存储不可用。
func (s *testServer) breakStore() {
	s.t.Helper()
	sqlDB, err := s.api.db.DB()
	if err != nil {
		s.t.Fatalf("get sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		s.t.Fatalf("close sql db: %v", err)
	}
}

func validArticleValues() url.Values {
	return url.Values{
		"title":      {"A valid title"},
		"author":     {"Ada Writer"},
		"coverImage": {"https://example.com/cover.jpg"},
		"summary":    {"A summary that is long enough."},
		"content":    {strings.Repeat("c", 60)},
		"category":   {"Technology"},
		"published":  {"true"},
	}
}
