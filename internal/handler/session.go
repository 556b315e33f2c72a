package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pressroom/internal/adminsession"
	"github.com/pressroom/internal/logger"
	"github.com/pressroom/internal/middleware"
)

const adminSessionContextKey = "__admin_session"

// 提示按级别存在不同的 flash key 中，避免向 gob 注册自定义类型
var flashLevels = []string{adminsession.LevelSuccess, adminsession.LevelError, adminsession.LevelInfo}

func flashKey(level string) string {
	return "flash_" + level
}

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

// cookieStore 把 adminsession.Store 映射到 gin-contrib/sessions。写入在 saveSession 时落盘。
type cookieStore struct {
	session sessions.Session
}

func (s cookieStore) Get(key string) (string, bool) {
	value, ok := s.session.Get(key).(string)
	return value, ok
}

func (s cookieStore) Set(key, value string) error {
	s.session.Set(key, value)
	return nil
}

// flashNotifier 把通知转换为 session flash。
type flashNotifier struct {
	session sessions.Session
}

func (n flashNotifier) Notify(level, message string) {
	n.session.AddFlash(message, flashKey(level))
}

// adminSession 返回当前请求的管理员开关，同一请求内复用。
func (a *API) adminSession(c *gin.Context) *adminsession.Session {
	if cached, exists := c.Get(adminSessionContextKey); exists {
		if admin, ok := cached.(*adminsession.Session); ok {
			return admin
		}
	}

	store := sessions.Default(c)
	admin := adminsession.New(cookieStore{session: store}, a.verifier, flashNotifier{session: store})
	c.Set(adminSessionContextKey, admin)
	return admin
}

func (a *API) isAdmin(c *gin.Context) bool {
	return a.adminSession(c).IsUnlocked()
}

// includeDrafts 决定公共读取是否带上草稿：仅在管理员已解锁时。
func (a *API) includeDrafts(c *gin.Context) bool {
	return a.isAdmin(c)
}

func addFlash(c *gin.Context, level, message string) {
	sessions.Default(c).AddFlash(message, flashKey(level))
}

func saveSession(c *gin.Context) {
	if err := sessions.Default(c).Save(); err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Warn("save session failed", "error", err)
	}
}

// redirectWithFlash 记录提示后跳转。
func redirectWithFlash(c *gin.Context, location, level, message string) {
	addFlash(c, level, message)
	saveSession(c)
	c.Redirect(http.StatusFound, location)
}

func popFlashes(c *gin.Context) []Flash {
	store := sessions.Default(c)

	var flashes []Flash
	for _, level := range flashLevels {
		for _, raw := range store.Flashes(flashKey(level)) {
			if message, ok := raw.(string); ok {
				flashes = append(flashes, Flash{Level: level, Message: message})
			}
		}
	}
	if len(flashes) > 0 {
		saveSession(c)
	}
	return flashes
}

// AdminRequired 拦截未解锁的请求。JSON API 返回 401，页面跳转到 /admin-login。
func (a *API) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.isAdmin(c) {
			c.Next()
			return
		}

		if wantsJSON(c) {
			respondError(c, http.StatusUnauthorized, adminsession.MessageForbidden)
			c.Abort()
			return
		}

		redirectWithFlash(c, "/admin-login", adminsession.LevelError, adminsession.MessageForbidden)
		c.Abort()
	}
}

func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") || strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
