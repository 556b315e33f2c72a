package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pressroom/internal/adminsession"
	"github.com/pressroom/internal/db"
	"github.com/pressroom/internal/service"
	"github.com/pressroom/internal/validator"
)

const (
	editorModeNew  = "new"
	editorModeEdit = "edit"
)

// ShowAdminLogin 渲染关键字输入页。
func (a *API) ShowAdminLogin(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "admin_login.html", gin.H{
		"title": "Admin Access",
	})
}

// AdminLogin 校验关键字，成功后跳转到后台。
func (a *API) AdminLogin(c *gin.Context) {
	keyword := c.PostForm("keyword")

	admin := a.adminSession(c)
	if !admin.Unlock(keyword) {
		saveSession(c)
		a.renderHTML(c, http.StatusUnauthorized, "admin_login.html", gin.H{
			"title": "Admin Access",
		})
		return
	}

	saveSession(c)
	c.Redirect(http.StatusFound, "/admin")
}

// AdminLogout 锁定管理员模式并回到首页。
func (a *API) AdminLogout(c *gin.Context) {
	a.adminSession(c).Lock()
	saveSession(c)
	c.Redirect(http.StatusFound, "/")
}

// ShowDashboard 渲染后台文章列表，包含草稿。
func (a *API) ShowDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	articles, err := a.articles.List(ctx, true)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "admin_dashboard.html", gin.H{
			"title": "Admin Dashboard",
			"error": "Failed to load articles. Please try again later.",
		})
		return
	}

	counts, err := a.articles.Counts(ctx)
	if err != nil {
		c.Error(err)
		counts = countArticles(articles)
	}

	a.renderHTML(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"title":    "Admin Dashboard",
		"articles": articles,
		"counts":   counts,
	})
}

// ShowNewArticle 渲染空白编辑器。
func (a *API) ShowNewArticle(c *gin.Context) {
	a.renderEditor(c, http.StatusOK, editorModeNew, "", validator.ArticleForm{}, nil)
}

// CreateArticleForm 校验并创建文章。
func (a *API) CreateArticleForm(c *gin.Context) {
	form := articleFormFromRequest(c)
	if err := validator.ValidateArticle(form); err != nil {
		a.renderEditor(c, http.StatusUnprocessableEntity, editorModeNew, "", form, validator.FieldErrors(err))
		return
	}

	if _, err := a.articles.Create(c.Request.Context(), form.Input()); err != nil {
		c.Error(err)
		addFlash(c, adminsession.LevelError, "Failed to save article.")
		a.renderEditor(c, http.StatusInternalServerError, editorModeNew, "", form, nil)
		return
	}

	redirectWithFlash(c, "/admin", adminsession.LevelSuccess, "Article created successfully!")
}

// ShowEditArticle 预填已有文章，找不到时回到后台。
func (a *API) ShowEditArticle(c *gin.Context) {
	id := idParam(c)
	article, err := a.articles.Get(c.Request.Context(), id, true)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			redirectWithFlash(c, "/admin", adminsession.LevelError, "Article not found.")
			return
		}
		c.Error(err)
		redirectWithFlash(c, "/admin", adminsession.LevelError, "Failed to load article for editing.")
		return
	}

	a.renderEditor(c, http.StatusOK, editorModeEdit, article.ID, validator.FromArticle(*article), nil)
}

// UpdateArticleForm 校验后整体覆盖文章字段。
func (a *API) UpdateArticleForm(c *gin.Context) {
	id := idParam(c)
	form := articleFormFromRequest(c)
	if err := validator.ValidateArticle(form); err != nil {
		a.renderEditor(c, http.StatusUnprocessableEntity, editorModeEdit, id, form, validator.FieldErrors(err))
		return
	}

	if _, err := a.articles.Update(c.Request.Context(), id, service.PatchFromInput(form.Input())); err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			redirectWithFlash(c, "/admin", adminsession.LevelError, "Article not found.")
			return
		}
		c.Error(err)
		addFlash(c, adminsession.LevelError, "Failed to save article.")
		a.renderEditor(c, http.StatusInternalServerError, editorModeEdit, id, form, nil)
		return
	}

	redirectWithFlash(c, "/admin", adminsession.LevelSuccess, "Article updated successfully!")
}

// PublishArticleAction 发布文章并回到后台。
func (a *API) PublishArticleAction(c *gin.Context) {
	if _, err := a.articles.Publish(c.Request.Context(), idParam(c)); err != nil {
		a.failDashboardAction(c, err, "Failed to change article status.")
		return
	}
	redirectWithFlash(c, "/admin", adminsession.LevelSuccess, "Article published!")
}

// UnpublishArticleAction 撤回为草稿。
func (a *API) UnpublishArticleAction(c *gin.Context) {
	if _, err := a.articles.Unpublish(c.Request.Context(), idParam(c)); err != nil {
		a.failDashboardAction(c, err, "Failed to change article status.")
		return
	}
	redirectWithFlash(c, "/admin", adminsession.LevelInfo, "Article unpublished.")
}

// DeleteArticleAction 删除文章。
func (a *API) DeleteArticleAction(c *gin.Context) {
	deleted, err := a.articles.Delete(c.Request.Context(), idParam(c))
	if err != nil {
		a.failDashboardAction(c, err, "An unexpected error occurred while deleting the article.")
		return
	}
	if !deleted {
		redirectWithFlash(c, "/admin", adminsession.LevelError, "Failed to delete article.")
		return
	}
	redirectWithFlash(c, "/admin", adminsession.LevelSuccess, "Article deleted successfully!")
}

func (a *API) failDashboardAction(c *gin.Context, err error, message string) {
	if errors.Is(err, service.ErrArticleNotFound) {
		redirectWithFlash(c, "/admin", adminsession.LevelError, "Article not found.")
		return
	}
	c.Error(err)
	redirectWithFlash(c, "/admin", adminsession.LevelError, message)
}

// ShowSettings 渲染站点设置表单。
func (a *API) ShowSettings(c *gin.Context) {
	settings, err := a.settings.Get(c.Request.Context())
	if err != nil {
		c.Error(err)
		addFlash(c, adminsession.LevelError, "Failed to load settings for editing.")
		a.renderHTML(c, http.StatusOK, "admin_settings.html", gin.H{
			"title":    "Site Settings",
			"settings": settingsForm{},
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "admin_settings.html", gin.H{
		"title":    "Site Settings",
		"settings": settingsFormFrom(settings),
	})
}

// UpdateSettingsForm 保存站点设置，空值会清空对应字段。
func (a *API) UpdateSettingsForm(c *gin.Context) {
	form := settingsForm{
		AboutContent:    c.PostForm("aboutContent"),
		ContactEmail:    c.PostForm("contactEmail"),
		ContactPhone:    c.PostForm("contactPhone"),
		ContactX:        c.PostForm("contactX"),
		ContactWhatsapp: c.PostForm("contactWhatsapp"),
	}

	if _, err := a.settings.Update(c.Request.Context(), form.patch()); err != nil {
		c.Error(err)
		addFlash(c, adminsession.LevelError, "Failed to update settings.")
		a.renderHTML(c, http.StatusInternalServerError, "admin_settings.html", gin.H{
			"title":    "Site Settings",
			"settings": form,
		})
		return
	}

	redirectWithFlash(c, "/admin/settings", adminsession.LevelSuccess, "Settings updated successfully!")
}

func (a *API) renderEditor(c *gin.Context, status int, mode, id string, form validator.ArticleForm, fieldErrors map[string]string) {
	title := "Create New Article"
	action := "/admin/new-article"
	if mode == editorModeEdit {
		title = "Edit Article"
		action = "/admin/edit/" + id
	}
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}

	a.renderHTML(c, status, "article_editor.html", gin.H{
		"title":           title,
		"mode":            mode,
		"action":          action,
		"articleID":       id,
		"form":            form,
		"errors":          fieldErrors,
		"categoryOptions": db.ArticleCategories,
	})
}

func articleFormFromRequest(c *gin.Context) validator.ArticleForm {
	return validator.ArticleForm{
		Title:      c.PostForm("title"),
		Author:     c.PostForm("author"),
		CoverImage: c.PostForm("coverImage"),
		Summary:    c.PostForm("summary"),
		Content:    c.PostForm("content"),
		Category:   c.PostForm("category"),
		Published:  formBool(c.PostForm("published")),
	}
}

func formBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

func countArticles(articles []db.Article) service.ArticleCounts {
	counts := service.ArticleCounts{Total: int64(len(articles))}
	for _, article := range articles {
		if article.Published {
			counts.Published++
		}
	}
	counts.Drafts = counts.Total - counts.Published
	return counts
}

// settingsForm 是设置页与 JSON 接口共用的载荷。
type settingsForm struct {
	AboutContent    string `json:"aboutContent"`
	ContactEmail    string `json:"contactEmail"`
	ContactPhone    string `json:"contactPhone"`
	ContactX        string `json:"contactX"`
	ContactWhatsapp string `json:"contactWhatsapp"`
}

func settingsFormFrom(settings *db.SiteSettings) settingsForm {
	return settingsForm{
		AboutContent:    service.StringValue(settings.AboutContent),
		ContactEmail:    service.StringValue(settings.ContactEmail),
		ContactPhone:    service.StringValue(settings.ContactPhone),
		ContactX:        service.StringValue(settings.ContactX),
		ContactWhatsapp: service.StringValue(settings.ContactWhatsapp),
	}
}

func (f settingsForm) patch() service.SettingsPatch {
	return service.SettingsPatch{
		AboutContent:    &f.AboutContent,
		ContactEmail:    &f.ContactEmail,
		ContactPhone:    &f.ContactPhone,
		ContactX:        &f.ContactX,
		ContactWhatsapp: &f.ContactWhatsapp,
	}
}
