package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pressroom/internal/service"
	"github.com/pressroom/internal/validator"
)

// ListArticlesJSON 返回已发布文章，公开接口从不包含草稿。
func (a *API) ListArticlesJSON(c *gin.Context) {
	articles, err := a.articles.List(c.Request.Context(), false)
	if err != nil {
		respondStoreError(c, err, "Failed to load articles.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// GetArticleJSON 返回单篇已发布文章。
func (a *API) GetArticleJSON(c *gin.Context) {
	article, err := a.articles.Get(c.Request.Context(), idParam(c), false)
	if err != nil {
		respondStoreError(c, err, "Failed to load article.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// ListCategoryArticlesJSON 按分类 slug 返回已发布文章。
func (a *API) ListCategoryArticlesJSON(c *gin.Context) {
	slug := c.Param("slug")
	articles, err := a.articles.ListByCategory(c.Request.Context(), slug, false)
	if err != nil {
		respondStoreError(c, err, "Failed to load articles.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category": service.NormalizeCategorySlug(slug),
		"articles": articles,
	})
}

// GetSettingsJSON 返回站点设置。
func (a *API) GetSettingsJSON(c *gin.Context) {
	settings, err := a.settings.Get(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "Failed to load settings.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// AdminListArticles 返回全部文章与计数。
func (a *API) AdminListArticles(c *gin.Context) {
	ctx := c.Request.Context()
	articles, err := a.articles.List(ctx, true)
	if err != nil {
		respondStoreError(c, err, "Failed to load articles.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"counts":   countArticles(articles),
	})
}

// AdminGetArticle 返回任意状态的文章。
func (a *API) AdminGetArticle(c *gin.Context) {
	article, err := a.articles.Get(c.Request.Context(), idParam(c), true)
	if err != nil {
		respondStoreError(c, err, "Failed to load article.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// AdminCreateArticle 校验并创建文章。
func (a *API) AdminCreateArticle(c *gin.Context) {
	var form validator.ArticleForm
	if !bindJSON(c, &form, "Invalid article payload.") {
		return
	}
	if err := validator.ValidateArticle(form); err != nil {
		respondValidation(c, validator.FieldErrors(err))
		return
	}

	article, err := a.articles.Create(c.Request.Context(), form.Input())
	if err != nil {
		respondStoreError(c, err, "Failed to save article.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"article": article})
}

// AdminReplaceArticle 用完整表单覆盖文章。
func (a *API) AdminReplaceArticle(c *gin.Context) {
	var form validator.ArticleForm
	if !bindJSON(c, &form, "Invalid article payload.") {
		return
	}
	if err := validator.ValidateArticle(form); err != nil {
		respondValidation(c, validator.FieldErrors(err))
		return
	}

	article, err := a.articles.Update(c.Request.Context(), idParam(c), service.PatchFromInput(form.Input()))
	if err != nil {
		respondStoreError(c, err, "Failed to save article.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

type articlePatchRequest struct {
	Title      *string `json:"title"`
	Author     *string `json:"author"`
	CoverImage *string `json:"coverImage"`
	Summary    *string `json:"summary"`
	Content    *string `json:"content"`
	Category   *string `json:"category"`
	Published  *bool   `json:"published"`
}

func (r articlePatchRequest) patch() service.ArticlePatch {
	return service.ArticlePatch{
		Title:      r.Title,
		Author:     r.Author,
		CoverImage: r.CoverImage,
		Summary:    r.Summary,
		Content:    r.Content,
		Category:   r.Category,
		Published:  r.Published,
	}
}

// merge 把补丁叠加到已有表单上，用于整体校验。
func (r articlePatchRequest) merge(form validator.ArticleForm) validator.ArticleForm {
	if r.Title != nil {
		form.Title = *r.Title
	}
	if r.Author != nil {
		form.Author = *r.Author
	}
	if r.CoverImage != nil {
		form.CoverImage = *r.CoverImage
	}
	if r.Summary != nil {
		form.Summary = *r.Summary
	}
	if r.Content != nil {
		form.Content = *r.Content
	}
	if r.Category != nil {
		form.Category = *r.Category
	}
	if r.Published != nil {
		form.Published = *r.Published
	}
	return form
}

// AdminPatchArticle 只更新提供的字段。
func (a *API) AdminPatchArticle(c *gin.Context) {
	var req articlePatchRequest
	if !bindJSON(c, &req, "Invalid article payload.") {
		return
	}

	ctx := c.Request.Context()
	id := idParam(c)
	existing, err := a.articles.Get(ctx, id, true)
	if err != nil {
		respondStoreError(c, err, "Failed to load article.")
		return
	}
	if err := validator.ValidateArticle(req.merge(validator.FromArticle(*existing))); err != nil {
		respondValidation(c, validator.FieldErrors(err))
		return
	}

	article, err := a.articles.Update(ctx, id, req.patch())
	if err != nil {
		respondStoreError(c, err, "Failed to save article.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// AdminDeleteArticle 删除文章；不存在时返回 404。
func (a *API) AdminDeleteArticle(c *gin.Context) {
	deleted, err := a.articles.Delete(c.Request.Context(), idParam(c))
	if err != nil {
		respondStoreError(c, err, "Failed to delete article.")
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, "Article not found.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// AdminPublishArticle 发布文章。
func (a *API) AdminPublishArticle(c *gin.Context) {
	article, err := a.articles.Publish(c.Request.Context(), idParam(c))
	if err != nil {
		respondStoreError(c, err, "Failed to change article status.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

// AdminUnpublishArticle 撤回为草稿。
func (a *API) AdminUnpublishArticle(c *gin.Context) {
	article, err := a.articles.Unpublish(c.Request.Context(), idParam(c))
	if err != nil {
		respondStoreError(c, err, "Failed to change article status.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

type settingsPatchRequest struct {
	AboutContent    *string `json:"aboutContent"`
	ContactEmail    *string `json:"contactEmail"`
	ContactPhone    *string `json:"contactPhone"`
	ContactX        *string `json:"contactX"`
	ContactWhatsapp *string `json:"contactWhatsapp"`
}

// AdminUpdateSettings 合并提供的字段，空字符串清空该字段。
func (a *API) AdminUpdateSettings(c *gin.Context) {
	var req settingsPatchRequest
	if !bindJSON(c, &req, "Invalid settings payload.") {
		return
	}

	settings, err := a.settings.Update(c.Request.Context(), service.SettingsPatch{
		AboutContent:    req.AboutContent,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		ContactX:        req.ContactX,
		ContactWhatsapp: req.ContactWhatsapp,
	})
	if err != nil {
		respondStoreError(c, err, "Failed to update settings.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
