package handler

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pressroom/internal/db"
	"github.com/pressroom/internal/service"
	"github.com/pressroom/internal/view"
)

const featuredCount = 3

// ShowHome renders the landing page with the newest published articles.
func (a *API) ShowHome(c *gin.Context) {
	articles, err := a.articles.List(c.Request.Context(), false)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "home.html", gin.H{
			"title": "Home",
			"error": "Failed to load articles. Please try again later.",
		})
		return
	}

	featured := articles
	if len(featured) > featuredCount {
		featured = featured[:featuredCount]
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title":    "Home",
		"featured": featured,
		"articles": articles,
	})
}

// ShowCategory lists published articles for a category slug.
func (a *API) ShowCategory(c *gin.Context) {
	slug := c.Param("slug")
	label := service.NormalizeCategorySlug(slug)
	if label == "" {
		label = "Unknown Category"
	}

	articles, err := a.articles.ListByCategory(c.Request.Context(), slug, false)
	if err != nil {
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "category.html", gin.H{
			"title":    label,
			"category": label,
			"error":    "Failed to load articles for this category. Please try again later.",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "category.html", gin.H{
		"title":    label,
		"category": label,
		"articles": articles,
	})
}

// ShowArticle renders a single article. Drafts are only visible once admin mode is unlocked.
func (a *API) ShowArticle(c *gin.Context) {
	article, err := a.articles.Get(c.Request.Context(), idParam(c), a.includeDrafts(c))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			a.ShowNotFound(c)
			return
		}
		c.Error(err)
		a.renderHTML(c, http.StatusInternalServerError, "article.html", gin.H{
			"title": "Article",
			"error": "Failed to load article. Please try again later.",
		})
		return
	}

	content, err := renderContent(article.Content)
	if err != nil {
		c.Error(err)
		content = template.HTML("<p>Content is unavailable right now.</p>")
	}

	articleURL := a.absoluteURL("/article/" + article.ID)
	a.renderHTML(c, http.StatusOK, "article.html", gin.H{
		"title":        article.Title,
		"article":      article,
		"content":      content,
		"categorySlug": service.CategorySlug(article.Category),
		"articleURL":   articleURL,
		"shareLinks":   view.ShareLinks(article.Title, articleURL),
	})
}

// ShowAbout renders the about content stored in site settings.
func (a *API) ShowAbout(c *gin.Context) {
	settings, err := a.settings.Get(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		message := "Failed to load about content. Please try again later."
		if errors.Is(err, service.ErrSettingsNotFound) {
			status = http.StatusOK
			message = "About content not found."
		} else {
			c.Error(err)
		}
		a.renderHTML(c, status, "about.html", gin.H{
			"title": "About",
			"error": message,
		})
		return
	}

	var content template.HTML
	if about := service.StringValue(settings.AboutContent); about != "" {
		if content, err = renderContent(about); err != nil {
			c.Error(err)
			content = ""
		}
	}

	a.renderHTML(c, http.StatusOK, "about.html", gin.H{
		"title":   "About",
		"content": content,
	})
}

// ShowContact renders the contact links configured in site settings.
func (a *API) ShowContact(c *gin.Context) {
	settings, err := a.settings.Get(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		message := "Failed to load contact information. Please try again later."
		if errors.Is(err, service.ErrSettingsNotFound) {
			status = http.StatusOK
			message = "Contact information not found."
		} else {
			c.Error(err)
		}
		a.renderHTML(c, status, "contact.html", gin.H{
			"title": "Contact",
			"error": message,
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "contact.html", gin.H{
		"title": "Contact",
		"links": view.ContactLinks(contactDetails(settings)),
	})
}

// ShowNotFound renders the 404 page.
func (a *API) ShowNotFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "not_found.html", gin.H{
		"title": "Page not found",
	})
}

func contactDetails(settings *db.SiteSettings) view.ContactDetails {
	return view.ContactDetails{
		Email:    service.StringValue(settings.ContactEmail),
		Phone:    service.StringValue(settings.ContactPhone),
		X:        service.StringValue(settings.ContactX),
		WhatsApp: service.StringValue(settings.ContactWhatsapp),
	}
}
