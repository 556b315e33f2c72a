package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"
	"github.com/pressroom/internal/db"
)

const feedExcerptLength = 500

// ShowFeed 输出已发布文章的 RSS 2.0。
func (a *API) ShowFeed(c *gin.Context) {
	articles, err := a.articles.List(c.Request.Context(), false)
	if err != nil {
		c.Error(err)
		c.String(http.StatusInternalServerError, "failed to load articles")
		return
	}

	rss, err := a.buildFeed(articles, time.Now())
	if err != nil {
		c.Error(err)
		c.String(http.StatusInternalServerError, "failed to generate feed")
		return
	}

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func (a *API) buildFeed(articles []db.Article, now time.Time) (string, error) {
	feed := &feeds.Feed{
		Title:       a.siteName,
		Link:        &feeds.Link{Href: a.absoluteURL("/")},
		Description: "Latest articles from " + a.siteName,
		Created:     now,
	}
	if len(articles) > 0 {
		feed.Updated = articles[0].UpdatedAt
	}

	feed.Items = make([]*feeds.Item, 0, len(articles))
	for _, article := range articles {
		link := a.absoluteURL("/article/" + article.ID)
		item := &feeds.Item{
			Title:       article.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Author:      &feeds.Author{Name: article.Author},
			Description: article.Summary,
			Created:     article.CreatedAt,
			Updated:     article.UpdatedAt,
		}
		if item.Description == "" {
			item.Description = plainExcerpt(article.Content, feedExcerptLength)
		}
		if article.CoverImage != "" {
			item.Enclosure = &feeds.Enclosure{Url: article.CoverImage, Type: "image/*", Length: "0"}
		}
		feed.Items = append(feed.Items, item)
	}

	rss, err := feed.ToRss()
	if err != nil {
		return "", fmt.Errorf("generate rss: %w", err)
	}
	return rss, nil
}
