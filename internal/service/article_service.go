package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pressroom/internal/db"
	"github.com/pressroom/internal/logger"
	"github.com/pressroom/internal/metrics"
	"gorm.io/gorm"
)

var ErrArticleNotFound = errors.New("article not found")

// ArticleService wraps article related database operations.
type ArticleService struct {
	db  *gorm.DB
	now func() time.Time
}

// ArticleInput holds the fields accepted when creating an article.
type ArticleInput struct {
	Title      string
	Author     string
	CoverImage string
	Summary    string
	Content    string
	Category   string
	Published  bool
}

// ArticlePatch describes a partial update; nil fields are left untouched.
type ArticlePatch struct {
	Title      *string
	Author     *string
	CoverImage *string
	Summary    *string
	Content    *string
	Category   *string
	Published  *bool
}

// ArticleCounts aggregates dashboard counters.
type ArticleCounts struct {
	Total     int64
	Published int64
	Drafts    int64
}

// NewArticleService creates an ArticleService instance.
func NewArticleService(gdb *gorm.DB) *ArticleService {
	return &ArticleService{db: gdb, now: time.Now}
}

// SetClock 替换时间来源，主要面向测试场景。
func (s *ArticleService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// List returns articles ordered by created time descending. Drafts are
// included only when includeUnpublished is set.
func (s *ArticleService) List(ctx context.Context, includeUnpublished bool) ([]db.Article, error) {
	started := time.Now()

	query := s.db.WithContext(ctx).Model(&db.Article{})
	if !includeUnpublished {
		query = query.Where("published = ?", true)
	}

	var articles []db.Article
	if err := query.Order("created_at desc").Order("id desc").Find(&articles).Error; err != nil {
		return nil, s.fail("articles.list", started, fmt.Errorf("list articles: %w", err))
	}

	metrics.ObserveStore("articles.list", metrics.ResultSuccess, started)
	return articles, nil
}

// Get fetches an article by id. An unpublished article counts as missing
// unless includeUnpublished is set.
func (s *ArticleService) Get(ctx context.Context, id string, includeUnpublished bool) (*db.Article, error) {
	started := time.Now()

	query := s.db.WithContext(ctx).Where("id = ?", id)
	if !includeUnpublished {
		query = query.Where("published = ?", true)
	}

	var article db.Article
	if err := query.First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ObserveStore("articles.get", metrics.ResultNotFound, started)
			return nil, ErrArticleNotFound
		}
		return nil, s.fail("articles.get", started, fmt.Errorf("get article %s: %w", id, err))
	}

	metrics.ObserveStore("articles.get", metrics.ResultSuccess, started)
	return &article, nil
}

// ListByCategory lists articles whose category matches the normalized slug.
func (s *ArticleService) ListByCategory(ctx context.Context, slug string, includeUnpublished bool) ([]db.Article, error) {
	started := time.Now()
	category := NormalizeCategorySlug(slug)

	query := s.db.WithContext(ctx).Model(&db.Article{}).Where("category = ?", category)
	if !includeUnpublished {
		query = query.Where("published = ?", true)
	}

	var articles []db.Article
	if err := query.Order("created_at desc").Order("id desc").Find(&articles).Error; err != nil {
		return nil, s.fail("articles.list_by_category", started, fmt.Errorf("list articles for category %s: %w", category, err))
	}

	metrics.ObserveStore("articles.list_by_category", metrics.ResultSuccess, started)
	return articles, nil
}

// Create persists a new article with a generated id and timestamps.
func (s *ArticleService) Create(ctx context.Context, input ArticleInput) (*db.Article, error) {
	started := time.Now()
	now := s.now().UTC()

	article := db.Article{
		Title:      input.Title,
		Author:     input.Author,
		CoverImage: input.CoverImage,
		Summary:    input.Summary,
		Content:    input.Content,
		Category:   input.Category,
		Published:  input.Published,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// Select("*") 确保 published=false 也会被写入，而不是被当作零值忽略
	if err := s.db.WithContext(ctx).Select("*").Create(&article).Error; err != nil {
		return nil, s.fail("articles.create", started, fmt.Errorf("create article: %w", err))
	}

	metrics.ObserveStore("articles.create", metrics.ResultSuccess, started)
	return &article, nil
}

// Update merges the provided fields into an existing article and refreshes
// updated_at.
func (s *ArticleService) Update(ctx context.Context, id string, patch ArticlePatch) (*db.Article, error) {
	started := time.Now()

	updates := patch.columns()
	updates["updated_at"] = s.now().UTC()

	var article db.Article
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.Article{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrArticleNotFound
		}
		return tx.Where("id = ?", id).First(&article).Error
	})
	if err != nil {
		if errors.Is(err, ErrArticleNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ObserveStore("articles.update", metrics.ResultNotFound, started)
			return nil, ErrArticleNotFound
		}
		return nil, s.fail("articles.update", started, fmt.Errorf("update article %s: %w", id, err))
	}

	metrics.ObserveStore("articles.update", metrics.ResultSuccess, started)
	return &article, nil
}

// Delete removes an article by id. It reports false without an error when
// nothing matched.
func (s *ArticleService) Delete(ctx context.Context, id string) (bool, error) {
	started := time.Now()

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Article{})
	if result.Error != nil {
		return false, s.fail("articles.delete", started, fmt.Errorf("delete article %s: %w", id, result.Error))
	}
	if result.RowsAffected == 0 {
		metrics.ObserveStore("articles.delete", metrics.ResultNotFound, started)
		return false, nil
	}

	metrics.ObserveStore("articles.delete", metrics.ResultSuccess, started)
	return true, nil
}

// Publish marks an article as published.
func (s *ArticleService) Publish(ctx context.Context, id string) (*db.Article, error) {
	published := true
	return s.Update(ctx, id, ArticlePatch{Published: &published})
}

// Unpublish moves an article back to draft.
func (s *ArticleService) Unpublish(ctx context.Context, id string) (*db.Article, error) {
	published := false
	return s.Update(ctx, id, ArticlePatch{Published: &published})
}

// Counts returns total, published and draft numbers.
func (s *ArticleService) Counts(ctx context.Context) (ArticleCounts, error) {
	started := time.Now()
	var counts ArticleCounts

	base := s.db.WithContext(ctx).Model(&db.Article{})
	if err := base.Count(&counts.Total).Error; err != nil {
		return ArticleCounts{}, s.fail("articles.count", started, fmt.Errorf("count articles: %w", err))
	}
	if err := s.db.WithContext(ctx).Model(&db.Article{}).Where("published = ?", true).Count(&counts.Published).Error; err != nil {
		return ArticleCounts{}, s.fail("articles.count", started, fmt.Errorf("count published articles: %w", err))
	}
	counts.Drafts = counts.Total - counts.Published

	metrics.ObserveStore("articles.count", metrics.ResultSuccess, started)
	return counts, nil
}

func (s *ArticleService) fail(operation string, started time.Time, err error) error {
	metrics.ObserveStore(operation, metrics.ResultError, started)
	logger.Error("store operation failed", "operation", operation, "error", err)
	return err
}

func (p ArticlePatch) columns() map[string]interface{} {
	updates := map[string]interface{}{}
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Author != nil {
		updates["author"] = *p.Author
	}
	if p.CoverImage != nil {
		updates["cover_image"] = *p.CoverImage
	}
	if p.Summary != nil {
		updates["summary"] = *p.Summary
	}
	if p.Content != nil {
		updates["content"] = *p.Content
	}
	if p.Category != nil {
		updates["category"] = *p.Category
	}
	if p.Published != nil {
		updates["published"] = *p.Published
	}
	return updates
}

// PatchFromInput turns a full input into a patch that sets every field.
func PatchFromInput(input ArticleInput) ArticlePatch {
	return ArticlePatch{
		Title:      &input.Title,
		Author:     &input.Author,
		CoverImage: &input.CoverImage,
		Summary:    &input.Summary,
		Content:    &input.Content,
		Category:   &input.Category,
		Published:  &input.Published,
	}
}
