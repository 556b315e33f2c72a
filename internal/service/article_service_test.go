package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pressroom/internal/db"
	"github.com/pressroom/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupArticleServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:article-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
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

// steppingClock 每次调用前进一秒，保证 created_at 严格递增
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func sampleArticleInput(title string, published bool) ArticleInput {
	return ArticleInput{
		Title:      title,
		Author:     "Ada Writer",
		CoverImage: "https://example.com/cover.jpg",
		Summary:    "A summary that is long enough to pass the form rules.",
		Content:    "<p>" + strings.Repeat("Body text. ", 8) + "</p>",
		Category:   "Science",
		Published:  published,
	}
}

func TestArticleService_CreateThenGetRoundTrip(t *testing.T) {
	gdb := setupArticleServiceTestDB(t)
	svc := NewArticleService(gdb)
	ctx := context.Background()

	input := sampleArticleInput("Round trip title", false)
	created, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be populated")
	}

	got, err := svc.Get(ctx, created.ID, true)
	if err != nil {
		t.Fatalf("get article: %v", err)
	}

	if got.Title != input.Title || got.Author != input.Author || got.CoverImage != input.CoverImage ||
		got.Summary != input.Summary || got.Content != input.Content || got.Category != input.Category ||
		got.Published != input.Published {
		t.Fatalf("round trip mismatch: input %#v, got %#v", input, got)
	}
}

func TestArticleService_GetHidesDraftsFromPublic(t *testing.T) {
	gdb := setupArticleServiceTestDB(t)
	svc := NewArticleService(gdb)
	ctx := context.Background()

	draft, err := svc.Create(ctx, sampleArticleInput("Draft only", false))
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	if _, err := svc.Get(ctx, draft.ID, false); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound for public draft lookup, got %v", err)
	}
	if _, err := svc.Get(ctx, "missing-id", true); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound for missing id, got %v", err)
	}
}

func TestArticleService_ListFiltersUnpublished(t *testing.T) {
	gdb := setupArticleServiceTestDB(t)
	svc := NewArticleService(gdb)
	svc.SetClock(steppingClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	first, _ := svc.Create(ctx, sampleArticleInput("First published", true))
	if _, err := svc.Create(ctx, sampleArticleInput("Hidden draft", false)); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	third, _ := svc.Create(ctx, sampleArticleInput("Third published", true))

	public, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(public) != 2 {
		t.Fatalf("expected 2 published articles, got %d", len(public))
	}
	for _, article := range public {
		if !article.Published {
			t.Fatalf("public list leaked draft %q", article.Title)
		}
	}
	if public[0].ID != third.ID || public[1].ID != first.ID {
		t.Fatalf("expected newest first, got %q then %q", public[0].Title, public[1].Title)
	}

	all, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 articles including drafts, got %d", len(all))
	}
}

func TestArticleService_ListByCategoryNormalizesSlug(t *testing.T) {
	gdb := setupArticleServiceTestDB(t)
	svc := NewArticleService(gdb)
	ctx := context.Background()

	growth := sampleArticleInput("Growth article", true)
	growth.Category = "Personal Growth"
	if _, err := svc.Create(ctx, growth); err != nil {
		t.Fatalf("create growth article: %v", err)
	}
	growthDraft := growth
	growthDraft.Title = "Growth draft"
	growthDraft.Published = false
	if _, err := svc.Create(ctx, growthDraft); err != nil {
		t.Fatalf("create growth draft: %v", err)
	}
	if _, err := svc.Create(ctx, sampleArticleInput("Science article", true)); err != nil {
		t.Fatalf("create science article: %v", err)
	}

	public, err := svc.ListByCategory(ctx, "PERSONAL-growth", false)
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(public) != 1 || public[0].Title != "Growth article" {
		t.Fatalf("unexpected category listing: %#v", public)
	}

	all, err := svc.ListByCategory(ctx, "personal-growth", true)
	if err != nil {
		t.Fatalf("list by category with drafts: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 articles with drafts, got %d", len(all))
	}

	unknown, err := svc.ListByCategory(ctx, "gardening", true)
	if err != nil {
		t.Fatalf("unknown category should not fail: %v", err)
	}
	if len(unknown) != 0 {
		t.Fatalf("expected no articles for unknown category, got %d", len(unknown))
	}
}

func TestArticleService_UpdateIsPartial(t *testing.T) {
	gdb := setupArticleServiceTestDB(t)
	svc := NewArticleService(gdb)
	svc.SetClock(steppingClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	before, err := svc.Create(ctx, sampleArticleInput("Partial update", false))
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	published := true
	after, err := svc.Update(ctx, before.ID, ArticlePatch{Published: &published})
	if err != nil {
		t.Fatalf("update article: %v", err)
	}

	if !after.Published {
		t.Fatal("expected article to be published")
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("expected updated_at to advance, before %v after %v", before.UpdatedAt, after.UpdatedAt)
	}
	if after.Title != before.Title || after.Author != before.Author || after.CoverImage != before.CoverImage ||
		after.Summary != before.Summary || after.Content != before.Content || after.Category != before.Category {
		t.Fatalf("partial update changed other fields: before %#v after %#v", before, after)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", before.CreatedAt, after.CreatedAt)
	}
}

func TestArticleService_UpdateMissingArticle(t *testing.T) {
	gdb := setupArticleServiceTestDB(t)
	svc := NewArticleService(gdb)

	title := "Nope"
	if _, err := svc.Update(context.Background(), "does-not-exist", ArticlePatch{Title: &title}); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestArticleService_PublishAndUnpublish(t *testing.T) {
	gdb := setupArticleServiceTestDB(t)
	svc := NewArticleService(gdb)
	ctx := context.Background()

	article, err := svc.Create(ctx, sampleArticleInput("Toggle me", false))
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	published, err := svc.Publish(ctx, article.ID)
	if err != nil || !published.Published {
		t.Fatalf("publish failed: %v %#v", err, published)
	}

	draft, err := svc.Unpublish(ctx, article.ID)
	if err != nil || draft.Published {
		t.Fatalf("unpublish failed: %v %#v", err, draft)
	}
}

func TestArticleService_Delete(t *testing.T) {
	gdb := setupArticleServiceTestDB(t)
	svc := NewArticleService(gdb)
	ctx := context.Background()

	deleted, err := svc.Delete(ctx, "missing-id")
	if err != nil {
		t.Fatalf("deleting a missing id should not error: %v", err)
	}
	if deleted {
		t.Fatal("expected false when deleting a missing id")
	}

	article, err := svc.Create(ctx, sampleArticleInput("Delete me", true))
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	deleted, err = svc.Delete(ctx, article.ID)
	if err != nil || !deleted {
		t.Fatalf("expected delete to succeed, got %v %v", deleted, err)
	}
	if _, err := svc.Get(ctx, article.ID, true); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected article to be gone, got %v", err)
	}
}

func TestArticleService_Counts(t *testing.T) {
	gdb := setupArticleServiceTestDB(t)
	svc := NewArticleService(gdb)
	ctx := context.Background()

	for i, published := range []bool{true, false, true} {
		if _, err := svc.Create(ctx, sampleArticleInput(fmt.Sprintf("Counted %d", i), published)); err != nil {
			t.Fatalf("create article: %v", err)
		}
	}

	counts, err := svc.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Total != 3 || counts.Published != 2 || counts.Drafts != 1 {
		t.Fatalf("unexpected counts %#v", counts)
	}
}

func closeServiceTestDB(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close sql db: %v", err)
	}
}

func TestArticleService_StoreFailuresAreReturnedAndCounted(t *testing.T) {
	gdb := setupArticleServiceTestDB(t)
	svc := NewArticleService(gdb)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleArticleInput("Before failure", true))
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	closeServiceTestDB(t, gdb)

	listErrors := testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("articles.list", metrics.ResultError))
	getErrors := testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("articles.get", metrics.ResultError))
	updateErrors := testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("articles.update", metrics.ResultError))

	if _, err := svc.List(ctx, false); err == nil || !strings.Contains(err.Error(), "list articles") {
		t.Fatalf("expected wrapped list error, got %v", err)
	}

	_, err = svc.Get(ctx, created.ID, true)
	if err == nil || errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected store error distinct from not found, got %v", err)
	}
	if !strings.Contains(err.Error(), "get article "+created.ID) {
		t.Fatalf("expected wrapped get error, got %v", err)
	}

	title := "After failure"
	_, err = svc.Update(ctx, created.ID, ArticlePatch{Title: &title})
	if err == nil || errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected store error on update, got %v", err)
	}

	if got := testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("articles.list", metrics.ResultError)); got != listErrors+1 {
		t.Fatalf("expected list error counted, got %v want %v", got, listErrors+1)
	}
	if got := testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("articles.get", metrics.ResultError)); got != getErrors+1 {
		t.Fatalf("expected get error counted, got %v want %v", got, getErrors+1)
	}
	if got := testutil.ToFloat64(metrics.StoreOperationsTotal.WithLabelValues("articles.update", metrics.ResultError)); got != updateErrors+1 {
		t.Fatalf("expected update error counted, got %v want %v", got, updateErrors+1)
	}
}

func TestSettingsService_StoreFailureIsNotNotFound(t *testing.T) {
	gdb := setupArticleServiceTestDB(t)
	svc := NewSettingsService(gdb)
	closeServiceTestDB(t, gdb)

	_, err := svc.Get(context.Background())
	if err == nil || errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected store error, got %v", err)
	}
	if !strings.Contains(err.Error(), "load site settings") {
		t.Fatalf("expected wrapped settings error, got %v", err)
	}
}
