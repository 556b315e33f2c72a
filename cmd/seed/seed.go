package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pressroom/internal/db"
	"github.com/pressroom/internal/logger"
	"github.com/pressroom/internal/service"
	"github.com/pressroom/internal/validator"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// fixtureFile 是种子数据文件的结构。
type fixtureFile struct {
	Settings fixtureSettings  `yaml:"settings"`
	Articles []fixtureArticle `yaml:"articles"`
}

type fixtureArticle struct {
	Title      string `yaml:"title"`
	Author     string `yaml:"author"`
	CoverImage string `yaml:"coverImage"`
	Summary    string `yaml:"summary"`
	Content    string `yaml:"content"`
	Category   string `yaml:"category"`
	Published  bool   `yaml:"published"`
}

func (a fixtureArticle) form() validator.ArticleForm {
	return validator.ArticleForm{
		Title:      a.Title,
		Author:     a.Author,
		CoverImage: a.CoverImage,
		Summary:    a.Summary,
		Content:    a.Content,
		Category:   a.Category,
		Published:  a.Published,
	}
}

type fixtureSettings struct {
	AboutContent    *string `yaml:"aboutContent"`
	ContactEmail    *string `yaml:"contactEmail"`
	ContactPhone    *string `yaml:"contactPhone"`
	ContactX        *string `yaml:"contactX"`
	ContactWhatsapp *string `yaml:"contactWhatsapp"`
}

type seedResult struct {
	Created int
	Skipped int
}

func loadFixtures(path string) (*fixtureFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}

	var fixtures fixtureFile
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return &fixtures, nil
}

// seedStore 写入设置与文章。已存在同名标题的文章会被跳过；reset 时先清空文章并重置设置。
func seedStore(ctx context.Context, gdb *gorm.DB, fixtures *fixtureFile, reset bool) (seedResult, error) {
	var result seedResult

	// 先校验全部文章，避免只写入一半
	for i, article := range fixtures.Articles {
		if err := validator.ValidateArticle(article.form()); err != nil {
			return result, fmt.Errorf("article %d (%q): %v", i, article.Title, validator.FieldErrors(err))
		}
	}

	articles := service.NewArticleService(gdb)
	settings := service.NewSettingsService(gdb)

	if reset {
		if err := gdb.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.Article{}).Error; err != nil {
			return result, fmt.Errorf("clear articles: %w", err)
		}
		empty := ""
		if _, err := settings.Update(ctx, service.SettingsPatch{
			AboutContent:    &empty,
			ContactEmail:    &empty,
			ContactPhone:    &empty,
			ContactX:        &empty,
			ContactWhatsapp: &empty,
		}); err != nil {
			return result, fmt.Errorf("reset settings: %w", err)
		}
		logger.Info("store reset")
	}

	if _, err := settings.Update(ctx, service.SettingsPatch{
		AboutContent:    fixtures.Settings.AboutContent,
		ContactEmail:    fixtures.Settings.ContactEmail,
		ContactPhone:    fixtures.Settings.ContactPhone,
		ContactX:        fixtures.Settings.ContactX,
		ContactWhatsapp: fixtures.Settings.ContactWhatsapp,
	}); err != nil {
		return result, fmt.Errorf("seed settings: %w", err)
	}

	for _, article := range fixtures.Articles {
		form := article.form()
		var count int64
		if err := gdb.WithContext(ctx).Model(&db.Article{}).Where("title = ?", form.Title).Count(&count).Error; err != nil {
			return result, fmt.Errorf("check article %q: %w", form.Title, err)
		}
		if count > 0 {
			logger.Info("article exists, skipping", "title", form.Title)
			result.Skipped++
			continue
		}

		if _, err := articles.Create(ctx, form.Input()); err != nil {
			return result, fmt.Errorf("create article %q: %w", form.Title, err)
		}
		result.Created++
	}

	return result, nil
}
