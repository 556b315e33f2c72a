// Package validator checks admin form input before it reaches the store.
package validator

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/pressroom/internal/db"
	"github.com/pressroom/internal/service"
)

// ArticleForm is the editor payload. Field names double as form and JSON keys.
type ArticleForm struct {
	Title      string `json:"title" form:"title"`
	Author     string `json:"author" form:"author"`
	CoverImage string `json:"coverImage" form:"coverImage"`
	Summary    string `json:"summary" form:"summary"`
	Content    string `json:"content" form:"content"`
	Category   string `json:"category" form:"category"`
	Published  bool   `json:"published" form:"published"`
}

// FromArticle pre-fills a form from a stored article.
func FromArticle(article db.Article) ArticleForm {
	return ArticleForm{
		Title:      article.Title,
		Author:     article.Author,
		CoverImage: article.CoverImage,
		Summary:    article.Summary,
		Content:    article.Content,
		Category:   article.Category,
		Published:  article.Published,
	}
}

// Input hands the validated fields to the store client unchanged.
func (f ArticleForm) Input() service.ArticleInput {
	return service.ArticleInput{
		Title:      f.Title,
		Author:     f.Author,
		CoverImage: f.CoverImage,
		Summary:    f.Summary,
		Content:    f.Content,
		Category:   f.Category,
		Published:  f.Published,
	}
}

// absoluteURL requires a scheme and host, which is.URL alone does not.
var absoluteURL = validation.By(func(value interface{}) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("Cover image must be a valid URL.")
	}
	return nil
})

// ValidateArticle applies the editor rules. The returned error is a
// validation.Errors keyed by JSON field name.
func ValidateArticle(form ArticleForm) error {
	categories := make([]interface{}, 0, len(db.ArticleCategories))
	for _, label := range db.ArticleCategories {
		categories = append(categories, label)
	}

	return validation.ValidateStruct(&form,
		validation.Field(&form.Title,
			validation.Required.Error("Title must be at least 5 characters."),
			validation.RuneLength(5, 0).Error("Title must be at least 5 characters."),
			validation.RuneLength(0, 100).Error("Title must not exceed 100 characters."),
		),
		validation.Field(&form.Author,
			validation.Required.Error("Author name must be at least 3 characters."),
			validation.RuneLength(3, 0).Error("Author name must be at least 3 characters."),
			validation.RuneLength(0, 50).Error("Author name must not exceed 50 characters."),
		),
		validation.Field(&form.CoverImage,
			validation.Required.Error("Cover image URL is required."),
			validation.RuneLength(10, 0).Error("Cover image URL is required."),
			is.URL.Error("Cover image must be a valid URL."),
			absoluteURL,
		),
		validation.Field(&form.Summary,
			validation.Required.Error("Summary must be at least 20 characters."),
			validation.RuneLength(20, 0).Error("Summary must be at least 20 characters."),
			validation.RuneLength(0, 300).Error("Summary must not exceed 300 characters."),
		),
		validation.Field(&form.Content,
			validation.Required.Error("Content must be at least 50 characters."),
			validation.RuneLength(50, 0).Error("Content must be at least 50 characters."),
		),
		validation.Field(&form.Category,
			validation.Required.Error("Please select a valid category."),
			validation.In(categories...).Error("Please select a valid category."),
		),
	)
}

// FieldErrors flattens a validation result into field -> message. Errors
// that are not field errors land under "form".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"form": err.Error()}
	}

	out := make(map[string]string, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		if fieldErr == nil {
			continue
		}
		out[field] = strings.TrimSpace(fieldErr.Error())
	}
	return out
}
