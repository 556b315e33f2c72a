package service

import (
	"strings"

	"github.com/pressroom/internal/db"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeCategorySlug turns a hyphenated slug into its display label:
// "science-tech" and "SCIENCE-Tech" both become "Science Tech".
func NormalizeCategorySlug(slug string) string {
	words := strings.FieldsFunc(strings.ToLower(slug), func(r rune) bool {
		return r == '-' || r == ' ' || r == '_'
	})
	if len(words) == 0 {
		return ""
	}
	// Casers carry state, so each call gets its own.
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// CategorySlug is the inverse of NormalizeCategorySlug for a display label.
func CategorySlug(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), "-")
}

// CategoryLink pairs a category label with its slug for navigation.
type CategoryLink struct {
	Label string
	Slug  string
}

// CategoryLinks lists every category in navigation order.
func CategoryLinks() []CategoryLink {
	links := make([]CategoryLink, 0, len(db.ArticleCategories))
	for _, label := range db.ArticleCategories {
		links = append(links, CategoryLink{Label: label, Slug: CategorySlug(label)})
	}
	return links
}
