package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Article 定义了文章模型
type Article struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Author     string    `gorm:"not null" json:"author"`
	CoverImage string    `gorm:"column:cover_image" json:"coverImage"`
	Summary    string    `gorm:"type:text" json:"summary"`
	Content    string    `gorm:"type:text" json:"content"`
	Category   string    `gorm:"size:64;index" json:"category"`
	Published  bool      `gorm:"index;not null;default:false" json:"published"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName keeps the table name aligned with the hosted schema.
func (Article) TableName() string {
	return "articles"
}

// BeforeCreate assigns an opaque id when the caller did not supply one.
func (a *Article) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ArticleCategories is the closed set of category labels, in navigation order.
var ArticleCategories = []string{
	"Lifestyle",
	"Science",
	"Technology",
	"Health",
	"Travel",
	"Culture",
	"Personal Growth",
}

// IsArticleCategory reports whether label is one of ArticleCategories.
func IsArticleCategory(label string) bool {
	for _, candidate := range ArticleCategories {
		if candidate == label {
			return true
		}
	}
	return false
}
