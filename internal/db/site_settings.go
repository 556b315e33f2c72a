package db

import "time"

// SettingsID is the primary key of the only settings row.
const SettingsID = "site_settings"

// SiteSettings 存储 About / Contact 页面的站点级信息，表中只有一行。
type SiteSettings struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	AboutContent    *string   `gorm:"column:about_content;type:text" json:"aboutContent"`
	ContactEmail    *string   `gorm:"column:contact_email" json:"contactEmail"`
	ContactPhone    *string   `gorm:"column:contact_phone" json:"contactPhone"`
	ContactX        *string   `gorm:"column:contact_x" json:"contactX"`
	ContactWhatsapp *string   `gorm:"column:contact_whatsapp" json:"contactWhatsapp"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName 自定义表名以保持命名一致。
func (SiteSettings) TableName() string {
	return "settings"
}
