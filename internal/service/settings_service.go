package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pressroom/internal/db"
	"github.com/pressroom/internal/logger"
	"github.com/pressroom/internal/metrics"
	"gorm.io/gorm"
)

// ErrSettingsNotFound 表示站点设置单行记录缺失。
var ErrSettingsNotFound = errors.New("site settings not found")

// SettingsPatch 用于部分更新站点设置，nil 字段保持不变，空字符串会清空该字段。
type SettingsPatch struct {
	AboutContent    *string
	ContactEmail    *string
	ContactPhone    *string
	ContactX        *string
	ContactWhatsapp *string
}

// SettingsService 提供站点设置的读取与更新能力。
type SettingsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSettingsService 构造 SettingsService。
func NewSettingsService(gdb *gorm.DB) *SettingsService {
	return &SettingsService{db: gdb, now: time.Now}
}

// SetClock 替换时间来源，主要面向测试场景。
func (s *SettingsService) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Get 读取站点设置单行记录。
func (s *SettingsService) Get(ctx context.Context) (*db.SiteSettings, error) {
	started := time.Now()

	var settings db.SiteSettings
	if err := s.db.WithContext(ctx).Where("id = ?", db.SettingsID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ObserveStore("settings.get", metrics.ResultNotFound, started)
			return nil, ErrSettingsNotFound
		}
		return nil, s.fail("settings.get", started, fmt.Errorf("load site settings: %w", err))
	}

	metrics.ObserveStore("settings.get", metrics.ResultSuccess, started)
	return &settings, nil
}

// Update 合并提供的字段并刷新 updated_at。
func (s *SettingsService) Update(ctx context.Context, patch SettingsPatch) (*db.SiteSettings, error) {
	started := time.Now()

	updates := patch.columns()
	updates["updated_at"] = s.now().UTC()

	var settings db.SiteSettings
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.SiteSettings{}).Where("id = ?", db.SettingsID).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSettingsNotFound
		}
		return tx.Where("id = ?", db.SettingsID).First(&settings).Error
	})
	if err != nil {
		if errors.Is(err, ErrSettingsNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ObserveStore("settings.update", metrics.ResultNotFound, started)
			return nil, ErrSettingsNotFound
		}
		return nil, s.fail("settings.update", started, fmt.Errorf("update site settings: %w", err))
	}

	metrics.ObserveStore("settings.update", metrics.ResultSuccess, started)
	return &settings, nil
}

func (s *SettingsService) fail(operation string, started time.Time, err error) error {
	metrics.ObserveStore(operation, metrics.ResultError, started)
	logger.Error("store operation failed", "operation", operation, "error", err)
	return err
}

func (p SettingsPatch) columns() map[string]interface{} {
	updates := map[string]interface{}{}
	set := func(column string, value *string) {
		if value == nil {
			return
		}
		if trimmed := nullableString(*value); trimmed != nil {
			updates[column] = *trimmed
			return
		}
		updates[column] = nil
	}

	set("about_content", p.AboutContent)
	set("contact_email", p.ContactEmail)
	set("contact_phone", p.ContactPhone)
	set("contact_x", p.ContactX)
	set("contact_whatsapp", p.ContactWhatsapp)
	return updates
}

func nullableString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// StringValue 返回可空字符串的值，nil 时为空串。
func StringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
