package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 初始化数据库连接并执行自动迁移。
// databaseURL 指向托管的 postgres；为空时使用 databasePath 处的 sqlite 文件，
// databasePath 为空时将回退到默认值 pressroom.db。
func Init(databaseURL, databasePath string) error {
	gdb, err := Open(databaseURL, databasePath, &gorm.Config{})
	if err != nil {
		return err
	}

	if err := Migrate(gdb); err != nil {
		return err
	}

	DB = gdb
	return nil
}

// Open picks the driver from the connection settings without migrating.
func Open(databaseURL, databasePath string, cfg *gorm.Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = &gorm.Config{}
	}

	if url := strings.TrimSpace(databaseURL); url != "" {
		return gorm.Open(postgres.Open(url), cfg)
	}

	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "pressroom.db"
	}

	if err := ensureParentDir(path); err != nil {
		return nil, err
	}

	return gorm.Open(sqlite.Open(path), cfg)
}

// Migrate creates the articles and settings tables and makes sure the
// settings singleton row exists.
func Migrate(gdb *gorm.DB) error {
	if gdb == nil {
		return errors.New("database not initialized")
	}

	if err := gdb.AutoMigrate(&Article{}, &SiteSettings{}); err != nil {
		return err
	}

	return EnsureSettingsRow(gdb)
}

// EnsureSettingsRow inserts the singleton settings row when it is missing and
// leaves an existing row untouched.
func EnsureSettingsRow(gdb *gorm.DB) error {
	row := SiteSettings{ID: SettingsID}
	return gdb.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}

	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
