package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例，未配置数据库时为 nil。
var DB *gorm.DB

// HomeSlug is the reserved slug rendered at "/".
const HomeSlug = "home"

// Init 初始化数据库连接并执行自动迁移。
// dbType 为空时使用 sqlite，sqlite 的 dsn 为空时回退到 folio.db。
func Init(dbType, dsn string) error {
	gdb, err := Open(dbType, dsn)
	if err != nil {
		return err
	}

	if err := Migrate(gdb); err != nil {
		return err
	}
	if err := EnsureHomePage(gdb); err != nil {
		return err
	}

	DB = gdb
	return nil
}

// Open connects to the configured backend without migrating.
func Open(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "mysql":
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("mysql dsn is required")
		}
		dialector = mysql.Open(dsn)
	case "", "sqlite":
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "folio.db"
		}
		if err := ensureParentDir(path); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	// TranslateError 让唯一索引冲突以 gorm.ErrDuplicatedKey 的形式返回
	return gorm.Open(dialector, &gorm.Config{TranslateError: true})
}

// Migrate creates or updates the page and picture tables.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&Page{}, &Picture{})
}

// EnsureHomePage seeds the reserved home page when the table has none.
func EnsureHomePage(gdb *gorm.DB) error {
	var count int64
	if err := gdb.Model(&Page{}).Where("slug = ?", HomeSlug).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	home := Page{
		Title:    "Home",
		Content:  "<p>Welcome. Edit this page from the admin screen.</p>",
		Slug:     HomeSlug,
		Sequence: 0,
	}
	return gdb.Create(&home).Error
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
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
