package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string `yaml:"listen_addr"`
	Port              string `yaml:"port"`
	DatabaseType      string `yaml:"database_type"`
	DatabaseDSN       string `yaml:"database_dsn"`
	SessionSecret     string `yaml:"session_secret"`
	GinMode           string `yaml:"gin_mode"`
	AdminUsername     string `yaml:"admin_username"`
	AdminPassword     string `yaml:"admin_password"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	SiteName          string `yaml:"site_name"`
	MediaDir          string `yaml:"media_dir"`
	MediaURLPath      string `yaml:"media_url_path"`
}

// Load 读取可选的 YAML 配置文件与环境变量，环境变量优先，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	var cfg AppConfig

	path := strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	if path == "" {
		path = "config.yaml"
	}
	if err := readFile(path, &cfg); err != nil {
		return AppConfig{}, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// AdminEnabled reports whether any admin credential is configured.
func (c AppConfig) AdminEnabled() bool {
	return c.AdminPassword != "" || c.AdminPasswordHash != ""
}

func readFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	override := func(dst *string, keys ...string) {
		for _, key := range keys {
			if value := strings.TrimSpace(os.Getenv(key)); value != "" {
				*dst = value
				return
			}
		}
	}

	override(&cfg.Port, "PORT")
	override(&cfg.ListenAddr, "LISTEN_ADDR")
	override(&cfg.DatabaseType, "DB_TYPE")
	override(&cfg.DatabaseDSN, "DB_DSN", "DATABASE_PATH")
	override(&cfg.SessionSecret, "SESSION_SECRET")
	override(&cfg.GinMode, "GIN_MODE")
	override(&cfg.AdminUsername, "ADMIN_USERNAME")
	override(&cfg.AdminPassword, "ADMIN_PASSWORD", "SECRET")
	override(&cfg.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	override(&cfg.SiteName, "SITE_NAME")
	override(&cfg.MediaDir, "MEDIA_DIR")
	override(&cfg.MediaURLPath, "MEDIA_URL_PATH")
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}

	cfg.DatabaseType = strings.ToLower(strings.TrimSpace(cfg.DatabaseType))
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = "sqlite"
	}
	if cfg.DatabaseDSN == "" && cfg.DatabaseType == "sqlite" {
		cfg.DatabaseDSN = "folio.db"
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "folio-dev-secret"
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "release"
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "Folio"
	}
	if cfg.MediaDir == "" {
		cfg.MediaDir = "media"
	}
	if cfg.MediaURLPath == "" {
		cfg.MediaURLPath = "/media"
	}
	if !strings.HasPrefix(cfg.MediaURLPath, "/") {
		cfg.MediaURLPath = "/" + cfg.MediaURLPath
	}
	cfg.MediaURLPath = strings.TrimRight(cfg.MediaURLPath, "/")
	if cfg.MediaURLPath == "" {
		cfg.MediaURLPath = "/media"
	}
}
