package main

import (
	"flag"

	"github.com/folio/internal/config"
	"github.com/folio/internal/db"
	"github.com/folio/internal/router"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	cfg, err := config.Load()
	if err != nil {
		klog.Fatalf("failed to load config: %v", err)
	}

	// 初始化数据库，失败时以降级模式继续提供页面
	if err := db.Init(cfg.DatabaseType, cfg.DatabaseDSN); err != nil {
		klog.Errorf("database not available, running in fallback mode: %v", err)
	}

	// 设置并运行 Gin 服务器
	r, err := router.SetupRouter(cfg, db.DB)
	if err != nil {
		klog.Fatalf("failed to set up router: %v", err)
	}

	klog.Infof("listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		klog.Fatalf("failed to run server: %v", err)
	}
}
