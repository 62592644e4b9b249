package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/folio/internal/config"
	"github.com/folio/internal/db"
	"github.com/folio/internal/service"
)

// 从 YAML 内容文件导入页面与图片，已存在的 slug 会被跳过
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	var dbType, dsn, file string
	flag.StringVar(&dbType, "db-type", cfg.DatabaseType, "database backend (sqlite or mysql)")
	flag.StringVar(&dsn, "db", cfg.DatabaseDSN, "database path or dsn")
	flag.StringVar(&file, "file", "content.yaml", "content file to import")
	flag.Parse()

	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", file, err)
		os.Exit(1)
	}
	content, err := service.ParseContentFile(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := db.Init(dbType, dsn); err != nil {
		fmt.Fprintf(os.Stderr, "init db: %v\n", err)
		os.Exit(1)
	}

	result, err := service.NewPageService(db.DB).Import(content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import pages: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("done: created %d pages (%d pictures), skipped %d existing slugs\n", result.Created, result.Pictures, result.Skipped)
}
