package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pressroom/internal/adminsession"
	"github.com/pressroom/internal/config"
	"github.com/pressroom/internal/db"
	"github.com/pressroom/internal/logger"
	"github.com/pressroom/internal/router"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var addr, envFile string

	flagSet := pflag.NewFlagSet("pressroom", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", "", "listen address (default: LISTEN_ADDR or :PORT)")
	flagSet.StringVar(&envFile, "env-file", ".env", "optional dotenv file")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg := config.Load()
	logger.Init(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	// 初始化数据库
	if err := db.Init(cfg.DatabaseURL, cfg.DatabasePath); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	verifier, err := adminsession.LoadKeywordVerifier(cfg.AdminKeyword, cfg.AdminKeywordHash)
	if err != nil {
		return fmt.Errorf("load admin keyword: %w", err)
	}

	gin.SetMode(cfg.GinMode)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(router.Options{
		DB:            db.DB,
		Verifier:      verifier,
		SessionSecret: cfg.SessionSecret,
		SiteName:      cfg.SiteName,
		BaseURL:       cfg.SiteBaseURL,
		UploadDir:     cfg.UploadDir,
		UploadURL:     cfg.UploadURLPath,
		SecureCookie:  strings.HasPrefix(cfg.SiteBaseURL, "https://"),
	})

	listenAddr := strings.TrimSpace(addr)
	if listenAddr == "" {
		listenAddr = cfg.ListenAddr
	}

	logger.Info("server starting", "addr", listenAddr, "postgres", cfg.UsesPostgres())
	if err := r.Run(listenAddr); err != nil {
		return fmt.Errorf("run server: %w", err)
	}
	return nil
}
