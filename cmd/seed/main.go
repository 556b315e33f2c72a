// Command seed loads demo articles and site settings from a YAML fixture file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pressroom/internal/config"
	"github.com/pressroom/internal/db"
	"github.com/pressroom/internal/logger"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var fixturesPath, envFile string
	var reset bool

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&fixturesPath, "fixtures", "fixtures/articles.yaml", "YAML fixture file")
	flagSet.BoolVar(&reset, "reset", false, "delete all articles and clear settings before seeding")
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

	fixtures, err := loadFixtures(fixturesPath)
	if err != nil {
		return err
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabaseURL, cfg.DatabasePath); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	result, err := seedStore(context.Background(), db.DB, fixtures, reset)
	if err != nil {
		return err
	}

	logger.Info("seed complete", "created", result.Created, "skipped", result.Skipped, "fixtures", fixturesPath)
	return nil
}
