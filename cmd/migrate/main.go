package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go-inventory-pos/internal/config"
	"go-inventory-pos/pkg/database"
	"go-inventory-pos/pkg/logger"

	"go.uber.org/zap"
)

const usage = `usage: migrate <command> [args]

commands:
  up            apply all pending migrations
  up-by-one     apply the next migration
  down          roll back the latest migration
  redo          roll back and re-apply the latest migration
  status        print migration status
  version       print the current schema version
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	db, err := database.Connect(cfg.DB.Options(), false)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("database handle", zap.Error(err))
	}

	command := flag.Arg(0)
	if err := database.Migrate(context.Background(), sqlDB, command, flag.Args()[1:]...); err != nil {
		log.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
	log.Info("migration finished", zap.String("command", command))
}
