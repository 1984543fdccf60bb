package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vebetterdao/observability/logging"
	"vebetterdao/services/indexd/config"
	"vebetterdao/services/indexd/indexer"
	"vebetterdao/services/indexd/models"
	"vebetterdao/services/indexd/server"
)

func main() {
	configPath := flag.String("config", "indexd.yaml", "path to the indexer configuration")
	flag.Parse()

	logging.Setup("indexd", "")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("auto migrate error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ix := indexer.New(db, cfg.NodeWSURL)
	go func() {
		if err := ix.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("indexer error: %v", err)
		}
	}()

	srv := &http.Server{Addr: cfg.ListenAddress, Handler: server.New(db).Handler()}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	log.Printf("starting indexd on %s", cfg.ListenAddress)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
