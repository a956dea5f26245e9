package main

import (
	"context"
	"log"

	"github.com/molspace/molspace-backend/config"
	"github.com/molspace/molspace-backend/internal/auth"
	"github.com/molspace/molspace-backend/internal/bootstrap"
	"github.com/molspace/molspace-backend/internal/storage/s3"
	viewcron "github.com/molspace/molspace-backend/internal/views/cron"
	viewrepo "github.com/molspace/molspace-backend/internal/views/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[fatal] operation=config error=%v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN()})
	if err != nil {
		log.Fatalf("[fatal] operation=db error=%v", err)
	}
	defer pool.Close()

	db, err := bootstrap.OpenSQL(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("[fatal] operation=db error=%v", err)
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("[fatal] operation=redis error=%v", err)
	}
	defer rdb.Close()

	authClient, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		log.Fatalf("[fatal] operation=firebase error=%v", err)
	}

	store, err := s3.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("[fatal] operation=storage error=%v", err)
	}

	sweeper := viewcron.NewSweeper(viewrepo.New(db), cfg.App.ViewRetentionDays)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("[fatal] operation=view_retention error=%v", err)
	}
	defer sweeper.Stop()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "molspace-backend",
		Version:     cfg.App.Version,
		DB:          db,
		Pool:        pool,
		Redis:       rdb,
		Auth:        authClient,
		Storage:     store,
	})

	log.Printf("[info] operation=serve port=%s env=%s", cfg.Server.Port, cfg.App.Environment)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("[fatal] operation=serve error=%v", err)
	}
}
