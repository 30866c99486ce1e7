package main

import (
	"context"
	"log"
	"strings"

	"github.com/terralote/explorer-backend/config"
	"github.com/terralote/explorer-backend/internal/bootstrap"
	explorercron "github.com/terralote/explorer-backend/internal/explorer/cron"
	"github.com/terralote/explorer-backend/internal/explorer/repository"
	"github.com/terralote/explorer-backend/internal/explorer/service"
	"github.com/terralote/explorer-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	if rdb == nil {
		log.Println("REDIS_ADDR not set, snapshot cache disabled")
	}

	store := storage.New(cfg.Storage.SupabaseURL, cfg.Storage.ServiceKey, cfg.Storage.Bucket)
	repo := repository.NewRepo(db)

	var cache service.Cache
	if rdb != nil {
		cache = repository.NewSnapshotCache(rdb, cfg.Cache.TTL)
	}

	svc := service.New(repo, cache, store)
	defer svc.Close()

	if rdb != nil && cfg.Cache.WarmSchedule != "" {
		warmer := explorercron.NewWarmer(svc, cfg.Cache.WarmSchedule)
		if err := warmer.Start(); err != nil {
			log.Fatalf("warmer: %v", err)
		}
		defer warmer.Stop()
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    "explorer-backend",
		Version:        cfg.App.Version,
		AllowedOrigins: splitOrigins(cfg.App.CORSOrigins),
		DB:             db,
		Redis:          rdb,
		Explorer:       svc,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	log.Fatal(r.Run(":" + cfg.Server.Port))
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
