package main

import (
	"context"
	"log"
	"time"

	"relay-chat/config"
	"relay-chat/internal/redis"
	"relay-chat/internal/repository"
	"relay-chat/internal/server"
	"relay-chat/pkg/database"
	"relay-chat/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	db, err := database.Connect(cfg, l)
	if err != nil {
		l.Logger.Fatal(err.Error())
	}
	defer database.Close(db)

	if err := repository.InitSchema(db); err != nil {
		l.Logger.Fatal("failed to apply migrations: " + err.Error())
	}

	var rdb *goredis.Client
	if cfg.RedisEnabled {
		rdb, err = redis.Connect(context.Background(), redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, 3*time.Second)
		if err != nil {
			l.Warnf("Redis unavailable, running without cache, rate limiting and event publishing: %s", err)
		} else {
			defer rdb.Close()
		}
	}

	srv := server.Build(cfg, l, db, rdb)
	if err := srv.Start(); err != nil {
		l.Errorf("server stopped with error: %s", err)
	}
}
