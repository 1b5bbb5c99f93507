package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"postboard/internal/config"
	"postboard/internal/db"
	"postboard/internal/logger"
	"postboard/internal/router"
	"postboard/internal/server"
	"postboard/internal/storage"
	"postboard/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logg := logger.New()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DB, logg)
	if err != nil {
		logg.Error("main", "Failed to connect to database", err)
		os.Exit(1)
	}
	if sqlDB, err := conn.DB(); err == nil {
		defer sqlDB.Close()
	}

	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logg.Error("main", "Failed to initialize image storage", err)
		os.Exit(1)
	}

	cache, err := utils.NewCache(cfg.CacheSize)
	if err != nil {
		logg.Error("main", "Failed to create page cache", err)
		os.Exit(1)
	}

	r, err := router.New(router.Deps{
		Config: cfg,
		DB:     conn,
		Images: images,
		Cache:  cache,
		Logger: logg,
	})
	if err != nil {
		logg.Error("main", "Failed to build router", err)
		os.Exit(1)
	}

	logg.Info("main", "Postboard server starting on :"+cfg.Port)
	err = server.Run(ctx, r, server.Options{
		Addr:            ":" + cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logg)
	if err != nil {
		logg.Error("main", "Server stopped", err)
		os.Exit(1)
	}
}
