package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ecaro09/tasko-sub000/internal/config"
	"github.com/ecaro09/tasko-sub000/internal/db"
	"github.com/ecaro09/tasko-sub000/internal/logger"
	"github.com/ecaro09/tasko-sub000/internal/rollup"
	"github.com/ecaro09/tasko-sub000/internal/store/postgres"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	loc, err := time.LoadLocation(cfg.RollupTZ)
	if err != nil {
		log.Fatal("invalid rollup timezone", zap.String("tz", cfg.RollupTZ), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer pool.Close()

	st := postgres.New(pool)
	sched := rollup.NewScheduler(rollup.New(st, loc, log), loc, log)
	if err := sched.Start(ctx); err != nil {
		log.Fatal("scheduler start failed", zap.Error(err))
	}

	<-ctx.Done()
	sched.Stop()
}
