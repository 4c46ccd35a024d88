package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/ecaro09/tasko-sub000/internal/alerts"
	"github.com/ecaro09/tasko-sub000/internal/config"
	"github.com/ecaro09/tasko-sub000/internal/db"
	"github.com/ecaro09/tasko-sub000/internal/http/handler"
	"github.com/ecaro09/tasko-sub000/internal/logger"
	"github.com/ecaro09/tasko-sub000/internal/marketplace"
	appmw "github.com/ecaro09/tasko-sub000/internal/middleware"
	"github.com/ecaro09/tasko-sub000/internal/store/postgres"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer pool.Close()

	st := postgres.New(pool)

	queue := alerts.New(cfg.RedisAddr, log)
	defer queue.Close()
	queue.StartWorker()

	taskSvc := marketplace.NewTaskService(st, queue, log)
	offerSvc := marketplace.NewOfferService(st, queue, log)
	ratingAgg := marketplace.NewRatingAggregator(st, log)

	tasks := handler.NewTaskHandler(taskSvc, ratingAgg)
	offers := handler.NewOfferHandler(offerSvc)
	earnings := handler.NewEarningsHandler(st)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/health", handler.Health)

	g := e.Group("")
	g.Use(appmw.JWT(cfg.JWTSecret))

	g.POST("/tasks", tasks.Create)
	g.GET("/tasks", tasks.ListMine)
	g.GET("/tasks/:id", tasks.Get)
	g.POST("/tasks/:id/start", tasks.Start)
	g.POST("/tasks/:id/complete", tasks.Complete)
	g.POST("/tasks/:id/cancel", tasks.Cancel)

	g.POST("/tasks/:id/offers", offers.Add)
	g.GET("/tasks/:id/offers", offers.ListForTask)
	g.POST("/offers/:id/accept", offers.Accept)
	g.POST("/offers/:id/reject", offers.Reject)
	g.POST("/offers/:id/withdraw", offers.Withdraw)

	e.GET("/taskers/:id/rating", tasks.Rating)

	g.GET("/admin/ledger", earnings.Ledger, appmw.AdminGuard)
	g.GET("/admin/earnings", earnings.Summary, appmw.AdminGuard)

	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()

	log.Info("api server listening", zap.String("port", cfg.HTTPPort))
	if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
		log.Fatal("server error", zap.Error(err))
	}
}
