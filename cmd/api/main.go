package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonas-jun/inv-secretary/internal/app"
	"github.com/jonas-jun/inv-secretary/internal/config"
	"github.com/jonas-jun/inv-secretary/internal/handler"
	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	app.SetupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("error starting app: %v", err)
	}
	defer a.Close()

	var queue handler.RefreshQueue
	if a.Queue != nil {
		queue = a.Queue
	}
	newsHandler := handler.NewNewsHandler(a.Pipeline, queue, a.DB)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), handler.RequestID())

	slog.Info("AllowOrigins URL:", "urls", cfg.CORSOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", handler.RequestIDHeader},
		ExposeHeaders: []string{handler.RequestIDHeader},
	}))

	r.GET("/health", newsHandler.GetHealth)

	v1 := r.Group("/v1/news")
	v1.GET("/market-pulse", newsHandler.GetMarketPulse)
	v1.GET("/:symbol", newsHandler.GetNews)
	v1.POST("/:symbol/refresh", newsHandler.RefreshNews)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("api listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("error starting server: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("error shutting down server", "error", err)
	}
}
