package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/delivery-admin/config"
	"github.com/d60-Lab/delivery-admin/internal/api"
	"github.com/d60-Lab/delivery-admin/internal/api/handler"
	"github.com/d60-Lab/delivery-admin/internal/client"
	"github.com/d60-Lab/delivery-admin/internal/repository"
	"github.com/d60-Lab/delivery-admin/internal/service"
	"github.com/d60-Lab/delivery-admin/pkg/database"
	"github.com/d60-Lab/delivery-admin/pkg/logger"
	"github.com/d60-Lab/delivery-admin/pkg/monitoring"
	"github.com/d60-Lab/delivery-admin/pkg/tracing"
)

// @title Delivery Admin API
// @version 1.0
// @description 订单看板、数据分析与库存管理
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("server exited", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	if err := monitoring.Init(cfg.Sentry); err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	defer monitoring.Flush()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	if err := repository.InitSchema(db); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	recorder := service.NewActivityRecorder(repository.NewActivityRepository(db), 1024)
	stopRecorder := recorder.Start(2)

	httpClient := &http.Client{Timeout: cfg.Client.Timeout}
	orders := client.NewOrderClient(cfg.Orders.BaseURL, client.OrderPaths{
		List: cfg.Orders.ListPath,
		Ship: cfg.Orders.ShipPath,
	}, httpClient)
	inventoryBackend := client.NewInventoryClient(cfg.Inventory.BaseURL, client.InventoryPaths{
		List:   cfg.Inventory.ListPath,
		Add:    cfg.Inventory.AddPath,
		Update: cfg.Inventory.UpdatePath,
	}, httpClient)

	dashboard := service.NewDashboardService(orders, recorder, cfg.Orders.PollInterval, loc)
	analytics := service.NewAnalyticsService(dashboard, loc)
	inventory := service.NewInventoryService(inventoryBackend, recorder)
	auth := service.NewAuthService(cfg.Auth)

	dashboard.Start(ctx)
	go func() {
		if err := inventory.Load(ctx); err != nil {
			logger.Warn("initial inventory load failed", zap.Error(err))
		}
	}()

	gin.SetMode(cfg.Server.Mode)
	h := handler.NewHandler(dashboard, analytics, inventory, recorder, auth, cfg.Orders.PollInterval)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(cfg, h, auth),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started",
			zap.String("addr", srv.Addr),
			zap.String("orders", cfg.Orders.BaseURL),
			zap.String("inventory", cfg.Inventory.BaseURL),
			zap.Bool("auth", cfg.AuthEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	shutdown(shutdownCtx,
		shutdownStep{"http", srv.Shutdown},
		shutdownStep{"dashboard", func(context.Context) error { dashboard.Close(); return nil }},
		shutdownStep{"activity recorder", stopRecorder},
		shutdownStep{"tracing", shutdownTracing},
	)
	return serveErr
}

type shutdownStep struct {
	name string
	fn   func(context.Context) error
}

// shutdown 按顺序执行全部步骤，单步失败只记日志
func shutdown(ctx context.Context, steps ...shutdownStep) {
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			logger.Warn(step.name+" shutdown", zap.Error(err))
		}
	}
}
