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

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-manager/internal/config"
	"github.com/iyhunko/inventory-manager/internal/health"
	httpAPI "github.com/iyhunko/inventory-manager/internal/http"
	"github.com/iyhunko/inventory-manager/internal/http/controller"
	"github.com/iyhunko/inventory-manager/internal/logger"
	"github.com/iyhunko/inventory-manager/internal/metrics"
	"github.com/iyhunko/inventory-manager/internal/repository/sql"
	"github.com/iyhunko/inventory-manager/internal/service"
	sqspkg "github.com/iyhunko/inventory-manager/internal/sqs"
)

const (
	version         = "1.0.0"
	alertBufferSize = 256
	shutdownTimeout = 10 * time.Second
)

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)

	closeLog, err := logger.Setup(conf.DebugMode, conf.LogFile)
	handleErr("setting up logger", err)
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)
	defer func() { _ = db.Close() }()

	store := sql.NewStore(db)

	// Low-stock alerts are always logged; with a queue configured they also go
	// through the outbox to SQS.
	sinks := []service.AlertSink{service.LogAlertSink{}}
	var outboxWorker *service.OutboxWorker
	if conf.AWS.SQSQueueURL != "" {
		sqsClient, err := sqspkg.NewClient(ctx, conf.AWS.Region, conf.AWS.Endpoint)
		handleErr("creating SQS client", err)
		publisher := sqspkg.NewPublisher(sqsClient, conf.AWS.SQSQueueURL)

		sinks = append(sinks, service.NewOutboxAlertSink(store.Events()))
		outboxWorker = service.NewOutboxWorker(store.Events(), publisher, conf.Inventory.OutboxInterval)
		go outboxWorker.Start(ctx)
	} else {
		slog.Info("SQS queue not configured, low stock alerts are only logged")
	}

	dispatcher := service.NewAlertDispatcher(alertBufferSize, sinks...)
	dispatcher.Start()

	inventoryService := service.NewInventoryService(store, service.Options{
		LowStockThreshold: conf.Inventory.LowStockThreshold,
		Notifier:          dispatcher,
	})

	readiness, err := health.NewReadinessHandler(version, store)
	handleErr("creating readiness checks", err)

	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAPI.InitRouter(gin.New(), httpAPI.Controllers{
		General:     controller.New(readiness.Handler()),
		Product:     controller.NewProductController(inventoryService),
		Transaction: controller.NewTransactionController(inventoryService),
		Report:      controller.NewReportController(inventoryService),
	})

	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metricsServer := metrics.StartMetricsServer(conf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", slog.Any("err", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Metrics server shutdown failed", slog.Any("err", err))
	}

	// in-flight alerts still reach the outbox before the worker stops
	dispatcher.Stop()
	if outboxWorker != nil {
		outboxWorker.Stop()
		outboxWorker.ProcessEvents(shutdownCtx)
	}
	cancel()
}

func handleErr(msg string, err error) {
	if err != nil {
		log.Fatalf("error while %s: %v", msg, err)
	}
}
