// Command dashboard serves the admin API for the wholesale storefront and
// hosts the two background subsystems that outlive any one request: the live
// low-stock monitor and the periodic order/delivery status reconciler.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cloud.google.com/go/storage"

	"github.com/freshlane/wholesale-admin/internal/alert"
	"github.com/freshlane/wholesale-admin/internal/auth"
	"github.com/freshlane/wholesale-admin/internal/gcp"
	"github.com/freshlane/wholesale-admin/internal/lowstock"
	"github.com/freshlane/wholesale-admin/internal/reconcile"
	"github.com/freshlane/wholesale-admin/internal/services"
	"github.com/freshlane/wholesale-admin/internal/store"
)

func main() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		slog.Error("Dashboard terminated.", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	projectID := gcp.GetEnv("GCP_PROJECT", "")
	if projectID == "" {
		return fmt.Errorf("GCP_PROJECT environment variable must be set")
	}
	sliderBucket := gcp.GetEnv("SLIDER_IMAGES_BUCKET", "")
	if sliderBucket == "" {
		return fmt.Errorf("SLIDER_IMAGES_BUCKET must be set")
	}
	intervalMinutes, err := strconv.Atoi(gcp.GetEnv("RECONCILE_INTERVAL_MINUTES", "30"))
	if err != nil || intervalMinutes <= 0 {
		return fmt.Errorf("RECONCILE_INTERVAL_MINUTES must be a positive integer")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return err
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	defer storageClient.Close()

	verifier, err := auth.NewVerifier(ctx, projectID)
	if err != nil {
		return err
	}

	documents := store.New(firestoreClient, store.ConfigFromEnv())

	sliders, err := services.NewSliders(documents, storageClient, sliderBucket, slog.Default())
	if err != nil {
		return err
	}
	srv := &server{
		catalog:  services.NewCatalog(documents, slog.Default()),
		orders:   services.NewOrders(documents, slog.Default()),
		couriers: services.NewCouriers(documents, slog.Default()),
		sliders:  sliders,
		monitor:  lowstock.NewMonitor(documents, slog.Default()),
	}

	// One reconciliation loop per process.
	reconciler, err := reconcile.New(documents, reconcile.Config{
		Interval: time.Duration(intervalMinutes) * time.Minute,
	}, slog.Default())
	if err != nil {
		return err
	}
	handle := reconciler.Start(ctx)
	defer handle.Stop()

	if sink := gcp.GetEnv("LOW_STOCK_ALERT_SINK", ""); sink != "" {
		emitter, err := alert.NewHTTPEmitter(sink)
		if err != nil {
			return err
		}
		publisher := alert.NewPublisher(emitter, "//wholesale-admin/dashboard", slog.Default())
		go publisher.Run(ctx, srv.monitor.Watch(ctx))
	}

	httpServer := &http.Server{
		Addr:    ":" + gcp.GetEnv("PORT", "8080"),
		Handler: srv.routes(auth.Middleware(verifier, slog.Default())),
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Dashboard listening.", "addr", httpServer.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
