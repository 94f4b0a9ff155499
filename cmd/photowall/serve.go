package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/photowall/photowall"
	"github.com/photowall/photowall/config"
	pwhttp "github.com/photowall/photowall/http"
	"github.com/photowall/photowall/s3store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the photowall HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
	serveCmd.Flags().String("env", "dev", "runtime environment (dev, prod)")
	serveCmd.Flags().String("bucket", "", "bucket name (env: PHOTOWALL_AWS_BUCKET)")
	serveCmd.Flags().String("region", "", "bucket region (env: PHOTOWALL_AWS_REGION)")
	serveCmd.Flags().String("endpoint", "", "S3-compatible endpoint URL for non-AWS gateways")
	serveCmd.Flags().String("distribution-id", "", "CloudFront distribution for delete invalidations")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFiles, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	setupLogging(cfg.Server.Env, cfg.Log.Level)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store, err := s3store.New(ctx, s3store.Options{
		Bucket:          cfg.AWS.Bucket,
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("create object store: %w", err)
	}
	slog.Info("connected to object store", "bucket", cfg.AWS.Bucket, "region", cfg.AWS.Region)

	serviceCfg := photowall.ServiceConfig{
		PresignExpiry: cfg.Upload.PresignExpiry(),
		Logger:        slog.Default(),
	}

	if cfg.AWS.DistributionID != "" {
		invalidator, invErr := s3store.NewInvalidator(ctx,
			cfg.AWS.DistributionID,
			cfg.AWS.Region,
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
		)
		if invErr != nil {
			return fmt.Errorf("create cdn invalidator: %w", invErr)
		}
		serviceCfg.CDN = invalidator
		slog.Info("cdn invalidation enabled", "distribution", cfg.AWS.DistributionID)
	}

	service, err := photowall.NewGalleryService(store, serviceCfg)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handler := pwhttp.NewHandler(&pwhttp.HandlerConfig{CORS: cfg.CORS}, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "env", cfg.Server.Env)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
