// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modena-payment-service/internal/config"
	"modena-payment-service/internal/domain/model"
	pg "modena-payment-service/internal/infra/db/postgres"
	"modena-payment-service/internal/infra/i18n"
	"modena-payment-service/internal/infra/logging"
	"modena-payment-service/internal/infra/metrics"
	"modena-payment-service/internal/infra/modena"
	red "modena-payment-service/internal/infra/redis"
	"modena-payment-service/internal/infra/web"
	"modena-payment-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no sampling)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	orderRepo := pg.NewPostgresOrderRepo(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	cartRepo := red.NewCartRepo(redisClient, cfg.Redis.TTL)

	// ---- Modena API client ----
	clientID, clientSecret := cfg.Modena.Credentials()
	userAgent := fmt.Sprintf("ModenaPaymentService/1.0 Store/%s", cfg.Store.Version)
	processor := modena.New(clientID, clientSecret, userAgent, cfg.Modena.Sandbox(), logger)
	logger.Info().Str("environment", cfg.Modena.Environment).Msg("modena client configured")

	// ---- Localization ----
	bucket := i18n.Bucket(cfg.Store.Locale)
	translator, err := i18n.NewTranslator(i18n.LocalesFS, bucket)
	if err != nil {
		logger.Fatal().Err(err).Str("bucket", bucket).Msg("translator")
	}

	// ---- Gateway catalog ----
	variants := model.DefaultVariants()
	for i := range variants {
		gc, ok := cfg.Gateways[variants[i].ID]
		variants[i].Enabled = ok && gc.Enabled
		variants[i].ButtonMaxHeight = cfg.Modena.PaymentButtonMaxHeight
	}

	// ---- Checkout engine ----
	urls := usecase.StoreURLs{
		Site:     cfg.Store.CheckoutURL,
		Cart:     cfg.Store.CartURL,
		ThankYou: cfg.Store.ThankYouURL,
		Public:   cfg.Server.PublicURL,
	}
	if urls.Site == "" {
		urls.Site = cfg.Store.SiteURL
	}
	checkoutUC := usecase.NewCheckoutUseCase(orderRepo, cartRepo, processor, translator, bucket, urls, logger)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Auth.Secret, 30*time.Minute)
	srv := web.NewServer(checkoutUC, variants, bucket, auth, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}
	cancel()
}
