package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edupay/internal/client"
	"edupay/internal/config"
	"edupay/internal/handler"
	"edupay/internal/repository"
	"edupay/internal/server"
	"edupay/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db, err := client.InitDB(&cfg.Database)
	if err != nil {
		log.Fatal("database init: ", err)
	}

	var gateway client.GatewayClient
	switch cfg.Payment.Provider {
	case "braintree":
		gateway = client.NewBraintreeClient(&cfg.Braintree)
	default:
		gateway = client.NewHostedGatewayClient(&cfg.Gateway)
	}

	orderRepo := repository.NewOrderRepository(db)
	contentRepo := repository.NewContentRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	accessService := service.NewAccessService(contentRepo, orderRepo)
	paymentService := service.NewPaymentService(
		&cfg.Payment,
		gateway,
		accessService,
		orderRepo,
		contentRepo,
		webhookEventRepo,
	)

	_, cardCharge := gateway.(client.CardCharger)

	srv := server.NewServer(
		cfg,
		handler.NewPaymentHandler(paymentService),
		handler.NewContentHandler(contentRepo),
		accessService,
		cardCharge,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
