package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/client"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/handler"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/logger"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/metrics"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay/braintreepay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay/checkoutpay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay/liqpay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay/stripepay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay/wayforpay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/repository"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/server"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		log.WithError(err).Fatal("parse config")
	}

	logger.Setup(cfg.Log)
	metrics.Register()

	db, err := client.InitMysqlClient(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("init database")
	}

	stripeClient := client.NewStripeClient(&cfg.Stripe)
	checkoutClient := client.NewCheckoutClient(&cfg.Checkout)
	liqPayClient := client.NewLiqPayClient(&cfg.LiqPay)
	wayForPayClient := client.NewWayForPayClient(&cfg.WayForPay)
	braintreeClient := client.NewBraintreeClient(&cfg.Braintree)

	donationRepo := repository.NewDonationRepository(db)
	eventRepo := repository.NewEventRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	var notifier service.Notifier
	if cfg.SMTP.Host != "" {
		notifier = service.NewSMTPNotifier(&cfg.SMTP)
	} else {
		notifier = service.NewLogNotifier()
	}

	payoutService := service.NewPayoutService(liqPayClient, wayForPayClient, companyRepo)
	ledgerService := service.NewLedgerService(db, donationRepo, eventRepo, companyRepo, webhookEventRepo, payoutService, notifier)
	donationService := service.NewDonationService(
		donationRepo, eventRepo, companyRepo,
		stripeClient, checkoutClient, liqPayClient, wayForPayClient, braintreeClient,
		cfg.BaseURL,
	)
	companyService := service.NewCompanyService(companyRepo, braintreeClient)
	eventService := service.NewEventService(eventRepo, companyRepo)

	providers := []pay.Provider{
		stripepay.New(&cfg.Stripe),
		checkoutpay.New(&cfg.Checkout),
		liqpay.New(&cfg.LiqPay),
		wayforpay.New(&cfg.WayForPay),
		braintreepay.New(braintreeClient.Gateway()),
	}

	donationHandler := handler.NewDonationHandler(donationService)
	companyHandler := handler.NewCompanyHandler(companyService, eventService)
	webhookHandler := handler.NewWebhookHandler(ledgerService)

	srv := server.NewServer(donationHandler, companyHandler, webhookHandler, providers, cfg.JWTSecret)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.WithField("addr", serverAddr).Info("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Fatal("HTTP server shutdown error")
	}
}
