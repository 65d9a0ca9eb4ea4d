package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/changedesk/api/internal/handlers"
	"github.com/changedesk/api/internal/migrate"
	"github.com/changedesk/api/internal/payments"
	"github.com/changedesk/api/internal/platform/auth"
	"github.com/changedesk/api/internal/platform/config"
	"github.com/changedesk/api/internal/platform/observability"
	"github.com/changedesk/api/internal/repositories/postgres"
	"github.com/changedesk/api/internal/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := migrate.Up(ctx, cfg.Database.DSN); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ticketRepo := postgres.NewTicketRepo(db)
	clientRepo := postgres.NewClientRepo(db)
	userRepo := postgres.NewUserRepo(db)
	deviceRepo := postgres.NewDeviceRepo(db)
	pairingRepo := postgres.NewPairingTokenRepo(db)

	ticketSvc, err := services.NewTicketService(services.TicketServiceDeps{
		Tickets: ticketRepo,
		Clients: clientRepo,
	})
	if err != nil {
		logger.Fatal("failed to build ticket service", zap.Error(err))
	}
	clientSvc, err := services.NewClientService(services.ClientServiceDeps{Clients: clientRepo})
	if err != nil {
		logger.Fatal("failed to build client service", zap.Error(err))
	}
	userSvc, err := services.NewUserService(services.UserServiceDeps{Users: userRepo})
	if err != nil {
		logger.Fatal("failed to build user service", zap.Error(err))
	}
	pairingSvc, err := services.NewPairingService(services.PairingServiceDeps{
		PairingTokens: pairingRepo,
		Devices:       deviceRepo,
		CodeTTL:       cfg.Pairing.CodeTTL,
	})
	if err != nil {
		logger.Fatal("failed to build pairing service", zap.Error(err))
	}
	deviceAuthSvc, err := services.NewDeviceAuthService(services.DeviceAuthServiceDeps{Devices: deviceRepo})
	if err != nil {
		logger.Fatal("failed to build device auth service", zap.Error(err))
	}

	provider, err := payments.NewStripeProvider(payments.StripeProviderConfig{
		APIKey:        cfg.Stripe.APIKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})
	if err != nil {
		logger.Fatal("failed to build stripe provider", zap.Error(err))
	}
	paymentSvc, err := services.NewPaymentService(services.PaymentServiceDeps{
		Tickets:    ticketSvc,
		Provider:   provider,
		BaseURL:    cfg.Server.BaseURL,
		Currency:   cfg.Stripe.Currency,
		Production: cfg.Production(),
	})
	if err != nil {
		logger.Fatal("failed to build payment service", zap.Error(err))
	}

	sessions, err := auth.NewSessionManager(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL, nil)
	if err != nil {
		logger.Fatal("failed to build session manager", zap.Error(err))
	}
	authMW, err := auth.NewMiddleware(auth.MiddlewareDeps{
		Sessions:       sessions,
		DeviceAuth:     deviceAuthSvc,
		Users:          userSvc,
		GuestCookieAge: cfg.Auth.GuestCookieAge,
		SecureCookies:  cfg.Production(),
	})
	if err != nil {
		logger.Fatal("failed to build auth middleware", zap.Error(err))
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:     authMW,
		Sessions: sessions,
		Tickets:  ticketSvc,
		Clients:  clientSvc,
		Pairing:  pairingSvc,
		Payments: paymentSvc,
		Middlewares: []func(http.Handler) http.Handler{
			observability.InjectLoggerMiddleware(logger),
			observability.RequestLoggerMiddleware(),
		},
		Production: cfg.Production(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("environment", cfg.Environment),
		)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
