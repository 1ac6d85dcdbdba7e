package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-authgate/config"
	"github.com/goliatone/go-authgate/middleware/sessionware"
	"github.com/goliatone/go-authgate/provider/clerk"
	"github.com/goliatone/go-authgate/server"
)

type App struct {
	config config.Config
	logger *glog.BaseLogger
	client *authgate.ClientHandle
	srv    *fiber.App
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("authgate"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := &App{config: cfg, logger: lgr}
	if err := run(app); err != nil {
		lgr.GetLogger("main").Error("authgate stopped", "error", err)
		os.Exit(1)
	}
}

func run(app *App) error {
	cfg := app.config
	log := app.GetLogger("main")

	app.client = authgate.NewClientHandle(cfg.GetDatabaseURL(),
		authgate.WithClientDebug(cfg.GetDebug()),
		authgate.WithClientLogger(app.GetLogger("persistence")),
	)
	defer func() {
		if err := app.client.Close(); err != nil {
			log.Error("database close failed", "error", err)
		}
	}()

	identities, err := clerk.NewIdentityProvider(clerk.IdentityProviderConfig{
		SecretKey: cfg.GetClerkSecretKey(),
	})
	if err != nil {
		return err
	}

	if cfg.GetClerkJWKSURL() == "" {
		return errors.New("CLERK_JWKS_URL is required")
	}

	sessions, err := sessionware.New(sessionware.Config{
		JWKSetURL:         cfg.GetClerkJWKSURL(),
		TokenLookup:       cfg.GetSessionLookup(),
		AuthorizedParties: cfg.GetAuthorizedParties(),
		Logger:            app.GetLogger("session"),
	})
	if err != nil {
		return err
	}

	receiver := authgate.NewWebhookReceiver(
		authgate.SecretFromConfig(cfg),
		app.client,
		authgate.WithReceiverLogger(app.GetLogger("webhook")),
	)

	router := authgate.NewAccessRouter(identities,
		authgate.WithConfig(cfg),
		authgate.WithAccessLogger(app.GetLogger("access")),
	)

	app.srv = fiber.New(fiber.Config{
		AppName:               "authgate",
		DisableStartupMessage: true,
	})

	server.RegisterRoutes(app.srv, server.Deps{
		Receiver: receiver,
		Access: server.AccessConfig{
			Router:   router,
			Sessions: sessions,
			Matcher:  authgate.NewRouteMatcher(),
		},
		Ready:  app.client,
		Logger: app.GetLogger("http"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.GetAddr())
		errc <- app.srv.Listen(cfg.GetAddr())
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.srv.ShutdownWithTimeout(10 * time.Second)
}
