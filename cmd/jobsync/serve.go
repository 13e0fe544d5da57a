package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/jobsyncai/jobsync/internal/backend"
	"github.com/jobsyncai/jobsync/internal/config"
	"github.com/jobsyncai/jobsync/internal/conversation"
	"github.com/jobsyncai/jobsync/internal/handlers"
	"github.com/jobsyncai/jobsync/internal/logger"
	"github.com/jobsyncai/jobsync/internal/server"
	"github.com/jobsyncai/jobsync/internal/session"
	"github.com/jobsyncai/jobsync/internal/whatsapp"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideHTTPClient,
			provideSessionStore,
			provideWhatsAppClient,
			provideBackendClient,
			provideConversationService,
			provideServerHandler(providePingHandler),
			provideServerHandler(provideWebhookHandler),
			fx.Annotate(
				provideServer,
				fx.ParamTags(``, `group:"server_handlers"`),
			),
		),
		fx.Invoke(startServer),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}

func provideSessionStore(lc fx.Lifecycle, log *slog.Logger, cfg config.Config) (session.Store, error) {
	if cfg.Session.Backend != "redis" {
		return session.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis connect: %w", err)
			}
			log.Info("session store ready", slog.String("backend", "redis"), slog.String("addr", cfg.Redis.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error { return client.Close() },
	})

	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour
	return session.NewRedisStore(client, ttl), nil
}

func provideWhatsAppClient(log *slog.Logger, cfg config.Config, httpClient *http.Client) *whatsapp.Client {
	return whatsapp.NewClient(log, whatsapp.Config{
		AccessToken:   cfg.WhatsApp.AccessToken,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		GraphBaseURL:  cfg.WhatsApp.GraphBaseURL,
		APIVersion:    cfg.WhatsApp.APIVersion,
	}, httpClient)
}

func provideBackendClient(log *slog.Logger, cfg config.Config, httpClient *http.Client) *backend.Client {
	return backend.NewClient(log, backend.Config{
		UploadEndpoint:  cfg.Backend.UploadEndpoint,
		AnalyzeEndpoint: cfg.Backend.AnalyzeEndpoint,
	}, httpClient)
}

func provideConversationService(log *slog.Logger, store session.Store, client *whatsapp.Client, gateway *backend.Client) *conversation.Service {
	return conversation.NewService(log, store, client, client, gateway)
}

func providePingHandler(log *slog.Logger) *handlers.PingHandler {
	return handlers.NewPingHandler(log)
}

func provideWebhookHandler(log *slog.Logger, cfg config.Config, svc *conversation.Service) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, cfg.WhatsApp.VerifyToken, svc)
}

func provideServer(cfg config.Config, serverHandlers []server.Handler) *server.Server {
	return server.NewServer(cfg.Server.Addr, serverHandlers)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, cfg config.Config, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server starting", slog.String("addr", cfg.Server.Addr))
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
