package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/herdline/go-session"
	"github.com/herdline/go-session/middleware/routegate"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := session.LoadConfig()
	if err != nil {
		panic(err)
	}

	zlog, err := buildLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()

	logger := session.NewZapLogger(zlog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		zlog.Fatal("store init failed", zap.Error(err))
	}
	defer cleanup()

	mirror := session.NewCookieMirror(
		session.WithCookieName(cfg.Session.CookieName),
		session.WithSecureCookies(cfg.Session.SecureCookies || cfg.App.IsProduction()),
		session.WithCookieDuration(cfg.Session.CookieDuration()),
	)

	client := session.NewClient(cfg.Session.APIBaseURL, store,
		session.WithClientLogger(logger),
		session.WithRequestTimeout(cfg.Session.RequestTimeout()),
		session.WithPhoneRegion(cfg.Session.PhoneRegion),
	)

	manager := session.NewManager(store, client,
		session.WithManagerLogger(logger),
		session.WithManagerPublisher(mirror),
	)

	if _, err := manager.Boot(ctx); err != nil {
		zlog.Warn("session boot incomplete", zap.Error(err))
	}

	monitor := session.NewRefreshMonitor(store, client, manager,
		session.WithMonitorLogger(logger),
		session.WithMonitorPublisher(mirror),
		session.WithRefreshInterval(cfg.Session.RefreshInterval()),
		session.WithRefreshThreshold(cfg.Session.RefreshThreshold()),
	)
	monitor.Start(ctx)
	defer monitor.Stop()

	guard := session.NewGuard(manager, session.WithGuardLogger(logger))

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:       cfg.App.Name,
			StrictRouting: false,
		}))
	})

	srv.Router().Use(mirror.Middleware())
	srv.Router().Use(routegate.New(routegate.Config{
		TokenLookup:    "header:" + router.HeaderAuthorization + ",header:X-Auth-Token,cookie:" + cfg.Session.CookieName,
		AllowedOrigins: cfg.Session.AllowedOrigins,
		HSTS:           cfg.App.IsProduction(),
		Logger:         logger,
	}))

	srv.Router().Get("/healthz", func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, map[string]any{"status": "ok"})
	})

	srv.Router().Post("/session/login", func(ctx router.Context) error {
		payload := new(session.LoginRequest)
		if err := ctx.Bind(payload); err != nil {
			return ctx.Status(http.StatusBadRequest).JSON(http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   "invalid login payload",
			})
		}

		state, err := manager.Login(ctx.Context(), *payload)
		if err != nil {
			status := http.StatusUnauthorized
			if session.IsValidationError(err) {
				status = http.StatusBadRequest
			}
			return ctx.Status(status).JSON(status, map[string]any{
				"success": false,
				"error":   err.Error(),
			})
		}

		return ctx.JSON(http.StatusOK, map[string]any{
			"success": true,
			"data":    state.User,
		})
	})

	srv.Router().Post("/session/logout", func(ctx router.Context) error {
		manager.Logout(ctx.Context())
		return ctx.JSON(http.StatusOK, map[string]any{"success": true})
	})

	srv.Router().Get("/session/me",
		guard.Middleware(true)(func(ctx router.Context) error {
			user, _ := session.UserFromRouter(ctx)
			return ctx.JSON(http.StatusOK, map[string]any{
				"success": true,
				"data":    user,
			})
		}))

	srv.Router().Get("/manage-users",
		guard.Middleware(true, session.RoleAdmin)(func(ctx router.Context) error {
			users, err := client.GetAllUsers(ctx.Context())
			if err != nil {
				return ctx.Status(http.StatusBadGateway).JSON(http.StatusBadGateway, map[string]any{
					"success": false,
					"error":   err.Error(),
				})
			}
			return ctx.JSON(http.StatusOK, map[string]any{
				"success": true,
				"data":    users,
			})
		}))

	zlog.Info("gate listening", zap.String("addr", cfg.App.Addr()))
	go srv.Serve(":" + cfg.App.Port)

	WaitExitSignal()
	zlog.Info("shutting down")
}

func buildLogger(cfg *session.Config) (*zap.Logger, error) {
	if cfg.App.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func buildStore(ctx context.Context, cfg *session.Config) (session.Store, func(), error) {
	switch cfg.Store.Driver {
	case "sqlite":
		store, err := session.NewBunStore(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return session.NewRedisStore(client, ""), func() { client.Close() }, nil
	default:
		return session.NewMemoryStore(), func() {}, nil
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
