package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/easyshop/internal/config"
	"github.com/iliyamo/easyshop/internal/database"
	"github.com/iliyamo/easyshop/internal/handler"
	"github.com/iliyamo/easyshop/internal/mail"
	"github.com/iliyamo/easyshop/internal/media"
	"github.com/iliyamo/easyshop/internal/middleware"
	"github.com/iliyamo/easyshop/internal/queue"
	"github.com/iliyamo/easyshop/internal/repository"
	"github.com/iliyamo/easyshop/internal/router"
	"github.com/iliyamo/easyshop/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}
	cfg := config.Load()
	if cfg.Env == "dev" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn().Msg("redis unavailable: catalog cache off, in-memory rate limiter")
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	businesses := repository.NewBusinessRepo(db)
	products := repository.NewProductRepo(db)

	dispatcher := &mail.Dispatcher{
		Sender:  mail.NewSMTPSender(cfg.Mail),
		Secret:  cfg.JWTSecret,
		BaseURL: cfg.BaseURL,
		TTL:     cfg.VerifyTTL,
	}
	auth := service.NewAuthService(users, cfg.JWTSecret, cfg.AccessTTL)
	accounts := &service.AccountService{
		Users:      users,
		Businesses: businesses,
		Auth:       auth,
		Notifier:   dispatcher,
		BcryptCost: cfg.BcryptCost,
	}
	if cfg.EventsEnabled {
		accounts.Events = queue.NewPublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartRegistrationConsumer(ctx, cfg.AMQPURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("registration consumer stopped")
			}
		}()
	}
	images := media.NewStore(filepath.Join(cfg.StaticDir, "images"))
	catalog := service.NewCatalogService(users, businesses, products, images)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Renderer = handler.NewRenderer()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).
				Dur("latency", v.Latency).Str("remote_ip", v.RemoteIP).Msg("request")
			return nil
		},
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))

	edge := router.Edge{
		Limit: middleware.NewRateLimiter(cfg.RateLimit, rdb),
		Cache: middleware.NewRedisCache(cfg.Cache, rdb),
		Purge: middleware.NewCachePurge(cfg.Cache, rdb),
	}
	router.RegisterRoutes(e, cfg.StaticDir)
	router.RegisterAuth(e, handler.NewAuthHandler(auth, accounts, cfg.BaseURL), auth, edge)
	router.RegisterCatalog(e, router.Handlers{
		Products: handler.NewProductHandler(catalog),
		Business: handler.NewBusinessHandler(catalog),
		Uploads:  handler.NewUploadHandler(catalog, cfg.BaseURL),
	}, auth, edge)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
