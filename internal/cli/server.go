package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/iliyamo/picklepass/internal/config"
	"github.com/iliyamo/picklepass/internal/database"
	"github.com/iliyamo/picklepass/internal/handler"
	"github.com/iliyamo/picklepass/internal/kvstore"
	"github.com/iliyamo/picklepass/internal/logger"
	"github.com/iliyamo/picklepass/internal/middleware"
	"github.com/iliyamo/picklepass/internal/repository"
	"github.com/iliyamo/picklepass/internal/router"
	"github.com/iliyamo/picklepass/internal/schedule"
	"github.com/iliyamo/picklepass/internal/service"
	"github.com/iliyamo/picklepass/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func NewServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Env); err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rdb := config.NewRedisClient(cfg.Redis)
			if rdb != nil {
				defer rdb.Close()
			}

			openCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
			store, closeStore, err := database.OpenStore(openCtx, cfg, rdb)
			cancel()
			if err != nil {
				return err
			}
			defer closeStore()

			var pub service.BookingPublisher = service.NoopPublisher{}
			if cfg.EventsEnabled {
				pub = service.NewAMQPPublisher(cfg.RabbitURL)
			}

			e, err := NewServer(cfg, store, rdb, pub)
			if err != nil {
				return err
			}

			addr := ":" + cfg.Port
			errCh := make(chan error, 1)
			go func() {
				logger.Info("Server:Start:Listening", "addr", addr, "env", cfg.Env, "kv_backend", cfg.KVBackend)
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err, ok := <-errCh:
				if ok {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Server:Shutdown:Begin")
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			return e.Shutdown(sctx)
		},
	}
}

// NewServer assembles the echo instance over store.  rdb may be nil, in
// which case response caching and rate limiting are disabled.
func NewServer(cfg config.Config, store kvstore.Store, rdb *redis.Client, pub service.BookingPublisher) (*echo.Echo, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	gen := schedule.NewGenerator(loc)
	lookup := schedule.NewLookup(gen)
	facilities := repository.NewFacilityRepo()

	browse := handler.NewBrowseHandler(facilities, gen, lookup)
	marks := handler.NewBookmarkHandler(facilities, repository.NewBookmarkRepo(store))
	book := handler.NewBookingHandler(
		facilities,
		lookup,
		repository.NewBookingLedger(store),
		utils.NewAttemptSigner(cfg.TokenSecret, cfg.AttemptTTL),
		pub,
		cfg.PriceCents,
		cfg.Currency,
	)

	var blockKey []byte
	if cfg.CookieBlockKey != "" {
		blockKey = []byte(cfg.CookieBlockKey)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	router.RegisterRoutes(e)
	v1 := e.Group("/v1", middleware.Profile([]byte(cfg.CookieHashKey), blockKey))
	router.RegisterPublic(v1, browse, middleware.NewRedisCache(cfg.Cache, rdb))
	router.RegisterBooking(v1, book, marks, middleware.NewTokenBucket(cfg.RateLimit, rdb))
	return e, nil
}
