package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/letters/internal/auth"
	"github.com/iliyamo/letters/internal/config"
	"github.com/iliyamo/letters/internal/database"
	"github.com/iliyamo/letters/internal/handler"
	"github.com/iliyamo/letters/internal/jobs"
	"github.com/iliyamo/letters/internal/logging"
	"github.com/iliyamo/letters/internal/middleware"
	"github.com/iliyamo/letters/internal/repository"
	"github.com/iliyamo/letters/internal/router"
	"github.com/iliyamo/letters/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(load configLoader) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return serve(cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port, overrides server.port")
	return cmd
}

func serve(cfg config.Config) error {
	defer logging.LogPanics(nil)

	db, err := database.Open(cfg.Database.URL, cfg.Database.MaxConnections)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	} else if cfg.Redis.Addr != "" {
		logging.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unreachable, rate limiting disabled")
	}

	hasher := auth.NewHasher(0)
	tokens := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.TimeoutSeconds)
	publisher := service.NewPublisher(cfg.Events)
	var events handler.EventPublisher
	if publisher.Enabled() {
		events = publisher
	}

	users := repository.NewUserRepo(db)
	articles := repository.NewArticleRepo(db)
	stats := repository.NewStatsRepo(db)

	e := router.New(router.Deps{
		Handlers: router.Handlers{
			Auth:       handler.NewAuthHandler(users, hasher, tokens),
			Users:      handler.NewUserHandler(users, hasher),
			Categories: handler.NewCategoryHandler(repository.NewCategoryRepo(db), articles),
			Tags:       handler.NewTagHandler(repository.NewTagRepo(db), articles),
			Articles:   handler.NewArticleHandler(articles, hasher, events),
			Series:     handler.NewSeriesHandler(repository.NewSeriesRepo(db), articles),
			DB:         stats,
		},
		Tokens:         tokens,
		RateLimit:      middleware.NewTokenBucket(cfg.RateLimit, rdb),
		RequestTimeout: cfg.Server.RequestTimeout(),
	})

	backgroundJobs := jobs.Jobs{}
	if cfg.Jobs.Enabled {
		statsJob, err := jobs.Schedule("stats", cfg.Jobs.StatsSchedule, jobs.ReportStats(stats))
		if err != nil {
			return err
		}
		backgroundJobs = append(backgroundJobs, statsJob)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("serving the API")
		serverErr <- server.ListenAndServe()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case err := <-serverErr:
		backgroundJobs.CancelAndWait(shutdownTimeout)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-signals:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	if unfinished := backgroundJobs.CancelAndWait(shutdownTimeout); len(unfinished) > 0 {
		logging.Warn().Strs("unfinished", unfinished).Msg("background jobs did not finish by the deadline")
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Warn().Err(err).Msg("server did not shut down gracefully")
		return err
	}
	logging.Info().Msg("server stopped")
	return nil
}
