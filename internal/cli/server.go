package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"examship-quiz-service/internal/app"
	"examship-quiz-service/internal/config"
	"examship-quiz-service/internal/content"
	"examship-quiz-service/internal/infra/ai"
	"examship-quiz-service/internal/infra/memory"
	"examship-quiz-service/internal/infra/postgres"
	redisinfra "examship-quiz-service/internal/infra/redis"
	"examship-quiz-service/internal/infra/sqlite"
	"examship-quiz-service/internal/logger"
	transport "examship-quiz-service/internal/transport/http"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			return runServer(cmd.Context(), cfg, *port, log)
		},
	}
}

// backends holds every optional connection opened for the server.
type backends struct {
	redis  *redis.Client
	pool   *pgxpool.Pool
	sqlite *sqlite.KVStore
}

func (b *backends) close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
	if b.sqlite != nil {
		_ = b.sqlite.Close()
	}
}

func runServer(ctx context.Context, cfg config.Config, portFlag string, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := &backends{}
	defer b.close()

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := b.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("postgres connect: %w", err)
		}
		b.pool = pool
	}
	if b.redis == nil && cfg.SQLite.Path != "" {
		kv, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		b.sqlite = kv
	}

	service, extractor := buildService(cfg, b, log)
	defer service.Close()

	if cfg.Log.Mode == "prod" || cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transport.NewRouter(
		transport.NewAPIHandler(service, extractor),
		transport.NewWSHandler(service, log),
		log,
	)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting quiz service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildService picks a backend per concern: Redis first, then SQLite for
// progress, then memory. Postgres serves the static bank when configured.
func buildService(cfg config.Config, b *backends, log *logger.Logger) (*app.QuizService, transport.ChapterExtractor) {
	var sessions app.SessionRepository = memory.NewSessionStore()
	var store app.KVStore = memory.NewKVStore()
	var board app.LeaderboardStore = memory.NewLeaderboard()
	switch {
	case b.redis != nil:
		sessions = redisinfra.NewSessionStore(b.redis, config.TTLDuration(cfg.Redis.TTL, time.Hour), log)
		store = redisinfra.NewKVStore(b.redis, "")
		board = redisinfra.NewLeaderboard(b.redis, "")
	case b.sqlite != nil:
		store = b.sqlite
	}

	var bank app.StaticBank = memory.NewStaticBank(content.Chemistry()...)
	if b.pool != nil {
		bank = postgres.NewStaticBank(b.pool)
	}

	var gen app.Generator = ai.Disabled{}
	var extractor transport.ChapterExtractor
	if cfg.Generator.APIKey != "" {
		client := ai.NewClient(ai.Config{
			BaseURL: cfg.Generator.BaseURL,
			APIKey:  cfg.Generator.APIKey,
			Model:   cfg.Generator.Model,
			Timeout: config.TTLDuration(cfg.Generator.Timeout, 0),
		}, log)
		gen, extractor = client, client
	} else {
		log.Warn("generator api key not set, topics without a static bank are unavailable")
	}
	genTTL := config.TTLDuration(cfg.Quiz.GenerationTTL, 24*time.Hour)
	if b.redis != nil {
		gen = redisinfra.NewGeneratorCache(b.redis, gen, genTTL, log)
	} else {
		gen = memory.NewGeneratorCache(gen, genTTL)
	}

	resolver := app.NewResolver(bank, gen, config.IntOr(cfg.Quiz.SetSize, app.DefaultSetSize), log)
	service := app.NewQuizService(sessions, resolver, store,
		app.WithQuestionTimeLimit(config.IntOr(cfg.Quiz.TimeLimit, app.DefaultTimeLimit)),
		app.WithTickInterval(config.TTLDuration(cfg.Quiz.TickInterval, time.Second)),
		app.WithLeaderboard(board),
		app.WithLogger(log),
	)
	return service, extractor
}
