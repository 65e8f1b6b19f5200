package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizboard-service/internal/app"
	"quizboard-service/internal/config"
	"quizboard-service/internal/game"
	"quizboard-service/internal/infra/file"
	"quizboard-service/internal/infra/memory"
	pgloader "quizboard-service/internal/infra/postgres"
	redisstore "quizboard-service/internal/infra/redis"
	transport "quizboard-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz board server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, opts.port)
		},
	}
}

// loadConfig reads the config file. A missing file is only an error when
// the path was chosen explicitly.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && opts.configPath == defaultConfigPath && !cmd.Flags().Changed("config") {
		log.Printf("no config at %s, using defaults", opts.configPath)
		return cfg, nil
	}
	return cfg, fmt.Errorf("load config: %w", err)
}

type sessionReaper interface {
	Reap(now time.Time, idle time.Duration) []string
}

type deps struct {
	quizzes  app.QuizRepository
	sessions app.SessionRepository
	reaper   sessionReaper
	closers  []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildDeps picks the quiz source and stores from config:
// Postgres, else a quiz directory, else the bundled samples; Redis when configured, else memory.
func buildDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{}

	var loader memory.QuizLoader = file.SampleLoader()
	if cfg.Quiz.Dir != "" {
		loader = file.NewQuizLoader(os.DirFS(cfg.Quiz.Dir))
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, pool.Close)
		loader = pgloader.NewQuizLoader(pool)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.closers = append(d.closers, func() { _ = redisClient.Close() })
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if redisClient != nil {
		d.quizzes = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
		store := redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
		d.sessions, d.reaper = store, store
	} else {
		d.quizzes = memory.NewQuizRepository(loader, quizTTL)
		store := memory.NewSessionStore()
		d.sessions, d.reaper = store, store
	}
	return d, nil
}

func runServer(ctx context.Context, cfg config.Config, portFlag string) error {
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	policy, err := game.PolicyByName(cfg.Game.TimerPolicy)
	if err != nil {
		return err
	}

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	service := app.NewGameService(d.sessions, d.quizzes, game.Options{
		Teams:     cfg.Game.Teams,
		ScoreStep: cfg.Game.ScoreStep,
		Policy:    policy,
	})
	handler := transport.NewHandler(service)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	idle := config.TTLDuration(cfg.Server.IdleTimeout, 2*time.Hour)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("starting quiz board on :%s (timer policy %s)", finalPort, cfg.Game.TimerPolicy)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		reapSessions(gctx, d.reaper, idle)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func reapSessions(ctx context.Context, reaper sessionReaper, idle time.Duration) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, id := range reaper.Reap(now, idle) {
				log.Printf("session %s ended after %s idle", id, idle)
			}
		}
	}
}
