package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/versefinder/internal/config"
	"github.com/MrSnakeDoc/versefinder/internal/domain"
	"github.com/MrSnakeDoc/versefinder/internal/httpserver"
	"github.com/MrSnakeDoc/versefinder/internal/httpserver/deps"
	"github.com/MrSnakeDoc/versefinder/internal/index"
	"github.com/MrSnakeDoc/versefinder/internal/logger"
	"github.com/MrSnakeDoc/versefinder/internal/metrics"
	"github.com/MrSnakeDoc/versefinder/internal/redis"
	"github.com/MrSnakeDoc/versefinder/internal/scheduler"
	"github.com/MrSnakeDoc/versefinder/internal/search"
	redisstore "github.com/MrSnakeDoc/versefinder/internal/store/redis"
	"github.com/MrSnakeDoc/versefinder/internal/store/sqlite"
	"github.com/MrSnakeDoc/versefinder/internal/utils"
	"github.com/MrSnakeDoc/versefinder/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	repo        domain.VerseRepository
	storeCloser io.Closer // nil for the memory store
	redisClient *goredis.Client
	resolver    *search.Resolver
	reloader    *scheduler.CorpusReloader // nil when no corpus file is configured
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Open the verse store - fail fast if unavailable
	repo, storeCloser, err := openStore(cfg)
	if err != nil {
		loggerClient.Errorf("Failed to open %s verse store: %v", cfg.Store, err)
		os.Exit(1)
	}
	loggerClient.Info("verse store opened", logger.String("store", cfg.Store))

	// Redis is optional: without it searches are simply not cached
	var (
		redisClient *goredis.Client
		cacheStore  *redisstore.Store
	)
	if cfg.CacheEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.Connect(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, search cache disabled", logger.Error(err))
		} else {
			cacheStore = redisstore.NewStore(redisClient)
			loggerClient.Info("Redis initialized successfully")
		}
	} else {
		loggerClient.Info("redis not configured, search cache disabled")
	}

	reg := metrics.New()

	engine, err := search.NewEngine(repo,
		search.WithMonitor(reg),
		search.WithLogger(loggerClient))
	if err != nil {
		loggerClient.Errorf("Failed to create search engine: %v", err)
		os.Exit(1)
	}

	resolver, err := search.NewResolver(repo,
		search.WithPoolSize(cfg.LookupWorkers),
		search.WithResolverLogger(loggerClient))
	if err != nil {
		loggerClient.Errorf("Failed to create reference resolver: %v", err)
		os.Exit(1)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		CORSOrigins:  cfg.CORSOrigins,
		RateBurst:    cfg.RateBurst,
		RatePerMin:   cfg.RatePerMin,
		StoreKind:    cfg.Store,
		Repository:   repo,
		Engine:       engine,
		Resolver:     resolver,
		CacheTTL:     cfg.CacheTTL,
		Metrics:      reg,
	}

	var flusher scheduler.CacheFlusher
	if cacheStore != nil {
		d.Cache = cacheStore
		flusher = cacheStore
	}

	// Initialize corpus reloader (if a corpus file is configured)
	var reloader *scheduler.CorpusReloader
	if cfg.CorpusFile != "" {
		reloadTrigger := make(chan struct{}, 1)
		reloader = scheduler.NewCorpusReloader(
			cfg.CorpusFile,
			repo,
			flusher,
			loggerClient,
			cfg.ReloadInterval,
			cfg.WatchCorpus,
			reloadTrigger,
		)
		d.Reloader = reloader
		d.ReloadTrigger = reloadTrigger
	} else {
		loggerClient.Info("corpus file not configured, serving the store as is")
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		repo:        repo,
		storeCloser: storeCloser,
		redisClient: redisClient,
		resolver:    resolver,
		reloader:    reloader,
	}
}

// openStore opens the configured verse store. The closer is nil when the
// store holds no external resources.
func openStore(cfg *config.Config) (domain.VerseRepository, io.Closer, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return index.NewCorpus(cfg.NearDistance), nil, nil
	default:
		s, err := sqlite.Open(cfg.DBPath, sqlite.WithNearDistance(cfg.NearDistance))
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting %s v%s on %s", version.Name, version.Version, a.cfg.ListenPort)
	a.logger.Infof("%s %s (commit=%s, built=%s, go=%s)",
		version.Name, version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start corpus reloader (loads the corpus and starts periodic refresh)
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start corpus reloader: %w", err)
		}
		a.logger.Info("corpus reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval),
			logger.Bool("watch", a.cfg.WatchCorpus))
	}

	scheduler.Warmup(ctx, a.repo, a.logger)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop reloader
	if a.reloader != nil {
		a.reloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.resolver.Release()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if a.storeCloser != nil {
		utils.MustClose(a.storeCloser, a.logger, "verse store")
	}

	a.logger.Info("✅ versefinder stopped cleanly")
	return nil
}
