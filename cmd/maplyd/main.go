package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mohammed-shakir/maply/internal/apikeys"
	"github.com/mohammed-shakir/maply/internal/cache/redisstore"
	"github.com/mohammed-shakir/maply/internal/core/config"
	"github.com/mohammed-shakir/maply/internal/core/health"
	"github.com/mohammed-shakir/maply/internal/core/observability"
	"github.com/mohammed-shakir/maply/internal/core/router"
	"github.com/mohammed-shakir/maply/internal/core/server"
	"github.com/mohammed-shakir/maply/internal/logger"
	"github.com/mohammed-shakir/maply/internal/metrics"
	"github.com/mohammed-shakir/maply/internal/rendercache"
	"github.com/mohammed-shakir/maply/internal/renderevents"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func run() int {
	envFlag := flag.String("env", "", "key environment (overrides MAPLY_ENV)")
	keysFlag := flag.String("keys", "", "API key file (overrides MAPLY_KEYS_FILE)")
	flag.Parse()

	cfg := config.FromEnv()
	if *envFlag != "" {
		cfg.Env = strings.TrimSpace(*envFlag)
	}
	if *keysFlag != "" {
		cfg.KeysFile = strings.TrimSpace(*keysFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		SampleN:   envInt("LOG_SAMPLE_N", 0),
		Env:       cfg.Env,
		Component: "maplyd",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.SetEnv(cfg.Env)
	observability.ExposeBuildInfo(Version)
	appLog.Info("starting maplyd",
		"addr", cfg.Addr,
		"version", Version,
		"env", cfg.Env,
		"keys", cfg.KeysFile)

	store, err := apikeys.Load(cfg.KeysFile)
	if err != nil {
		appLog.Error("failed to load api keys", "err", err)
		return 1
	}
	if !slices.Contains(store.Envs(), strings.ToLower(cfg.Env)) {
		appLog.Warn("no api keys configured for env; renders will fail", "env", cfg.Env, "envs", store.Envs())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ready := map[string]health.Pinger{}
	var remote rendercache.Remote
	if cfg.Redis.Enabled {
		rc, err := redisstore.New(ctx, cfg.Redis.Addr)
		if err != nil {
			appLog.Error("redis connect failed", "addr", cfg.Redis.Addr, "err", err)
			return 1
		}
		defer func() { _ = rc.Close() }()
		remote = rc
		ready["redis"] = rc
	}

	cache, err := rendercache.New(rendercache.Config{
		Size:      cfg.CacheSize,
		TTL:       cfg.CacheTTL,
		OpTimeout: cfg.Redis.OpTimeout,
	}, remote, appLog)
	if err != nil {
		appLog.Error("render cache setup failed", "err", err)
		return 1
	}

	var pub renderevents.Publisher = renderevents.Nop{}
	if cfg.Events.Enabled {
		kp, err := renderevents.NewKafka(cfg.Events.Brokers, cfg.Events.Topic, cfg.Events.Queue, appLog)
		if err != nil {
			appLog.Error("render events setup failed", "brokers", cfg.Events.Brokers, "err", err)
			return 1
		}
		pub = kp
	}
	defer func() {
		if err := pub.Close(); err != nil {
			appLog.Warn("render events close", "err", err)
		}
	}()

	if os.Getenv("METRICS_ENABLED") == "true" {
		startMetrics(ctx, appLog)
	}

	rd := router.New(appLog, cfg, store.ForEnv(cfg.Env), cache, pub)
	if err := server.Run(ctx, cfg, appLog, server.NewHandler(appLog, rd, ready)); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

// startMetrics serves a dedicated registry on METRICS_ADDR until ctx ends.
func startMetrics(ctx context.Context, log *slog.Logger) {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		addr = ":9090"
	}
	path := os.Getenv("METRICS_PATH")
	if path == "" {
		path = "/metrics"
	}

	p := metrics.Init(metrics.Config{
		Enabled: true,
		Addr:    addr,
		Path:    path,
		Build: metrics.BuildInfo{
			Version:   Version,
			Revision:  os.Getenv("BUILD_REVISION"),
			Branch:    os.Getenv("BUILD_BRANCH"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	}, observability.Collectors()...)

	mux := http.NewServeMux()
	mux.Handle(path, p.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("metrics listen", "addr", addr, "path", path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server exited", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
