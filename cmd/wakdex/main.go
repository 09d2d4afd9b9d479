package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/wakdex/internal/actions"
	"github.com/HerbHall/wakdex/internal/config"
	"github.com/HerbHall/wakdex/internal/docstore"
	"github.com/HerbHall/wakdex/internal/envelope"
	"github.com/HerbHall/wakdex/internal/items"
	"github.com/HerbHall/wakdex/internal/metrics"
	"github.com/HerbHall/wakdex/internal/mongostore"
	"github.com/HerbHall/wakdex/internal/plugin"
	"github.com/HerbHall/wakdex/internal/resources"
	"github.com/HerbHall/wakdex/internal/server"
	"github.com/HerbHall/wakdex/internal/store"
	"github.com/HerbHall/wakdex/internal/version"
)

const usage = `usage: wakdex [command] [flags]

commands:
  serve    run the HTTP API (default)
  seed     load fixture documents into the configured store
  backup   archive the SQLite store
  restore  restore a SQLite archive
  version  print build information`

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		runServe(args)
	case "seed":
		runSeed(args)
	case "backup":
		runBackup(args)
	case "restore":
		runRestore(args)
	case "version":
		fmt.Println(version.Current())
	case "help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}
}

// loadSettings parses the shared -config flag and decodes the settings.
func loadSettings(fs *flag.FlagSet, args []string) (config.Settings, *config.Config) {
	configPath := fs.String("config", "", "path to configuration file")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	settings, err := cfg.Settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return settings, cfg
}

func newLogger(s config.Settings) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if s.IsProduction() {
		zc = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(s.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	zc.Level = level
	return zc.Build()
}

// openStore connects to the configured document store.
func openStore(ctx context.Context, s config.StoreSettings) (docstore.Loader, error) {
	switch s.Driver {
	case "mongo":
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		db, err := mongostore.Connect(ctx, s.Mongo.URI, s.Mongo.Database)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "sqlite":
		db, err := store.New(s.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", s.Driver)
	}
}

func runServe(args []string) {
	settings, cfg := loadSettings(flag.NewFlagSet("serve", flag.ExitOnError), args)

	logger, err := newLogger(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("wakdex server starting",
		zap.String("version", version.Short()),
		zap.String("environment", settings.Environment),
		zap.String("store", settings.Store.Driver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := openStore(ctx, settings.Store)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer db.Close()

	m := metrics.New()
	exec := docstore.NewExecutor(db,
		docstore.WithTimeout(settings.Store.QueryTimeout),
		docstore.WithObserver(m),
	)
	env := envelope.NewBuilder(nil)

	registry := plugin.NewRegistry(logger)
	modules := []plugin.Plugin{
		items.NewModule(exec, env, version.Short()),
		actions.NewModule(exec, env, version.Short()),
		resources.NewModule(exec, env, version.Short()),
	}
	for _, p := range modules {
		if err := registry.Register(p); err != nil {
			logger.Fatal("failed to register module", zap.Error(err))
		}
	}
	if err := registry.InitAll(cfg.Viper()); err != nil {
		logger.Fatal("failed to initialize modules", zap.Error(err))
	}
	if err := registry.StartAll(ctx); err != nil {
		logger.Fatal("failed to start modules", zap.Error(err))
	}

	srv := server.New(settings.Server, server.Deps{
		Registry:  registry,
		Store:     db,
		Formatter: server.NewFormatter(logger.Named("errors"), settings.IsProduction(), nil),
		Metrics:   m,
	}, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	logger.Info("wakdex server ready", zap.String("addr", settings.Server.Addr()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	registry.StopAll()

	logger.Info("wakdex server stopped")
}
