package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/iudanet/ground/internal/client/api"
	"github.com/iudanet/ground/internal/client/auth"
	"github.com/iudanet/ground/internal/client/basemap"
	"github.com/iudanet/ground/internal/client/cli"
	"github.com/iudanet/ground/internal/client/iocli"
	"github.com/iudanet/ground/internal/client/storage/boltdb"
	"github.com/iudanet/ground/internal/client/storage/sqlite"
	"github.com/iudanet/ground/internal/client/sync"
	"github.com/iudanet/ground/internal/client/work"
	"github.com/iudanet/ground/internal/config"
	"github.com/iudanet/ground/internal/logger"
	"github.com/iudanet/ground/internal/models"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const tokenEnv = "GROUND_TOKEN"

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to config file (default: "+config.DefaultClientConfigPath+")")
	serverURL := flag.String("server", "", "Server URL (overrides config)")
	dataDir := flag.String("data-dir", "", "Local data directory (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Флаги имеют приоритет над файлом конфигурации
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "server":
			cfg.Server = *serverURL
		case "data-dir":
			if dir, err := config.ExpandPath(*dataDir); err == nil {
				cfg.DataDir = dir
			}
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Получаем команду
	args := flag.Args()
	command := "help"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	if err := run(cfg, command, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Client, command string, args []string) error {
	// Логи пишутся в stderr, чтобы не смешиваться с выводом команд
	log, err := logger.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := sqlite.New(ctx, cfg.DatabasePath(), log)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close local store", "error", err)
		}
	}()

	// BoltDB хранит очередь задач, водяные знаки синхронизации и ID узла
	state, err := boltdb.New(ctx, cfg.StatePath())
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer func() {
		if err := state.Close(); err != nil {
			log.Error("failed to close state database", "error", err)
		}
	}()

	tokenPath := filepath.Join(cfg.DataDir, "token")
	session, err := resolveSession(cfg, tokenPath, log)
	if err != nil {
		return err
	}
	var token string
	if session != nil {
		token = session.Token
	}

	apiClient := api.NewClient(cfg.Server, token, time.Duration(cfg.Timeout))

	scheduler := work.NewScheduler(state, apiClient, work.Config{
		MinBackoff:   time.Duration(cfg.Work.MinBackoff),
		MaxBackoff:   time.Duration(cfg.Work.MaxBackoff),
		PollInterval: time.Duration(cfg.Work.PollInterval),
		MaxAttempts:  cfg.Work.MaxAttempts,
	}, log)

	syncService, err := sync.NewService(ctx, apiClient, store, state, scheduler, log)
	if err != nil {
		return fmt.Errorf("failed to start sync service: %w", err)
	}

	pipeline := basemap.NewPipeline(store, scheduler, nil, basemap.Config{
		Dir:         cfg.BasemapDir(),
		Concurrency: cfg.Basemap.Concurrency,
		Retries:     cfg.Basemap.Retries,
		RetryDelay:  time.Duration(cfg.Basemap.RetryDelay),
		Timeout:     time.Duration(cfg.Basemap.Timeout),
	}, log)

	scheduler.Register(models.JobKindUpload, syncService.Upload)
	scheduler.Register(models.JobKindTileDownload, pipeline.DownloadPendingTiles)

	c := cli.New(cli.Options{
		IO:        iocli.NewStdio(),
		Store:     store,
		Sync:      syncService,
		Basemaps:  pipeline,
		Worker:    scheduler,
		Session:   session,
		TokenPath: tokenPath,
	})

	return c.Run(ctx, command, args)
}

// resolveSession picks the access token: environment, config file, then the
// token saved by login. A missing token is not an error; commands that need
// an author ask for a login.
func resolveSession(cfg config.Client, tokenPath string, log *slog.Logger) (*auth.Session, error) {
	token := strings.TrimSpace(os.Getenv(tokenEnv))
	if token == "" {
		token = cfg.Token
	}
	if token == "" {
		data, err := os.ReadFile(tokenPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read saved token: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		return nil, nil
	}

	session, err := auth.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	if session.Expired(time.Now()) {
		log.Warn("access token expired, run 'ground login' with a new one",
			"expired_at", session.ExpiresAt.Format(time.RFC3339))
	}
	return session, nil
}

func printVersion() {
	fmt.Printf("Ground Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
