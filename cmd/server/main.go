package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/ground/internal/config"
	"github.com/iudanet/ground/internal/logger"
	"github.com/iudanet/ground/internal/models"
	"github.com/iudanet/ground/internal/server"
	"github.com/iudanet/ground/internal/server/handlers"
	"github.com/iudanet/ground/internal/server/storage/sqlite"
	"github.com/iudanet/ground/internal/validation"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const jwtSecretEnv = "GROUND_JWT_SECRET"

type options struct {
	issueToken    string
	name          string
	email         string
	importProject string
}

func main() {
	// Parse flags
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to config file (default: "+config.DefaultServerConfigPath+")")
	listenAddr := flag.String("listen", "", "Listen address (overrides config)")
	dbPath := flag.String("db", "", "Path to SQLite database (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")

	var opts options
	flag.StringVar(&opts.issueToken, "issue-token", "", "Print an access token for the user ID and exit")
	flag.StringVar(&opts.name, "name", "", "Display name for -issue-token")
	flag.StringVar(&opts.email, "email", "", "Email for -issue-token")
	flag.StringVar(&opts.importProject, "import-project", "", "Create or replace a project from a JSON file and exit")
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.ListenAddr = *listenAddr
		case "db":
			if path, err := config.ExpandPath(*dbPath); err == nil {
				cfg.DatabasePath = path
			}
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if secret := os.Getenv(jwtSecretEnv); secret != "" {
		cfg.JWTSecret = secret
	}

	if err := run(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, opts options) error {
	log, err := logger.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt secret is not set: use jwt_secret in the config or %s", jwtSecretEnv)
	}
	jwtConfig := handlers.JWTConfig{
		Secret: []byte(cfg.JWTSecret),
		TTL:    time.Duration(cfg.TokenTTL),
	}

	if opts.issueToken != "" {
		return issueToken(jwtConfig, opts)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DatabasePath, log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	if opts.importProject != "" {
		return importProject(ctx, store, opts.importProject, log)
	}

	srv := server.New(server.Config{
		JWT:        jwtConfig,
		Version:    Version,
		RateLimit:  cfg.RateLimit,
		RateWindow: time.Duration(cfg.RateWindow),
	}, store, log)
	defer srv.Close()

	log.Info("Ground server starting",
		"version", Version,
		"listen_addr", cfg.ListenAddr,
		"database", cfg.DatabasePath)
	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}

func issueToken(cfg handlers.JWTConfig, opts options) error {
	if err := validation.ValidateID("user", opts.issueToken); err != nil {
		return err
	}
	token, err := handlers.IssueToken(cfg, models.User{
		ID:          opts.issueToken,
		DisplayName: opts.name,
		Email:       opts.email,
	})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func importProject(ctx context.Context, store *sqlite.Storage, path string, log *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read project file: %w", err)
	}

	var project models.Project
	if err := json.Unmarshal(data, &project); err != nil {
		return fmt.Errorf("failed to parse project file: %w", err)
	}
	if err := validation.ValidateID("project", project.ID); err != nil {
		return err
	}
	if len(project.Layers) == 0 {
		return errors.New("project has no layers")
	}

	if err := store.PutProject(ctx, &project); err != nil {
		return err
	}
	log.Info("Project imported", "project_id", project.ID, "layers", len(project.Layers))
	fmt.Printf("Project %s (%s) imported\n", project.ID, project.Title)
	return nil
}

func printVersion() {
	fmt.Printf("Ground Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
