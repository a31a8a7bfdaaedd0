// Package cli implements the commands of the ground field client.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/ground/internal/client/auth"
	"github.com/iudanet/ground/internal/client/iocli"
	"github.com/iudanet/ground/internal/client/sync"
	"github.com/iudanet/ground/internal/models"
)

// ErrUsage сообщает о неверных аргументах команды
var ErrUsage = errors.New("invalid usage")

// Store is the part of the local store read by commands.
type Store interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetProjects(ctx context.Context) ([]*models.Project, error)
	GetFeature(ctx context.Context, id string) (*models.Feature, error)
	GetFeatures(ctx context.Context, projectID string) ([]*models.Feature, error)
	GetObservation(ctx context.Context, id string) (*models.Observation, error)
	GetObservations(ctx context.Context, featureID, formID string) ([]*models.Observation, error)
	auth.UserStore
}

//go:generate moq -out basemaps_mock.go . Basemaps

// Basemaps manages offline areas.
type Basemaps interface {
	AddAreaAndEnqueue(ctx context.Context, projectID string, bounds models.Bounds) (*models.OfflineArea, error)
	RetryArea(ctx context.Context, areaID string) error
	RemoveArea(ctx context.Context, areaID string) error
	Areas(ctx context.Context) ([]*models.OfflineArea, error)
	Area(ctx context.Context, id string) (*models.OfflineArea, error)
	AreaStorageSize(ctx context.Context, areaID string) (int64, error)
	IntersectingDownloadedTileSources(ctx context.Context, area *models.OfflineArea) ([]*models.TileSource, error)
	DownloadPendingTiles(ctx context.Context, key string) error
}

//go:generate moq -out worker_mock.go . Worker

// Worker runs background jobs.
type Worker interface {
	Run(ctx context.Context) error
	Pending(ctx context.Context, kind string) ([]*models.Job, error)
}

// Options are the dependencies of the CLI.
type Options struct {
	IO        iocli.IO
	Store     Store
	Sync      sync.Service
	Basemaps  Basemaps
	Worker    Worker
	Session   *auth.Session // nil без входа
	TokenPath string        // файл с токеном доступа
}

type Cli struct {
	io        iocli.IO
	store     Store
	sync      sync.Service
	basemaps  Basemaps
	worker    Worker
	session   *auth.Session
	tokenPath string
}

func New(opts Options) *Cli {
	return &Cli{
		io:        opts.IO,
		store:     opts.Store,
		sync:      opts.Sync,
		basemaps:  opts.Basemaps,
		worker:    opts.Worker,
		session:   opts.Session,
		tokenPath: opts.TokenPath,
	}
}

// Run executes a command with its arguments.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.runLogin(ctx, args)
	case "logout":
		return c.runLogout()
	case "status":
		return c.runStatus(ctx)
	case "errors":
		return c.runErrors(ctx)
	case "retry":
		return c.runRetry(ctx)
	case "projects":
		return c.runProjects(ctx)
	case "feature":
		return c.runFeature(ctx, args)
	case "observation":
		return c.runObservation(ctx, args)
	case "pull":
		return c.runPull(ctx, args)
	case "sync":
		return c.runSync(ctx, args)
	case "worker":
		return c.runWorker(ctx)
	case "area":
		return c.runArea(ctx, args)
	case "tiles":
		return c.runTiles(ctx, args)
	case "help":
		c.PrintUsage()
		return nil
	default:
		c.PrintUsage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, command)
	}
}

// requireSession returns the author of local edits.
func (c *Cli) requireSession() (models.User, error) {
	if c.session == nil {
		return models.User{}, fmt.Errorf("not authenticated. Please run 'ground login' first")
	}
	return c.session.User, nil
}

func usageError(usage string) error {
	return fmt.Errorf("%w. Usage: %s", ErrUsage, usage)
}

func (c *Cli) PrintUsage() {
	c.io.Println("Ground field client")
	c.io.Println()
	c.io.Println("Usage:")
	c.io.Println("  ground [OPTIONS] COMMAND")
	c.io.Println()
	c.io.Println("Options:")
	c.io.Println("  -version             Show version information")
	c.io.Println("  -config PATH         Config file (default: ~/.config/ground/client.toml)")
	c.io.Println("  -server URL          Server URL (overrides config)")
	c.io.Println("  -data-dir PATH       Local data directory (overrides config)")
	c.io.Println("  -log-level LEVEL     debug, info, warn or error")
	c.io.Println()
	c.io.Println("Access token priority (highest to lowest):")
	c.io.Println("  1. GROUND_TOKEN environment variable")
	c.io.Println("  2. token in the config file")
	c.io.Println("  3. token saved by 'ground login'")
	c.io.Println()
	c.io.Println("Commands:")
	c.io.Println("  login [TOKEN]                              Save the access token issued by the server")
	c.io.Println("  logout                                     Forget the saved access token")
	c.io.Println("  status                                     Show queue, jobs and offline areas")
	c.io.Println("  errors                                     List mutations rejected by the server")
	c.io.Println("  retry                                      Return rejected mutations to the queue")
	c.io.Println("  projects                                   List locally available projects")
	c.io.Println("  pull <project>                             Fetch the project and remote changes")
	c.io.Println("  sync <project>                             Upload queued changes, then pull")
	c.io.Println("  worker                                     Run background uploads and downloads")
	c.io.Println("  feature add <project> <layer> <lat,lng>    Add a point feature")
	c.io.Println("  feature move <feature> <lat,lng>           Move a feature")
	c.io.Println("  feature delete <feature>                   Delete a feature")
	c.io.Println("  feature list <project>                     List features")
	c.io.Println("  observation add <feature> <form> f=v...    Add an observation")
	c.io.Println("  observation edit <observation> f=v...      Change responses (f= clears)")
	c.io.Println("  observation delete <observation>           Delete an observation")
	c.io.Println("  observation list <feature>                 List observations")
	c.io.Println("  area add <project> <s,w,n,e>               Keep an area available offline")
	c.io.Println("  area list                                  List offline areas")
	c.io.Println("  area show <area>                           Show area tiles and size")
	c.io.Println("  area retry <area>                          Retry a failed area")
	c.io.Println("  area remove <area> [--yes]                 Remove an area and unused tiles")
	c.io.Println("  tiles download                             Download pending tiles now")
	c.io.Println()
	c.io.Println("Examples:")
	c.io.Println("  ground login")
	c.io.Println("  ground pull 5b1e")
	c.io.Println("  ground feature add 5b1e trees 51.5,-0.12")
	c.io.Println("  ground observation add 8f2c species name=Oak height=12")
	c.io.Println("  ground area add 5b1e 51.4,-0.2,51.6,0.1")
	c.io.Println("  ground worker")
}
