package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/tictacgame-go/internal/dependencies/clock"
	"github.com/mcoot/tictacgame-go/internal/services/board"
	"github.com/mcoot/tictacgame-go/internal/services/coordinator"
	"github.com/mcoot/tictacgame-go/internal/services/registry"
	"github.com/mcoot/tictacgame-go/internal/services/session"
	"github.com/mcoot/tictacgame-go/internal/storage"
	"github.com/mcoot/tictacgame-go/internal/storage/memory"
	redisstorage "github.com/mcoot/tictacgame-go/internal/storage/redis"
	"github.com/mcoot/tictacgame-go/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	BoardService      *board.Service
	Registry          *registry.Service
	SessionController *session.Controller
	Coordinator       *coordinator.Coordinator

	// Transport
	Gateway *ws.Gateway
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()

	return newWithDependencies(store, clk, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, logger *slog.Logger) *App {
	boardService := board.New()
	registryService := registry.New(store, clk, logger)
	sessionController := session.NewController(store, registryService, boardService, clk, logger)

	gateway := ws.NewGateway(logger)
	coord := coordinator.New(registryService, sessionController, gateway, logger)
	// The gateway calls back into the coordinator; wire the cycle up last
	gateway.SetHandler(coord)

	return &App{
		Storage:           store,
		Clock:             clk,
		BoardService:      boardService,
		Registry:          registryService,
		SessionController: sessionController,
		Coordinator:       coord,
		Gateway:           gateway,
	}
}
