package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/lanova-arcade/internal/api/sse"
	"github.com/mcoot/lanova-arcade/internal/dependencies/clock"
	"github.com/mcoot/lanova-arcade/internal/dependencies/random"
	"github.com/mcoot/lanova-arcade/internal/model"
	"github.com/mcoot/lanova-arcade/internal/notify"
	"github.com/mcoot/lanova-arcade/internal/services/auth"
	"github.com/mcoot/lanova-arcade/internal/services/board"
	"github.com/mcoot/lanova-arcade/internal/services/bot"
	"github.com/mcoot/lanova-arcade/internal/services/game"
	"github.com/mcoot/lanova-arcade/internal/services/ledger"
	"github.com/mcoot/lanova-arcade/internal/services/modes"
	"github.com/mcoot/lanova-arcade/internal/services/scoring"
	"github.com/mcoot/lanova-arcade/internal/storage"
	"github.com/mcoot/lanova-arcade/internal/storage/memory"
	redisstorage "github.com/mcoot/lanova-arcade/internal/storage/redis"
	"github.com/mcoot/lanova-arcade/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	Settlements storage.SettlementStore

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Ledger ledger.Client

	// Services
	Modes          *modes.Registry
	ScoringService *scoring.Service
	BoardService   *board.Service
	Settler        *ledger.Settler
	GameController *game.Controller
	AuthService    *auth.Service
	BotService     *bot.Service

	// Events
	Publisher  notify.Publisher
	HubManager *sse.HubManager

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the session backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SettlementStore selects the settlement backend ("memory" or "sqlite")
	// If empty, defaults to "memory"
	SettlementStore string
	// SQLiteConfig holds the database path (required if SettlementStore is "sqlite")
	SQLiteConfig *sqlite.Config
	// Ledger configures the HTTP ledger client. If nil, an in-process ledger is used.
	Ledger *ledger.HTTPConfig
	// AuthConfig holds configuration for the auth service (optional)
	// If the issuer and TTL are unset, auth.DefaultConfig() fills them in
	AuthConfig auth.Config
	// AMQP enables publishing events to a broker (optional)
	AMQP *notify.AMQPConfig
	// Modes overrides the built-in game modes (optional)
	Modes []model.GameMode
	// Seed makes board generation reproducible (optional)
	Seed *uint64
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	registry := modes.Default()
	if len(cfg.Modes) > 0 {
		r, err := modes.New(cfg.Modes...)
		if err != nil {
			return nil, err
		}
		registry = r
	}

	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	// Session storage
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
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Settlement storage
	var settlements storage.SettlementStore
	switch cfg.SettlementStore {
	case "", StorageTypeMemory:
		settlements = memory.New()
	case StorageTypeSQLite:
		if cfg.SQLiteConfig == nil {
			closeAll()
			return nil, errors.New("SQLiteConfig required when SettlementStore is sqlite")
		}
		db, err := sqlite.Open(*cfg.SQLiteConfig, logger)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		settlements = db
		closers = append(closers, db)
	default:
		closeAll()
		return nil, errors.New("invalid SettlementStore: must be 'memory' or 'sqlite'")
	}

	// External dependencies
	clk := clock.New()
	var engineRandom random.Random = random.New()
	if cfg.Seed != nil {
		engineRandom = random.NewSeeded(*cfg.Seed)
	}

	var ledgerClient ledger.Client
	if cfg.Ledger != nil {
		ledgerClient = ledger.NewHTTPClient(*cfg.Ledger)
	} else {
		ledgerClient = ledger.NewMemoryClient(clk, ledger.DefaultDailyCap)
	}

	hubManager := sse.NewHubManager(clk, logger)
	publishers := notify.Fanout{sse.NewBroadcaster(hubManager, logger)}
	if cfg.AMQP != nil {
		amqpPublisher, err := notify.DialAMQP(*cfg.AMQP, logger)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("connect amqp: %w", err)
		}
		publishers = append(publishers, amqpPublisher)
	}

	authCfg := cfg.AuthConfig
	if authCfg.Issuer == "" && authCfg.TokenTTL == 0 {
		defaults := auth.DefaultConfig()
		authCfg.Issuer = defaults.Issuer
		authCfg.TokenTTL = defaults.TokenTTL
	}

	app := newWithDependencies(dependencies{
		store:        store,
		settlements:  settlements,
		clock:        clk,
		random:       random.New(),
		engineRandom: engineRandom,
		ledger:       ledgerClient,
		publisher:    publishers,
		hubManager:   hubManager,
		modes:        registry,
		authConfig:   authCfg,
		logger:       logger,
	})
	app.closers = append(closers, publishers)
	return app, nil
}

// Close releases connections held by the app
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type dependencies struct {
	store        storage.Storage
	settlements  storage.SettlementStore
	clock        clock.Clock
	random       random.Random // session ids
	engineRandom random.Random // board generation, refills and the cascade gate
	ledger       ledger.Client
	publisher    notify.Publisher
	hubManager   *sse.HubManager
	modes        *modes.Registry
	authConfig   auth.Config
	logger       *slog.Logger
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(d dependencies) *App {
	scoringService := scoring.New(d.engineRandom)
	boardService := board.New(d.engineRandom, scoringService, d.logger)
	settler := ledger.NewSettler(d.settlements, d.ledger, d.publisher, d.clock, d.logger)
	gameController := game.NewController(d.store, d.modes, boardService, settler, d.publisher, d.clock, d.random, d.logger)
	authService := auth.New(d.clock, d.authConfig)
	botService := bot.NewService(gameController, map[string]bot.Strategy{
		model.BotStrategyFirst:  bot.NewFirstStrategy(boardService),
		model.BotStrategyRandom: bot.NewRandomStrategy(boardService, d.engineRandom),
	}, d.logger)

	return &App{
		Storage:        d.store,
		Settlements:    d.settlements,
		Clock:          d.clock,
		Random:         d.random,
		Ledger:         d.ledger,
		Modes:          d.modes,
		ScoringService: scoringService,
		BoardService:   boardService,
		Settler:        settler,
		GameController: gameController,
		AuthService:    authService,
		BotService:     botService,
		Publisher:      d.publisher,
		HubManager:     d.hubManager,
	}
}
