package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/lanova-arcade/internal/api"
	"github.com/mcoot/lanova-arcade/internal/factory"
	"github.com/mcoot/lanova-arcade/internal/notify"
	"github.com/mcoot/lanova-arcade/internal/services/auth"
	"github.com/mcoot/lanova-arcade/internal/services/ledger"
	redisstorage "github.com/mcoot/lanova-arcade/internal/storage/redis"
	"github.com/mcoot/lanova-arcade/internal/storage/sqlite"
)

// config is everything the server reads from the environment
type config struct {
	Server   api.ServerConfig
	LogLevel slog.Level
	App      factory.Config
}

// loadConfig builds the server configuration from environment variables.
// The logger is left for the caller to set.
func loadConfig(getenv func(string) string) (config, error) {
	cfg := config{
		Server:   api.DefaultServerConfig(),
		LogLevel: slog.LevelInfo,
	}

	if port := getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return cfg, fmt.Errorf("invalid PORT %q", port)
		}
		cfg.Server.Port = p
	}

	if level := getenv("LOG_LEVEL"); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL %q", level)
		}
	}

	cfg.App.StorageType = getenv("STORAGE_TYPE")
	if cfg.App.StorageType == factory.StorageTypeRedis {
		url := getenv("REDIS_URL")
		if url == "" {
			return cfg, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = url
		cfg.App.RedisConfig = &redisCfg
	}

	cfg.App.SettlementStore = getenv("SETTLEMENT_STORE")
	if cfg.App.SettlementStore == factory.StorageTypeSQLite {
		sqliteCfg := sqlite.DefaultConfig()
		if path := getenv("SQLITE_PATH"); path != "" {
			sqliteCfg.Path = path
		}
		cfg.App.SQLiteConfig = &sqliteCfg
	}

	if url := getenv("LEDGER_URL"); url != "" {
		ledgerCfg := ledger.DefaultHTTPConfig()
		ledgerCfg.BaseURL = url
		ledgerCfg.APIKey = getenv("LEDGER_API_KEY")
		if timeout := getenv("LEDGER_TIMEOUT"); timeout != "" {
			d, err := time.ParseDuration(timeout)
			if err != nil {
				return cfg, fmt.Errorf("invalid LEDGER_TIMEOUT %q: %w", timeout, err)
			}
			ledgerCfg.Timeout = d
		}
		cfg.App.Ledger = &ledgerCfg
	}

	cfg.App.AuthConfig = auth.DefaultConfig()
	cfg.App.AuthConfig.Secret = getenv("JWT_SECRET")

	if url := getenv("AMQP_URL"); url != "" {
		amqpCfg := notify.DefaultAMQPConfig()
		amqpCfg.URL = url
		if exchange := getenv("AMQP_EXCHANGE"); exchange != "" {
			amqpCfg.Exchange = exchange
		}
		cfg.App.AMQP = &amqpCfg
	}

	if raw := getenv("GAME_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid GAME_SEED %q: %w", raw, err)
		}
		cfg.App.Seed = &seed
	}

	return cfg, nil
}
