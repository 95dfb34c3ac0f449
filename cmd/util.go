// Package cmd provides CLI commands for the venda tool.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/vendaflow/venda-cli/config"
	"github.com/vendaflow/venda-cli/credentials"
	"github.com/vendaflow/venda-cli/pkg/approval"
	"github.com/vendaflow/venda-cli/pkg/db"
	"github.com/vendaflow/venda-cli/pkg/funnel"
	"github.com/vendaflow/venda-cli/pkg/logging"
	"github.com/vendaflow/venda-cli/pkg/opportunity"
	"github.com/vendaflow/venda-cli/pkg/pipeline"
)

// Stores bundles the backing stores a command works against. With a database
// configured these are PostgreSQL-backed; otherwise everything lives in
// memory for the duration of one invocation.
type Stores struct {
	Cards     opportunity.Repository
	Approvals approval.Repository
	Registry  funnel.Registry
	Editor    funnel.Editor

	pool  *pgxpool.Pool
	cache *redis.Client
}

// Close releases database and cache connections.
func (s *Stores) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.cache != nil {
		_ = s.cache.Close()
	}
}

// Deps holds the dependencies commands need. Tests swap in memory stores and
// a fixed clock.
type Deps struct {
	LoadConfig func() (*config.CLIConfig, error)
	OpenStores func(ctx context.Context, cfg *config.CLIConfig, logger logging.Logger) (*Stores, error)
	Now        func() time.Time
}

// DefaultDeps returns the production dependencies.
func DefaultDeps() *Deps {
	return &Deps{
		LoadConfig: config.LoadConfig,
		OpenStores: openStores,
		Now:        time.Now,
	}
}

// newLogger builds the CLI logger from config.
func newLogger(cfg *config.CLIConfig) logging.Logger {
	level := logging.LevelWarn
	if cfg.Debug {
		level = logging.LevelDebug
	}
	return logging.NewLogger(&logging.Config{
		Level:       level,
		ServiceName: "venda",
	})
}

// openStores wires the backing stores from config. Card and approval data go
// to PostgreSQL when a database is configured; funnel definitions are the
// built-in registry, read through Redis when caching is enabled.
func openStores(ctx context.Context, cfg *config.CLIConfig, logger logging.Logger) (*Stores, error) {
	registry := funnel.NewBuiltinRegistry()
	stores := &Stores{
		Cards:     opportunity.NewMemoryRepository(),
		Approvals: approval.NewMemoryRepository(),
		Registry:  registry,
		Editor:    registry,
	}

	if cfg.Database.IsConfigured() {
		pool, err := connectToDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		stores.pool = pool
		stores.Cards = opportunity.NewPgRepository(pool, logger)
		stores.Approvals = approval.NewPgRepository(pool, logger)
	}

	if cfg.Redis.IsConfigured() {
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			// Cache is an optimization; fall back to the uncached registry.
			logger.Warn("redis unavailable, funnel cache disabled",
				logging.F("addr", cfg.Redis.Addr), logging.Err(err))
			_ = client.Close()
		} else {
			stores.cache = client
			ttl := cfg.Redis.TTL
			if ttl <= 0 {
				ttl = funnel.DefaultCacheTTL
			}
			stores.Registry = funnel.NewCache(registry, client, ttl, logger)
		}
	}

	return stores, nil
}

// connectToDatabase establishes a database connection. The password comes
// from VENDA_DB_PASSWORD or, failing that, the encrypted credential store.
func connectToDatabase(ctx context.Context, cfg *config.CLIConfig) (*pgxpool.Pool, error) {
	dbCfg := db.DefaultConfig()
	dbCfg.Host = cfg.Database.Host
	dbCfg.Database = cfg.Database.Database
	dbCfg.User = cfg.Database.User
	if cfg.Database.Port != 0 {
		dbCfg.Port = cfg.Database.Port
	}
	if cfg.Database.SSLMode != "" {
		dbCfg.SSLMode = cfg.Database.SSLMode
	}

	if pw := os.Getenv("VENDA_DB_PASSWORD"); pw != "" {
		dbCfg.Password = pw
	} else if pw, err := storedPassword(); err == nil {
		dbCfg.Password = pw
	}

	pool, err := db.Connect(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return pool, nil
}

// storedPassword loads the database password from the credential store.
func storedPassword() (string, error) {
	store, err := credentials.NewStore()
	if err != nil {
		return "", err
	}
	creds, err := store.Load()
	if err != nil {
		return "", err
	}
	return creds.DBPassword, nil
}

// newEngine builds the pipeline engine over the given stores.
func newEngine(stores *Stores, logger logging.Logger) *pipeline.Engine {
	return pipeline.NewEngine(stores.Cards, stores.Registry, logger, nil)
}

// requireActor returns the configured actor ID or an error telling the user
// how to set it.
func requireActor(cfg *config.CLIConfig) (string, error) {
	if cfg.Actor.ID == "" {
		return "", fmt.Errorf("no actor configured; set actor.id in %s or VENDA_ACTOR_ID", configPathHint())
	}
	return cfg.Actor.ID, nil
}

func configPathHint() string {
	path, err := config.ConfigPath()
	if err != nil {
		return "~/.venda/config.yaml"
	}
	return path
}

// brl renders amounts the way Brazilian users read them (1.234,56).
var brl = message.NewPrinter(language.BrazilianPortuguese)

// formatBRL formats a value as Brazilian currency.
func formatBRL(v float64) string {
	return brl.Sprintf("R$ %.2f", v)
}

// printOutput renders v in the configured format. The text function is called
// for human-readable output; json and yaml marshal v directly.
func printOutput(cfg *config.CLIConfig, v any, text func()) error {
	switch cfg.OutputFormat {
	case config.OutputFormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling output: %w", err)
		}
		fmt.Println(string(data))
	case config.OutputFormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshaling output: %w", err)
		}
		fmt.Print(string(data))
	default:
		text()
	}
	return nil
}
