// Package bootstrap builds the runtime dependencies shared by the cmd programs
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/config"
	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/messaging"
	"github.com/safient/safient-escrow/internal/providers/algorand"
	"github.com/safient/safient-escrow/internal/providers/jetstream"
	"github.com/safient/safient-escrow/internal/providers/temporal"
	"github.com/safient/safient-escrow/internal/store"
)

// Resources holds the connections opened for a store
type Resources struct {
	Store store.Store
	// Redis is set whenever redis.addr is configured, whatever the store driver
	Redis   adapter.RedisClient
	closers []func() error
}

// Close releases every connection in reverse order of opening
func (r *Resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
}

// OpenStore connects the configured store backend
func OpenStore(ctx context.Context, storeCfg config.StoreConfig, dbCfg config.DatabaseConfig, redisCfg config.RedisConfig) (*Resources, error) {
	res := &Resources{}

	if redisCfg.Addr != "" {
		rc := adapter.NewRedisClient(redisCfg.Addr, redisCfg.Password, redisCfg.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			_ = rc.Close()
			if storeCfg.Driver == config.STORE_DRIVER_REDIS {
				return nil, fmt.Errorf("failed to connect to redis: %w", err)
			}
			logger.WarnCtx(ctx, "Redis unreachable, continuing without it", zap.Error(err))
		} else {
			res.Redis = rc
			res.closers = append(res.closers, rc.Close)
			logger.InfoCtx(ctx, "Connected to Redis", zap.String("addr", redisCfg.Addr))
		}
	}

	switch storeCfg.Driver {
	case config.STORE_DRIVER_POSTGRES:
		db, err := gorm.Open(postgres.Open(dbCfg.DSN()), &gorm.Config{})
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if dbCfg.ReadHost != "" {
			if err := store.UseReadReplica(db, postgres.Open(dbCfg.ReadDSN())); err != nil {
				res.Close()
				return nil, fmt.Errorf("failed to register read replica: %w", err)
			}
		}
		if err := store.ConfigureConnectionPool(db, dbCfg.MaxOpenConns, dbCfg.MaxIdleConns, dbCfg.ConnMaxLifetime, dbCfg.ConnMaxIdleTime); err != nil {
			res.Close()
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		res.closers = append(res.closers, sqlDB.Close)
		res.Store = store.NewPGStore(db)
		logger.InfoCtx(ctx, "Connected to database",
			zap.String("host", dbCfg.Host),
			zap.String("dbname", dbCfg.DBName),
			zap.Bool("read_replica", dbCfg.ReadHost != ""),
		)

	case config.STORE_DRIVER_REDIS:
		if res.Redis == nil {
			return nil, errors.New("redis store requires redis.addr")
		}
		res.Store = store.NewRedisStore(res.Redis.Client(), redisCfg.KeyPrefix, adapter.NewJSON())

	case config.STORE_DRIVER_MEMORY:
		logger.WarnCtx(ctx, "Using in-memory store, records are lost on restart")
		res.Store = store.NewMemoryStore()

	default:
		res.Close()
		return nil, fmt.Errorf("unknown store driver %q", storeCfg.Driver)
	}

	return res, nil
}

// NewLedger creates the Algorand ledger client
func NewLedger(cfg config.AlgorandConfig) (algorand.Client, error) {
	algod, err := adapter.NewAlgod(cfg.AlgodAddress, cfg.AlgodToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create algod client: %w", err)
	}
	return algorand.NewClient(algod, cfg.ConfirmationRounds), nil
}

// NewSecretBox creates the sealer for escrow secrets
func NewSecretBox(cfg config.EscrowConfig) (escrow.SecretBox, error) {
	return escrow.NewSecretBox(cfg.SecretKey, cfg.AllowPlaintextSecrets, adapter.NewBase64())
}

// EscrowConfig converts the escrow section into engine parameters
func EscrowConfig(cfg config.EscrowConfig) escrow.Config {
	out := escrow.DefaultConfig()
	if cfg.MinimumBalance > 0 {
		out.MinimumBalance = cfg.MinimumBalance
	}
	if cfg.FeeFloor > 0 {
		out.FeeFloor = cfg.FeeFloor
	}
	if cfg.MinDuration > 0 {
		out.MinDuration = cfg.MinDuration
	}
	if cfg.MaxDuration > 0 {
		out.MaxDuration = cfg.MaxDuration
	}
	if cfg.DefaultDurationHours > 0 {
		out.DefaultDurationHours = cfg.DefaultDurationHours
	}
	if cfg.MaxTransferAmount > 0 {
		out.MaxTransferAmount = cfg.MaxTransferAmount
	}
	if cfg.SweepLimit > 0 {
		out.SweepLimit = min(cfg.SweepLimit, store.MAX_LIST_LIMIT)
	}
	if cfg.SettlingTimeout > 0 {
		out.SettlingTimeout = cfg.SettlingTimeout
	}
	return out
}

// NewPublisher connects the JetStream publisher, or returns a no-op publisher when nats.url is empty
func NewPublisher(ctx context.Context, cfg config.NATSConfig) (messaging.Publisher, error) {
	if cfg.URL == "" {
		logger.InfoCtx(ctx, "NATS not configured, transfer events are not published")
		return messaging.NewNoopPublisher(), nil
	}

	return jetstream.NewPublisher(ctx, jetstream.Config{
		URL:            cfg.URL,
		StreamName:     cfg.StreamName,
		SubjectPrefix:  cfg.SubjectPrefix,
		MaxReconnects:  cfg.MaxReconnects,
		ReconnectWait:  cfg.ReconnectWait,
		ConnectionName: cfg.ConnectionName,
		SigningSecret:  cfg.SigningSecret,
	}, adapter.NewNatsJetStream(), adapter.NewJSON(), adapter.NewJCS(), adapter.NewClock())
}

// DialTemporal connects to Temporal with the zap logger adapter
func DialTemporal(cfg config.TemporalConfig) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    temporal.NewZapLoggerAdapter(logger.Default()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to temporal: %w", err)
	}
	return c, nil
}
