package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safient/safient-escrow/internal/config"
	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/escrow"
	"github.com/safient/safient-escrow/internal/messaging"
	"github.com/safient/safient-escrow/internal/store"
)

func TestEscrowConfig(t *testing.T) {
	t.Run("zero values keep defaults", func(t *testing.T) {
		cfg := EscrowConfig(config.EscrowConfig{})
		assert.Equal(t, uint64(domain.MINIMUM_BALANCE_MICROALGOS), cfg.MinimumBalance)
		assert.Equal(t, uint64(domain.FEE_FLOOR_MICROALGOS), cfg.FeeFloor)
		assert.Equal(t, domain.MIN_ESCROW_DURATION, cfg.MinDuration)
		assert.Equal(t, domain.MAX_ESCROW_DURATION, cfg.MaxDuration)
		assert.Equal(t, store.MAX_LIST_LIMIT, cfg.SweepLimit)
		assert.Equal(t, escrow.DEFAULT_SETTLING_TIMEOUT, cfg.SettlingTimeout)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg := EscrowConfig(config.EscrowConfig{
			FeeFloor:        2000,
			MaxDuration:     2 * time.Hour,
			SweepLimit:      100_000,
			SettlingTimeout: time.Minute,
		})
		assert.Equal(t, uint64(2000), cfg.FeeFloor)
		assert.Equal(t, 2*time.Hour, cfg.MaxDuration)
		assert.Equal(t, store.MAX_LIST_LIMIT, cfg.SweepLimit)
		assert.Equal(t, time.Minute, cfg.SettlingTimeout)
	})
}

func TestOpenMemoryStore(t *testing.T) {
	res, err := OpenStore(context.Background(), config.StoreConfig{Driver: config.STORE_DRIVER_MEMORY}, config.DatabaseConfig{}, config.RedisConfig{})
	require.NoError(t, err)
	defer res.Close()

	assert.NotNil(t, res.Store)
	assert.Nil(t, res.Redis)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), config.StoreConfig{Driver: "sqlite"}, config.DatabaseConfig{}, config.RedisConfig{})
	assert.Error(t, err)
}

func TestNewPublisherDisabled(t *testing.T) {
	p, err := NewPublisher(context.Background(), config.NATSConfig{})
	require.NoError(t, err)
	assert.Equal(t, messaging.NewNoopPublisher(), p)
}

func TestNewSecretBox(t *testing.T) {
	_, err := NewSecretBox(config.EscrowConfig{})
	assert.Error(t, err)

	box, err := NewSecretBox(config.EscrowConfig{AllowPlaintextSecrets: true})
	require.NoError(t, err)
	sealed, err := box.Seal("words")
	require.NoError(t, err)
	assert.Equal(t, "words", sealed)
}
