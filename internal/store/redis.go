package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/safient/safient-escrow/internal/adapter"
	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/logger"
)

const (
	REDIS_MAX_TX_ATTEMPTS = 5
	REDIS_SCAN_BATCH      = 200
)

type redisStore struct {
	client *redis.Client
	prefix string
	json   adapter.JSON
}

// redisEvent is the history list entry
type redisEvent struct {
	FromStatus *domain.TransferStatus `json:"from_status,omitempty"`
	ToStatus   domain.TransferStatus  `json:"to_status"`
	Snapshot   *domain.TransferRecord `json:"snapshot"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewRedisStore creates a store on Redis. Keys are namespaced with prefix when it is not empty.
func NewRedisStore(client *redis.Client, prefix string, json adapter.JSON) Store {
	return &redisStore{client: client, prefix: prefix, json: json}
}

func (s *redisStore) key(parts ...string) string {
	if s.prefix != "" {
		parts = append([]string{s.prefix}, parts...)
	}
	return strings.Join(parts, ":")
}

func (s *redisStore) recordKey(id string) string        { return s.key("transaction", id) }
func (s *redisStore) indexKey(transferID string) string { return s.key("transfer", transferID) }
func (s *redisStore) historyKey(transferID string) string {
	return s.key("history", transferID)
}
func (s *redisStore) listKey() string { return s.key("transactions") }

// PutTransfer writes the record, its transfer id index, the listing entry and the first history entry in one MULTI
func (s *redisStore) PutTransfer(ctx context.Context, rec *domain.TransferRecord) error {
	data, err := s.json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer: %w", err)
	}
	event, err := s.json.Marshal(redisEvent{ToStatus: rec.Status, Snapshot: snapshot(rec), CreatedAt: rec.UpdatedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal transfer event: %w", err)
	}

	recordKey := s.recordKey(rec.ID)
	indexKey := s.indexKey(rec.TransferID)

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, recordKey, indexKey).Result()
		if err != nil {
			return fmt.Errorf("failed to check transfer existence: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicate, rec.TransferID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, recordKey, data, 0)
			pipe.Set(ctx, indexKey, rec.ID, 0)
			pipe.ZAdd(ctx, s.listKey(), redis.Z{Score: float64(rec.CreatedAt.UnixMilli()), Member: rec.ID})
			pipe.RPush(ctx, s.historyKey(rec.TransferID), event)
			return nil
		})
		return err
	}

	for range REDIS_MAX_TX_ATTEMPTS {
		err = s.client.Watch(ctx, txf, recordKey, indexKey)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.TransferID)
	}
	if err != nil && !errors.Is(err, ErrDuplicate) {
		return fmt.Errorf("failed to put transfer: %w", err)
	}
	return err
}

// GetTransfer retrieves a transfer by its internal id
func (s *redisStore) GetTransfer(ctx context.Context, id string) (*domain.TransferRecord, error) {
	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}

	var rec domain.TransferRecord
	if err := s.json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transfer: %w", err)
	}
	return &rec, nil
}

// GetTransferByTransferID resolves the transfer id index then loads the record
func (s *redisStore) GetTransferByTransferID(ctx context.Context, transferID string) (*domain.TransferRecord, error) {
	id, err := s.client.Get(ctx, s.indexKey(transferID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transfer index: %w", err)
	}
	return s.GetTransfer(ctx, id)
}

// ListTransfers walks the listing sorted set newest first, filtering in batches.
// Members sharing a score are ordered by id, descending, which matches the cursor order.
func (s *redisStore) ListTransfers(ctx context.Context, filter ListTransfersFilter) ([]*domain.TransferRecord, error) {
	limit := filter.PageLimit()
	records := make([]*domain.TransferRecord, 0, min(limit, REDIS_SCAN_BATCH))

	maxScore := "+inf"
	var cursorScore float64
	if filter.After != nil {
		cursorScore = float64(filter.After.CreatedAt.UnixMilli())
		maxScore = strconv.FormatInt(filter.After.CreatedAt.UnixMilli(), 10)
	}

	for offset := int64(0); len(records) < limit; offset += REDIS_SCAN_BATCH {
		members, err := s.client.ZRevRangeByScoreWithScores(ctx, s.listKey(), &redis.ZRangeBy{
			Min:    "-inf",
			Max:    maxScore,
			Offset: offset,
			Count:  REDIS_SCAN_BATCH,
		}).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list transfers: %w", err)
		}
		if len(members) == 0 {
			break
		}

		ids := make([]string, 0, len(members))
		for _, m := range members {
			id, ok := m.Member.(string)
			if !ok {
				continue
			}
			if filter.After != nil && m.Score == cursorScore && id >= filter.After.ID {
				continue
			}
			ids = append(ids, id)
		}

		if len(ids) > 0 {
			keys := make([]string, len(ids))
			for i, id := range ids {
				keys[i] = s.recordKey(id)
			}
			values, err := s.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("failed to load transfers: %w", err)
			}

			for i, v := range values {
				str, ok := v.(string)
				if !ok {
					continue
				}
				var rec domain.TransferRecord
				if err := s.json.Unmarshal([]byte(str), &rec); err != nil {
					logger.WarnCtx(ctx, "Skipping unreadable transfer", zap.String("id", ids[i]), zap.Error(err))
					continue
				}
				if filter.matches(&rec) {
					records = append(records, &rec)
					if len(records) == limit {
						break
					}
				}
			}
		}

		if len(members) < REDIS_SCAN_BATCH {
			break
		}
	}

	return records, nil
}

// UpdateTransfer compares the stored status under WATCH and writes the record with a history entry
func (s *redisStore) UpdateTransfer(ctx context.Context, rec *domain.TransferRecord, expected domain.TransferStatus) error {
	data, err := s.json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal transfer: %w", err)
	}
	from := expected
	event, err := s.json.Marshal(redisEvent{FromStatus: &from, ToStatus: rec.Status, Snapshot: snapshot(rec), CreatedAt: rec.UpdatedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal transfer event: %w", err)
	}

	recordKey := s.recordKey(rec.ID)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, recordKey).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to get transfer: %w", err)
		}

		var stored domain.TransferRecord
		if err := s.json.Unmarshal(current, &stored); err != nil {
			return fmt.Errorf("failed to unmarshal transfer: %w", err)
		}
		if stored.Status != expected {
			return ErrStatusConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, recordKey, data, 0)
			pipe.RPush(ctx, s.historyKey(rec.TransferID), event)
			return nil
		})
		return err
	}

	for range REDIS_MAX_TX_ATTEMPTS {
		err = s.client.Watch(ctx, txf, recordKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	// the key kept changing under us; a competing writer won
	return ErrStatusConflict
}

// GetTransferHistory returns the history list, oldest first
func (s *redisStore) GetTransferHistory(ctx context.Context, transferID string) ([]*domain.TransferEvent, error) {
	items, err := s.client.LRange(ctx, s.historyKey(transferID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer history: %w", err)
	}

	events := make([]*domain.TransferEvent, 0, len(items))
	for i, item := range items {
		var re redisEvent
		if err := s.json.Unmarshal([]byte(item), &re); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transfer event: %w", err)
		}
		events = append(events, &domain.TransferEvent{
			ID:         uint64(i + 1),
			TransferID: transferID,
			FromStatus: re.FromStatus,
			ToStatus:   re.ToStatus,
			Snapshot:   re.Snapshot,
			CreatedAt:  re.CreatedAt,
		})
	}
	return events, nil
}
