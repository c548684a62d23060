package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/store/schema"
)

const PG_UNIQUE_VIOLATION = "23505"

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// UseReadReplica registers readDialector as a read replica. Store reads still go to the primary.
func UseReadReplica(db *gorm.DB, readDialector gorm.Dialector) error {
	return db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: []gorm.Dialector{readDialector},
		Policy:   dbresolver.RandomPolicy{},
	}))
}

// ConfigureConnectionPool sets pool limits on the underlying sql.DB.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and keeps idle connections within the open limit.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// primary pins reads to the primary so a record is visible right after it is written
func (s *pgStore) primary(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Clauses(dbresolver.Write)
}

// PutTransfer inserts the record together with its first history event
func (s *pgStore) PutTransfer(ctx context.Context, rec *domain.TransferRecord) error {
	row, err := toSchemaTransfer(rec)
	if err != nil {
		return err
	}
	event, err := toSchemaEvent(rec, nil)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrDuplicate, rec.TransferID)
			}
			return fmt.Errorf("failed to create transfer: %w", err)
		}

		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to create transfer event: %w", err)
		}
		return nil
	})
}

// GetTransfer retrieves a transfer by its internal id
func (s *pgStore) GetTransfer(ctx context.Context, id string) (*domain.TransferRecord, error) {
	var row schema.Transfer
	err := s.primary(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}

	return fromSchemaTransfer(&row)
}

// GetTransferByTransferID retrieves a transfer by its public id
func (s *pgStore) GetTransferByTransferID(ctx context.Context, transferID string) (*domain.TransferRecord, error) {
	var row schema.Transfer
	err := s.primary(ctx).Where("transfer_id = ?", transferID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transfer by transfer id: %w", err)
	}

	return fromSchemaTransfer(&row)
}

// ListTransfers lists transfers newest first.
// Unreadable rows are skipped and the page is refilled from the rows after them.
func (s *pgStore) ListTransfers(ctx context.Context, filter ListTransfersFilter) ([]*domain.TransferRecord, error) {
	limit := filter.PageLimit()
	cursor := filter.After
	records := make([]*domain.TransferRecord, 0, min(limit, DEFAULT_LIST_LIMIT))

	for len(records) < limit {
		batch := limit - len(records)
		rows, err := s.listRows(ctx, filter, cursor, batch)
		if err != nil {
			return nil, err
		}

		for i := range rows {
			rec, err := fromSchemaTransfer(&rows[i])
			if err != nil {
				logger.WarnCtx(ctx, "Skipping unreadable transfer row", zap.String("id", rows[i].ID), zap.Error(err))
				continue
			}
			records = append(records, rec)
		}

		if len(rows) < batch {
			break
		}
		last := rows[len(rows)-1]
		cursor = &Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	return records, nil
}

func (s *pgStore) listRows(ctx context.Context, filter ListTransfersFilter, cursor *Cursor, limit int) ([]schema.Transfer, error) {
	query := s.primary(ctx).Model(&schema.Transfer{})

	if filter.User != "" {
		query = query.Where("(sender_address = ? OR recipient_address = ?)", filter.User.String(), filter.User.String())
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		query = query.Where("status IN ?", statuses)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?::uuid)", cursor.CreatedAt, cursor.ID)
	}

	var rows []schema.Transfer
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return rows, nil
}

// UpdateTransfer writes rec when the stored status still equals expected and appends a history event
func (s *pgStore) UpdateTransfer(ctx context.Context, rec *domain.TransferRecord, expected domain.TransferStatus) error {
	row, err := toSchemaTransfer(rec)
	if err != nil {
		return err
	}
	event, err := toSchemaEvent(rec, &expected)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&schema.Transfer{}).
			Where("id = ? AND status = ?", rec.ID, string(expected)).
			Updates(updateColumns(row))
		if result.Error != nil {
			return fmt.Errorf("failed to update transfer: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&schema.Transfer{}).Where("id = ?", rec.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check transfer existence: %w", err)
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrStatusConflict
		}

		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to create transfer event: %w", err)
		}
		return nil
	})
}

// GetTransferHistory returns the status history of a transfer, oldest first
func (s *pgStore) GetTransferHistory(ctx context.Context, transferID string) ([]*domain.TransferEvent, error) {
	var rows []schema.TransferEvent
	err := s.primary(ctx).
		Where("transfer_id = ?", transferID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer history: %w", err)
	}

	events := make([]*domain.TransferEvent, 0, len(rows))
	for i := range rows {
		ev, err := fromSchemaEvent(&rows[i])
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == PG_UNIQUE_VIOLATION
}
