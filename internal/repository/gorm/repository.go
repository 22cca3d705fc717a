package gormrepository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cryptofolio/internal/models"
	"cryptofolio/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- ledger state ------------------------------------------------------------

func (s *Store) LoadPortfolio(ctx context.Context) (*models.PortfolioMeta, []models.Holding, error) {
	if s == nil || s.db == nil {
		return nil, nil, nil
	}
	var meta models.PortfolioMeta
	err := s.db.WithContext(ctx).First(&meta).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, err
		}
		return nil, nil, nil
	}
	var holdings []models.Holding
	if err := s.db.WithContext(ctx).
		Model(&models.Holding{}).
		Order("id asc").
		Find(&holdings).Error; err != nil {
		return nil, nil, err
	}
	return &meta, holdings, nil
}

func (s *Store) PersistMutation(ctx context.Context, meta *models.PortfolioMeta, holding *models.Holding, tx *models.Transaction) error {
	if s == nil || s.db == nil {
		return nil
	}
	if meta == nil || holding == nil || tx == nil {
		return nil
	}
	// The upsert keys on symbol; a loaded holding still carries its row
	// id, which must not reach the insert or it conflicts first.
	row := *holding
	row.ID = 0
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_quantity",
				"average_buy_price",
				"total_invested",
				"updated_at",
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_invested",
				"updated_at",
			}),
		}).Create(meta).Error; err != nil {
			return err
		}
		return db.Create(tx).Error
	})
}

func (s *Store) PersistState(ctx context.Context, meta *models.PortfolioMeta, holdings []models.Holding) error {
	if s == nil || s.db == nil || meta == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		for i := range holdings {
			row := holdings[i]
			row.ID = 0
			if err := db.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "symbol"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"total_quantity",
					"average_buy_price",
					"total_invested",
					"updated_at",
				}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_invested",
				"updated_at",
			}),
		}).Create(meta).Error
	})
}

// --- transaction log ---------------------------------------------------------

func (s *Store) ListTransactions(ctx context.Context, params repository.ListTransactionsParams) ([]models.Transaction, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.transactionsQuery(ctx, params).Order("timestamp desc, id desc")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Transaction
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountTransactions(ctx context.Context, params repository.ListTransactionsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.transactionsQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) transactionsQuery(ctx context.Context, params repository.ListTransactionsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Transaction{})
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		query = query.Where("symbol = ?", strings.ToUpper(strings.TrimSpace(*params.Symbol)))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("timestamp >= ?", *params.Since)
	}
	return query
}

// --- snapshot history --------------------------------------------------------

func (s *Store) InsertSnapshot(ctx context.Context, snap *models.Snapshot) error {
	if s == nil || s.db == nil || snap == nil {
		return nil
	}
	record, err := toSnapshotRecord(snap)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(record).Error
}

// RecentSnapshots returns the newest limit snapshots in chronological
// order, oldest first.
func (s *Store) RecentSnapshots(ctx context.Context, limit int) ([]models.Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		return nil, nil
	}
	var records []models.SnapshotRecord
	if err := s.db.WithContext(ctx).
		Model(&models.SnapshotRecord{}).
		Order("id desc").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]models.Snapshot, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		snap, err := fromSnapshotRecord(&records[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, nil
}

func (s *Store) ListSnapshots(ctx context.Context, params repository.ListSnapshotsParams) ([]models.Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.snapshotsQuery(ctx, params).Order("id desc")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var records []models.SnapshotRecord
	if err := query.Limit(limit).Offset(offset).Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]models.Snapshot, 0, len(records))
	for i := range records {
		snap, err := fromSnapshotRecord(&records[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, nil
}

func (s *Store) CountSnapshots(ctx context.Context, params repository.ListSnapshotsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.snapshotsQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) snapshotsQuery(ctx context.Context, params repository.ListSnapshotsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.SnapshotRecord{})
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("timestamp >= ?", *params.Since)
	}
	return query
}

// TrimSnapshotsToCount deletes everything but the newest keep rows.
func (s *Store) TrimSnapshotsToCount(ctx context.Context, keep int) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if keep < 0 {
		keep = 0
	}
	sub := s.db.Model(&models.SnapshotRecord{}).
		Select("id").
		Order("id desc").
		Limit(keep)
	res := s.db.WithContext(ctx).
		Where("id NOT IN (?)", sub).
		Delete(&models.SnapshotRecord{})
	return res.RowsAffected, res.Error
}

func (s *Store) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if cutoff.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.SnapshotRecord{})
	return res.RowsAffected, res.Error
}

// --- row mapping -------------------------------------------------------------

func toSnapshotRecord(snap *models.Snapshot) (*models.SnapshotRecord, error) {
	doc, err := json.Marshal(snap.Breakdown)
	if err != nil {
		return nil, err
	}
	return &models.SnapshotRecord{
		Timestamp:          snap.Timestamp,
		TotalInvested:      snap.TotalInvested,
		TotalCurrentValue:  snap.TotalCurrentValue,
		TotalUnrealizedPnl: snap.TotalUnrealizedPnl,
		TotalPnlPercentage: snap.TotalPnlPercentage,
		HoldingCount:       snap.HoldingCount,
		Breakdown:          datatypes.JSON(doc),
	}, nil
}

func fromSnapshotRecord(record *models.SnapshotRecord) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Timestamp:          record.Timestamp,
		TotalInvested:      record.TotalInvested,
		TotalCurrentValue:  record.TotalCurrentValue,
		TotalUnrealizedPnl: record.TotalUnrealizedPnl,
		TotalPnlPercentage: record.TotalPnlPercentage,
		HoldingCount:       record.HoldingCount,
	}
	if len(record.Breakdown) > 0 {
		if err := json.Unmarshal(record.Breakdown, &snap.Breakdown); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// --- helpers -----------------------------------------------------------------

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
