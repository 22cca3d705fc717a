package repository

import (
	"context"
	"time"

	"cryptofolio/internal/models"
)

// ListTransactionsParams filters the append-only transaction log.
type ListTransactionsParams struct {
	Symbol *string
	Since  *time.Time
	Limit  int
	Offset int
}

// ListSnapshotsParams pages stored performance snapshots.
type ListSnapshotsParams struct {
	Since  *time.Time
	Limit  int
	Offset int
}

// Repository mirrors the in-memory session state to local storage.
// Callers treat it as a collaborator: load once at startup, persist after
// mutations. Persist failures are reported to the caller and logged
// there; they never invalidate the in-memory state.
type Repository interface {
	// Ledger state. LoadPortfolio returns a nil meta when no portfolio
	// has ever been saved; holdings come back in insertion order.
	LoadPortfolio(ctx context.Context) (*models.PortfolioMeta, []models.Holding, error)

	// PersistMutation writes one successful ledger mutation atomically:
	// holding upsert, portfolio header, and the immutable transaction row.
	PersistMutation(ctx context.Context, meta *models.PortfolioMeta, holding *models.Holding, tx *models.Transaction) error

	// PersistState re-mirrors the whole ledger state (shutdown flush and
	// the emergency save path).
	PersistState(ctx context.Context, meta *models.PortfolioMeta, holdings []models.Holding) error

	// Append-only transaction log reads.
	ListTransactions(ctx context.Context, params ListTransactionsParams) ([]models.Transaction, error)
	CountTransactions(ctx context.Context, params ListTransactionsParams) (int64, error)

	// Snapshot history.
	InsertSnapshot(ctx context.Context, snap *models.Snapshot) error
	RecentSnapshots(ctx context.Context, limit int) ([]models.Snapshot, error)
	ListSnapshots(ctx context.Context, params ListSnapshotsParams) ([]models.Snapshot, error)
	CountSnapshots(ctx context.Context, params ListSnapshotsParams) (int64, error)
	TrimSnapshotsToCount(ctx context.Context, keep int) (int64, error)
	DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
