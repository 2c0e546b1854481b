package assets

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/accounts"
	"github.com/odyssey-erp/fincore/internal/ledger"
)

// Reader exposes lock-free reads.
type Reader interface {
	GetAsset(ctx context.Context, id uuid.UUID) (Asset, error)
	ListAssets(ctx context.Context, orgID uuid.UUID, status AssetStatus) ([]Asset, error)
	SumDepreciation(ctx context.Context, assetID uuid.UUID, includePending bool) (decimal.Decimal, error)
	ListDepreciations(ctx context.Context, assetID uuid.UUID) ([]Depreciation, error)
	GetDepreciation(ctx context.Context, id uuid.UUID) (Depreciation, error)
	GetDisposal(ctx context.Context, id uuid.UUID) (Disposal, error)
	GetRevaluation(ctx context.Context, id uuid.UUID) (Revaluation, error)
}

// RepositoryPort is the persistence contract of the register.
type RepositoryPort interface {
	Reader
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes locking reads and writes used inside a unit of work.
type TxRepository interface {
	Reader
	InsertAsset(ctx context.Context, asset Asset) error
	GetAssetForUpdate(ctx context.Context, id uuid.UUID) (Asset, error)
	UpdateAssetValues(ctx context.Context, asset Asset) error
	InsertDepreciation(ctx context.Context, dep Depreciation) error
	GetDepreciationForUpdate(ctx context.Context, id uuid.UUID) (Depreciation, error)
	FindDepreciation(ctx context.Context, assetID uuid.UUID, period string) (Depreciation, bool, error)
	MarkDepreciationPosted(ctx context.Context, id, journalID uuid.UUID, at time.Time) (bool, error)
	InsertDisposal(ctx context.Context, d Disposal) error
	GetDisposalForUpdate(ctx context.Context, id uuid.UUID) (Disposal, error)
	ApproveDisposal(ctx context.Context, id uuid.UUID) (bool, error)
	MarkDisposalPosted(ctx context.Context, d Disposal) (bool, error)
	InsertRevaluation(ctx context.Context, r Revaluation) error
	GetRevaluationForUpdate(ctx context.Context, id uuid.UUID) (Revaluation, error)
	MarkRevaluationPosted(ctx context.Context, r Revaluation) (bool, error)
}

// Ledger records balanced entries in the caller's unit of work.
type Ledger interface {
	Record(ctx context.Context, in ledger.PostingInput) (ledger.JournalEntry, error)
}

// ReserveLedger reports the revaluation reserve available to absorb a
// downward revaluation of an asset.
type ReserveLedger interface {
	AvailableReserve(ctx context.Context, asset Asset, reserveAccountID uuid.UUID) (decimal.Decimal, error)
}

// UntrackedReserve reports no available reserve, so every downward
// revaluation is charged to the revaluation loss account.
// TODO: replace with a per-asset reserve balance read from the ledger once
// journal lines carry the asset dimension.
type UntrackedReserve struct {
	Logger *slog.Logger
}

// AvailableReserve always returns zero.
func (u UntrackedReserve) AvailableReserve(ctx context.Context, asset Asset, reserveAccountID uuid.UUID) (decimal.Decimal, error) {
	if u.Logger != nil {
		u.Logger.Warn("revaluation reserve balance is not tracked, charging the full decrease to loss",
			slog.String("asset_id", asset.ID.String()),
			slog.String("reserve_account_id", reserveAccountID.String()))
	}
	return decimal.Zero, nil
}

// Service implements the depreciation scheduler and the asset valuator.
type Service struct {
	repo     RepositoryPort
	ledger   Ledger
	accounts accounts.Directory
	reserve  ReserveLedger
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the asset service.
func NewService(repo RepositoryPort, ledger Ledger, directory accounts.Directory, reserve ReserveLedger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if reserve == nil {
		reserve = UntrackedReserve{Logger: logger}
	}
	return &Service{repo: repo, ledger: ledger, accounts: directory, reserve: reserve, logger: logger, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// CreateAsset registers an asset at its purchase price.
func (s *Service) CreateAsset(ctx context.Context, in CreateAssetInput) (Asset, error) {
	if err := in.Validate(); err != nil {
		return Asset{}, err
	}
	if _, err := s.accounts.Get(ctx, in.AccountID); err != nil {
		return Asset{}, err
	}
	now := s.now()
	asset := Asset{
		ID:                      uuid.New(),
		OrganizationID:          in.OrganizationID,
		Code:                    in.Code,
		Name:                    in.Name,
		Type:                    in.Type,
		PurchaseDate:            in.PurchaseDate,
		PurchasePrice:           in.PurchasePrice,
		CurrentValue:            in.PurchasePrice,
		AccumulatedDepreciation: decimal.Zero,
		NetBookValue:            in.PurchasePrice,
		Method:                  in.Method,
		UsefulLifeYears:         in.UsefulLifeYears,
		SalvageValue:            in.SalvageValue,
		Status:                  StatusActive,
		AccountID:               in.AccountID,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.InsertAsset(ctx, asset)
	})
	if err != nil {
		return Asset{}, err
	}
	return asset, nil
}

// GetAsset loads an asset.
func (s *Service) GetAsset(ctx context.Context, id uuid.UUID) (Asset, error) {
	return s.repo.GetAsset(ctx, id)
}

// ListAssets lists assets of an organization, optionally by status.
func (s *Service) ListAssets(ctx context.Context, orgID uuid.UUID, status AssetStatus) ([]Asset, error) {
	return s.repo.ListAssets(ctx, orgID, status)
}

// GetDisposal loads a disposal.
func (s *Service) GetDisposal(ctx context.Context, id uuid.UUID) (Disposal, error) {
	return s.repo.GetDisposal(ctx, id)
}

// GetRevaluation loads a revaluation.
func (s *Service) GetRevaluation(ctx context.Context, id uuid.UUID) (Revaluation, error) {
	return s.repo.GetRevaluation(ctx, id)
}
