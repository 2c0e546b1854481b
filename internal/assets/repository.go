package assets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/fincore/internal/platform/db"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// Repository persists the register on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	tx   *db.Transactor
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool, tx *db.Transactor) *Repository {
	return &Repository{pool: pool, tx: tx}
}

// WithTx runs fn inside a unit of work shared with the ledger.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		return fn(ctx, r)
	})
	return shared.MapStoreError(err)
}

const assetColumns = `id, organization_id, code, name, asset_type, purchase_date, purchase_price, current_value,
accumulated_depreciation, net_book_value, depreciation_method, useful_life_years, salvage_value, status,
account_id, created_at, updated_at`

// GetAsset loads an asset.
func (r *Repository) GetAsset(ctx context.Context, id uuid.UUID) (Asset, error) {
	return r.getAsset(ctx, `SELECT `+assetColumns+` FROM fixed_assets WHERE id=$1`, id)
}

// GetAssetForUpdate loads an asset and locks its row.
func (r *Repository) GetAssetForUpdate(ctx context.Context, id uuid.UUID) (Asset, error) {
	return r.getAsset(ctx, `SELECT `+assetColumns+` FROM fixed_assets WHERE id=$1 FOR UPDATE`, id)
}

func (r *Repository) getAsset(ctx context.Context, query string, id uuid.UUID) (Asset, error) {
	asset, err := scanAsset(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Asset{}, ErrAssetNotFound
	}
	return asset, err
}

// ListAssets lists assets by code. An empty status lists all of them.
func (r *Repository) ListAssets(ctx context.Context, orgID uuid.UUID, status AssetStatus) ([]Asset, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT `+assetColumns+` FROM fixed_assets
WHERE organization_id=$1 AND ($2::text = '' OR status=$2) ORDER BY code`, orgID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, asset)
	}
	return out, rows.Err()
}

// InsertAsset writes a new asset.
func (r *Repository) InsertAsset(ctx context.Context, a Asset) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO fixed_assets (`+assetColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		a.ID, a.OrganizationID, a.Code, a.Name, string(a.Type), a.PurchaseDate, a.PurchasePrice, a.CurrentValue,
		a.AccumulatedDepreciation, a.NetBookValue, string(a.Method), a.UsefulLifeYears, a.SalvageValue,
		string(a.Status), a.AccountID, a.CreatedAt, a.UpdatedAt)
	if db.IsUniqueViolation(err, "fixed_assets_org_code_key") {
		return ErrDuplicateCode
	}
	return err
}

// UpdateAssetValues stores the carrying amounts and status.
func (r *Repository) UpdateAssetValues(ctx context.Context, a Asset) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE fixed_assets
SET current_value=$2, accumulated_depreciation=$3, net_book_value=$4, status=$5, updated_at=$6
WHERE id=$1`, a.ID, a.CurrentValue, a.AccumulatedDepreciation, a.NetBookValue, string(a.Status), a.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// SumDepreciation totals the recorded charges of an asset.
func (r *Repository) SumDepreciation(ctx context.Context, assetID uuid.UUID, includePending bool) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM asset_depreciations
WHERE asset_id=$1 AND ($2 OR status=$3)`, assetID, includePending, string(DepreciationPosted)).Scan(&total)
	return total, err
}

const depreciationColumns = `id, organization_id, asset_id, period, amount, accumulated_depreciation, net_book_value,
status, journal_entry_id, posted_at, created_at`

// ListDepreciations returns the rows of an asset by period.
func (r *Repository) ListDepreciations(ctx context.Context, assetID uuid.UUID) ([]Depreciation, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT `+depreciationColumns+` FROM asset_depreciations
WHERE asset_id=$1 ORDER BY period`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Depreciation
	for rows.Next() {
		dep, err := scanDepreciation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, dep)
	}
	return out, rows.Err()
}

// GetDepreciation loads a depreciation row.
func (r *Repository) GetDepreciation(ctx context.Context, id uuid.UUID) (Depreciation, error) {
	return r.getDepreciation(ctx, `SELECT `+depreciationColumns+` FROM asset_depreciations WHERE id=$1`, id)
}

// GetDepreciationForUpdate loads a depreciation row and locks it.
func (r *Repository) GetDepreciationForUpdate(ctx context.Context, id uuid.UUID) (Depreciation, error) {
	return r.getDepreciation(ctx, `SELECT `+depreciationColumns+` FROM asset_depreciations WHERE id=$1 FOR UPDATE`, id)
}

// FindDepreciation returns the row of an asset for period, if any.
func (r *Repository) FindDepreciation(ctx context.Context, assetID uuid.UUID, period string) (Depreciation, bool, error) {
	dep, err := r.getDepreciation(ctx, `SELECT `+depreciationColumns+` FROM asset_depreciations
WHERE asset_id=$1 AND period=$2 FOR UPDATE`, assetID, period)
	if errors.Is(err, ErrDepreciationNotFound) {
		return Depreciation{}, false, nil
	}
	if err != nil {
		return Depreciation{}, false, err
	}
	return dep, true, nil
}

func (r *Repository) getDepreciation(ctx context.Context, query string, args ...any) (Depreciation, error) {
	dep, err := scanDepreciation(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Depreciation{}, ErrDepreciationNotFound
	}
	return dep, err
}

// InsertDepreciation writes a pending row.
func (r *Repository) InsertDepreciation(ctx context.Context, d Depreciation) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO asset_depreciations (`+depreciationColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		d.ID, d.OrganizationID, d.AssetID, d.Period, d.Amount, d.AccumulatedDepreciation, d.NetBookValue,
		string(d.Status), nullUUID(d.JournalEntryID), d.PostedAt, d.CreatedAt)
	if db.IsUniqueViolation(err, "asset_depreciations_asset_period_key") {
		return ErrDuplicateDepreciation
	}
	return err
}

// MarkDepreciationPosted flips a pending row. It reports false when the row
// was already posted.
func (r *Repository) MarkDepreciationPosted(ctx context.Context, id, journalID uuid.UUID, at time.Time) (bool, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE asset_depreciations
SET status=$2, journal_entry_id=$3, posted_at=$4 WHERE id=$1 AND status=$5`,
		id, string(DepreciationPosted), journalID, at, string(DepreciationPending))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const disposalColumns = `id, organization_id, asset_id, disposal_date, disposal_method, disposal_amount, purchase_price,
accumulated_depreciation, net_book_value, gain_loss, account_id, status, journal_entry_id, notes, created_at, posted_at`

// GetDisposal loads a disposal.
func (r *Repository) GetDisposal(ctx context.Context, id uuid.UUID) (Disposal, error) {
	return r.getDisposal(ctx, ``, id)
}

// GetDisposalForUpdate loads a disposal and locks it.
func (r *Repository) GetDisposalForUpdate(ctx context.Context, id uuid.UUID) (Disposal, error) {
	return r.getDisposal(ctx, ` FOR UPDATE OF d`, id)
}

func (r *Repository) getDisposal(ctx context.Context, lock string, id uuid.UUID) (Disposal, error) {
	var (
		d         Disposal
		method    string
		status    string
		journalID *uuid.UUID
	)
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT d.id, d.organization_id, d.asset_id, a.code, a.name, d.disposal_date,
d.disposal_method, d.disposal_amount, d.purchase_price, d.accumulated_depreciation, d.net_book_value, d.gain_loss,
d.account_id, d.status, d.journal_entry_id, d.notes, d.created_at, d.posted_at
FROM asset_disposals d JOIN fixed_assets a ON a.id = d.asset_id WHERE d.id=$1`+lock, id).Scan(
		&d.ID, &d.OrganizationID, &d.AssetID, &d.AssetCode, &d.AssetName, &d.DisposalDate, &method, &d.DisposalAmount,
		&d.PurchasePrice, &d.AccumulatedDepreciation, &d.NetBookValue, &d.GainLoss, &d.AccountID, &status, &journalID,
		&d.Notes, &d.CreatedAt, &d.PostedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Disposal{}, ErrDisposalNotFound
	}
	if err != nil {
		return Disposal{}, err
	}
	d.Method = DisposalMethod(method)
	d.Status = DocumentStatus(status)
	if journalID != nil {
		d.JournalEntryID = *journalID
	}
	return d, nil
}

// InsertDisposal writes a draft disposal.
func (r *Repository) InsertDisposal(ctx context.Context, d Disposal) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO asset_disposals (`+disposalColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		d.ID, d.OrganizationID, d.AssetID, d.DisposalDate, string(d.Method), d.DisposalAmount, d.PurchasePrice,
		d.AccumulatedDepreciation, d.NetBookValue, d.GainLoss, d.AccountID, string(d.Status),
		nullUUID(d.JournalEntryID), d.Notes, d.CreatedAt, d.PostedAt)
	return err
}

// ApproveDisposal moves a draft to approved.
func (r *Repository) ApproveDisposal(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE asset_disposals SET status=$2 WHERE id=$1 AND status=$3`,
		id, string(DocumentApproved), string(DocumentDraft))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkDisposalPosted stores the posted snapshot unless it was posted already.
func (r *Repository) MarkDisposalPosted(ctx context.Context, d Disposal) (bool, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE asset_disposals
SET status=$2, purchase_price=$3, accumulated_depreciation=$4, net_book_value=$5, gain_loss=$6,
    journal_entry_id=$7, posted_at=$8
WHERE id=$1 AND status <> $2`,
		d.ID, string(DocumentPosted), d.PurchasePrice, d.AccumulatedDepreciation, d.NetBookValue, d.GainLoss,
		nullUUID(d.JournalEntryID), d.PostedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const revaluationColumns = `id, organization_id, asset_id, revaluation_date, previous_value, new_value, revaluation_amount,
revaluation_type, account_id, reserve_amount, loss_amount, status, journal_entry_id, reason, created_at, posted_at`

// GetRevaluation loads a revaluation.
func (r *Repository) GetRevaluation(ctx context.Context, id uuid.UUID) (Revaluation, error) {
	return r.getRevaluation(ctx, ``, id)
}

// GetRevaluationForUpdate loads a revaluation and locks it.
func (r *Repository) GetRevaluationForUpdate(ctx context.Context, id uuid.UUID) (Revaluation, error) {
	return r.getRevaluation(ctx, ` FOR UPDATE OF v`, id)
}

func (r *Repository) getRevaluation(ctx context.Context, lock string, id uuid.UUID) (Revaluation, error) {
	var (
		rv        Revaluation
		typ       string
		status    string
		accountID *uuid.UUID
		journalID *uuid.UUID
	)
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT v.id, v.organization_id, v.asset_id, a.code, a.name, v.revaluation_date,
v.previous_value, v.new_value, v.revaluation_amount, v.revaluation_type, v.account_id, v.reserve_amount, v.loss_amount,
v.status, v.journal_entry_id, v.reason, v.created_at, v.posted_at
FROM asset_revaluations v JOIN fixed_assets a ON a.id = v.asset_id WHERE v.id=$1`+lock, id).Scan(
		&rv.ID, &rv.OrganizationID, &rv.AssetID, &rv.AssetCode, &rv.AssetName, &rv.RevaluationDate, &rv.PreviousValue,
		&rv.NewValue, &rv.RevaluationAmount, &typ, &accountID, &rv.ReserveAmount, &rv.LossAmount, &status, &journalID,
		&rv.Reason, &rv.CreatedAt, &rv.PostedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Revaluation{}, ErrRevaluationNotFound
	}
	if err != nil {
		return Revaluation{}, err
	}
	rv.Type = RevaluationType(typ)
	rv.Status = DocumentStatus(status)
	if accountID != nil {
		rv.AccountID = *accountID
	}
	if journalID != nil {
		rv.JournalEntryID = *journalID
	}
	return rv, nil
}

// InsertRevaluation writes a draft revaluation.
func (r *Repository) InsertRevaluation(ctx context.Context, rv Revaluation) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO asset_revaluations (`+revaluationColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		rv.ID, rv.OrganizationID, rv.AssetID, rv.RevaluationDate, rv.PreviousValue, rv.NewValue, rv.RevaluationAmount,
		string(rv.Type), nullUUID(rv.AccountID), rv.ReserveAmount, rv.LossAmount, string(rv.Status),
		nullUUID(rv.JournalEntryID), rv.Reason, rv.CreatedAt, rv.PostedAt)
	return err
}

// MarkRevaluationPosted stores the posted figures unless it was posted already.
func (r *Repository) MarkRevaluationPosted(ctx context.Context, rv Revaluation) (bool, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE asset_revaluations
SET status=$2, previous_value=$3, revaluation_amount=$4, revaluation_type=$5, reserve_amount=$6, loss_amount=$7,
    journal_entry_id=$8, posted_at=$9
WHERE id=$1 AND status <> $2`,
		rv.ID, string(DocumentPosted), rv.PreviousValue, rv.RevaluationAmount, string(rv.Type), rv.ReserveAmount,
		rv.LossAmount, nullUUID(rv.JournalEntryID), rv.PostedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanAsset(row pgx.Row) (Asset, error) {
	var (
		a      Asset
		typ    string
		method string
		status string
	)
	err := row.Scan(&a.ID, &a.OrganizationID, &a.Code, &a.Name, &typ, &a.PurchaseDate, &a.PurchasePrice, &a.CurrentValue,
		&a.AccumulatedDepreciation, &a.NetBookValue, &method, &a.UsefulLifeYears, &a.SalvageValue, &status,
		&a.AccountID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Asset{}, err
	}
	a.Type = AssetType(typ)
	a.Method = Method(method)
	a.Status = AssetStatus(status)
	return a, nil
}

func scanDepreciation(row pgx.Row) (Depreciation, error) {
	var (
		d         Depreciation
		status    string
		journalID *uuid.UUID
	)
	err := row.Scan(&d.ID, &d.OrganizationID, &d.AssetID, &d.Period, &d.Amount, &d.AccumulatedDepreciation,
		&d.NetBookValue, &status, &journalID, &d.PostedAt, &d.CreatedAt)
	if err != nil {
		return Depreciation{}, err
	}
	d.Status = DepreciationStatus(status)
	if journalID != nil {
		d.JournalEntryID = *journalID
	}
	return d, nil
}

func nullUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
