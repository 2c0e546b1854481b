package tax

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/fincore/internal/platform/db"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// Repository persists configurations and payables on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	tx   *db.Transactor
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool, tx *db.Transactor) *Repository {
	return &Repository{pool: pool, tx: tx}
}

// WithTx runs fn inside a unit of work.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		return fn(ctx, r)
	})
	return shared.MapStoreError(err)
}

const configColumns = `id, organization_id, code, name, tax_type, rate, calculation_method, is_inclusive,
account_id, effective_from, effective_to, is_active, created_at`

// GetConfiguration loads a configuration.
func (r *Repository) GetConfiguration(ctx context.Context, id uuid.UUID) (Configuration, error) {
	cfg, err := scanConfiguration(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+configColumns+` FROM tax_configurations WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Configuration{}, ErrConfigurationNotFound
	}
	return cfg, err
}

// ListActiveConfigurations returns the active configurations of code, newest first.
func (r *Repository) ListActiveConfigurations(ctx context.Context, orgID uuid.UUID, code string) ([]Configuration, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT `+configColumns+` FROM tax_configurations
WHERE organization_id=$1 AND code=$2 AND is_active ORDER BY created_at DESC`, orgID, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Configuration
	for rows.Next() {
		cfg, err := scanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// InsertConfiguration writes a configuration.
func (r *Repository) InsertConfiguration(ctx context.Context, cfg Configuration) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO tax_configurations (`+configColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		cfg.ID, cfg.OrganizationID, cfg.Code, cfg.Name, string(cfg.Type), cfg.Rate, string(cfg.Method), cfg.Inclusive,
		nullUUID(cfg.AccountID), cfg.EffectiveFrom, cfg.EffectiveTo, cfg.IsActive, cfg.CreatedAt)
	if db.IsUniqueViolation(err, "tax_configurations_org_code_from_key") {
		return ErrDuplicateConfig
	}
	return err
}

const payableColumns = `id, organization_id, tax_type, period, due_date, amount, paid_amount, paid_date, status,
account_id, journal_entry_id, notes, created_at, updated_at`

// GetPayable loads a payable.
func (r *Repository) GetPayable(ctx context.Context, id uuid.UUID) (Payable, error) {
	return r.getPayable(ctx, `SELECT `+payableColumns+` FROM tax_payables WHERE id=$1`, id)
}

// GetPayableForUpdate loads a payable and locks it.
func (r *Repository) GetPayableForUpdate(ctx context.Context, id uuid.UUID) (Payable, error) {
	return r.getPayable(ctx, `SELECT `+payableColumns+` FROM tax_payables WHERE id=$1 FOR UPDATE`, id)
}

func (r *Repository) getPayable(ctx context.Context, query string, id uuid.UUID) (Payable, error) {
	p, err := scanPayable(db.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Payable{}, ErrPayableNotFound
	}
	return p, err
}

// ListPayables lists payables by period, optionally of one type.
func (r *Repository) ListPayables(ctx context.Context, orgID uuid.UUID, typ Type) ([]Payable, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT `+payableColumns+` FROM tax_payables
WHERE organization_id=$1 AND ($2::text = '' OR tax_type=$2) ORDER BY period, tax_type`, orgID, string(typ))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payable
	for rows.Next() {
		p, err := scanPayable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertPayable writes a payable.
func (r *Repository) InsertPayable(ctx context.Context, p Payable) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO tax_payables (`+payableColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.OrganizationID, string(p.Type), p.Period, p.DueDate, p.Amount, p.PaidAmount, p.PaidDate,
		string(p.Status), nullUUID(p.AccountID), nullUUID(p.JournalEntryID), p.Notes, p.CreatedAt, p.UpdatedAt)
	if db.IsUniqueViolation(err, "tax_payables_org_type_period_key") {
		return ErrDuplicatePayable
	}
	return err
}

// UpdatePayablePayment stores the paid amount, date and status.
func (r *Repository) UpdatePayablePayment(ctx context.Context, p Payable) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE tax_payables
SET paid_amount=$2, paid_date=$3, status=$4, updated_at=$5 WHERE id=$1`,
		p.ID, p.PaidAmount, p.PaidDate, string(p.Status), p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPayableNotFound
	}
	return nil
}

// InsertPayment writes a payment installment.
func (r *Repository) InsertPayment(ctx context.Context, pay Payment) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO tax_payments
(id, tax_payable_id, amount, payment_date, bank_account_id, journal_entry_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		pay.ID, pay.PayableID, pay.Amount, pay.PaymentDate, nullUUID(pay.BankAccountID), nullUUID(pay.JournalEntryID), pay.CreatedAt)
	return err
}

// LinkPaymentJournal stamps the journal entry on the payment and its payable.
func (r *Repository) LinkPaymentJournal(ctx context.Context, pay Payment) error {
	conn := db.Conn(ctx, r.pool)
	if _, err := conn.Exec(ctx, `UPDATE tax_payments SET journal_entry_id=$2 WHERE id=$1`, pay.ID, pay.JournalEntryID); err != nil {
		return err
	}
	_, err := conn.Exec(ctx, `UPDATE tax_payables SET journal_entry_id=$2 WHERE id=$1`, pay.PayableID, pay.JournalEntryID)
	return err
}

func scanConfiguration(row pgx.Row) (Configuration, error) {
	var (
		cfg     Configuration
		typ     string
		method  string
		account *uuid.UUID
	)
	err := row.Scan(&cfg.ID, &cfg.OrganizationID, &cfg.Code, &cfg.Name, &typ, &cfg.Rate, &method, &cfg.Inclusive,
		&account, &cfg.EffectiveFrom, &cfg.EffectiveTo, &cfg.IsActive, &cfg.CreatedAt)
	if err != nil {
		return Configuration{}, err
	}
	cfg.Type = Type(typ)
	cfg.Method = Method(method)
	if account != nil {
		cfg.AccountID = *account
	}
	return cfg, nil
}

func scanPayable(row pgx.Row) (Payable, error) {
	var (
		p       Payable
		typ     string
		status  string
		account *uuid.UUID
		journal *uuid.UUID
	)
	err := row.Scan(&p.ID, &p.OrganizationID, &typ, &p.Period, &p.DueDate, &p.Amount, &p.PaidAmount, &p.PaidDate,
		&status, &account, &journal, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Payable{}, err
	}
	p.Type = Type(typ)
	p.Status = PayableStatus(status)
	if account != nil {
		p.AccountID = *account
	}
	if journal != nil {
		p.JournalEntryID = *journal
	}
	return p, nil
}

func nullUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// DocumentRepository reads the sales invoices and purchase bills the payable
// aggregation works from.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository constructs the reader.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// Totals sums paid invoices and approved bills dated within [from, to].
func (r *DocumentRepository) Totals(ctx context.Context, orgID uuid.UUID, from, to time.Time) (DocumentTotals, error) {
	var out DocumentTotals
	conn := db.Conn(ctx, r.pool)
	err := conn.QueryRow(ctx, `SELECT COALESCE(SUM(subtotal),0), COALESCE(SUM(tax_amount),0)
FROM sales_invoices WHERE organization_id=$1 AND status='paid' AND invoice_date BETWEEN $2 AND $3`,
		orgID, from, to).Scan(&out.SalesBase, &out.SalesTax)
	if err != nil {
		return DocumentTotals{}, err
	}
	err = conn.QueryRow(ctx, `SELECT COALESCE(SUM(subtotal),0), COALESCE(SUM(tax_amount),0)
FROM purchase_bills WHERE organization_id=$1 AND status='approved' AND bill_date BETWEEN $2 AND $3`,
		orgID, from, to).Scan(&out.PurchaseBase, &out.PurchaseTax)
	if err != nil {
		return DocumentTotals{}, err
	}
	return out, nil
}
