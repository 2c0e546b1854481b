package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/fincore/internal/platform/db"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// Repository reads accounts from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, organization_id, code, name, type, subtype, is_active`

// Get loads an account by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Account, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id)
	acc, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	return acc, err
}

// FindBySubtype returns the oldest active account with the given type and subtype.
func (r *Repository) FindBySubtype(ctx context.Context, orgID uuid.UUID, typ Type, subtype string) (Account, error) {
	row := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts
WHERE organization_id=$1 AND type=$2 AND subtype=$3 AND is_active
ORDER BY created_at, code LIMIT 1`, orgID, string(typ), subtype)
	acc, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotConfigured
	}
	return acc, err
}

// Create inserts an account. Used for seeding.
func (r *Repository) Create(ctx context.Context, acc Account) (Account, error) {
	if err := acc.Validate(); err != nil {
		return Account{}, err
	}
	if acc.ID == uuid.Nil {
		acc.ID = uuid.New()
	}
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `INSERT INTO accounts (id, organization_id, code, name, type, subtype, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, acc.ID, acc.OrganizationID, acc.Code, acc.Name, string(acc.Type), acc.Subtype, acc.IsActive)
	if err != nil {
		return Account{}, shared.MapStoreError(err)
	}
	return acc, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		acc Account
		typ string
	)
	if err := row.Scan(&acc.ID, &acc.OrganizationID, &acc.Code, &acc.Name, &typ, &acc.Subtype, &acc.IsActive); err != nil {
		return Account{}, err
	}
	acc.Type = Type(typ)
	return acc, nil
}
