package ledger

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

// Repository implements RepositoryPort and TxRepository on PostgreSQL.
// Statements run on the transaction carried by the context, so entries
// recorded by other packages join their unit of work.
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

const entryColumns = `id, organization_id, number, entry_date, type, description, reference, source_module, source_id, status, posted_at, created_at, updated_at`

// GetEntry loads an entry and its lines.
func (r *Repository) GetEntry(ctx context.Context, id uuid.UUID) (JournalEntry, error) {
	return r.getEntry(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, id)
}

// GetEntryForUpdate loads an entry and locks its row.
func (r *Repository) GetEntryForUpdate(ctx context.Context, id uuid.UUID) (JournalEntry, error) {
	return r.getEntry(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1 FOR UPDATE`, id)
}

// FindBySource returns the entry generated for a source document.
func (r *Repository) FindBySource(ctx context.Context, module string, sourceID uuid.UUID) (JournalEntry, bool, error) {
	entry, err := r.getEntry(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE source_module=$1 AND source_id=$2 ORDER BY created_at LIMIT 1`, module, sourceID)
	if errors.Is(err, ErrEntryNotFound) {
		return JournalEntry{}, false, nil
	}
	if err != nil {
		return JournalEntry{}, false, err
	}
	return entry, true, nil
}

// ListEntries returns the latest entries without lines.
func (r *Repository) ListEntries(ctx context.Context, orgID uuid.UUID, limit int) ([]JournalEntry, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE organization_id=$1 ORDER BY entry_date DESC, number DESC LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// NextSequence increments the per-organization counter of prefix.
func (r *Repository) NextSequence(ctx context.Context, orgID uuid.UUID, prefix string) (int64, error) {
	var value int64
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `INSERT INTO journal_sequences (organization_id, prefix, last_value)
VALUES ($1, $2, 1)
ON CONFLICT (organization_id, prefix) DO UPDATE SET last_value = journal_sequences.last_value + 1
RETURNING last_value`, orgID, prefix).Scan(&value)
	return value, err
}

// InsertEntry writes the header and its lines.
func (r *Repository) InsertEntry(ctx context.Context, entry JournalEntry) error {
	conn := db.Conn(ctx, r.pool)
	_, err := conn.Exec(ctx, `INSERT INTO journal_entries (`+entryColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		entry.ID, entry.OrganizationID, entry.Number, entry.Date, string(entry.Type), entry.Description,
		entry.Reference, entry.SourceModule, nullUUID(entry.SourceID), string(entry.Status), entry.PostedAt,
		entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return shared.MapStoreError(err)
	}
	batch := &pgx.Batch{}
	for _, line := range entry.Lines {
		batch.Queue(`INSERT INTO journal_lines (id, entry_id, line_no, account_id, debit, credit, description)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, line.ID, entry.ID, line.LineNo, line.AccountID, line.Debit, line.Credit, line.Description)
	}
	sender, ok := conn.(batchSender)
	if !ok {
		return errors.New("ledger: connection does not support batches")
	}
	return sender.SendBatch(ctx, batch).Close()
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// MarkPosted flips a draft entry to posted. It reports false when the entry
// was no longer a draft.
func (r *Repository) MarkPosted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `UPDATE journal_entries SET status=$2, posted_at=$3, updated_at=$3
WHERE id=$1 AND status=$4`, id, string(StatusPosted), at, string(StatusDraft))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) getEntry(ctx context.Context, query string, args ...any) (JournalEntry, error) {
	conn := db.Conn(ctx, r.pool)
	entry, err := scanEntry(conn.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return JournalEntry{}, ErrEntryNotFound
	}
	if err != nil {
		return JournalEntry{}, err
	}
	rows, err := conn.Query(ctx, `SELECT id, entry_id, line_no, account_id, debit, credit, description
FROM journal_lines WHERE entry_id=$1 ORDER BY line_no`, entry.ID)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line JournalLine
		if err := rows.Scan(&line.ID, &line.EntryID, &line.LineNo, &line.AccountID, &line.Debit, &line.Credit, &line.Description); err != nil {
			return JournalEntry{}, err
		}
		entry.Lines = append(entry.Lines, line)
	}
	return entry, rows.Err()
}

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var (
		entry    JournalEntry
		typ      string
		status   string
		sourceID *uuid.UUID
	)
	if err := row.Scan(&entry.ID, &entry.OrganizationID, &entry.Number, &entry.Date, &typ, &entry.Description,
		&entry.Reference, &entry.SourceModule, &sourceID, &status, &entry.PostedAt, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return JournalEntry{}, err
	}
	entry.Type = EntryType(typ)
	entry.Status = Status(status)
	if sourceID != nil {
		entry.SourceID = *sourceID
	}
	return entry, nil
}

func nullUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
