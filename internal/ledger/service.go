package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/observability"
	"github.com/odyssey-erp/fincore/internal/shared"
)

// RepositoryPort is the persistence contract of the ledger.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetEntry(ctx context.Context, id uuid.UUID) (JournalEntry, error)
	ListEntries(ctx context.Context, orgID uuid.UUID, limit int) ([]JournalEntry, error)
}

// TxRepository exposes the writes performed inside a unit of work.
type TxRepository interface {
	NextSequence(ctx context.Context, orgID uuid.UUID, prefix string) (int64, error)
	InsertEntry(ctx context.Context, entry JournalEntry) error
	GetEntryForUpdate(ctx context.Context, id uuid.UUID) (JournalEntry, error)
	MarkPosted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	FindBySource(ctx context.Context, module string, sourceID uuid.UUID) (JournalEntry, bool, error)
}

// AuditPort records audit logs.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the only component allowed to mutate ledger state.
type Service struct {
	repo    RepositoryPort
	audit   AuditPort
	metrics *observability.FinanceMetrics
	now     func() time.Time
}

// NewService constructs the ledger service.
func NewService(repo RepositoryPort, audit AuditPort, metrics *observability.FinanceMetrics) *Service {
	return &Service{repo: repo, audit: audit, metrics: metrics, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create validates and persists an entry, as draft unless a status is given.
func (s *Service) Create(ctx context.Context, in PostingInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = s.create(ctx, tx, in)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	if entry.Status == StatusPosted {
		s.metrics.LedgerPosted(string(entry.Type))
	}
	return entry, nil
}

// Post moves a draft entry to posted. It is the one mutation performed on a
// stored entry and happens at most once.
func (s *Service) Post(ctx context.Context, id uuid.UUID, actor string) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = s.post(ctx, tx, id, actor)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.metrics.LedgerPosted(string(entry.Type))
	return entry, nil
}

// Record creates and posts an entry in the caller's unit of work. Calculators
// hand their lines over through Record.
func (s *Service) Record(ctx context.Context, in PostingInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	in.Status = StatusDraft
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		draft, err := s.create(ctx, tx, in)
		if err != nil {
			return err
		}
		entry, err = s.post(ctx, tx, draft.ID, in.Actor)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.metrics.LedgerPosted(string(entry.Type))
	return entry, nil
}

// Reverse records and posts the mirror image of a posted entry.
func (s *Service) Reverse(ctx context.Context, in ReverseInput) (JournalEntry, error) {
	var reversal JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetEntryForUpdate(ctx, in.EntryID)
		if err != nil {
			return err
		}
		if original.Status != StatusPosted {
			return ErrNotPosted
		}
		if _, found, err := tx.FindBySource(ctx, SourceReversal, original.ID); err != nil {
			return err
		} else if found {
			return ErrAlreadyReversed
		}
		date := in.Date
		if date.IsZero() {
			date = shared.DateOnly(s.now())
		}
		description := in.Description
		if description == "" {
			description = "Reversal of " + original.Number
		}
		posting := PostingInput{
			OrganizationID: original.OrganizationID,
			Date:           date,
			Type:           EntryReversal,
			Description:    description,
			Reference:      original.Number,
			SourceModule:   SourceReversal,
			SourceID:       original.ID,
			Status:         StatusDraft,
			Actor:          in.Actor,
		}
		for _, line := range original.Lines {
			posting.Lines = append(posting.Lines, PostingLine{
				AccountID:   line.AccountID,
				Debit:       line.Credit,
				Credit:      line.Debit,
				Description: line.Description,
			})
		}
		if err := posting.Validate(); err != nil {
			return err
		}
		draft, err := s.create(ctx, tx, posting)
		if err != nil {
			return err
		}
		reversal, err = s.post(ctx, tx, draft.ID, in.Actor)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.metrics.LedgerPosted(string(reversal.Type))
	return reversal, nil
}

// Get loads an entry with its lines.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (JournalEntry, error) {
	return s.repo.GetEntry(ctx, id)
}

// List returns the latest entries of an organization.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, limit int) ([]JournalEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListEntries(ctx, orgID, limit)
}

func (s *Service) create(ctx context.Context, tx TxRepository, in PostingInput) (JournalEntry, error) {
	now := s.now()
	entry := JournalEntry{
		ID:             uuid.New(),
		OrganizationID: in.OrganizationID,
		Number:         in.Number,
		Date:           shared.DateOnly(in.Date),
		Type:           in.Type,
		Description:    in.Description,
		Reference:      in.Reference,
		SourceModule:   in.SourceModule,
		SourceID:       in.SourceID,
		Status:         in.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if entry.Type == "" {
		entry.Type = EntryManual
	}
	if entry.Status == "" {
		entry.Status = StatusDraft
	}
	if entry.Status == StatusPosted {
		entry.PostedAt = &now
	}
	if entry.Number == "" {
		prefix := "JE-" + entry.Date.Format("200601")
		seq, err := tx.NextSequence(ctx, entry.OrganizationID, prefix)
		if err != nil {
			return JournalEntry{}, err
		}
		entry.Number = fmt.Sprintf("%s-%06d", prefix, seq)
	}
	for idx, line := range in.Lines {
		entry.Lines = append(entry.Lines, JournalLine{
			ID:          uuid.New(),
			EntryID:     entry.ID,
			LineNo:      idx + 1,
			AccountID:   line.AccountID,
			Debit:       shared.Round2(line.Debit),
			Credit:      shared.Round2(line.Credit),
			Description: line.Description,
		})
	}
	if err := tx.InsertEntry(ctx, entry); err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (s *Service) post(ctx context.Context, tx TxRepository, id uuid.UUID, actor string) (JournalEntry, error) {
	entry, err := tx.GetEntryForUpdate(ctx, id)
	if err != nil {
		return JournalEntry{}, err
	}
	if entry.Status == StatusPosted {
		return JournalEntry{}, ErrAlreadyPosted
	}
	now := s.now()
	ok, err := tx.MarkPosted(ctx, id, now)
	if err != nil {
		return JournalEntry{}, err
	}
	if !ok {
		return JournalEntry{}, ErrAlreadyPosted
	}
	entry.Status = StatusPosted
	entry.PostedAt = &now
	entry.UpdatedAt = now
	if s.audit != nil {
		debit, _ := entry.Totals()
		if err := s.audit.Record(ctx, shared.AuditLog{
			Actor:    actor,
			Action:   "journal.post",
			Entity:   "journal_entry",
			EntityID: entry.ID.String(),
			Meta: map[string]any{
				"number": entry.Number,
				"type":   string(entry.Type),
				"source": entry.SourceModule,
				"amount": debit.StringFixed(2),
			},
			At: now,
		}); err != nil {
			return JournalEntry{}, err
		}
	}
	return entry, nil
}
