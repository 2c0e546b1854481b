package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/fincore/internal/shared"
)

type memoryRepo struct {
	mu        sync.Mutex
	entries   map[uuid.UUID]JournalEntry
	sequences map[string]int64
	inserts   int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{entries: map[uuid.UUID]JournalEntry{}, sequences: map[string]int64{}}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make(map[uuid.UUID]JournalEntry, len(r.entries))
	for k, v := range r.entries {
		entries[k] = v
	}
	sequences := make(map[string]int64, len(r.sequences))
	for k, v := range r.sequences {
		sequences[k] = v
	}
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.entries = entries
		r.sequences = sequences
		return err
	}
	return nil
}

func (r *memoryRepo) GetEntry(ctx context.Context, id uuid.UUID) (JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return JournalEntry{}, ErrEntryNotFound
	}
	return entry, nil
}

func (r *memoryRepo) ListEntries(ctx context.Context, orgID uuid.UUID, limit int) ([]JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []JournalEntry
	for _, e := range r.entries {
		if e.OrganizationID == orgID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (t *memoryTx) NextSequence(ctx context.Context, orgID uuid.UUID, prefix string) (int64, error) {
	key := orgID.String() + prefix
	t.repo.sequences[key]++
	return t.repo.sequences[key], nil
}

func (t *memoryTx) InsertEntry(ctx context.Context, entry JournalEntry) error {
	for _, e := range t.repo.entries {
		if e.OrganizationID == entry.OrganizationID && e.Number == entry.Number {
			return shared.ErrConflict
		}
	}
	t.repo.entries[entry.ID] = entry
	t.repo.inserts++
	return nil
}

func (t *memoryTx) GetEntryForUpdate(ctx context.Context, id uuid.UUID) (JournalEntry, error) {
	entry, ok := t.repo.entries[id]
	if !ok {
		return JournalEntry{}, ErrEntryNotFound
	}
	return entry, nil
}

func (t *memoryTx) MarkPosted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	entry, ok := t.repo.entries[id]
	if !ok || entry.Status != StatusDraft {
		return false, nil
	}
	entry.Status = StatusPosted
	entry.PostedAt = &at
	t.repo.entries[id] = entry
	return true, nil
}

func (t *memoryTx) FindBySource(ctx context.Context, module string, sourceID uuid.UUID) (JournalEntry, bool, error) {
	for _, e := range t.repo.entries {
		if e.SourceModule == module && e.SourceID == sourceID {
			return e, true, nil
		}
	}
	return JournalEntry{}, false, nil
}

type recordingAudit struct {
	logs []shared.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}
