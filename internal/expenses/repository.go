// Package expenses holds the in-memory expense collection and keeps it
// mirrored to a key-value store as a full snapshot.
package expenses

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"spesetracker/internal/core"
	"spesetracker/internal/kv"
	"spesetracker/internal/log"
	"spesetracker/internal/metrics"
)

// DefaultKey is the storage key the snapshot lives under.
const DefaultKey = "@ExpenseTracker:expenses"

const maxIDAttempts = 8

var (
	// ErrNotLoaded is returned by mutations issued before Load completed.
	ErrNotLoaded = errors.New("expense repository not loaded")
	// ErrClosed is returned by mutations issued after Close.
	ErrClosed = errors.New("expense repository closed")
)

// LoadStatus describes how the initial load went. Load never fails: every
// status leaves the repository loaded and usable.
type LoadStatus string

const (
	LoadFresh        LoadStatus = "fresh"
	LoadRestored     LoadStatus = "restored"
	LoadDecodeFailed LoadStatus = "decode_failed"
	LoadReadFailed   LoadStatus = "read_failed"
	LoadSkipped      LoadStatus = "skipped"
)

func (s LoadStatus) String() string { return string(s) }

// LoadResult is returned by Load.
type LoadResult struct {
	Status  LoadStatus
	Records int
	// Err carries the decode or read failure behind LoadDecodeFailed and
	// LoadReadFailed. It is informational only.
	Err error
}

// Config tunes a Repository. Zero fields fall back to DefaultConfig.
type Config struct {
	Key          string
	WriteTimeout time.Duration
	NewID        IDGenerator
	Now          func() time.Time
	Logger       *log.Logger
}

// DefaultConfig returns the settings used by the CLI and HTTP server.
func DefaultConfig() Config {
	return Config{
		Key:          DefaultKey,
		WriteTimeout: 5 * time.Second,
		NewID:        NewID,
		Now:          time.Now,
	}
}

// Repository is the single source of truth for expense records. Reads and
// mutations are served from memory; every mutation schedules a snapshot
// write that runs in the background.
type Repository struct {
	store  kv.Store
	key    string
	newID  IDGenerator
	now    func() time.Time
	logger *log.Logger

	loadMu sync.Mutex

	mu      sync.RWMutex
	records []core.Expense
	loaded  bool
	closed  bool
	version uint64

	persister *persister
	closeOnce sync.Once
	closeErr  error
}

// NewRepository creates an unloaded repository backed by store.
func NewRepository(store kv.Store, cfg Config) *Repository {
	def := DefaultConfig()
	if cfg.Key == "" {
		cfg.Key = def.Key
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.NewID == nil {
		cfg.NewID = def.NewID
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Discard()
	}

	r := &Repository{
		store:   store,
		key:     cfg.Key,
		newID:   cfg.NewID,
		now:     cfg.Now,
		logger:  cfg.Logger.WithComponent(log.ComponentRepository),
		records: []core.Expense{},
	}
	r.persister = newPersister(store, cfg.Key, cfg.WriteTimeout, r.snapshot,
		cfg.Logger.WithComponent(log.ComponentPersistence))
	return r
}

// Load reads the snapshot once and installs it. A missing key starts empty;
// an unreadable or corrupt blob also starts empty and is reported through
// the returned status. No write happens before Load returns, so a slow read
// can never be overwritten with an empty collection.
func (r *Repository) Load(ctx context.Context) LoadResult {
	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	r.mu.RLock()
	skip := r.loaded || r.closed
	r.mu.RUnlock()
	if skip {
		return LoadResult{Status: LoadSkipped, Records: r.Len()}
	}

	fields := log.NewFields().WithOperation(log.OpLoad)
	records := []core.Expense{}
	res := LoadResult{}

	data, err := r.store.Read(ctx, r.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		res.Status = LoadFresh
	case err != nil:
		res.Status, res.Err = LoadReadFailed, err
		r.logger.ErrorContext(ctx, "Failed to read expense snapshot, starting empty", fields.WithError(err).ToSlice()...)
	default:
		decoded, decErr := DecodeSnapshot(data)
		if decErr != nil {
			res.Status, res.Err = LoadDecodeFailed, decErr
			r.logger.WarnContext(ctx, "Discarding unreadable expense snapshot", fields.WithError(decErr).ToSlice()...)
		} else {
			res.Status = LoadRestored
			records = decoded
		}
	}
	res.Records = len(records)

	r.mu.Lock()
	r.records = records
	r.loaded = true
	r.mu.Unlock()

	r.persister.start()

	metrics.Loads.WithLabelValues(res.Status.String()).Inc()
	metrics.Records.Set(float64(res.Records))
	r.logger.InfoContext(ctx, "Expense repository loaded",
		log.FieldOperation, log.OpLoad, "status", res.Status.String(), log.FieldRecords, res.Records)
	return res
}

// Loaded reports whether Load has completed.
func (r *Repository) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Expenses returns a copy of the collection, newest first.
func (r *Repository) Expenses() []core.Expense {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.records)
}

// Find returns the record with id.
func (r *Repository) Find(id string) (core.Expense, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexLocked(id); i >= 0 {
		return r.records[i], true
	}
	return core.Expense{}, false
}

// Len returns the number of records.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// AddExpense assigns a fresh id and prepends the record. A zero date means
// "now". Input validation is the caller's job.
func (r *Repository) AddExpense(in core.ExpenseInput) (core.Expense, error) {
	r.mu.Lock()
	if err := r.writableLocked(); err != nil {
		r.mu.Unlock()
		return core.Expense{}, err
	}

	date := in.Date
	if date.IsZero() {
		date = r.now()
	}
	e := core.Expense{
		ID:       r.uniqueIDLocked(),
		Title:    in.Title,
		Amount:   in.Amount,
		Category: in.Category,
		Date:     date.UTC(),
	}

	next := make([]core.Expense, 0, len(r.records)+1)
	next = append(next, e)
	r.records = append(next, r.records...)
	n := r.bumpLocked()
	r.mu.Unlock()

	r.persister.schedule()
	r.recordMutation(log.OpCreate, e, n)
	return e, nil
}

// UpdateExpense merges patch into the record with id, keeping its position
// and id. An unknown id changes nothing and reports false.
func (r *Repository) UpdateExpense(id string, patch core.Patch) (core.Expense, bool, error) {
	r.mu.Lock()
	if err := r.writableLocked(); err != nil {
		r.mu.Unlock()
		return core.Expense{}, false, err
	}
	i := r.indexLocked(id)
	if i < 0 {
		r.mu.Unlock()
		return core.Expense{}, false, nil
	}
	if patch.IsEmpty() {
		e := r.records[i]
		r.mu.Unlock()
		return e, true, nil
	}

	updated := patch.Apply(r.records[i])
	r.records[i] = updated
	n := r.bumpLocked()
	r.mu.Unlock()

	r.persister.schedule()
	r.recordMutation(log.OpUpdate, updated, n)
	return updated, true, nil
}

// DeleteExpense removes the record with id. An unknown id is a no-op.
func (r *Repository) DeleteExpense(id string) (bool, error) {
	r.mu.Lock()
	if err := r.writableLocked(); err != nil {
		r.mu.Unlock()
		return false, err
	}
	i := r.indexLocked(id)
	if i < 0 {
		r.mu.Unlock()
		return false, nil
	}

	removed := r.records[i]
	r.records = slices.Delete(r.records, i, i+1)
	n := r.bumpLocked()
	r.mu.Unlock()

	r.persister.schedule()
	r.recordMutation(log.OpDelete, removed, n)
	return true, nil
}

// Flush waits until every mutation made so far has had a write attempt.
// It does not report write failures; those are logged and counted.
func (r *Repository) Flush(ctx context.Context) error {
	r.mu.RLock()
	target, loaded := r.version, r.loaded
	r.mu.RUnlock()
	if !loaded || target == 0 {
		return nil
	}
	return r.persister.wait(ctx, target)
}

// Close flushes pending writes and stops the background writer. Later
// mutations fail with ErrClosed.
func (r *Repository) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		r.closeErr = r.Flush(ctx)
		r.persister.shutdown()
		r.logger.Info("Expense repository closed", log.FieldOperation, log.OpShutdown)
	})
	return r.closeErr
}

func (r *Repository) snapshot() ([]core.Expense, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.records), r.version
}

func (r *Repository) writableLocked() error {
	if r.closed {
		return ErrClosed
	}
	if !r.loaded {
		return ErrNotLoaded
	}
	return nil
}

func (r *Repository) bumpLocked() int {
	r.version++
	return len(r.records)
}

func (r *Repository) indexLocked(id string) int {
	return slices.IndexFunc(r.records, func(e core.Expense) bool { return e.ID == id })
}

func (r *Repository) uniqueIDLocked() string {
	for i := 0; i < maxIDAttempts; i++ {
		if id := r.newID(); id != "" && r.indexLocked(id) < 0 {
			return id
		}
	}
	for {
		if id := NewID(); r.indexLocked(id) < 0 {
			return id
		}
	}
}

func (r *Repository) recordMutation(op string, e core.Expense, records int) {
	metrics.Mutations.WithLabelValues(op).Inc()
	metrics.Records.Set(float64(records))
	r.logger.Debug("Expense mutation applied",
		log.NewFields().WithOperation(op).
			WithExpense(e.ID, e.Title, e.Amount.String(), e.Category).ToSlice()...)
}
