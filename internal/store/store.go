package store

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/domain"
)

// Predicate selects rows in FindOne/FindMany. A nil predicate matches all.
type Predicate func(domain.Row) bool

// Store is the record store contract shared by every backend.
//
// Reads never fail: a missing collection and an unreadable one both load as
// empty. Writes rewrite the whole collection (Append excepted) and return
// their error to the caller. Every call takes the collection schema so the
// column order always comes from the registry.
type Store interface {
	// Load returns all rows of the collection in stored order.
	Load(ctx context.Context, s domain.Schema) []domain.Row

	// Save replaces the collection with rows, header first.
	Save(ctx context.Context, s domain.Schema, rows []domain.Row) error

	// Append adds one row at the end, creating the collection if absent.
	Append(ctx context.Context, s domain.Schema, row domain.Row) error

	// Update merges updates into the first row whose keyField equals
	// keyValue. It is a silent no-op when nothing matches.
	Update(ctx context.Context, s domain.Schema, keyField, keyValue string, updates domain.Row) error

	// Delete removes every row whose keyField equals keyValue.
	Delete(ctx context.Context, s domain.Schema, keyField, keyValue string) error

	// FindOne returns the first matching row.
	FindOne(ctx context.Context, s domain.Schema, match Predicate) (domain.Row, bool)

	// FindMany returns all matching rows.
	FindMany(ctx context.Context, s domain.Schema, match Predicate) []domain.Row

	Close() error
}

// backend is the raw persistence a recordStore drives. Implementations do
// not lock; recordStore serializes access per collection.
type backend interface {
	name() string
	read(ctx context.Context, s domain.Schema) ([]domain.Row, error)
	write(ctx context.Context, s domain.Schema, rows []domain.Row) error
	appendRow(ctx context.Context, s domain.Schema, row domain.Row) error
	close() error
}

// recordStore implements Store over a backend with one mutex per
// collection around every load-modify-save cycle.
type recordStore struct {
	b     backend
	locks sync.Map
}

func newRecordStore(b backend) *recordStore {
	return &recordStore{b: b}
}

func (r *recordStore) lock(name string) *sync.RWMutex {
	mu, _ := r.locks.LoadOrStore(name, &sync.RWMutex{})
	return mu.(*sync.RWMutex)
}

// readQuiet loads rows and degrades read failures to an empty collection.
func (r *recordStore) readQuiet(ctx context.Context, s domain.Schema) []domain.Row {
	rows, err := r.b.read(ctx, s)
	if err != nil {
		zap.L().Warn("unreadable collection treated as empty",
			zap.String("namespace", "store"),
			zap.String("backend", r.b.name()),
			zap.String("collection", s.Name),
			zap.Error(err))
		return nil
	}
	return rows
}

func (r *recordStore) Load(ctx context.Context, s domain.Schema) []domain.Row {
	mu := r.lock(s.Name)
	mu.RLock()
	defer mu.RUnlock()
	return r.readQuiet(ctx, s)
}

func (r *recordStore) Save(ctx context.Context, s domain.Schema, rows []domain.Row) error {
	mu := r.lock(s.Name)
	mu.Lock()
	defer mu.Unlock()
	return r.save(ctx, s, rows)
}

func (r *recordStore) save(ctx context.Context, s domain.Schema, rows []domain.Row) error {
	projected := make([]domain.Row, len(rows))
	for i, row := range rows {
		projected[i] = row.Project(s.Fields)
	}
	if err := r.b.write(ctx, s, projected); err != nil {
		return errors.Wrapf(err, "save %s", s.Name)
	}
	return nil
}

func (r *recordStore) Append(ctx context.Context, s domain.Schema, row domain.Row) error {
	mu := r.lock(s.Name)
	mu.Lock()
	defer mu.Unlock()
	if err := r.b.appendRow(ctx, s, row.Project(s.Fields)); err != nil {
		return errors.Wrapf(err, "append %s", s.Name)
	}
	return nil
}

func (r *recordStore) Update(ctx context.Context, s domain.Schema, keyField, keyValue string, updates domain.Row) error {
	mu := r.lock(s.Name)
	mu.Lock()
	defer mu.Unlock()

	rows := r.readQuiet(ctx, s)
	for i, row := range rows {
		if row[keyField] != keyValue {
			continue
		}
		merged := row.Clone()
		for k, v := range updates {
			merged[k] = v
		}
		rows[i] = merged
		return r.save(ctx, s, rows)
	}
	return nil
}

func (r *recordStore) Delete(ctx context.Context, s domain.Schema, keyField, keyValue string) error {
	mu := r.lock(s.Name)
	mu.Lock()
	defer mu.Unlock()

	rows := r.readQuiet(ctx, s)
	kept := rows[:0:0]
	for _, row := range rows {
		if row[keyField] != keyValue {
			kept = append(kept, row)
		}
	}
	if len(kept) == len(rows) {
		return nil
	}
	return r.save(ctx, s, kept)
}

func (r *recordStore) FindOne(ctx context.Context, s domain.Schema, match Predicate) (domain.Row, bool) {
	for _, row := range r.Load(ctx, s) {
		if match == nil || match(row) {
			return row, true
		}
	}
	return nil, false
}

func (r *recordStore) FindMany(ctx context.Context, s domain.Schema, match Predicate) []domain.Row {
	rows := r.Load(ctx, s)
	if match == nil {
		return rows
	}
	out := make([]domain.Row, 0, len(rows))
	for _, row := range rows {
		if match(row) {
			out = append(out, row)
		}
	}
	return out
}

func (r *recordStore) Close() error {
	return r.b.close()
}

// FieldEquals builds a predicate matching rows whose field equals value.
func FieldEquals(field, value string) Predicate {
	return func(row domain.Row) bool {
		return row[field] == value
	}
}
