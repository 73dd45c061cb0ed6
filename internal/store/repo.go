package store

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/domain"
)

// Repo is a typed view of one collection. T must be a domain model struct
// whose csv tags match the schema.
type Repo[T any] struct {
	st     Store
	schema domain.Schema
}

func NewRepo[T any](st Store, schema domain.Schema) *Repo[T] {
	return &Repo[T]{st: st, schema: schema}
}

func (r *Repo[T]) Schema() domain.Schema {
	return r.schema
}

func (r *Repo[T]) decode(row domain.Row) (T, bool) {
	var v T
	if err := domain.Decode(row, &v); err != nil {
		zap.L().Warn("skipping undecodable row",
			zap.String("namespace", "store"),
			zap.String("collection", r.schema.Name),
			zap.String("key", row[r.schema.Key]),
			zap.Error(err))
		return v, false
	}
	return v, true
}

// All returns every decodable row in stored order.
func (r *Repo[T]) All(ctx context.Context) []T {
	rows := r.st.Load(ctx, r.schema)
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if v, ok := r.decode(row); ok {
			out = append(out, v)
		}
	}
	return out
}

// Find returns the rows accepted by match.
func (r *Repo[T]) Find(ctx context.Context, match func(T) bool) []T {
	all := r.All(ctx)
	out := all[:0:0]
	for _, v := range all {
		if match(v) {
			out = append(out, v)
		}
	}
	return out
}

// First returns the first row accepted by match.
func (r *Repo[T]) First(ctx context.Context, match func(T) bool) (T, bool) {
	for _, v := range r.All(ctx) {
		if match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Get finds a row by the schema key.
func (r *Repo[T]) Get(ctx context.Context, key string) (T, bool) {
	return r.GetBy(ctx, r.schema.Key, key)
}

// GetBy finds the first row whose field equals value.
func (r *Repo[T]) GetBy(ctx context.Context, field, value string) (T, bool) {
	row, ok := r.st.FindOne(ctx, r.schema, FieldEquals(field, value))
	if !ok {
		var zero T
		return zero, false
	}
	return r.decode(row)
}

// Exists reports whether any row has field equal to value.
func (r *Repo[T]) Exists(ctx context.Context, field, value string) bool {
	_, ok := r.st.FindOne(ctx, r.schema, FieldEquals(field, value))
	return ok
}

func (r *Repo[T]) Insert(ctx context.Context, v T) error {
	return r.st.Append(ctx, r.schema, domain.Encode(v))
}

// Patch merges updates into the row with the given key.
func (r *Repo[T]) Patch(ctx context.Context, key string, updates domain.Row) error {
	return r.st.Update(ctx, r.schema, r.schema.Key, key, updates)
}

// PatchBy merges updates into the first row whose field equals value.
func (r *Repo[T]) PatchBy(ctx context.Context, field, value string, updates domain.Row) error {
	return r.st.Update(ctx, r.schema, field, value, updates)
}

func (r *Repo[T]) Remove(ctx context.Context, key string) error {
	return r.st.Delete(ctx, r.schema, r.schema.Key, key)
}

// Replace rewrites the whole collection with items.
func (r *Repo[T]) Replace(ctx context.Context, items []T) error {
	rows := make([]domain.Row, len(items))
	for i, v := range items {
		rows[i] = domain.Encode(v)
	}
	return r.st.Save(ctx, r.schema, rows)
}

// NextID returns one more than the largest numeric key in the collection.
func (r *Repo[T]) NextID(ctx context.Context) string {
	max := 0
	for _, row := range r.st.Load(ctx, r.schema) {
		if n, err := strconv.Atoi(row[r.schema.Key]); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}
