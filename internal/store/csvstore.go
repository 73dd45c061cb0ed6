package store

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/cafedesk/cafedesk/internal/domain"
)

// csvBackend keeps one delimited text file per collection under dir.
type csvBackend struct {
	dir string
}

// NewCSVStore opens a file store rooted at dir, creating it if needed.
func NewCSVStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return newRecordStore(&csvBackend{dir: dir}), nil
}

func (b *csvBackend) name() string { return "csv" }

func (b *csvBackend) path(s domain.Schema) string {
	return filepath.Join(b.dir, s.Name+".csv")
}

func (b *csvBackend) read(_ context.Context, s domain.Schema) ([]domain.Row, error) {
	f, err := os.Open(b.path(s))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	maps, err := gocsv.CSVToMaps(f)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.Row, len(maps))
	for i, m := range maps {
		rows[i] = domain.Row(m)
	}
	return rows, nil
}

// write replaces the file through a temp file and rename so a reader never
// sees a half-written collection.
func (b *csvBackend) write(_ context.Context, s domain.Schema, rows []domain.Row) error {
	tmp, err := os.CreateTemp(b.dir, "."+s.Name+"-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := gocsv.DefaultCSVWriter(tmp)
	if err := w.Write(s.Fields); err != nil {
		tmp.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.Values(s.Fields)); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path(s))
}

func (b *csvBackend) appendRow(ctx context.Context, s domain.Schema, row domain.Row) error {
	header, err := b.header(s)
	if err != nil {
		return err
	}
	// A missing file or a header in another column order cannot take a
	// plain append; fall back to a full rewrite.
	if !sameFields(header, s.Fields) {
		rows := []domain.Row{}
		if header != nil {
			existing, err := b.read(ctx, s)
			if err != nil {
				return err
			}
			rows = existing
		}
		return b.write(ctx, s, append(rows, row))
	}

	f, err := os.OpenFile(b.path(s), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := gocsv.DefaultCSVWriter(f)
	if err := w.Write(row.Values(s.Fields)); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// header returns the first record of the file, or nil when it is absent.
func (b *csvBackend) header(s domain.Schema) ([]string, error) {
	f, err := os.Open(b.path(s))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	record, err := csv.NewReader(f).Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (b *csvBackend) close() error { return nil }

func sameFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
