package repositories

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/managementproperties/mono-repo/backend/shared/go-models"
)

/*
sheetPropertyRepo stores listings as rows of a spreadsheet tab. Every call
reads the whole grid; rows are located by id, never by a cached position.

Locking: append and row deletion change row positions, so they hold the
write lock. Replace and PatchActive hold the read lock plus the per-id
lock, which keeps positions stable while two writers on the same id run
one after the other.
*/
type sheetPropertyRepo struct {
	grid  Grid
	mu    sync.RWMutex
	locks *KeyedMutex
	now   func() time.Time
}

func NewSheetPropertyRepository(grid Grid) PropertyRepository {
	return &sheetPropertyRepo{grid: grid, locks: NewKeyedMutex(), now: time.Now}
}

// NewSheetPropertyRepositoryWithClock is NewSheetPropertyRepository with an
// injectable clock for id generation and timestamps.
func NewSheetPropertyRepositoryWithClock(grid Grid, now func() time.Time) PropertyRepository {
	return &sheetPropertyRepo{grid: grid, locks: NewKeyedMutex(), now: now}
}

type sheetSnapshot struct {
	header []string
	index  map[string]int
	rows   [][]any // data rows; rows[i] lives on sheet row i+2
}

func (r *sheetPropertyRepo) load(ctx context.Context) (*sheetSnapshot, error) {
	values, err := r.grid.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	s := &sheetSnapshot{index: map[string]int{}}
	if len(values) == 0 {
		return s, nil
	}
	for i, h := range values[0] {
		name := strings.ToLower(strings.TrimSpace(models.CellString(h)))
		s.header = append(s.header, name)
		if _, dup := s.index[name]; name != "" && !dup {
			s.index[name] = i
		}
	}
	s.rows = values[1:]
	return s, nil
}

func (s *sheetSnapshot) record(i int) models.RawRecord {
	row := s.rows[i]
	raw := models.RawRecord{}
	for name, col := range s.index {
		if col < len(row) {
			raw[name] = row[col]
		}
	}
	return raw
}

func (s *sheetSnapshot) blank(i int) bool {
	for _, v := range s.rows[i] {
		if strings.TrimSpace(models.CellString(v)) != "" {
			return false
		}
	}
	return true
}

func (s *sheetSnapshot) idAt(i int) (int64, bool) {
	col, ok := s.index[models.ColID]
	if !ok || col >= len(s.rows[i]) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(models.CellString(s.rows[i][col])), 10, 64)
	return id, err == nil
}

// find returns the sheet row number holding id.
func (s *sheetSnapshot) find(id int64) (int, int, bool) {
	for i := range s.rows {
		if got, ok := s.idAt(i); ok && got == id {
			return i, i + 2, true
		}
	}
	return 0, 0, false
}

// rowFor lays raw out in header order, keeping cells of columns raw does
// not know about from base.
func (s *sheetSnapshot) rowFor(raw models.RawRecord, base []any) []any {
	out := make([]any, len(s.header))
	for i := range out {
		if i < len(base) && base[i] != nil {
			out[i] = base[i]
		} else {
			out[i] = ""
		}
	}
	for name, col := range s.index {
		if v, ok := raw[name]; ok {
			out[col] = v
		}
	}
	return out
}

// imageCells spreads images over the slot columns this sheet has, in order,
// and puts whatever does not fit into images_csv.
func (s *sheetSnapshot) imageCells(images []string) models.RawRecord {
	raw := models.RawRecord{}
	rest := images
	for _, col := range models.ImageSlotColumns {
		if _, ok := s.index[col]; !ok {
			continue
		}
		raw[col] = ""
		if len(rest) > 0 {
			raw[col] = rest[0]
			rest = rest[1:]
		}
	}
	raw[models.ColImagesCSV] = strings.Join(rest, "|")
	return raw
}

func (r *sheetPropertyRepo) List(ctx context.Context, includeInactive bool) ([]models.Property, error) {
	r.mu.RLock()
	s, err := r.load(ctx)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	out := []models.Property{}
	for i := range s.rows {
		if s.blank(i) {
			continue
		}
		p, issues := models.NormalizeWithIssues(s.record(i), r.now)
		logRowIssues(p.ID, issues)
		if !includeInactive && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].ID > out[b].ID
	})
	return out, nil
}

func (r *sheetPropertyRepo) Create(ctx context.Context, fields models.PropertyFields) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	if len(s.header) == 0 {
		if err := r.writeHeader(ctx, s); err != nil {
			return 0, err
		}
	}

	now := r.now()
	id := now.UnixMilli()
	for i := range s.rows {
		if existing, ok := s.idAt(i); ok && existing >= id {
			id = existing + 1
		}
	}

	p := models.NewProperty(id, fields, now.UTC())
	raw := models.ToRawRecord(p)
	for col, v := range s.imageCells(p.Images) {
		raw[col] = v
	}
	if err := r.grid.Append(ctx, s.rowFor(raw, nil)); err != nil {
		return 0, fmt.Errorf("append row: %w", err)
	}
	return id, nil
}

func (r *sheetPropertyRepo) writeHeader(ctx context.Context, s *sheetSnapshot) error {
	header := make([]any, len(models.SheetHeader))
	for i, h := range models.SheetHeader {
		header[i] = h
		s.index[h] = i
	}
	s.header = append([]string(nil), models.SheetHeader...)
	if err := r.grid.Update(ctx, RowRange(1, len(header)), [][]any{header}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func (r *sheetPropertyRepo) Replace(ctx context.Context, id int64, fields models.PropertyFields) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	unlock := r.locks.Lock(id)
	defer unlock()

	s, err := r.load(ctx)
	if err != nil {
		return err
	}
	i, rowNum, ok := s.find(id)
	if !ok {
		return ErrPropertyNotFound
	}

	// Only supplied fields are rewritten; every other cell is copied as stored.
	raw := models.FieldsToRawRecord(fields)
	if fields.Images != nil {
		for col, v := range s.imageCells(models.ResolveImages(*fields.Images)) {
			raw[col] = v
		}
	}

	merged := s.rowFor(raw, s.rows[i])
	if err := r.grid.Update(ctx, RowRange(rowNum, len(merged)), [][]any{merged}); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func (r *sheetPropertyRepo) PatchActive(ctx context.Context, id int64, active bool) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	unlock := r.locks.Lock(id)
	defer unlock()

	s, err := r.load(ctx)
	if err != nil {
		return err
	}
	_, rowNum, ok := s.find(id)
	if !ok {
		return ErrPropertyNotFound
	}
	col, ok := s.index[models.ColActive]
	if !ok {
		return fmt.Errorf("sheet has no %q column", models.ColActive)
	}

	cell := CellRef(col+1, rowNum)
	if err := r.grid.Update(ctx, cell, [][]any{{strconv.FormatBool(active)}}); err != nil {
		return fmt.Errorf("write %s: %w", cell, err)
	}
	return nil
}

func (r *sheetPropertyRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.load(ctx)
	if err != nil {
		return err
	}
	_, rowNum, ok := s.find(id)
	if !ok {
		return ErrPropertyNotFound
	}
	if err := r.grid.DeleteRow(ctx, rowNum); err != nil {
		return fmt.Errorf("delete row %d: %w", rowNum, err)
	}
	return nil
}

func (r *sheetPropertyRepo) Ping(ctx context.Context) error {
	_, err := r.grid.Values(ctx)
	return err
}
