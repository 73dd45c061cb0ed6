package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/validate"
)

// tableTransitions lists the allowed status changes. Clearing a table
// bypasses it.
var tableTransitions = map[string][]string{
	domain.TableAvailable: {domain.TableOccupied, domain.TableReserved},
	domain.TableOccupied:  {domain.TableAvailable},
	domain.TableReserved:  {domain.TableOccupied, domain.TableAvailable},
}

func canMoveTable(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range tableTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ListTables returns the tables ordered by number.
func (s *Service) ListTables(ctx context.Context) []domain.Table {
	tables := s.tables.All(ctx)
	sort.SliceStable(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })
	return tables
}

// CreateTable adds an available table. Numbers are unique.
func (s *Service) CreateTable(ctx context.Context, number, capacity interface{}) (*domain.Table, error) {
	n, err := validate.PositiveInt(number, "table number")
	if err != nil {
		return nil, err
	}
	c, err := validate.PositiveInt(capacity, "capacity")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables.First(ctx, func(t domain.Table) bool { return t.Number == n }); ok {
		return nil, apperr.Conflict("table number %d already exists", n)
	}
	table := domain.Table{ID: s.tables.NextID(ctx), Number: n, Capacity: c, Status: domain.TableAvailable}
	if err := s.tables.Insert(ctx, table); err != nil {
		return nil, storageFault(err, "create table")
	}
	return &table, nil
}

// UpdateTableStatus moves a table to status along an allowed transition.
func (s *Service) UpdateTableStatus(ctx context.Context, id, status string) (*domain.Table, error) {
	if _, err := validate.OneOf(status, domain.TableStatuses, "table status"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.tables.Get(ctx, id)
	if !ok {
		return nil, apperr.NotFound("table %s not found", id)
	}
	if !canMoveTable(table.Status, status) {
		return nil, apperr.Conflict("table %d cannot go from %s to %s", table.Number, table.Status, status)
	}
	if err := s.tables.Patch(ctx, id, domain.Row{"status": status}); err != nil {
		return nil, storageFault(err, "update table status")
	}
	table.Status = status
	return &table, nil
}

// AssignTable seats an order at a table. The table must not be occupied
// and a given order must exist; both records change together.
func (s *Service) AssignTable(ctx context.Context, id, orderID string) (*domain.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables.Get(ctx, id)
	if !ok {
		return nil, apperr.NotFound("table %s not found", id)
	}
	if table.Status == domain.TableOccupied {
		return nil, apperr.Conflict("table %d is occupied", table.Number)
	}
	if orderID != "" && !s.orders.Exists(ctx, "id", orderID) {
		return nil, apperr.NotFound("order %s not found", orderID)
	}

	if err := s.tables.Patch(ctx, id, domain.Row{"status": domain.TableOccupied}); err != nil {
		return nil, storageFault(err, "assign table")
	}
	if orderID != "" {
		if err := s.orders.Patch(ctx, orderID, domain.Row{"table_id": id}); err != nil {
			zap.L().Error("table occupied but order not linked",
				zap.String("namespace", "service"),
				zap.String("table_id", id),
				zap.String("order_id", orderID))
			return nil, storageFault(err, "link order to table")
		}
	}
	table.Status = domain.TableOccupied
	return &table, nil
}

// ClearTable makes a table available whatever its current status.
func (s *Service) ClearTable(ctx context.Context, id string) (*domain.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables.Get(ctx, id)
	if !ok {
		return nil, apperr.NotFound("table %s not found", id)
	}
	if table.Status != domain.TableAvailable {
		if err := s.tables.Patch(ctx, id, domain.Row{"status": domain.TableAvailable}); err != nil {
			return nil, storageFault(err, "clear table")
		}
	}
	table.Status = domain.TableAvailable
	return &table, nil
}
