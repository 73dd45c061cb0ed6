package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
)

func TestTableTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{domain.TableAvailable, domain.TableOccupied, true},
		{domain.TableAvailable, domain.TableReserved, true},
		{domain.TableOccupied, domain.TableAvailable, true},
		{domain.TableReserved, domain.TableOccupied, true},
		{domain.TableReserved, domain.TableAvailable, true},
		{domain.TableOccupied, domain.TableReserved, false},
		{domain.TableAvailable, domain.TableAvailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			f := newFixture(t)
			f.addTable(t, "1", 1, 4, tt.from)
			_, err := f.svc.UpdateTableStatus(f.ctx, "1", tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, f.table(t, "1").Status)
				return
			}
			assert.True(t, apperr.Is(err, apperr.KindConflict))
			assert.Equal(t, tt.from, f.table(t, "1").Status)
		})
	}
}

func TestUpdateTableStatusErrors(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateTableStatus(f.ctx, "1", "broken")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.UpdateTableStatus(f.ctx, "1", domain.TableOccupied)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestClearTableIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addTable(t, "1", 1, 4, domain.TableAvailable)
	f.addTable(t, "2", 2, 4, domain.TableOccupied)

	for i := 0; i < 2; i++ {
		tbl, err := f.svc.ClearTable(f.ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, domain.TableAvailable, tbl.Status)
	}
	_, err := f.svc.ClearTable(f.ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, domain.TableAvailable, f.table(t, "2").Status)

	_, err = f.svc.ClearTable(f.ctx, "9")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAssignTable(t *testing.T) {
	f := newFixture(t)
	f.addMenu(t, "1", "Tea", 2, domain.MenuAvailable)
	f.addTable(t, "1", 1, 4, domain.TableReserved)
	f.addTable(t, "2", 2, 4, domain.TableOccupied)
	placed, err := f.svc.CreateCustomerOrder(f.ctx, f.customer, []OrderItem{{MenuItemID: "1", Quantity: 1}})
	require.NoError(t, err)

	_, err = f.svc.AssignTable(f.ctx, "1", "ORD-missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Equal(t, domain.TableReserved, f.table(t, "1").Status, "nothing changes when the order is unknown")

	_, err = f.svc.AssignTable(f.ctx, "2", placed.Order.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	tbl, err := f.svc.AssignTable(f.ctx, "1", placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Number)
	assert.Equal(t, domain.TableOccupied, f.table(t, "1").Status)
	order, _ := f.svc.orders.Get(f.ctx, placed.Order.ID)
	assert.Equal(t, "1", order.TableID)

	_, err = f.svc.AssignTable(f.ctx, "1", "")
	assert.True(t, apperr.Is(err, apperr.KindConflict), "a table cannot be double-assigned")
}

func TestCreateTable(t *testing.T) {
	f := newFixture(t)
	tbl, err := f.svc.CreateTable(f.ctx, 5, "6")
	require.NoError(t, err)
	assert.Equal(t, "1", tbl.ID)
	assert.Equal(t, domain.TableAvailable, tbl.Status)

	_, err = f.svc.CreateTable(f.ctx, "5", 2)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = f.svc.CreateTable(f.ctx, 6, 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	f.addTable(t, "2", 1, 2, domain.TableAvailable)
	tables := f.svc.ListTables(f.ctx)
	require.Len(t, tables, 2)
	assert.Equal(t, 1, tables[0].Number)
}
