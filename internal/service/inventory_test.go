package service

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
)

func (f *fixture) stock(t *testing.T, id string) domain.InventoryItem {
	item, ok := f.svc.inventory.Get(f.ctx, id)
	require.True(t, ok)
	return item
}

func TestExportNeverGoesBelowZero(t *testing.T) {
	f := newFixture(t)
	f.addStock(t, "1", "Coffee beans", 5, 2)

	_, err := f.svc.ExportStock(f.ctx, "1", 5.5, "spilled")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 5.0, f.stock(t, "1").Quantity)
	assert.Empty(t, f.svc.ListStockMovements(f.ctx, "1"))

	receipt, err := f.svc.ExportStock(f.ctx, "1", "1.5", "expired")
	require.NoError(t, err)
	assert.Equal(t, "EXP-20251130080000", receipt.ID)
	assert.Equal(t, 3.5, f.stock(t, "1").Quantity)

	_, err = f.svc.ExportStock(f.ctx, "1", 0, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.ExportStock(f.ctx, "9", 1, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestStockRejectsNonFiniteQuantities(t *testing.T) {
	f := newFixture(t)
	f.addStock(t, "1", "Coffee beans", 5, 2)

	for _, q := range []interface{}{"NaN", "Inf", "-Inf", math.NaN(), math.Inf(1)} {
		_, err := f.svc.ExportStock(f.ctx, "1", q, "x")
		assert.True(t, apperr.Is(err, apperr.KindValidation), "export %v", q)
		_, err = f.svc.ImportStock(f.ctx, []StockLine{{ID: "1", Quantity: q}}, "", "")
		assert.True(t, apperr.Is(err, apperr.KindValidation), "import %v", q)
		_, err = f.svc.Stocktake(f.ctx, []StockCount{{ID: "1", ActualQuantity: q}})
		assert.True(t, apperr.Is(err, apperr.KindValidation), "stocktake %v", q)
	}
	assert.Equal(t, 5.0, f.stock(t, "1").Quantity)
	assert.Empty(t, f.svc.ListStockMovements(f.ctx, "1"))

	_, err := f.svc.ExportStock(f.ctx, "1", 1000, "x")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestStockMovesByExactAmount(t *testing.T) {
	f := newFixture(t)
	f.addStock(t, "1", "Sugar", 1, 0)
	f.addStock(t, "2", "Milk", 1, 0)

	_, err := f.svc.ExportStock(f.ctx, "1", 0.004, "sample")
	require.NoError(t, err)
	assert.InDelta(t, 0.996, f.stock(t, "1").Quantity, 1e-9)

	_, err = f.svc.ImportStock(f.ctx, []StockLine{{ID: "2", Quantity: "0.125"}}, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1.125, f.stock(t, "2").Quantity)

	moves := f.svc.ListStockMovements(f.ctx, "1")
	require.Len(t, moves, 1)
	assert.Equal(t, 0.004, moves[0].Quantity)
}

func TestImportSkipsUnknownItems(t *testing.T) {
	f := newFixture(t)
	f.addStock(t, "1", "Milk", 2, 5)

	receipt, err := f.svc.ImportStock(f.ctx, []StockLine{
		{ID: "1", Quantity: "10"},
		{ID: "42", Quantity: 3},
		{ID: "", Quantity: 1},
	}, "Dairy Co", "weekly")
	require.NoError(t, err)
	assert.Equal(t, 3, receipt.ItemsCount)
	assert.Equal(t, "IMP-20251130080000", receipt.ID)
	assert.Equal(t, 12.0, f.stock(t, "1").Quantity)

	moves := f.svc.ListStockMovements(f.ctx, "")
	require.Len(t, moves, 1)
	assert.Equal(t, domain.MovementImport, moves[0].Kind)
	assert.Equal(t, "Dairy Co", moves[0].Supplier)

	_, err = f.svc.ImportStock(f.ctx, []StockLine{{ID: "1", Quantity: -1}}, "", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.ImportStock(f.ctx, nil, "", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 12.0, f.stock(t, "1").Quantity)
}

func TestStocktakeOverwrites(t *testing.T) {
	f := newFixture(t)
	f.addStock(t, "1", "Sugar", 10, 1)
	f.addStock(t, "2", "Cups", 100, 20)

	n, err := f.svc.Stocktake(f.ctx, []StockCount{{ID: "1", ActualQuantity: 7.25}, {ID: "2", ActualQuantity: "-3"}, {ID: "9", ActualQuantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 7.25, f.stock(t, "1").Quantity)
	assert.Equal(t, -3.0, f.stock(t, "2").Quantity, "counts are not bounded")

	_, err = f.svc.Stocktake(f.ctx, []StockCount{{ID: "1", ActualQuantity: "lots"}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestLowStockAlertsAndEvents(t *testing.T) {
	f := newFixture(t)
	f.addStock(t, "1", "Matcha", 3, 2)
	f.addStock(t, "2", "Ice", 1, 4)

	var events []LowStockEvent
	require.NoError(t, f.svc.Bus().Subscribe(TopicLowStock, func(e LowStockEvent) { events = append(events, e) }))

	view := f.svc.ListInventory(f.ctx)
	require.Len(t, view.Alerts, 1)
	assert.Equal(t, "2", view.Alerts[0].ID)
	assert.Equal(t, 3.0, view.Alerts[0].Shortage)

	_, err := f.svc.ExportStock(f.ctx, "1", 2, "used")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Matcha", events[0].Item.Name)
	assert.Equal(t, 1.0, events[0].Shortage)

	item, err := f.svc.UpdateMinStock(f.ctx, "2", "0.5")
	require.NoError(t, err)
	assert.Equal(t, 0.5, item.MinStock)
	assert.Len(t, f.svc.ListInventory(f.ctx).Alerts, 1)

	_, err = f.svc.UpdateMinStock(f.ctx, "2", -1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.UpdateMinStock(f.ctx, "8", 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestInventoryWorkbook(t *testing.T) {
	f := newFixture(t)
	f.addStock(t, "1", "Beans", 1, 3)

	var buf bytes.Buffer
	require.NoError(t, f.svc.InventoryWorkbook(f.ctx, &buf))
	assert.Equal(t, "PK", buf.String()[:2])
}

func TestCellName(t *testing.T) {
	assert.Equal(t, "A1", cellName(1, 1))
	assert.Equal(t, "Z3", cellName(26, 3))
	assert.Equal(t, "AA10", cellName(27, 10))
}
