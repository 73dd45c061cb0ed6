package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/validate"
)

// StockAlert flags an item below its minimum stock.
type StockAlert struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	MinStock float64 `json:"minStock"`
	Shortage float64 `json:"shortage"`
}

// InventoryView is the stock list plus its low-stock alerts.
type InventoryView struct {
	Items  []domain.InventoryItem `json:"items"`
	Alerts []StockAlert           `json:"alerts"`
}

// StockLine is one line of an import delivery.
type StockLine struct {
	ID       string
	Quantity interface{}
}

// StockCount is one counted quantity of a stocktake.
type StockCount struct {
	ID             string
	ActualQuantity interface{}
}

// StockReceipt is returned by import and export.
type StockReceipt struct {
	ID         string  `json:"id"`
	ItemsCount int     `json:"itemsCount,omitempty"`
	Quantity   float64 `json:"quantity,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// ListInventory returns all items and the alerts for those below minimum.
func (s *Service) ListInventory(ctx context.Context) InventoryView {
	items := s.inventory.All(ctx)
	alerts := make([]StockAlert, 0)
	for _, it := range items {
		if it.Quantity < it.MinStock {
			alerts = append(alerts, StockAlert{
				ID:       it.ID,
				Name:     it.Name,
				Quantity: it.Quantity,
				MinStock: it.MinStock,
				Shortage: round2(it.MinStock - it.Quantity),
			})
		}
	}
	return InventoryView{Items: items, Alerts: alerts}
}

// ListStockMovements returns the movement ledger, newest last.
func (s *Service) ListStockMovements(ctx context.Context, itemID string) []domain.StockMovement {
	if itemID == "" {
		return s.movements.All(ctx)
	}
	return s.movements.Find(ctx, func(m domain.StockMovement) bool { return m.ItemID == itemID })
}

// recordMovement appends a ledger row. Callers hold mu.
func (s *Service) recordMovement(ctx context.Context, m domain.StockMovement) error {
	m.ID = s.movements.NextID(ctx)
	m.CreatedAt = s.timestamp()
	return s.movements.Insert(ctx, m)
}

// ImportStock adds delivered quantities to existing items. Lines naming an
// unknown item are skipped.
func (s *Service) ImportStock(ctx context.Context, lines []StockLine, supplier, note string) (*StockReceipt, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("no items to import")
	}
	amounts := make([]float64, len(lines))
	for i, l := range lines {
		q, err := validate.NonNegativeNumber(l.Quantity, "quantity")
		if err != nil {
			return nil, err
		}
		amounts[i] = q
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range lines {
		id := strings.TrimSpace(l.ID)
		if id == "" {
			continue
		}
		item, ok := s.inventory.Get(ctx, id)
		if !ok {
			zap.L().Warn("import skipped unknown item",
				zap.String("namespace", "service"),
				zap.String("item_id", id))
			continue
		}
		item.Quantity += amounts[i]
		if err := s.inventory.Patch(ctx, id, domain.Row{"quantity": fmt.Sprint(item.Quantity)}); err != nil {
			return nil, storageFault(err, "import stock")
		}
		if err := s.recordMovement(ctx, domain.StockMovement{
			ItemID: id, Kind: domain.MovementImport, Quantity: amounts[i], Reason: note, Supplier: supplier,
		}); err != nil {
			return nil, storageFault(err, "record import")
		}
		s.checkLowStock(item)
	}
	return &StockReceipt{ID: s.nextStampID(domain.PrefixImport, nil), ItemsCount: len(lines)}, nil
}

// ExportStock removes quantity from an item. Taking more than is in stock
// fails and leaves the item untouched.
func (s *Service) ExportStock(ctx context.Context, itemID string, quantity interface{}, reason string) (*StockReceipt, error) {
	itemID, err := validate.Required(itemID, "item id")
	if err != nil {
		return nil, err
	}
	q, err := validate.StrictlyPositive(quantity, "quantity")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.inventory.Get(ctx, itemID)
	if !ok {
		return nil, apperr.NotFound("inventory item %s not found", itemID)
	}
	if q > item.Quantity {
		return nil, apperr.Conflict("export quantity %v exceeds stock %v", q, item.Quantity)
	}
	item.Quantity -= q
	if err := s.inventory.Patch(ctx, itemID, domain.Row{"quantity": fmt.Sprint(item.Quantity)}); err != nil {
		return nil, storageFault(err, "export stock")
	}
	if err := s.recordMovement(ctx, domain.StockMovement{
		ItemID: itemID, Kind: domain.MovementExport, Quantity: q, Reason: reason,
	}); err != nil {
		return nil, storageFault(err, "record export")
	}
	s.checkLowStock(item)
	return &StockReceipt{ID: s.nextStampID(domain.PrefixExport, nil), Quantity: q, Reason: reason}, nil
}

// Stocktake overwrites quantities with counted values. Counts are not
// bounded and unknown ids change nothing.
func (s *Service) Stocktake(ctx context.Context, counts []StockCount) (int, error) {
	if len(counts) == 0 {
		return 0, apperr.Validation("no adjustments given")
	}
	values := make([]float64, len(counts))
	for i, c := range counts {
		v, err := validate.Number(c.ActualQuantity, "actual quantity")
		if err != nil {
			return 0, err
		}
		values[i] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range counts {
		item, ok := s.inventory.Get(ctx, c.ID)
		if !ok {
			continue
		}
		item.Quantity = values[i]
		if err := s.inventory.Patch(ctx, c.ID, domain.Row{"quantity": fmt.Sprint(values[i])}); err != nil {
			return 0, storageFault(err, "stocktake")
		}
		if err := s.recordMovement(ctx, domain.StockMovement{
			ItemID: c.ID, Kind: domain.MovementStocktake, Quantity: values[i],
		}); err != nil {
			return 0, storageFault(err, "record stocktake")
		}
		s.checkLowStock(item)
	}
	return len(counts), nil
}

// UpdateMinStock sets the alert threshold of an item.
func (s *Service) UpdateMinStock(ctx context.Context, itemID string, minStock interface{}) (*domain.InventoryItem, error) {
	threshold, err := validate.NonNegativeNumber(minStock, "minimum stock")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.inventory.Get(ctx, itemID)
	if !ok {
		return nil, apperr.NotFound("inventory item %s not found", itemID)
	}
	if err := s.inventory.Patch(ctx, itemID, domain.Row{"minStock": fmt.Sprint(threshold)}); err != nil {
		return nil, storageFault(err, "update min stock")
	}
	item.MinStock = threshold
	s.checkLowStock(item)
	return &item, nil
}

func cellName(col, row int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return fmt.Sprintf("%s%d", name, row)
}

func writeSheetRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		f.SetCellValue(sheet, cellName(i+1, row), v)
	}
}

// InventoryWorkbook writes an xlsx file with the stock list on one sheet
// and the low-stock alerts on another.
func (s *Service) InventoryWorkbook(ctx context.Context, w io.Writer) error {
	view := s.ListInventory(ctx)

	f := excelize.NewFile()
	const stockSheet, alertSheet = "Inventory", "Alerts"
	f.SetSheetName("Sheet1", stockSheet)
	writeSheetRow(f, stockSheet, 1, "ID", "Name", "Quantity", "Unit", "Min stock", "Supplier")
	for i, it := range view.Items {
		writeSheetRow(f, stockSheet, i+2, it.ID, it.Name, it.Quantity, it.Unit, it.MinStock, it.Supplier)
	}

	f.NewSheet(alertSheet)
	writeSheetRow(f, alertSheet, 1, "ID", "Name", "Quantity", "Min stock", "Shortage")
	for i, a := range view.Alerts {
		writeSheetRow(f, alertSheet, i+2, a.ID, a.Name, a.Quantity, a.MinStock, a.Shortage)
	}
	return f.Write(w)
}
