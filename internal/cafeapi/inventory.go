package cafeapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/service"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type stockLinePayload struct {
	ID       string      `json:"id"`
	Quantity interface{} `json:"quantity"`
}

type stockImportPayload struct {
	Supplier string             `json:"supplier"`
	Note     string             `json:"note"`
	Items    []stockLinePayload `json:"items" validate:"required,min=1"`
}

type stockExportPayload struct {
	ItemID   string      `json:"itemId" validate:"required"`
	Quantity interface{} `json:"quantity"`
	Reason   string      `json:"reason"`
}

type stockCountPayload struct {
	ID             string      `json:"id"`
	ActualQuantity interface{} `json:"actualQuantity"`
}

type stocktakePayload struct {
	Adjustments []stockCountPayload `json:"adjustments" validate:"required,min=1"`
}

type minStockPayload struct {
	MinStock interface{} `json:"minStock"`
}

func registerInventoryRoutes() {
	webserver.ApiGET("/inventory", listInventory)
	webserver.ApiGET("/inventory/workbook", inventoryWorkbook)
	webserver.ApiGET("/inventory/movements", listStockMovements)
	webserver.ApiPUT("/inventory/:id/min-stock", updateMinStock)
	webserver.ApiPOST("/inventory-check", inventoryCheck)
	webserver.ApiPOST("/inventory-import", inventoryImport)
	webserver.ApiPOST("/inventory-export", inventoryExport)
}

func listInventory(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	view := svc.ListInventory(c.Request().Context())
	return ok(c, "", echo.Map{"items": view.Items, "alerts": view.Alerts})
}

func inventoryWorkbook(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var buf bytes.Buffer
	if err := svc.InventoryWorkbook(c.Request().Context(), &buf); err != nil {
		return failErr(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "inventory.xlsx"))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

// listStockMovements filters by the optional item query parameter.
func listStockMovements(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	movements := svc.ListStockMovements(c.Request().Context(), c.QueryParam("item"))
	return ok(c, "", echo.Map{"movements": movements})
}

func updateMinStock(c echo.Context) error {
	if _, err := authorize(c, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload minStockPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	item, err := svc.UpdateMinStock(c.Request().Context(), c.Param("id"), payload.MinStock)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "minimum stock updated", echo.Map{"item": item})
}

func inventoryCheck(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff); err != nil {
		return failErr(c, err)
	}
	var payload stocktakePayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	counts := make([]service.StockCount, len(payload.Adjustments))
	for i, a := range payload.Adjustments {
		counts[i] = service.StockCount{ID: a.ID, ActualQuantity: a.ActualQuantity}
	}
	n, err := svc.Stocktake(c.Request().Context(), counts)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "stocktake recorded", echo.Map{"adjustments": n})
}

func inventoryImport(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff); err != nil {
		return failErr(c, err)
	}
	var payload stockImportPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	lines := make([]service.StockLine, len(payload.Items))
	for i, l := range payload.Items {
		lines[i] = service.StockLine{ID: l.ID, Quantity: l.Quantity}
	}
	receipt, err := svc.ImportStock(c.Request().Context(), lines, payload.Supplier, payload.Note)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "stock imported", echo.Map{"importId": receipt.ID, "itemsCount": receipt.ItemsCount})
}

func inventoryExport(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff); err != nil {
		return failErr(c, err)
	}
	var payload stockExportPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	receipt, err := svc.ExportStock(c.Request().Context(), payload.ItemID, payload.Quantity, payload.Reason)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "stock exported", echo.Map{
		"exportId": receipt.ID,
		"quantity": receipt.Quantity,
		"reason":   receipt.Reason,
	})
}
