package cafeapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/identity"
	"github.com/cafedesk/cafedesk/internal/service"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

type orderLinePayload struct {
	ID       string      `json:"id"`
	Quantity interface{} `json:"quantity"`
}

type customerOrderPayload struct {
	Items []orderLinePayload `json:"items" validate:"required,min=1"`
}

// counterOrderPayload accepts tableId as a string or a number.
type counterOrderPayload struct {
	Items         []orderLinePayload `json:"items" validate:"required,min=1"`
	CustomerPhone string             `json:"customerPhone"`
	TableID       interface{}        `json:"tableId"`
}

type orderStatusPayload struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  string `json:"status" validate:"required"`
}

type paymentPayload struct {
	OrderID       string      `json:"orderId"`
	PaymentMethod string      `json:"paymentMethod"`
	Amount        interface{} `json:"amount"`
}

func registerOrderRoutes() {
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPOST("/customer/create-order", createCustomerOrder)
	webserver.ApiPOST("/create-order", createCounterOrder)
	webserver.ApiPOST("/update-order-status", updateOrderStatus)
	webserver.ApiPOST("/process-payment", processPayment)
}

func orderItems(lines []orderLinePayload) []service.OrderItem {
	items := make([]service.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = service.OrderItem{MenuItemID: l.ID, Quantity: l.Quantity}
	}
	return items
}

func placedOrderFields(placed *service.PlacedOrder) echo.Map {
	return echo.Map{
		"orderId": placed.Order.ID,
		"total":   placed.Order.Total,
		"status":  placed.Order.Status,
		"tableId": placed.Order.TableID,
		"details": placed.Details,
	}
}

func listOrders(c echo.Context) error {
	u := currentUser(c)
	orders, err := svc.ListOrders(c.Request().Context(), u)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "", echo.Map{"orders": orders})
}

func getOrder(c echo.Context) error {
	u, err := authorize(c)
	if err != nil {
		return failErr(c, err)
	}
	placed, err := svc.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failErr(c, err)
	}
	if !identity.HasRole(u, domain.RoleStaff, domain.RoleManager) && placed.Order.CustomerEmail != u.Email {
		return failErr(c, apperr.Forbidden("order belongs to another customer"))
	}
	return ok(c, "", echo.Map{"order": placed.Order, "details": placed.Details})
}

func createCustomerOrder(c echo.Context) error {
	u, err := authorize(c, domain.RoleCustomer)
	if err != nil {
		return failErr(c, err)
	}
	var payload customerOrderPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	placed, err := svc.CreateCustomerOrder(c.Request().Context(), u, orderItems(payload.Items))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "order placed", placedOrderFields(placed))
}

func createCounterOrder(c echo.Context) error {
	u, err := authorize(c, domain.RoleStaff)
	if err != nil {
		return failErr(c, err)
	}
	var payload counterOrderPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	placed, err := svc.CreateCounterOrder(c.Request().Context(), u, orderItems(payload.Items),
		payload.CustomerPhone, cast.ToString(payload.TableID))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "order created", placedOrderFields(placed))
}

func updateOrderStatus(c echo.Context) error {
	if _, err := authorize(c, domain.RoleStaff, domain.RoleManager); err != nil {
		return failErr(c, err)
	}
	var payload orderStatusPayload
	if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	order, err := svc.UpdateOrderStatus(c.Request().Context(), payload.OrderID, payload.Status)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "order status updated", echo.Map{"orderId": order.ID, "status": order.Status})
}

// processPayment accepts either a form post or a JSON body.
func processPayment(c echo.Context) error {
	if _, err := authorize(c); err != nil {
		return failErr(c, err)
	}
	var payload paymentPayload
	if isFormRequest(c) {
		payload = paymentPayload{
			OrderID:       c.FormValue("orderId"),
			PaymentMethod: c.FormValue("paymentMethod"),
			Amount:        c.FormValue("amount"),
		}
	} else if err := bindPayload(c, &payload); err != nil {
		return failErr(c, err)
	}
	receipt, err := svc.ProcessPayment(c.Request().Context(), payload.OrderID, payload.PaymentMethod, payload.Amount)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, "payment successful", echo.Map{
		"transactionId": receipt.TransactionID,
		"orderId":       receipt.OrderID,
		"paymentMethod": receipt.PaymentMethod,
		"amount":        receipt.Amount,
	})
}

func isFormRequest(c echo.Context) bool {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ctype, echo.MIMEApplicationForm) || strings.HasPrefix(ctype, echo.MIMEMultipartForm)
}
