package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/identity"
	"github.com/cafedesk/cafedesk/internal/validate"
)

// OrderItem is one requested line. Prices always come from the menu.
type OrderItem struct {
	MenuItemID string
	Quantity   interface{}
}

// PlacedOrder is the result of an order creation.
type PlacedOrder struct {
	Order   domain.Order
	Details []domain.OrderDetail
}

// OrderView is an order as listed to a user.
type OrderView struct {
	ID            string   `json:"id"`
	Date          string   `json:"date"`
	Items         []string `json:"items"`
	Total         float64  `json:"total"`
	Status        string   `json:"status"`
	PaymentStatus string   `json:"payment_status"`
	TableID       string   `json:"table_id,omitempty"`
	Customer      string   `json:"customer,omitempty"`
	Time          string   `json:"time,omitempty"`
}

// Payment is the receipt of ProcessPayment.
type Payment struct {
	TransactionID string  `json:"transactionId"`
	OrderID       string  `json:"orderId"`
	PaymentMethod string  `json:"paymentMethod"`
	Amount        float64 `json:"amount"`
}

// priceLines checks every requested item against the menu and builds the
// detail rows, still without an order id.
func (s *Service) priceLines(ctx context.Context, items []OrderItem) ([]domain.OrderDetail, float64, error) {
	if len(items) == 0 {
		return nil, 0, apperr.Validation("order has no items")
	}
	lines := make([]domain.OrderDetail, 0, len(items))
	total := 0.0
	for _, it := range items {
		id, err := validate.Required(it.MenuItemID, "menu item id")
		if err != nil {
			return nil, 0, err
		}
		qty, err := validate.PositiveInt(it.Quantity, "quantity")
		if err != nil {
			return nil, 0, err
		}
		item, ok := s.menu.Get(ctx, id)
		if !ok {
			return nil, 0, apperr.NotFound("menu item %s not found", id)
		}
		if item.Status == domain.MenuUnavailable {
			return nil, 0, apperr.Conflict("%s is not available", item.Name)
		}
		subtotal := round2(item.Price * float64(qty))
		lines = append(lines, domain.OrderDetail{
			MenuItemID: item.ID,
			Quantity:   qty,
			Price:      item.Price,
			Subtotal:   subtotal,
		})
		total += subtotal
	}
	return lines, round2(total), nil
}

// CreateCustomerOrder places an online order for a signed-in customer.
func (s *Service) CreateCustomerOrder(ctx context.Context, u *domain.User, items []OrderItem) (*PlacedOrder, error) {
	if err := identity.Require(u, domain.RoleCustomer); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	order := domain.Order{
		CustomerEmail: u.Email,
		CustomerName:  u.Name,
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentPending,
	}
	return s.placeOrder(ctx, order, items)
}

// CreateCounterOrder places an order taken by staff at the counter,
// optionally seating it at a table.
func (s *Service) CreateCounterOrder(ctx context.Context, u *domain.User, items []OrderItem, customerPhone, tableID string) (*PlacedOrder, error) {
	if err := identity.Require(u, domain.RoleStaff); err != nil {
		return nil, err
	}
	customerPhone = strings.TrimSpace(customerPhone)
	tableID = strings.TrimSpace(tableID)

	s.mu.Lock()
	defer s.mu.Unlock()

	order := domain.Order{
		CustomerEmail: customerPhone,
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentPending,
		TableID:       tableID,
	}
	if customerPhone != "" {
		if c, ok := s.users.GetBy(ctx, "phone", customerPhone); ok {
			order.CustomerEmail = c.Email
			order.CustomerName = c.Name
		}
	}
	if tableID != "" {
		table, ok := s.tables.Get(ctx, tableID)
		if !ok {
			return nil, apperr.NotFound("table %s not found", tableID)
		}
		if table.Status == domain.TableOccupied {
			return nil, apperr.Conflict("table %d is occupied", table.Number)
		}
	}

	placed, err := s.placeOrder(ctx, order, items)
	if err != nil {
		return nil, err
	}
	if tableID != "" {
		if err := s.tables.Patch(ctx, tableID, domain.Row{"status": domain.TableOccupied}); err != nil {
			return nil, storageFault(err, "seat order")
		}
	}
	return placed, nil
}

// placeOrder prices the lines, then appends the order and its details.
// Callers hold mu.
func (s *Service) placeOrder(ctx context.Context, order domain.Order, items []OrderItem) (*PlacedOrder, error) {
	lines, total, err := s.priceLines(ctx, items)
	if err != nil {
		return nil, err
	}
	order.ID = s.nextStampID(domain.PrefixOrder, func(id string) bool { return s.orders.Exists(ctx, "id", id) })
	for i := range lines {
		lines[i].OrderID = order.ID
	}
	order.Total = total
	order.Date = s.today()
	order.CreatedAt = s.timestamp()

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, storageFault(err, "create order")
	}
	for _, line := range lines {
		if err := s.details.Insert(ctx, line); err != nil {
			return nil, storageFault(err, "create order detail")
		}
	}
	zap.L().Info("order placed",
		zap.String("namespace", "service"),
		zap.String("order_id", order.ID),
		zap.Int("lines", len(lines)),
		zap.Float64("total", order.Total))
	s.publish(TopicOrderPlaced, order)
	return &PlacedOrder{Order: order, Details: lines}, nil
}

// ListOrders returns the caller's own orders for a customer and every
// order, with customer and time, for staff and managers.
func (s *Service) ListOrders(ctx context.Context, u *domain.User) ([]OrderView, error) {
	if err := identity.Require(u); err != nil {
		return nil, err
	}
	names := make(map[string]string)
	for _, m := range s.menu.All(ctx) {
		names[m.ID] = m.Name
	}
	lines := make(map[string][]string)
	for _, d := range s.details.All(ctx) {
		name, ok := names[d.MenuItemID]
		if !ok {
			name = "Unknown"
		}
		if d.Quantity > 1 {
			name = fmt.Sprintf("%s x%d", name, d.Quantity)
		}
		lines[d.OrderID] = append(lines[d.OrderID], name)
	}

	staffView := identity.HasRole(u, domain.RoleStaff, domain.RoleManager)
	out := make([]OrderView, 0)
	for _, o := range s.orders.All(ctx) {
		if !staffView && o.CustomerEmail != u.Email {
			continue
		}
		v := OrderView{
			ID:            o.ID,
			Date:          o.Date,
			Items:         lines[o.ID],
			Total:         o.Total,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			TableID:       o.TableID,
		}
		if v.Items == nil {
			v.Items = []string{}
		}
		if staffView {
			v.Customer = o.CustomerName
			if v.Customer == "" {
				v.Customer = o.CustomerEmail
			}
			if v.Customer == "" {
				v.Customer = "Walk-in"
			}
			if t, err := time.ParseInLocation(domain.TimestampLayout, o.CreatedAt, time.Local); err == nil {
				v.Time = t.Format("03:04 PM")
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// GetOrder returns one order with its lines.
func (s *Service) GetOrder(ctx context.Context, id string) (*PlacedOrder, error) {
	order, ok := s.orders.Get(ctx, id)
	if !ok {
		return nil, apperr.NotFound("order %s not found", id)
	}
	lines := s.details.Find(ctx, func(d domain.OrderDetail) bool { return d.OrderID == id })
	return &PlacedOrder{Order: order, Details: lines}, nil
}

// UpdateOrderStatus sets the status of an existing order. Any order
// status may follow any other.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	orderID, err := validate.Required(orderID, "order id")
	if err != nil {
		return nil, err
	}
	if status, err = validate.Required(status, "status"); err != nil {
		return nil, err
	}
	if _, err := validate.OneOf(status, domain.OrderStatuses, "order status"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders.Get(ctx, orderID)
	if !ok {
		return nil, apperr.NotFound("order %s not found", orderID)
	}
	if err := s.orders.Patch(ctx, orderID, domain.Row{"status": status}); err != nil {
		return nil, storageFault(err, "update order status")
	}
	order.Status = status
	return &order, nil
}

// ProcessPayment marks an order paid and completes it. The stored total is
// never recomputed; amount is echoed on the receipt.
func (s *Service) ProcessPayment(ctx context.Context, orderID, method string, amount interface{}) (*Payment, error) {
	orderID, err := validate.Required(orderID, "order id")
	if err != nil {
		return nil, err
	}
	if method, err = validate.Required(method, "payment method"); err != nil {
		return nil, err
	}
	if _, err := validate.OneOf(method, domain.PaymentMethods, "payment method"); err != nil {
		return nil, err
	}
	paid, err := validate.NonNegativeNumber(amount, "amount")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders.Get(ctx, orderID)
	if !ok {
		return nil, apperr.NotFound("order %s not found", orderID)
	}
	updates := domain.Row{
		"payment_method": method,
		"payment_status": domain.PaymentPaid,
		"status":         order.Status,
	}
	if order.Status != domain.OrderCompleted {
		updates["status"] = domain.OrderCompleted
	}
	if err := s.orders.Patch(ctx, orderID, updates); err != nil {
		return nil, storageFault(err, "process payment")
	}
	stampID := s.nextStampID(domain.PrefixTransaction, nil)
	txn := domain.PrefixTransaction + orderID + "-" + strings.TrimPrefix(stampID, domain.PrefixTransaction)
	zap.L().Info("payment processed",
		zap.String("namespace", "service"),
		zap.String("order_id", orderID),
		zap.String("transaction_id", txn),
		zap.String("method", method))
	return &Payment{TransactionID: txn, OrderID: orderID, PaymentMethod: method, Amount: paid}, nil
}
