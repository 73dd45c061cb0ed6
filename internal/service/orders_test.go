package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafedesk/cafedesk/internal/apperr"
	"github.com/cafedesk/cafedesk/internal/domain"
)

func TestOrderTotalAndPopularItems(t *testing.T) {
	f := newFixture(t)
	f.addMenu(t, "1", "Espresso", 3.50, domain.MenuAvailable)

	placed, err := f.svc.CreateCustomerOrder(f.ctx, f.customer, []OrderItem{{MenuItemID: "1", Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, 7.00, placed.Order.Total)
	assert.Equal(t, "ORD-20251130080000", placed.Order.ID)
	require.Len(t, placed.Details, 1)
	assert.Equal(t, placed.Order.ID, placed.Details[0].OrderID)

	stored, ok := f.svc.orders.Get(f.ctx, placed.Order.ID)
	require.True(t, ok)
	assert.Equal(t, 7.00, stored.Total)
	assert.Equal(t, domain.OrderPending, stored.Status)
	assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)

	popular := f.svc.PopularItems(f.ctx)
	require.Len(t, popular, 1)
	assert.Equal(t, "Espresso", popular[0].Name)
	assert.Equal(t, 2, popular[0].TotalSold)
	assert.Equal(t, 7.00, popular[0].Revenue)
}

func TestOrderIDsWithinOneSecond(t *testing.T) {
	f := newFixture(t)
	f.addMenu(t, "1", "Tea", 2, domain.MenuAvailable)

	first, err := f.svc.CreateCustomerOrder(f.ctx, f.customer, []OrderItem{{MenuItemID: "1", Quantity: 1}})
	require.NoError(t, err)
	second, err := f.svc.CreateCustomerOrder(f.ctx, f.customer, []OrderItem{{MenuItemID: "1", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "ORD-20251130080000", first.Order.ID)
	assert.Equal(t, "ORD-20251130080000-2", second.Order.ID)
}

func TestCreateOrderRejectsBadLines(t *testing.T) {
	f := newFixture(t)
	f.addMenu(t, "1", "Espresso", 3.5, domain.MenuAvailable)
	f.addMenu(t, "2", "Seasonal", 5, domain.MenuUnavailable)

	_, err := f.svc.CreateCustomerOrder(f.ctx, f.customer, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.CreateCustomerOrder(f.ctx, f.customer, []OrderItem{{MenuItemID: "1", Quantity: 0}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.CreateCustomerOrder(f.ctx, f.customer, []OrderItem{{MenuItemID: "9", Quantity: 1}})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.CreateCustomerOrder(f.ctx, f.customer, []OrderItem{{MenuItemID: "1", Quantity: 1}, {MenuItemID: "2", Quantity: 1}})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	assert.Empty(t, f.svc.orders.All(f.ctx))
	assert.Empty(t, f.svc.details.All(f.ctx))

	_, err = f.svc.CreateCustomerOrder(f.ctx, f.staff, []OrderItem{{MenuItemID: "1", Quantity: 1}})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = f.svc.CreateCustomerOrder(f.ctx, nil, []OrderItem{{MenuItemID: "1", Quantity: 1}})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestCounterOrderSeatsTable(t *testing.T) {
	f := newFixture(t)
	f.addMenu(t, "1", "Latte", 4, domain.MenuAvailable)
	f.addTable(t, "1", 1, 4, domain.TableAvailable)
	f.addTable(t, "2", 2, 2, domain.TableOccupied)

	placed, err := f.svc.CreateCounterOrder(f.ctx, f.staff, []OrderItem{{MenuItemID: "1", Quantity: 3}}, "0901", "1")
	require.NoError(t, err)
	assert.Equal(t, 12.0, placed.Order.Total)
	assert.Equal(t, "Lan", placed.Order.CustomerName)
	assert.Equal(t, "customer@demo.com", placed.Order.CustomerEmail)
	assert.Equal(t, "1", placed.Order.TableID)
	assert.Equal(t, domain.TableOccupied, f.table(t, "1").Status)

	_, err = f.svc.CreateCounterOrder(f.ctx, f.staff, []OrderItem{{MenuItemID: "1", Quantity: 1}}, "", "2")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = f.svc.CreateCounterOrder(f.ctx, f.staff, []OrderItem{{MenuItemID: "1", Quantity: 1}}, "", "7")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Len(t, f.svc.orders.All(f.ctx), 1)

	walkIn, err := f.svc.CreateCounterOrder(f.ctx, f.staff, []OrderItem{{MenuItemID: "1", Quantity: 1}}, "0999", "")
	require.NoError(t, err)
	assert.Equal(t, "0999", walkIn.Order.CustomerEmail)
	assert.Empty(t, walkIn.Order.CustomerName)

	_, err = f.svc.CreateCounterOrder(f.ctx, f.manager, []OrderItem{{MenuItemID: "1", Quantity: 1}}, "", "")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestListOrdersByRole(t *testing.T) {
	f := newFixture(t)
	f.addMenu(t, "1", "Mocha", 4.5, domain.MenuAvailable)
	other := f.addUser(t, domain.User{ID: "4", Name: "Tuan", Email: "other@demo.com", Role: domain.RoleCustomer})

	_, err := f.svc.CreateCustomerOrder(f.ctx, f.customer, []OrderItem{{MenuItemID: "1", Quantity: 2}})
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	_, err = f.svc.CreateCustomerOrder(f.ctx, other, []OrderItem{{MenuItemID: "1", Quantity: 1}})
	require.NoError(t, err)

	mine, err := f.svc.ListOrders(f.ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, []string{"Mocha x2"}, mine[0].Items)
	assert.Empty(t, mine[0].Customer)

	all, err := f.svc.ListOrders(f.ctx, f.staff)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Tuan", all[1].Customer)
	assert.Equal(t, []string{"Mocha"}, all[1].Items)
	assert.Equal(t, "08:01 AM", all[1].Time)
}

func TestUpdateOrderStatusAndPayment(t *testing.T) {
	f := newFixture(t)
	f.addMenu(t, "1", "Tea", 2.5, domain.MenuAvailable)
	placed, err := f.svc.CreateCustomerOrder(f.ctx, f.customer, []OrderItem{{MenuItemID: "1", Quantity: 2}})
	require.NoError(t, err)
	id := placed.Order.ID

	_, err = f.svc.UpdateOrderStatus(f.ctx, id, "lost")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.UpdateOrderStatus(f.ctx, "ORD-missing", domain.OrderInPreparation)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	order, err := f.svc.UpdateOrderStatus(f.ctx, id, domain.OrderInPreparation)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderInPreparation, order.Status)

	pay, err := f.svc.ProcessPayment(f.ctx, id, domain.PayCash, "4")
	require.NoError(t, err)
	assert.Equal(t, "TXN-"+id+"-20251130080000", pay.TransactionID)
	assert.Equal(t, 4.0, pay.Amount)

	stored, _ := f.svc.orders.Get(f.ctx, id)
	assert.Equal(t, domain.OrderCompleted, stored.Status)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, domain.PayCash, stored.PaymentMethod)
	assert.Equal(t, 5.0, stored.Total, "payment never recomputes the total")

	_, err = f.svc.ProcessPayment(f.ctx, id, "cheque", 5)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.ProcessPayment(f.ctx, "ORD-missing", domain.PayCard, 5)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTransactionIDsShareOneCounter(t *testing.T) {
	f := newFixture(t)
	f.addMenu(t, "1", "Tea", 2.5, domain.MenuAvailable)

	var ids []string
	for i := 0; i < 3; i++ {
		placed, err := f.svc.CreateCustomerOrder(f.ctx, f.customer, []OrderItem{{MenuItemID: "1", Quantity: 1}})
		require.NoError(t, err)
		pay, err := f.svc.ProcessPayment(f.ctx, placed.Order.ID, domain.PayCard, 2.5)
		require.NoError(t, err)
		ids = append(ids, pay.TransactionID)
		assert.True(t, strings.HasPrefix(pay.TransactionID, "TXN-"+placed.Order.ID+"-20251130080000"))
	}
	assert.Equal(t, "TXN-ORD-20251130080000-20251130080000", ids[0])
	assert.Equal(t, "TXN-ORD-20251130080000-2-20251130080000-2", ids[1])
	assert.Equal(t, "TXN-ORD-20251130080000-3-20251130080000-3", ids[2])

	// one counter per prefix, whatever the number of paid orders
	assert.Len(t, f.svc.stamps, 2)
}
