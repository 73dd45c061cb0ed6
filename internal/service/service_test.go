package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/store"
)

type fixture struct {
	svc *Service
	st  store.Store
	now time.Time
	ctx context.Context

	customer *domain.User
	staff    *domain.User
	manager  *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.NewCSVStore(t.TempDir())
	require.NoError(t, err)
	f := &fixture{st: st, ctx: context.Background(), now: time.Date(2025, 11, 30, 8, 0, 0, 0, time.Local)}
	f.svc = New(st, Options{Clock: func() time.Time { return f.now }})

	f.customer = f.addUser(t, domain.User{ID: "1", Name: "Lan", Email: "customer@demo.com", Password: "123456", Phone: "0901", Role: domain.RoleCustomer})
	f.staff = f.addUser(t, domain.User{ID: "2", Name: "Minh", Email: "staff@demo.com", Password: "123456", Phone: "0902", Role: domain.RoleStaff})
	f.manager = f.addUser(t, domain.User{ID: "3", Name: "Hoa", Email: "manager@demo.com", Password: "123456", Phone: "0903", Role: domain.RoleManager})
	return f
}

func (f *fixture) addUser(t *testing.T, u domain.User) *domain.User {
	require.NoError(t, f.svc.users.Insert(f.ctx, u))
	return &u
}

func (f *fixture) addTable(t *testing.T, id string, number, capacity int, status string) {
	require.NoError(t, f.svc.tables.Insert(f.ctx, domain.Table{ID: id, Number: number, Capacity: capacity, Status: status}))
}

func (f *fixture) addMenu(t *testing.T, id, name string, price float64, status string) {
	require.NoError(t, f.svc.menu.Insert(f.ctx, domain.MenuItem{ID: id, Name: name, Category: "Coffee", Price: price, Status: status}))
}

func (f *fixture) addStock(t *testing.T, id, name string, qty, minStock float64) {
	require.NoError(t, f.svc.inventory.Insert(f.ctx, domain.InventoryItem{ID: id, Name: name, Quantity: qty, Unit: "kg", MinStock: minStock}))
}

func (f *fixture) table(t *testing.T, id string) domain.Table {
	tbl, ok := f.svc.tables.Get(f.ctx, id)
	require.True(t, ok)
	return tbl
}
