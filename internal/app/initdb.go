package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/store"
)

// checkDemoData seeds each empty collection with the demo set. Collections
// that already hold rows are left alone.
func (a *Application) checkDemoData(ctx context.Context) {
	a.checkDemoUsers(ctx)
	checkCollection(ctx, a.store, domain.MenuItems, []domain.MenuItem{
		{ID: "1", Name: "Espresso", Category: "Coffee", Price: 35000, Description: "Double shot", Status: domain.MenuAvailable},
		{ID: "2", Name: "Cappuccino", Category: "Coffee", Price: 45000, Description: "Espresso with steamed milk", Status: domain.MenuAvailable},
		{ID: "3", Name: "Peach Tea", Category: "Tea", Price: 40000, Description: "Iced peach tea", Status: domain.MenuAvailable},
		{ID: "4", Name: "Croissant", Category: "Bakery", Price: 30000, Description: "Butter croissant", Status: domain.MenuAvailable},
	})
	checkCollection(ctx, a.store, domain.Tables, []domain.Table{
		{ID: "1", Number: 1, Capacity: 2, Status: domain.TableAvailable},
		{ID: "2", Number: 2, Capacity: 4, Status: domain.TableAvailable},
		{ID: "3", Number: 3, Capacity: 4, Status: domain.TableAvailable},
		{ID: "4", Number: 4, Capacity: 6, Status: domain.TableAvailable},
	})
	checkCollection(ctx, a.store, domain.Inventory, []domain.InventoryItem{
		{ID: "1", Name: "Coffee beans", Quantity: 20, Unit: "kg", MinStock: 5, Supplier: "Highland Roasters"},
		{ID: "2", Name: "Fresh milk", Quantity: 30, Unit: "l", MinStock: 10, Supplier: "Dalat Dairy"},
		{ID: "3", Name: "Sugar", Quantity: 15, Unit: "kg", MinStock: 3, Supplier: "Bien Hoa"},
	})
}

func (a *Application) checkDemoUsers(ctx context.Context) {
	users := store.NewRepo[domain.User](a.store, domain.Users)
	demo := []domain.User{
		{Name: "Demo Customer", Email: "customer@demo.com", Phone: "0900000001", Role: domain.RoleCustomer},
		{Name: "Demo Staff", Email: "staff@demo.com", Phone: "0900000002", Role: domain.RoleStaff},
		{Name: "Demo Manager", Email: "manager@demo.com", Phone: "0900000003", Role: domain.RoleManager},
	}
	for _, u := range demo {
		if users.Exists(ctx, "email", u.Email) {
			continue
		}
		u.ID = users.NextID(ctx)
		u.Password = domain.DefaultPassword
		if err := users.Insert(ctx, u); err != nil {
			zap.L().Error("failed to create demo account", zap.String("email", u.Email), zap.Error(err))
			continue
		}
		zap.L().Info("initialized demo account", zap.String("email", u.Email), zap.String("role", u.Role))
	}

	staff := store.NewRepo[domain.Staff](a.store, domain.StaffMembers)
	if !staff.Exists(ctx, "email", "staff@demo.com") {
		member := domain.Staff{
			ID:     staff.NextID(ctx),
			Name:   "Demo Staff",
			Role:   "Barista",
			Email:  "staff@demo.com",
			Phone:  "0900000002",
			Status: domain.StaffActive,
		}
		if err := staff.Insert(ctx, member); err != nil {
			zap.L().Error("failed to create demo staff record", zap.Error(err))
		}
	}
}

func checkCollection[T any](ctx context.Context, st store.Store, schema domain.Schema, rows []T) {
	repo := store.NewRepo[T](st, schema)
	if len(st.Load(ctx, schema)) > 0 {
		return
	}
	if err := repo.Replace(ctx, rows); err != nil {
		zap.L().Error("failed to seed collection", zap.String("collection", schema.Name), zap.Error(err))
		return
	}
	zap.L().Info("initialized collection", zap.String("collection", schema.Name), zap.Int("rows", len(rows)))
}

// InitDb empties every collection, then reseeds the demo data when enabled.
func (a *Application) InitDb() error {
	ctx := context.Background()
	for _, schema := range domain.Collections {
		if err := a.store.Save(ctx, schema, nil); err != nil {
			return err
		}
	}
	if a.appConfig.SeedDemo {
		a.checkDemoData(ctx)
	}
	return nil
}
