package domain

import (
	"fmt"
	"reflect"
	"strings"
)

// Collection names
const (
	CollUsers          = "users"
	CollMenuItems      = "menu_items"
	CollOrders         = "orders"
	CollOrderDetails   = "order_details"
	CollTables         = "tables"
	CollInventory      = "inventory"
	CollPromotions     = "promotions"
	CollFeedback       = "feedback"
	CollStaff          = "staff"
	CollCustomers      = "customers"
	CollRevenue        = "revenue"
	CollAttendance     = "attendance"
	CollReservations   = "reservations"
	CollStockMovements = "stock_movements"
)

// Schema describes one collection: its name, default key field and the
// ordered column list used on every write.
type Schema struct {
	Name   string
	Key    string
	Fields []string
}

// Has reports whether field is a declared column.
func (s Schema) Has(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

var (
	Users          = newSchema(CollUsers, "id", User{})
	MenuItems      = newSchema(CollMenuItems, "id", MenuItem{})
	Orders         = newSchema(CollOrders, "id", Order{})
	OrderDetails   = newSchema(CollOrderDetails, "order_id", OrderDetail{})
	Tables         = newSchema(CollTables, "id", Table{})
	Inventory      = newSchema(CollInventory, "id", InventoryItem{})
	Promotions     = newSchema(CollPromotions, "id", Promotion{})
	Feedbacks      = newSchema(CollFeedback, "id", Feedback{})
	StaffMembers   = newSchema(CollStaff, "id", Staff{})
	Customers      = newSchema(CollCustomers, "id", Customer{})
	Revenues       = newSchema(CollRevenue, "date", Revenue{})
	Attendances    = newSchema(CollAttendance, "id", Attendance{})
	Reservations   = newSchema(CollReservations, "id", Reservation{})
	StockMovements = newSchema(CollStockMovements, "id", StockMovement{})
)

// Collections lists every registered schema.
var Collections = []Schema{
	Users,
	MenuItems,
	Orders,
	OrderDetails,
	Tables,
	Inventory,
	Promotions,
	Feedbacks,
	StaffMembers,
	Customers,
	Revenues,
	Attendances,
	Reservations,
	StockMovements,
}

// SchemaOf looks up a registered collection by name.
func SchemaOf(name string) (Schema, bool) {
	for _, s := range Collections {
		if s.Name == name {
			return s, true
		}
	}
	return Schema{}, false
}

func newSchema(name, key string, model interface{}) Schema {
	fields := fieldsOf(reflect.TypeOf(model))
	s := Schema{Name: name, Key: key, Fields: fields}
	if !s.Has(key) {
		panic(fmt.Sprintf("domain: key %q is not a field of %s", key, name))
	}
	return s
}

func fieldsOf(t reflect.Type) []string {
	fields := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("csv")
		name := strings.Split(tag, ",")[0]
		if name == "" || name == "-" {
			continue
		}
		fields = append(fields, name)
	}
	return fields
}
