package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFieldOrder(t *testing.T) {
	assert.Equal(t, []string{"id", "name", "email", "password", "phone", "role"}, Users.Fields)
	assert.Equal(t, []string{"id", "number", "capacity", "status"}, Tables.Fields)
	assert.Equal(t, []string{"order_id", "menu_item_id", "quantity", "price", "subtotal"}, OrderDetails.Fields)
	assert.Equal(t, []string{
		"id", "customer_email", "customer_name", "date", "total", "status",
		"payment_method", "payment_status", "table_id", "created_at",
	}, Orders.Fields)
	assert.Equal(t, []string{"id", "staff_email", "date", "clockIn", "clockOut", "hours", "status"}, Attendances.Fields)
	assert.Equal(t, "date", Revenues.Key)
}

func TestSchemaOf(t *testing.T) {
	for _, s := range Collections {
		got, ok := SchemaOf(s.Name)
		require.True(t, ok, s.Name)
		assert.Equal(t, s.Fields, got.Fields)
	}
	_, ok := SchemaOf("nope")
	assert.False(t, ok)
}

func TestEncodeDecode(t *testing.T) {
	item := MenuItem{ID: "1", Name: "Espresso", Category: "Hot Coffee", Price: 3.5, Status: MenuAvailable}
	row := Encode(item)
	assert.Equal(t, "3.5", row["price"])
	assert.Equal(t, "", row["image"])
	assert.Len(t, row, len(MenuItems.Fields))

	var back MenuItem
	require.NoError(t, Decode(row, &back))
	assert.Equal(t, item, back)
}

func TestDecodeEmptyNumbers(t *testing.T) {
	var a Attendance
	require.NoError(t, Decode(Row{"id": "1", "hours": ""}, &a))
	assert.Equal(t, 0.0, a.Hours)
	assert.True(t, a.Open())

	var tbl Table
	assert.Error(t, Decode(Row{"capacity": "four"}, &tbl))
}

func TestRowProject(t *testing.T) {
	row := Row{"id": "1", "extra": "x"}
	p := row.Project(Tables.Fields)
	assert.Equal(t, Row{"id": "1", "number": "", "capacity": "", "status": ""}, p)
	assert.Equal(t, []string{"1", "", "", ""}, p.Values(Tables.Fields))
}
