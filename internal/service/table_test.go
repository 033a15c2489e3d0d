package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/delivery-admin/internal/model"
)

func TestBuildRows_SingleItemPending(t *testing.T) {
	o := order("1", time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC), false, item("Beer", 2))
	rows := BuildRows([]model.Order{o}, time.UTC)

	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "Beer", r.Dish)
	assert.Equal(t, 2, r.Quantity)
	assert.True(t, r.First)
	assert.Equal(t, 1, r.RowSpan)
	assert.Equal(t, "10:00:00 AM", r.Time)
	assert.Equal(t, "10/14/2026", r.Date)
	assert.Equal(t, "Pending", r.Status)
	assert.True(t, r.CanShip)
	assert.Equal(t, "N/A", r.Name)
	assert.Equal(t, "N/A", r.ZipCode)
}

func TestBuildRows_RowSpan(t *testing.T) {
	o := order("1", testNow, true, item("Beer", 2), item("Wine", 1), item("Chips", 3))
	o.ShippingInfo = &model.ShippingInfo{Name: "Ann", Address: "1 Main St", Phone: "555"}
	rows := BuildRows([]model.Order{o, order("2", testNow, false, item("Gin", 1))}, time.UTC)

	require.Len(t, rows, 4)
	assert.True(t, rows[0].First)
	assert.Equal(t, 3, rows[0].RowSpan)
	assert.Equal(t, "Ann", rows[0].Name)
	assert.Equal(t, "N/A", rows[0].ZipCode)
	assert.Equal(t, "Shipped", rows[0].Status)
	assert.False(t, rows[0].CanShip)

	for _, r := range rows[1:3] {
		assert.False(t, r.First)
		assert.Zero(t, r.RowSpan)
		assert.Empty(t, r.Name)
		assert.Empty(t, r.Status)
		assert.False(t, r.CanShip)
		assert.Equal(t, "1", r.OrderID)
	}
	assert.Equal(t, "Wine", rows[1].Dish)
	assert.True(t, rows[3].First)
	assert.True(t, rows[3].CanShip)
}

func TestBuildRows_EmptyCartHasNoRows(t *testing.T) {
	assert.Empty(t, BuildRows([]model.Order{order("1", testNow, false)}, time.UTC))
}
