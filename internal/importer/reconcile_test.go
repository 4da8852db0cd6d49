package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(display int, name, qty, unit, price string) RawRow {
	return RawRow{ItemName: name, Quantity: qty, Unit: unit, Price: price, DisplayRow: display}
}

func TestReconcileMergesSpellingVariants(t *testing.T) {
	rows := []RawRow{
		row(2, "Apple", "3", "kg", "10"),
		row(3, "apples", "5", "kg", "12"),
	}

	result := Reconcile(nil, rows, Options{})

	require.Len(t, result.ToCreate, 1)
	require.Empty(t, result.ToUpdate)
	require.Empty(t, result.Errors)

	created := result.ToCreate[0]
	assert.Equal(t, "Apple", created.ItemName, "first spelling wins")
	assert.Equal(t, "apple", created.Key)
	assert.Equal(t, 8.0, created.Quantity)
	assert.True(t, created.Price.Equal(decimal.NewFromInt(12)), "highest price wins")
	assert.Equal(t, 1, result.DuplicatesMerged)
}

func TestReconcileClassifiesAgainstExisting(t *testing.T) {
	existing := []ExistingItem{
		{Key: "cement bag", DisplayName: "Cement Bags", Quantity: 40},
	}
	rows := []RawRow{
		row(2, "cement-bag", "10", "bag", ""),
		row(3, "Steel Rods", "25", "pcs", ""),
	}

	result := Reconcile(existing, rows, Options{})

	require.Len(t, result.ToUpdate, 1)
	require.Len(t, result.ToCreate, 1)

	update := result.ToUpdate[0]
	assert.Equal(t, "cement bag", update.Key)
	assert.Equal(t, 10.0, update.AddQuantity)
	assert.True(t, update.Renamed, "incoming spelling differs from stored display name")

	assert.Equal(t, "Steel Rods", result.ToCreate[0].ItemName)
}

func TestReconcileQuantityConservation(t *testing.T) {
	rows := []RawRow{
		row(2, "Sand", "3", "ton", ""),
		row(3, "sand", "2.5", "ton", ""),
		row(4, "Bricks", "500", "pcs", ""),
		row(5, "Gravel", "x", "ton", ""), // invalid, skipped
	}

	result := Reconcile(nil, rows, Options{})

	var accepted float64
	for _, item := range result.ToCreate {
		accepted += item.Quantity
	}
	for _, item := range result.ToUpdate {
		accepted += item.AddQuantity
	}
	assert.Equal(t, 505.5, accepted, "accepted quantities must sum to the valid input")
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 5, result.Errors[0].Row)
}

func TestReconcileValidationOrderAndRows(t *testing.T) {
	rows := []RawRow{
		row(2, "", "5", "kg", "1"),          // no name
		row(3, "Nails", "", "kg", "1"),      // no quantity
		row(4, "Nails", "-2", "kg", "1"),    // non-positive quantity
		row(5, "Nails", "5", "  ", "1"),     // unit present but blank
		row(6, "Screws", "5", "box", "abc"), // bad price, required
	}

	result := Reconcile(nil, rows, Options{RequirePrice: true})

	require.Len(t, result.Errors, 5)
	assert.Equal(t, RowError{Row: 2, Message: "Missing item name"}, result.Errors[0])
	assert.Equal(t, RowError{Row: 3, Message: "Missing/invalid quantity"}, result.Errors[1])
	assert.Equal(t, RowError{Row: 4, Message: "Missing/invalid quantity"}, result.Errors[2])
	assert.Equal(t, RowError{Row: 5, Message: "Empty unit"}, result.Errors[3])
	assert.Equal(t, RowError{Row: 6, Message: "Missing/invalid price"}, result.Errors[4])
	assert.Empty(t, result.ToCreate)
}

func TestReconcileOptionalPriceTolerated(t *testing.T) {
	rows := []RawRow{
		row(2, "Pipes", "5", "pcs", "abc"), // malformed price, site variant
		row(3, "Wire", "10", "m", ""),
	}

	result := Reconcile(nil, rows, Options{RequirePrice: false})

	require.Empty(t, result.Errors)
	require.Len(t, result.ToCreate, 2)
	assert.False(t, result.ToCreate[0].HasPrice)
	assert.False(t, result.ToCreate[1].HasPrice)
}

func TestReconcileDefaultsMissingUnit(t *testing.T) {
	rows := []RawRow{row(2, "Helmets", "4", "", "")}

	result := Reconcile(nil, rows, Options{})

	require.Len(t, result.ToCreate, 1)
	assert.Equal(t, "pcs", result.ToCreate[0].Unit)
}

func TestReconcileQuantityWithThousandsSeparator(t *testing.T) {
	rows := []RawRow{row(2, "Bricks", "1,500", "pcs", "")}

	result := Reconcile(nil, rows, Options{})

	require.Len(t, result.ToCreate, 1)
	assert.Equal(t, 1500.0, result.ToCreate[0].Quantity)
}

func TestReconcilePreservesFirstSeenOrder(t *testing.T) {
	rows := []RawRow{
		row(2, "Cement", "1", "bag", ""),
		row(3, "Sand", "1", "ton", ""),
		row(4, "cement", "1", "bag", ""),
		row(5, "Bricks", "1", "pcs", ""),
	}

	result := Reconcile(nil, rows, Options{})

	require.Len(t, result.ToCreate, 3)
	assert.Equal(t, "Cement", result.ToCreate[0].ItemName)
	assert.Equal(t, "Sand", result.ToCreate[1].ItemName)
	assert.Equal(t, "Bricks", result.ToCreate[2].ItemName)
}
