package importer

import (
	"strings"
	"testing"

	"buildsite/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVHeaderSynonyms(t *testing.T) {
	csv := "Item Name,Qty,UOM,Rate\nCement,10,bag,350\n"

	rows, err := ParseCSV(strings.NewReader(csv), true)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Cement", rows[0].ItemName)
	assert.Equal(t, "10", rows[0].Quantity)
	assert.Equal(t, "bag", rows[0].Unit)
	assert.Equal(t, "350", rows[0].Price)
	assert.Equal(t, 2, rows[0].DisplayRow)
}

func TestParseCSVMissingRequiredColumns(t *testing.T) {
	csv := "Product,Unit\nCement,bag\n"

	_, err := ParseCSV(strings.NewReader(csv), false)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "quantity")
}

func TestParseCSVPriceRequiredOnlyForWarehouse(t *testing.T) {
	csv := "item,quantity\nCement,10\n"

	_, err := ParseCSV(strings.NewReader(csv), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price")

	rows, err := ParseCSV(strings.NewReader(csv), false)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParseCSVSkipsBlankRecords(t *testing.T) {
	csv := "item,qty\nCement,10\n,\nSand,5\n"

	rows, err := ParseCSV(strings.NewReader(csv), false)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Display rows track file positions, not the compacted slice.
	assert.Equal(t, 2, rows[0].DisplayRow)
	assert.Equal(t, 4, rows[1].DisplayRow)
}

func TestParseCSVEmptyFile(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""), false)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestParseCSVRaggedRows(t *testing.T) {
	csv := "item,qty,unit,price\nCement,10\n"

	rows, err := ParseCSV(strings.NewReader(csv), false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Unit)
	assert.Equal(t, "", rows[0].Price)
}
