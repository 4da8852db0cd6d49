// Package importer turns uploaded CSV/XLSX supply sheets into inventory
// mutations. Parsing and reconciliation are pure; persistence belongs to the
// calling service.
package importer

import (
	"math"
	"strconv"
	"strings"

	"buildsite/internal/normalize"

	"github.com/shopspring/decimal"
)

// MaxRows is the hard cap on data rows per import. The caller must reject
// larger files before reconciling.
const MaxRows = 1000

// RawRow is one data row as read from the uploaded file, values untouched.
// DisplayRow is the 1-based row number shown to the user (header included).
type RawRow struct {
	ItemName   string
	Quantity   string
	Unit       string
	Price      string
	DisplayRow int
}

// ExistingItem is a snapshot of one inventory line the import is matched
// against. Key must already be normalized.
type ExistingItem struct {
	Key         string
	DisplayName string
	Quantity    float64
}

// Options controls variant-specific behaviour. The warehouse import requires
// a price on every row; the site import treats price as optional.
type Options struct {
	RequirePrice bool
}

// RowError records why one row was skipped.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// NewItem is a deduplicated group with no existing inventory match.
type NewItem struct {
	ItemName string
	Key      string
	Quantity float64
	Unit     string
	Price    decimal.Decimal
	HasPrice bool
}

// ItemUpdate is a deduplicated group that matched an existing line. Renamed
// is set when the incoming spelling differs from the stored display name.
type ItemUpdate struct {
	Key         string
	ItemName    string
	AddQuantity float64
	Unit        string
	Price       decimal.Decimal
	HasPrice    bool
	Renamed     bool
}

// Result is the outcome of reconciling one import file.
type Result struct {
	ToCreate         []NewItem
	ToUpdate         []ItemUpdate
	Errors           []RowError
	DuplicatesMerged int
}

type group struct {
	itemName string
	key      string
	quantity float64
	unit     string
	price    decimal.Decimal
	hasPrice bool
	rows     int
}

// Reconcile validates rows, merges intra-file duplicates by normalized name
// and classifies each resulting group as CREATE or UPDATE against the
// existing inventory snapshot. It performs no I/O and is deterministic.
//
// Validation runs per row in fixed order; the first failure wins and the row
// is recorded into Errors under its display row number. Within a duplicate
// group quantities are summed and the highest quoted price is kept; the first
// row's original spelling becomes the display name.
func Reconcile(existing []ExistingItem, rows []RawRow, opts Options) Result {
	var result Result

	groups := make(map[string]*group)
	var order []string

	for _, row := range rows {
		name := strings.TrimSpace(row.ItemName)
		if name == "" {
			result.Errors = append(result.Errors, RowError{Row: row.DisplayRow, Message: "Missing item name"})
			continue
		}

		qty, ok := parseQuantity(row.Quantity)
		if !ok {
			result.Errors = append(result.Errors, RowError{Row: row.DisplayRow, Message: "Missing/invalid quantity"})
			continue
		}

		unit := strings.TrimSpace(row.Unit)
		if unit == "" {
			if row.Unit != "" {
				result.Errors = append(result.Errors, RowError{Row: row.DisplayRow, Message: "Empty unit"})
				continue
			}
			unit = "pcs"
		}

		price, hasPrice, ok := parsePrice(row.Price, opts.RequirePrice)
		if !ok {
			result.Errors = append(result.Errors, RowError{Row: row.DisplayRow, Message: "Missing/invalid price"})
			continue
		}

		key := normalize.Key(name)
		g, seen := groups[key]
		if !seen {
			groups[key] = &group{itemName: name, key: key, quantity: qty, unit: unit, price: price, hasPrice: hasPrice, rows: 1}
			order = append(order, key)
			continue
		}

		// Duplicate spelling of an item already in this file: sum the
		// quantities, keep the higher quoted price, keep the first spelling.
		g.quantity += qty
		g.rows++
		if hasPrice && (!g.hasPrice || price.GreaterThan(g.price)) {
			g.price = price
			g.hasPrice = true
		}
		result.DuplicatesMerged++
	}

	existingByKey := make(map[string]ExistingItem, len(existing))
	for _, item := range existing {
		if _, ok := existingByKey[item.Key]; !ok {
			existingByKey[item.Key] = item
		}
	}

	for _, key := range order {
		g := groups[key]
		if match, ok := existingByKey[key]; ok {
			result.ToUpdate = append(result.ToUpdate, ItemUpdate{
				Key:         key,
				ItemName:    g.itemName,
				AddQuantity: g.quantity,
				Unit:        g.unit,
				Price:       g.price,
				HasPrice:    g.hasPrice,
				Renamed:     match.DisplayName != g.itemName,
			})
		} else {
			result.ToCreate = append(result.ToCreate, NewItem{
				ItemName: g.itemName,
				Key:      key,
				Quantity: g.quantity,
				Unit:     g.unit,
				Price:    g.price,
				HasPrice: g.hasPrice,
			})
		}
	}

	return result
}

func parseQuantity(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, false
	}
	qty, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return 0, false
	}
	return qty, true
}

func parsePrice(raw string, required bool) (decimal.Decimal, bool, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		if required {
			return decimal.Zero, false, false
		}
		return decimal.Zero, false, true
	}
	price, err := decimal.NewFromString(s)
	if err != nil || price.IsNegative() {
		if required {
			return decimal.Zero, false, false
		}
		// Site imports tolerate a malformed price cell; the item simply
		// stays unpriced.
		return decimal.Zero, false, true
	}
	return price, true, true
}
