package importer

import "strings"

// field is one listing attribute a CSV column can feed.
type field int

const (
	fieldTitle field = iota
	fieldMaterial
	fieldQuantity
	fieldUnit
	fieldPrice
	fieldLocation
)

// column describes the header spellings accepted for a field. Headers are
// compared after normalizeHeader.
type column struct {
	field    field
	aliases  []string
	optional bool
}

// columns is the layout the parser looks for. Unit is optional and defaults to
// Tons like a listing created through the API.
var columns = []column{
	{field: fieldTitle, aliases: []string{"title", "name", "listing"}},
	{field: fieldMaterial, aliases: []string{"material", "materialtype", "type", "category"}},
	{field: fieldQuantity, aliases: []string{"quantity", "qty", "amount"}},
	{field: fieldUnit, aliases: []string{"unit", "units", "uom"}, optional: true},
	{field: fieldPrice, aliases: []string{"priceperunit", "unitprice", "price", "pricekes"}},
	{field: fieldLocation, aliases: []string{"location", "locationname", "town", "county"}},
}

func (c column) String() string {
	return c.aliases[0]
}

// normalizeHeader lowercases a header and drops everything but letters, so
// "Price per Unit (KES)" and "price_per_unit" both become "priceperunitkes"
// and "priceperunit".
func normalizeHeader(s string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// colIndex maps a field to its position in a row.
type colIndex map[field]int

// matchHeader resolves every column against a header row. It reports false if
// a required column is missing.
func matchHeader(row []string) (colIndex, bool) {
	byName := make(map[string]int, len(row))

	for i, cell := range row {
		name := normalizeHeader(cell)
		if _, dup := byName[name]; name != "" && !dup {
			byName[name] = i
		}
	}

	cols := make(colIndex, len(columns))

	for _, c := range columns {
		found := false

		for _, alias := range c.aliases {
			if i, ok := byName[alias]; ok {
				cols[c.field] = i
				found = true

				break
			}
		}

		if !found && !c.optional {
			return nil, false
		}
	}

	return cols, true
}
