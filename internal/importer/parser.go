// Package importer turns spreadsheet exports into listing drafts so a seller
// can publish a whole stock sheet at once.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wastewise/wastewise/internal/encoding"
	"github.com/wastewise/wastewise/internal/listing"
)

// MaxRows caps the number of listings a single file may carry.
const MaxRows = 500

var ErrMalformed = errors.New("malformed listings file")

// Parser reads CSV listing sheets. The header row may appear below a preamble
// and the delimiter may be a comma or a semicolon.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse returns one CreateParams per non-blank data row. Validation of the
// values themselves is left to listing.Service.
func (p *Parser) Parse(r io.Reader) ([]listing.CreateParams, error) {
	utf8r, charset, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	body, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading file: %w", ErrMalformed, err)
	}

	comma := detectDelimiter(body)

	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	cols, headerIdx, ok := findHeader(rows)
	if !ok {
		return nil, fmt.Errorf("%w: no header row with columns %s", ErrMalformed, requiredColumns())
	}

	slog.Debug("parsing listings file", "charset", charset, "delimiter", string(comma), "header_row", headerIdx+1)

	return parseRows(cols, rows[headerIdx+1:], headerIdx+1, comma)
}

// detectDelimiter picks ';' when the first non-blank line has more semicolons
// than commas.
func detectDelimiter(body []byte) rune {
	for line := range bytes.SplitSeq(body, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
			return ';'
		}

		return ','
	}

	return ','
}

func findHeader(rows [][]string) (colIndex, int, bool) {
	for i, row := range rows {
		if cols, ok := matchHeader(row); ok {
			return cols, i, true
		}
	}

	return nil, 0, false
}

func requiredColumns() string {
	var names []string

	for _, c := range columns {
		if !c.optional {
			names = append(names, c.String())
		}
	}

	return strings.Join(names, ", ")
}

// parseRows converts data rows. headerRow is the 0-based index of the header
// in the file and is used to report 1-based row numbers.
func parseRows(cols colIndex, rows [][]string, headerRow int, comma rune) ([]listing.CreateParams, error) {
	var out []listing.CreateParams

	for i, row := range rows {
		rowNum := headerRow + i + 2

		if blank(row) {
			continue
		}

		if len(out) == MaxRows {
			return nil, fmt.Errorf("%w: more than %d listings", ErrMalformed, MaxRows)
		}

		quantity, err := parseNumber(cell(row, cols, fieldQuantity), comma)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: quantity: %w", ErrMalformed, rowNum, err)
		}

		price, err := parseNumber(cell(row, cols, fieldPrice), comma)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: price per unit: %w", ErrMalformed, rowNum, err)
		}

		unit, err := parseUnit(cell(row, cols, fieldUnit))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformed, rowNum, err)
		}

		out = append(out, listing.CreateParams{
			Title:        cell(row, cols, fieldTitle),
			MaterialType: cell(row, cols, fieldMaterial),
			Quantity:     quantity,
			Unit:         unit,
			PricePerUnit: price,
			LocationName: cell(row, cols, fieldLocation),
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no listings found below the header", ErrMalformed)
	}

	return out, nil
}

func cell(row []string, cols colIndex, f field) string {
	i, ok := cols[f]
	if !ok || i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

// parseNumber accepts "1,250.50", "KES 1,250.50" and, in semicolon files,
// "1.250,50".
func parseNumber(s string, comma rune) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "KES"), "Ksh")
	clean = strings.ReplaceAll(strings.TrimSpace(clean), " ", "")

	if clean == "" {
		return decimal.Zero, errors.New("value is required")
	}

	if comma == ';' && strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}

	return d, nil
}

// parseUnit maps the common spellings onto listing units. An empty cell yields
// an empty unit so the service default applies.
func parseUnit(s string) (listing.Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "tons", "ton", "tonnes", "tonne", "t":
		return listing.UnitTons, nil
	case "kgs", "kg", "kilograms", "kilos":
		return listing.UnitKgs, nil
	case "units", "unit", "pcs", "pieces":
		return listing.UnitUnits, nil
	}

	return "", fmt.Errorf("unknown unit %q", s)
}
