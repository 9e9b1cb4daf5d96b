package listing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("listing not found")
	ErrForbidden = errors.New("account must be a Seller or Dual Role (Both) to create listings")
	ErrInvalid   = errors.New("invalid listing")
)

// Status is the availability of a listing. Pending and Sold are only ever set
// as a consequence of transaction transitions.
type Status string

const (
	StatusActive  Status = "Active"
	StatusPending Status = "Pending"
	StatusSold    Status = "Sold"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusPending || s == StatusSold
}

// statusOrder is the only direction availability moves in.
var statusOrder = []Status{StatusActive, StatusPending, StatusSold}

// Predecessors returns the statuses a listing may move to s from.
func (s Status) Predecessors() []Status {
	for i, st := range statusOrder {
		if st == s {
			return statusOrder[:i:i]
		}
	}

	return nil
}

// Unit is the unit a listing quantity is measured in.
type Unit string

const (
	UnitTons  Unit = "Tons"
	UnitKgs   Unit = "Kgs"
	UnitUnits Unit = "Units"
)

func (u Unit) Valid() bool {
	return u == UnitTons || u == UnitKgs || u == UnitUnits
}

// Column scales of listing and offer amounts.
const (
	QuantityPlaces = 3
	PricePlaces    = 2

	numericPrecision = 18
)

// FitsNumeric reports whether d can be stored in a NUMERIC(18, places) column
// without rounding or overflow.
func FitsNumeric(d decimal.Decimal, places int32) bool {
	if !d.Round(places).Equal(d) {
		return false
	}

	return d.Abs().LessThan(decimal.New(1, numericPrecision-places))
}

// Listing is one seller's offer of a quantity of a material type.
type Listing struct {
	ID           uuid.UUID
	SellerID     uuid.UUID
	Title        string
	MaterialType string
	Quantity     decimal.Decimal
	Unit         Unit
	PricePerUnit decimal.Decimal
	LocationName string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AskingTotal is the price of the whole listed quantity.
func (l *Listing) AskingTotal() decimal.Decimal {
	return l.Quantity.Mul(l.PricePerUnit)
}
