package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wastewise/wastewise/internal/listing"
)

// Status represents the lifecycle state of a transaction.
type Status string

const (
	StatusPendingPayment Status = "PENDING_PAYMENT"
	StatusPaidToEscrow   Status = "PAID_TO_ESCROW"
	StatusDelivered      Status = "DELIVERED"
	StatusCompleted      Status = "COMPLETED"
	// StatusCanceled is declared for the schema; no operation sets it yet.
	StatusCanceled Status = "CANCELED"
)

// DefaultCommissionRate is the platform fee applied when none is configured.
var DefaultCommissionRate = decimal.RequireFromString("0.08")

var (
	ErrNotFound           = errors.New("transaction not found")
	ErrForbidden          = errors.New("forbidden")
	ErrSelfOffer          = errors.New("cannot make an offer on your own listing")
	ErrDuplicateOffer     = errors.New("an active offer already exists for this listing")
	ErrListingUnavailable = errors.New("listing not found or is no longer active")
	ErrInvalidOffer       = errors.New("invalid offer")
	ErrInvalidState       = errors.New("invalid state for this operation")

	// ErrStatusChanged is returned by a Repository when a conditional status
	// update finds the record no longer in the expected status.
	ErrStatusChanged = errors.New("transaction status changed concurrently")
)

// StateError reports an operation invoked against a transaction that is not
// in the status the operation requires.
type StateError struct {
	Op       Op
	Expected Status
	Actual   Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s: status must be %s, transaction is %s", e.Op, e.Expected, e.Actual)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// Transaction is a single negotiated deal between one buyer and one seller
// over one listing.
type Transaction struct {
	ID             uuid.UUID
	ListingID      uuid.UUID
	SellerID       uuid.UUID
	BuyerID        uuid.UUID
	AgreedPrice    decimal.Decimal // absolute total, not per unit
	AgreedQuantity decimal.Decimal
	CommissionRate decimal.Decimal
	Status         Status
	Listing        *ListingSummary // Loaded via JOIN
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ListingSummary holds the listing fields shown next to a transaction.
type ListingSummary struct {
	Title        string
	MaterialType string
	Unit         listing.Unit
}

// Commission is the platform fee on the agreed price. Display only.
func (t *Transaction) Commission() decimal.Decimal {
	return t.AgreedPrice.Mul(t.CommissionRate).Round(2)
}

// SellerPayout is what the seller receives once the deal completes.
func (t *Transaction) SellerPayout() decimal.Decimal {
	return t.AgreedPrice.Sub(t.Commission())
}

// IsParticipant reports whether the user is the buyer or the seller.
func (t *Transaction) IsParticipant(userID uuid.UUID) bool {
	return t.BuyerID == userID || t.SellerID == userID
}
