package transaction

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/wastewise/wastewise/internal/auth"
	"github.com/wastewise/wastewise/internal/listing"
)

// Op is a transition a participant can request.
type Op string

const (
	OpPay            Op = "pay"
	OpMarkDelivered  Op = "mark delivered"
	OpConfirmReceipt Op = "confirm receipt"
)

type party int

const (
	partyBuyer party = iota
	partySeller
)

func (p party) String() string {
	if p == partySeller {
		return "Seller"
	}

	return "Buyer"
}

type rule struct {
	actor party
	from  Status
	to    Status
	// listing is the availability the source listing moves to, if any.
	listing listing.Status
}

var rules = map[Op]rule{
	OpPay:            {actor: partyBuyer, from: StatusPendingPayment, to: StatusPaidToEscrow, listing: listing.StatusPending},
	OpMarkDelivered:  {actor: partySeller, from: StatusPaidToEscrow, to: StatusDelivered},
	OpConfirmReceipt: {actor: partyBuyer, from: StatusDelivered, to: StatusCompleted, listing: listing.StatusSold},
}

// AvailabilityChanged is emitted when a transition moves the source listing to
// a new availability.
type AvailabilityChanged struct {
	ListingID uuid.UUID
	Status    listing.Status
}

// Decision is the outcome of a permitted transition.
type Decision struct {
	From   Status
	To     Status
	Events []AvailabilityChanged
}

// Decide checks whether p may apply op to tx in its current status. It has no
// side effects; the caller persists the decision.
func Decide(tx *Transaction, p auth.Principal, op Op) (Decision, error) {
	r, ok := rules[op]
	if !ok {
		return Decision{}, fmt.Errorf("unknown operation %q", op)
	}

	actor := tx.BuyerID
	if r.actor == partySeller {
		actor = tx.SellerID
	}

	if p.UserID != actor {
		return Decision{}, fmt.Errorf("%w: only the %s can %s", ErrForbidden, r.actor, op)
	}

	if tx.Status != r.from {
		return Decision{}, &StateError{Op: op, Expected: r.from, Actual: tx.Status}
	}

	d := Decision{From: r.from, To: r.to}
	if r.listing != "" {
		d.Events = []AvailabilityChanged{{ListingID: tx.ListingID, Status: r.listing}}
	}

	return d, nil
}
