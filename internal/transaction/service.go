package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wastewise/wastewise/internal/auth"
	"github.com/wastewise/wastewise/internal/listing"
)

// DashboardLimit caps how many transactions a participant sees at once.
const DashboardLimit = 50

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	HasOpenOffer(ctx context.Context, listingID, buyerID uuid.UUID) (bool, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	// CompareAndSetStatus moves the transaction from one status to another in
	// a single conditional write. It returns ErrStatusChanged when the record
	// is not in the from status, and the new updated_at on success.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, from, to Status) (time.Time, error)
}

// Listings is the part of the listing store the state machine depends on.
// SetStatus is only called to apply AvailabilityChanged events.
type Listings interface {
	Get(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
	SetStatus(ctx context.Context, id uuid.UUID, status listing.Status) error
}

// Transactor runs fn in one database transaction. Store calls made with the
// context passed to fn join it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// noTx runs fn directly. It is the default when no Transactor is configured.
type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	repo     Repository
	listings Listings
	txr      Transactor

	commissionRate      decimal.Decimal
	strictOfferQuantity bool
}

type Option func(*Service)

// WithCommissionRate overrides DefaultCommissionRate for new offers.
func WithCommissionRate(rate decimal.Decimal) Option {
	return func(s *Service) { s.commissionRate = rate }
}

// WithTransactor makes a status change and the listing availability it emits
// commit or roll back together.
func WithTransactor(t Transactor) Option {
	return func(s *Service) { s.txr = t }
}

// WithStrictOfferQuantity rejects offers for more than the listed quantity
// instead of only logging them.
func WithStrictOfferQuantity(strict bool) Option {
	return func(s *Service) { s.strictOfferQuantity = strict }
}

func NewService(repo Repository, listings Listings, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		listings:       listings,
		txr:            noTx{},
		commissionRate: DefaultCommissionRate,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type OfferParams struct {
	ListingID      uuid.UUID
	AgreedPrice    decimal.Decimal
	AgreedQuantity decimal.Decimal
}

type ListFilter struct {
	ParticipantID *uuid.UUID
	Status        *Status
	Limit         int
}

// Result is the outcome of a successful transition.
type Result struct {
	Transaction *Transaction
	Events      []AvailabilityChanged
}

// CreateOffer opens a PENDING_PAYMENT transaction for the principal against
// an Active listing.
func (s *Service) CreateOffer(ctx context.Context, p auth.Principal, params OfferParams) (*Transaction, error) {
	if !p.Role.CanBuy() {
		return nil, fmt.Errorf("%w: account must be a Buyer or Dual Role (Both) to submit an offer", ErrForbidden)
	}

	if !params.AgreedPrice.IsPositive() || !params.AgreedQuantity.IsPositive() {
		return nil, fmt.Errorf("%w: agreed price and quantity must be positive", ErrInvalidOffer)
	}

	if !listing.FitsNumeric(params.AgreedPrice, listing.PricePlaces) {
		return nil, fmt.Errorf("%w: agreed price allows at most %d decimal places and 16 integer digits", ErrInvalidOffer, listing.PricePlaces)
	}

	if !listing.FitsNumeric(params.AgreedQuantity, listing.QuantityPlaces) {
		return nil, fmt.Errorf("%w: agreed quantity allows at most %d decimal places and 15 integer digits", ErrInvalidOffer, listing.QuantityPlaces)
	}

	l, err := s.listings.Get(ctx, params.ListingID)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return nil, ErrListingUnavailable
		}

		return nil, fmt.Errorf("loading listing: %w", err)
	}

	if l.Status != listing.StatusActive {
		return nil, ErrListingUnavailable
	}

	if l.SellerID == p.UserID {
		return nil, ErrSelfOffer
	}

	if params.AgreedQuantity.GreaterThan(l.Quantity) {
		if s.strictOfferQuantity {
			return nil, fmt.Errorf("%w: quantity %s exceeds the listed %s %s",
				ErrInvalidOffer, params.AgreedQuantity, l.Quantity, l.Unit)
		}

		slog.WarnContext(ctx, "offer quantity exceeds listing quantity",
			"listing_id", l.ID, "buyer_id", p.UserID,
			"offered", params.AgreedQuantity, "listed", l.Quantity)
	}

	open, err := s.repo.HasOpenOffer(ctx, l.ID, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("checking open offers: %w", err)
	}

	if open {
		return nil, ErrDuplicateOffer
	}

	tx := &Transaction{
		ListingID:      l.ID,
		SellerID:       l.SellerID,
		BuyerID:        p.UserID,
		AgreedPrice:    params.AgreedPrice,
		AgreedQuantity: params.AgreedQuantity,
		CommissionRate: s.commissionRate,
		Status:         StatusPendingPayment,
		Listing: &ListingSummary{
			Title:        l.Title,
			MaterialType: l.MaterialType,
			Unit:         l.Unit,
		},
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "offer created",
		"transaction_id", tx.ID, "listing_id", tx.ListingID, "buyer_id", tx.BuyerID)

	return tx, nil
}

// Pay marks the funds as held in escrow. Buyer only, from PENDING_PAYMENT.
func (s *Service) Pay(ctx context.Context, p auth.Principal, id uuid.UUID) (*Result, error) {
	return s.transition(ctx, p, id, OpPay)
}

// MarkDelivered records that the seller shipped the material. Seller only,
// from PAID_TO_ESCROW.
func (s *Service) MarkDelivered(ctx context.Context, p auth.Principal, id uuid.UUID) (*Result, error) {
	return s.transition(ctx, p, id, OpMarkDelivered)
}

// ConfirmReceipt closes the deal and releases the funds. Buyer only, from
// DELIVERED.
func (s *Service) ConfirmReceipt(ctx context.Context, p auth.Principal, id uuid.UUID) (*Result, error) {
	return s.transition(ctx, p, id, OpConfirmReceipt)
}

func (s *Service) transition(ctx context.Context, p auth.Principal, id uuid.UUID, op Op) (*Result, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	d, err := Decide(tx, p, op)
	if err != nil {
		return nil, err
	}

	updatedAt, err := s.apply(ctx, id, d)
	if err != nil {
		if !errors.Is(err, ErrStatusChanged) {
			return nil, err
		}

		current, getErr := s.repo.GetTransaction(ctx, id)
		if getErr != nil {
			return nil, getErr
		}

		return nil, &StateError{Op: op, Expected: d.From, Actual: current.Status}
	}

	tx.Status = d.To
	tx.UpdatedAt = updatedAt

	slog.InfoContext(ctx, "transaction advanced",
		"transaction_id", id, "op", op, "from", d.From, "to", d.To)

	return &Result{Transaction: tx, Events: d.Events}, nil
}

// apply writes the status change and the availability events it emits in one
// database transaction.
func (s *Service) apply(ctx context.Context, id uuid.UUID, d Decision) (time.Time, error) {
	var updatedAt time.Time

	err := s.txr.WithinTx(ctx, func(ctx context.Context) error {
		var err error

		updatedAt, err = s.repo.CompareAndSetStatus(ctx, id, d.From, d.To)
		if err != nil {
			return err
		}

		for _, e := range d.Events {
			if err := s.listings.SetStatus(ctx, e.ListingID, e.Status); err != nil {
				return fmt.Errorf("applying listing availability %s for transaction %s: %w", e.Status, id, err)
			}
		}

		return nil
	})

	return updatedAt, err
}

// Get returns a transaction to one of its participants or an Admin.
func (s *Service) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if !tx.IsParticipant(p.UserID) && p.Role != auth.RoleAdmin {
		return nil, ErrForbidden
	}

	return tx, nil
}

// ListForUser returns the newest transactions where the principal is buyer or
// seller.
func (s *Service) ListForUser(ctx context.Context, p auth.Principal) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, ListFilter{ParticipantID: &p.UserID, Limit: DashboardLimit})
}
