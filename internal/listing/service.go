package listing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wastewise/wastewise/internal/auth"
)

// MarketplaceLimit caps the public active-listings feed.
const MarketplaceLimit = 50

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=listing
type Repository interface {
	CreateListing(ctx context.Context, l *Listing) error
	CreateListings(ctx context.Context, ls []*Listing) error
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)
	ListListings(ctx context.Context, filter ListFilter) ([]*Listing, error)

	// AdvanceStatus sets the status only if the listing is currently in one
	// of from. It reports false when the listing exists but is not.
	AdvanceStatus(ctx context.Context, id uuid.UUID, to Status, from []Status) (bool, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Title        string
	MaterialType string
	Quantity     decimal.Decimal
	Unit         Unit
	PricePerUnit decimal.Decimal
	LocationName string
}

type ListFilter struct {
	Status   *Status
	SellerID *uuid.UUID
	Limit    int
}

// Create publishes a new Active listing owned by the principal.
func (s *Service) Create(ctx context.Context, p auth.Principal, params CreateParams) (*Listing, error) {
	if !p.Role.CanSell() {
		return nil, ErrForbidden
	}

	l := newListing(p.UserID, params)
	if err := validate(l); err != nil {
		return nil, err
	}

	if err := s.repo.CreateListing(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

// Import publishes a batch of listings for the principal. Either every row is
// valid and all are stored, or none are. Row numbers in errors are 1-based
// positions in params.
func (s *Service) Import(ctx context.Context, p auth.Principal, params []CreateParams) ([]*Listing, error) {
	if !p.Role.CanSell() {
		return nil, ErrForbidden
	}

	if len(params) == 0 {
		return nil, fmt.Errorf("%w: nothing to import", ErrInvalid)
	}

	ls := make([]*Listing, 0, len(params))

	for i, row := range params {
		l := newListing(p.UserID, row)
		if err := validate(l); err != nil {
			return nil, fmt.Errorf("listing %d: %w", i+1, err)
		}

		ls = append(ls, l)
	}

	if err := s.repo.CreateListings(ctx, ls); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "imported listings", "seller_id", p.UserID, "count", len(ls))

	return ls, nil
}

func newListing(sellerID uuid.UUID, params CreateParams) *Listing {
	l := &Listing{
		SellerID:     sellerID,
		Title:        strings.TrimSpace(params.Title),
		MaterialType: strings.TrimSpace(params.MaterialType),
		Quantity:     params.Quantity,
		Unit:         params.Unit,
		PricePerUnit: params.PricePerUnit,
		LocationName: strings.TrimSpace(params.LocationName),
		Status:       StatusActive,
	}

	if l.Unit == "" {
		l.Unit = UnitTons
	}

	return l
}

func validate(l *Listing) error {
	switch {
	case l.Title == "" || l.MaterialType == "" || l.LocationName == "":
		return fmt.Errorf("%w: title, material type and location are required", ErrInvalid)
	case !l.Quantity.IsPositive():
		return fmt.Errorf("%w: quantity must be positive", ErrInvalid)
	case !FitsNumeric(l.Quantity, QuantityPlaces):
		return fmt.Errorf("%w: quantity allows at most %d decimal places and 15 integer digits", ErrInvalid, QuantityPlaces)
	case l.PricePerUnit.IsNegative():
		return fmt.Errorf("%w: price per unit must not be negative", ErrInvalid)
	case !FitsNumeric(l.PricePerUnit, PricePlaces):
		return fmt.Errorf("%w: price per unit allows at most %d decimal places and 16 integer digits", ErrInvalid, PricePlaces)
	case !l.Unit.Valid():
		return fmt.Errorf("%w: unit must be one of Tons, Kgs, Units", ErrInvalid)
	}

	return nil
}

// ListActive returns the newest Active listings.
func (s *Service) ListActive(ctx context.Context) ([]*Listing, error) {
	return s.repo.ListListings(ctx, ListFilter{Status: new(StatusActive), Limit: MarketplaceLimit})
}

// ListBySeller returns every listing owned by the seller, newest first.
func (s *Service) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]*Listing, error) {
	return s.repo.ListListings(ctx, ListFilter{SellerID: &sellerID})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.GetListing(ctx, id)
}

// GetActive returns the listing only if it is still Active.
func (s *Service) GetActive(ctx context.Context, id uuid.UUID) (*Listing, error) {
	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.Status != StatusActive {
		return nil, ErrNotFound
	}

	return l, nil
}

// SetStatus applies an availability change emitted by a transaction
// transition. Nothing else mutates a listing's status. Availability only moves
// from Active towards Sold; a change that would move it back is ignored.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	from := status.Predecessors()
	if len(from) == 0 {
		return fmt.Errorf("%w: a listing cannot move back to %s", ErrInvalid, status)
	}

	changed, err := s.repo.AdvanceStatus(ctx, id, status, from)
	if err != nil {
		return err
	}

	if !changed {
		slog.InfoContext(ctx, "listing availability already past requested status", "listing_id", id, "status", status)
		return nil
	}

	slog.InfoContext(ctx, "listing availability changed", "listing_id", id, "status", status)

	return nil
}
