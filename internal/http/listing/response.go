package listing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wastewise/wastewise/internal/listing"
)

type listingResponse struct {
	ID           uuid.UUID       `json:"id"`
	SellerID     *uuid.UUID      `json:"sellerId,omitempty"`
	Title        string          `json:"title"`
	MaterialType string          `json:"materialType"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         listing.Unit    `json:"unit"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	AskingTotal  decimal.Decimal `json:"askingTotal"`
	LocationName string          `json:"locationName"`
	Status       listing.Status  `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func toResponse(l *listing.Listing) listingResponse {
	return listingResponse{
		ID:           l.ID,
		SellerID:     &l.SellerID,
		Title:        l.Title,
		MaterialType: l.MaterialType,
		Quantity:     l.Quantity,
		Unit:         l.Unit,
		PricePerUnit: l.PricePerUnit,
		AskingTotal:  l.AskingTotal(),
		LocationName: l.LocationName,
		Status:       l.Status,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// toPublicResponse omits the seller so a single listing page does not reveal
// who is selling.
func toPublicResponse(l *listing.Listing) listingResponse {
	resp := toResponse(l)
	resp.SellerID = nil

	return resp
}

func toResponseList(ls []*listing.Listing) []listingResponse {
	resp := make([]listingResponse, len(ls))
	for i, l := range ls {
		resp[i] = toResponse(l)
	}

	return resp
}
