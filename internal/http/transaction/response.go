package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wastewise/wastewise/internal/listing"
	"github.com/wastewise/wastewise/internal/transaction"
)

type transactionResponse struct {
	ID             uuid.UUID          `json:"id"`
	ListingID      uuid.UUID          `json:"listingId"`
	SellerID       uuid.UUID          `json:"sellerId"`
	BuyerID        uuid.UUID          `json:"buyerId"`
	AgreedPrice    decimal.Decimal    `json:"agreedPrice"`
	AgreedQuantity decimal.Decimal    `json:"agreedQuantity"`
	CommissionRate decimal.Decimal    `json:"commissionRate"`
	Commission     decimal.Decimal    `json:"commission"`
	SellerPayout   decimal.Decimal    `json:"sellerPayout"`
	Status         transaction.Status `json:"status"`
	Listing        *listingSummary    `json:"listing,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

type listingSummary struct {
	Title        string       `json:"title"`
	MaterialType string       `json:"materialType"`
	Unit         listing.Unit `json:"unit"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:             tx.ID,
		ListingID:      tx.ListingID,
		SellerID:       tx.SellerID,
		BuyerID:        tx.BuyerID,
		AgreedPrice:    tx.AgreedPrice,
		AgreedQuantity: tx.AgreedQuantity,
		CommissionRate: tx.CommissionRate,
		Commission:     tx.Commission(),
		SellerPayout:   tx.SellerPayout(),
		Status:         tx.Status,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
	}

	if tx.Listing != nil {
		resp.Listing = &listingSummary{
			Title:        tx.Listing.Title,
			MaterialType: tx.Listing.MaterialType,
			Unit:         tx.Listing.Unit,
		}
	}

	return resp
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

type transitionResponse struct {
	Status        transaction.Status `json:"status"`
	ListingID     uuid.UUID          `json:"listingId"`
	TransactionID uuid.UUID          `json:"transactionId"`
	Message       string             `json:"message"`
}
