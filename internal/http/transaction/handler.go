package transaction

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wastewise/wastewise/internal/auth"
	"github.com/wastewise/wastewise/internal/http/respond"
	"github.com/wastewise/wastewise/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers the transaction endpoints. All of them need an
// authenticated principal.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/offer", h.offer)
	r.Post("/pay", h.transition(pay))
	r.Post("/deliver", h.transition(deliver))
	r.Post("/complete", h.transition(complete))
	r.Get("/{id}", h.get)
}

// DashboardRoutes registers the caller's own transactions.
func (h *Handler) DashboardRoutes(r chi.Router) {
	r.Get("/transactions", h.mine)
}

type transitionFunc func(svc *transaction.Service, ctx context.Context, p auth.Principal, id uuid.UUID) (*transaction.Result, error)

type step struct {
	call    transitionFunc
	message string
}

var (
	pay = step{
		call:    (*transaction.Service).Pay,
		message: "Payment secured. Funds are held in escrow.",
	}
	deliver = step{
		call:    (*transaction.Service).MarkDelivered,
		message: "Delivery recorded. Awaiting buyer confirmation.",
	}
	complete = step{
		call:    (*transaction.Service).ConfirmReceipt,
		message: "Receipt confirmed. Funds released to the seller.",
	}
)

// errorStatus maps service errors to HTTP status codes. ok is false for
// unexpected errors.
func errorStatus(err error) (status int, ok bool) {
	switch {
	case errors.Is(err, transaction.ErrNotFound), errors.Is(err, transaction.ErrListingUnavailable):
		return http.StatusNotFound, true
	case errors.Is(err, transaction.ErrForbidden), errors.Is(err, transaction.ErrSelfOffer):
		return http.StatusForbidden, true
	case errors.Is(err, transaction.ErrInvalidState), errors.Is(err, transaction.ErrInvalidOffer):
		return http.StatusBadRequest, true
	case errors.Is(err, transaction.ErrDuplicateOffer):
		return http.StatusConflict, true
	}

	return 0, false
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, ok := errorStatus(err)
	if !ok {
		respond.Internal(w, r, err)
		return
	}

	respond.Error(w, status, err.Error())
}

type offerRequest struct {
	ListingID      uuid.UUID       `json:"listingId" validate:"required"`
	AgreedPrice    decimal.Decimal `json:"agreedPrice"`
	AgreedQuantity decimal.Decimal `json:"agreedQuantity"`
}

func (h *Handler) offer(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req offerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.svc.CreateOffer(r.Context(), p, transaction.OfferParams{
		ListingID:      req.ListingID,
		AgreedPrice:    req.AgreedPrice,
		AgreedQuantity: req.AgreedQuantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

type transitionRequest struct {
	TransactionID uuid.UUID `json:"transactionId" validate:"required"`
}

func (h *Handler) transition(s step) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req transitionRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := s.call(h.svc, r.Context(), p, req.TransactionID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		respond.JSON(w, http.StatusOK, transitionResponse{
			Status:        res.Transaction.Status,
			ListingID:     res.Transaction.ListingID,
			TransactionID: res.Transaction.ID,
			Message:       s.message,
		})
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := h.svc.Get(r.Context(), p, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	txs, err := h.svc.ListForUser(r.Context(), p)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}
