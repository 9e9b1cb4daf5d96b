package listing

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wastewise/wastewise/internal/auth"
	"github.com/wastewise/wastewise/internal/http/respond"
	"github.com/wastewise/wastewise/internal/importer"
	"github.com/wastewise/wastewise/internal/listing"
)

// maxImportSize bounds an uploaded listings sheet.
const maxImportSize = 5 << 20

type Handler struct {
	svc    *listing.Service
	parser *importer.Parser
}

func NewHandler(svc *listing.Service) *Handler {
	return &Handler{svc: svc, parser: importer.NewParser()}
}

// Routes registers the public marketplace endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
}

// PrivateRoutes registers endpoints that need an authenticated principal.
func (h *Handler) PrivateRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/import", h.importSheet)
}

// DashboardRoutes registers the caller's own listings.
func (h *Handler) DashboardRoutes(r chi.Router) {
	r.Get("/listings", h.mine)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ls, err := h.svc.ListActive(r.Context())
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(ls))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	l, err := h.svc.GetActive(r.Context(), id)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "listing not found or is no longer active")
			return
		}

		respond.Internal(w, r, err)

		return
	}

	respond.JSON(w, http.StatusOK, toPublicResponse(l))
}

type createListingRequest struct {
	Title        string          `json:"title" validate:"required,max=200"`
	MaterialType string          `json:"materialType" validate:"required,max=100"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         listing.Unit    `json:"unit" validate:"omitempty,oneof=Tons Kgs Units"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	LocationName string          `json:"locationName" validate:"required,max=200"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createListingRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	l, err := h.svc.Create(r.Context(), p, listing.CreateParams{
		Title:        req.Title,
		MaterialType: req.MaterialType,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		PricePerUnit: req.PricePerUnit,
		LocationName: req.LocationName,
	})
	if err != nil {
		switch {
		case errors.Is(err, listing.ErrForbidden):
			respond.Error(w, http.StatusForbidden, err.Error())
		case errors.Is(err, listing.ErrInvalid):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			respond.Internal(w, r, err)
		}

		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(l))
}

type importResponse struct {
	Imported int               `json:"imported"`
	Listings []listingResponse `json:"listings"`
}

// importSheet publishes every row of an uploaded CSV sheet sent as the "file"
// field of a multipart form.
func (h *Handler) importSheet(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if !p.Role.CanSell() {
		respond.Error(w, http.StatusForbidden, listing.ErrForbidden.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	params, err := h.parser.Parse(file)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ls, err := h.svc.Import(r.Context(), p, params)
	if err != nil {
		switch {
		case errors.Is(err, listing.ErrForbidden):
			respond.Error(w, http.StatusForbidden, err.Error())
		case errors.Is(err, listing.ErrInvalid):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			respond.Internal(w, r, err)
		}

		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{
		Imported: len(ls),
		Listings: toResponseList(ls),
	})
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ls, err := h.svc.ListBySeller(r.Context(), p.UserID)
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(ls))
}
