package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wastewise/wastewise/internal/auth"
	"github.com/wastewise/wastewise/internal/http/respond"
	"github.com/wastewise/wastewise/internal/user"
)

type Handler struct {
	svc    *user.Service
	issuer *auth.Issuer
}

func NewHandler(svc *user.Service, issuer *auth.Issuer) *Handler {
	return &Handler{svc: svc, issuer: issuer}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

type registerRequest struct {
	CompanyName string    `json:"companyName" validate:"required,max=200"`
	Email       string    `json:"email" validate:"required,email"`
	Password    string    `json:"password" validate:"required,min=8,max=72"`
	KRAPin      string    `json:"kraPin" validate:"required,max=32"`
	Role        auth.Role `json:"role"`
}

type userResponse struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"companyName"`
	Email       string    `json:"email"`
	Role        auth.Role `json:"role"`
	IsVerified  bool      `json:"isVerified"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:          u.ID,
		CompanyName: u.CompanyName,
		Email:       u.Email,
		Role:        u.Role,
		IsVerified:  u.IsVerified,
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.Register(r.Context(), user.RegisterParams{
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Password:    req.Password,
		KRAPin:      req.KRAPin,
		Role:        req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidRole):
			respond.Error(w, http.StatusBadRequest, "role must be one of: Seller, Buyer, Both")
		case errors.Is(err, user.ErrDuplicateEmail), errors.Is(err, user.ErrDuplicateKRAPin):
			respond.Error(w, http.StatusConflict, err.Error())
		default:
			respond.Internal(w, r, err)
		}

		return
	}

	respond.JSON(w, http.StatusCreated, toUserResponse(u))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials provided")
			return
		}

		respond.Internal(w, r, err)

		return
	}

	token, expiresAt, err := h.issuer.Issue(u.Principal())
	if err != nil {
		respond.Internal(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, loginResponse{
		User:      toUserResponse(u),
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
