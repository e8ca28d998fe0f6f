package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Parthsawant1298/webhackathon-sub001/internal/domain"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/gateway"
	"github.com/Parthsawant1298/webhackathon-sub001/internal/service"
	"github.com/go-chi/chi/v5"
)

// CheckoutAPI is what the handlers need from the checkout service.
type CheckoutAPI interface {
	CreatePaymentIntent(ctx context.Context, userID string, shipping domain.ShippingInfo) (*service.IntentResult, error)
	ConfirmPayment(ctx context.Context, req service.ConfirmRequest) (*service.ConfirmResult, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout CheckoutAPI
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutAPI, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type CreateIntentRequestDTO struct {
	Shipping domain.ShippingInfo `json:"shipping"`
}

// POST /api/v1/checkout/intent
func (h *CheckoutHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CreateIntentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.checkout.CreatePaymentIntent(ctx, userID, req.Shipping)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// POST /api/v1/checkout/confirm
//
// The gateway callback payload is decoded into a strict struct; the service
// rejects it unless all three signature fields are present.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req service.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.checkout.ConfirmPayment(ctx, req)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GET /api/v1/orders/{order_id}
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "order_id")
	order, err := h.checkout.GetOrder(ctx, orderID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

type conflictResponseDTO struct {
	Error     string                        `json:"error"`
	Message   string                        `json:"message"`
	Conflicts []domain.AvailabilityConflict `json:"conflicts"`
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	var conflict *service.ConflictError
	var insufficient *service.InsufficientStockError
	var gone *service.ItemGoneError
	var inactive *service.ItemInactiveError
	var fatal *service.FatalError

	switch {
	case errors.As(err, &conflict):
		respondJSON(w, http.StatusConflict, conflictResponseDTO{
			Error:     "availability_conflict",
			Message:   err.Error(),
			Conflicts: conflict.Conflicts,
		})

	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, domain.ErrShippingInfoIncomplete):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())

	case errors.Is(err, service.ErrInvalidSignature):
		// Generic rejection: no detail about which orders exist.
		respondError(w, http.StatusUnauthorized, "verification_failed", "payment verification failed")

	case errors.Is(err, service.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")

	case errors.As(err, &insufficient), errors.As(err, &gone), errors.As(err, &inactive):
		// Retryable: the buyer can adjust the cart and check out again.
		respondError(w, http.StatusConflict, "stock_conflict", err.Error())

	case errors.Is(err, gateway.ErrNotConfigured):
		respondError(w, http.StatusInternalServerError, "configuration_error",
			"payment gateway is not configured, contact support")

	case errors.As(err, &fatal):
		respondError(w, http.StatusBadGateway, "payment_state_uncertain",
			"the order did not complete but your payment may have been captured; contact support before retrying")

	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

type errorResponseDTO struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponseDTO{Error: code, Message: message})
}
