package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/domain/cart"
	domain "github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/webhook"
)

// checkoutFailedMessage is the generic retry-capable message surfaced to the
// user when a checkout attempt fails; the underlying error is only logged.
const checkoutFailedMessage = "Įvyko klaida apdorojant užsakymą. Prašome bandyti dar kartą."

// PaymentVerifier checks a gateway transaction's outcome.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, transactionID string) (bool, error)
}

type Handlers struct {
	sessions *SessionManager
	flow     *checkout.Flow
	orders   *order.Service
	payments PaymentVerifier
	webhooks *webhook.Client
}

func NewHandlers(sessions *SessionManager, flow *checkout.Flow, orders *order.Service, payments PaymentVerifier, webhooks *webhook.Client) *Handlers {
	return &Handlers{
		sessions: sessions,
		flow:     flow,
		orders:   orders,
		payments: payments,
		webhooks: webhooks,
	}
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	store := h.sessions.Store(r.Context(), sessionID(w, r))
	state := store.State()
	loggedIn := middleware.GetUserID(r.Context()) != ""

	respondJSON(w, http.StatusOK, map[string]any{
		"items":    state.Items,
		"subtotal": cart.Subtotal(state.Items),
		"total":    cart.Total(state.Items, loggedIn),
	})
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	store := h.sessions.Store(r.Context(), sessionID(w, r))

	var item cart.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}

	if err := store.AddItem(item, middleware.GetUserID(r.Context())); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	store := h.sessions.Store(r.Context(), sessionID(w, r))

	var req struct {
		ID            string `json:"id"`
		Quantity      int    `json:"quantity"`
		SelectedSize  string `json:"selectedSize"`
		SelectedColor string `json:"selectedColor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := cart.ItemKey{ProductID: req.ID, Size: req.SelectedSize, Color: req.SelectedColor}
	if err := store.UpdateQuantity(key, req.Quantity, middleware.GetUserID(r.Context())); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	store := h.sessions.Store(r.Context(), sessionID(w, r))

	productID := extractPathParam(r.URL.Path, "/cart/items/")
	key := cart.ItemKey{
		ProductID: productID,
		Size:      r.URL.Query().Get("size"),
		Color:     r.URL.Query().Get("color"),
	}

	store.RemoveItem(key, middleware.GetUserID(r.Context()))
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	store := h.sessions.Store(r.Context(), sessionID(w, r))
	store.Clear(middleware.GetUserID(r.Context()))
	w.WriteHeader(http.StatusOK)
}

// SyncCart pulls the remote cart for the logged-in user and overwrites the
// session cart with it. Meant for session start, right after login.
func (h *Handlers) SyncCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		http.Error(w, "login required", http.StatusUnauthorized)
		return
	}

	store := h.sessions.Store(r.Context(), sessionID(w, r))
	if err := store.SyncFromRemote(r.Context(), userID); err != nil {
		log.Printf("[API] Failed to sync cart for user %s: %v", userID, err)
		http.Error(w, "failed to sync cart", http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, store.State().Items)
}

// Wishlist Handlers

func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	store := h.sessions.Store(r.Context(), sessionID(w, r))
	state := store.State()
	if state.Wishlist == nil {
		state.Wishlist = []cart.Product{}
	}
	respondJSON(w, http.StatusOK, state.Wishlist)
}

func (h *Handlers) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	store := h.sessions.Store(r.Context(), sessionID(w, r))

	var product cart.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if product.ID == "" {
		http.Error(w, cart.ErrInvalidProduct.Error(), http.StatusBadRequest)
		return
	}

	store.ToggleWishlist(product)
	w.WriteHeader(http.StatusOK)
}

// Checkout Handler

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)
	store := h.sessions.Store(r.Context(), sid)

	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if form.DeliveryMethod == "" {
		form.DeliveryMethod = domain.DeliveryShipping
	}

	paymentURL, err := h.flow.Submit(r.Context(), sid, store, form, middleware.GetUserID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Jūsų krepšelis tuščias"})
		case errors.Is(err, checkout.ErrSubmitInFlight):
			respondJSON(w, http.StatusConflict, map[string]string{"error": checkoutFailedMessage})
		case errors.Is(err, checkout.ErrMissingEmail), errors.Is(err, domain.ErrMissingAddress):
			respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("[API] Checkout failed for session %s: %v", sid, err)
			respondJSON(w, http.StatusBadGateway, map[string]string{"error": checkoutFailedMessage})
		}
		return
	}

	// The caller performs a full-page redirect to the gateway.
	respondJSON(w, http.StatusOK, map[string]string{"paymentUrl": paymentURL})
}

// Order Handlers

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orders, err := h.orders.GetByUser(r.Context(), userID)
	if err != nil {
		log.Printf("[API] Failed to list orders for user %s: %v", userID, err)
		http.Error(w, "failed to fetch orders", http.StatusBadGateway)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	reference := extractPathParam(r.URL.Path, "/orders/")
	o, err := h.orders.GetByReference(r.Context(), reference)
	if err != nil {
		log.Printf("[API] Failed to fetch order %s: %v", reference, err)
		http.Error(w, "failed to fetch order", http.StatusBadGateway)
		return
	}
	// References are guessable timestamps; another user's order reads as
	// absent rather than forbidden.
	if o == nil || o.UserID != middleware.GetUserID(r.Context()) {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func extractPathParam(path, prefix string) string {
	param := strings.TrimPrefix(path, prefix)
	return strings.Trim(param, "/")
}
