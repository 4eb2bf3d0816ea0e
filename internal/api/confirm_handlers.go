package api

import (
	"log"
	"net/http"
	"time"

	"github.com/example/storefront/internal/api/middleware"
	domain "github.com/example/storefront/internal/domain/order"
)

// PaymentSuccess handles the return redirect from the gateway. The gateway
// appends payment_reference (its transaction id) to our return URL, which
// already carries reference, amount, email and name as plain query
// parameters. Verification runs exactly once per request; there is no retry.
func (h *Handlers) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	transactionID := params.Get("payment_reference")
	if transactionID == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "No transaction ID found"})
		return
	}

	verified, err := h.payments.VerifyPayment(r.Context(), transactionID)
	if err != nil {
		// The verify call itself failed; distinct from the gateway
		// reporting the payment as not completed.
		log.Printf("[API] Payment verification error for transaction %s: %v", transactionID, err)
		respondJSON(w, http.StatusBadGateway, map[string]string{
			"error": "An error occurred while verifying the payment",
		})
		return
	}

	if !verified {
		http.Redirect(w, r, "/payment-failed", http.StatusSeeOther)
		return
	}

	// Payment confirmed: drop the session cart, mirror the clear for a
	// logged-in user.
	sid := sessionID(w, r)
	store := h.sessions.Store(r.Context(), sid)
	store.Clear(middleware.GetUserID(r.Context()))

	reference := params.Get("reference")
	details := map[string]string{
		"reference": reference,
		"amount":    params.Get("amount"),
		"email":     params.Get("email"),
		"name":      params.Get("name"),
		"date":      time.Now().UTC().Format(time.RFC3339),
	}

	if reference != "" {
		if err := h.orders.UpdateStatus(r.Context(), reference, domain.StatusCompleted); err != nil {
			// The payment went through; a stale order status must not
			// fail the confirmation page.
			log.Printf("[API] Failed to mark order %s completed: %v", reference, err)
		}
	}

	h.webhooks.Notify(r.Context(), map[string]any{
		"transactionId": transactionID,
		"status":        "COMPLETED",
		"reference":     details["reference"],
		"amount":        details["amount"],
		"email":         details["email"],
		"name":          details["name"],
		"date":          details["date"],
		"message":       "Payment completed successfully",
	})

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"details": details,
	})
}

// PaymentFailed renders the dedicated failure view.
func (h *Handlers) PaymentFailed(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "failed",
		"message": "Įvyko klaida apdorojant jūsų mokėjimą. Prašome bandyti dar kartą.",
	})
}

// PaymentNotification handles the gateway's server-to-server callback. The
// order reference travels in our notification URL; the transaction id comes
// from the gateway. The outcome moves the order to completed or cancelled.
// Always acknowledged with 200 so the gateway stops redelivering.
func (h *Handlers) PaymentNotification(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	transactionID := r.URL.Query().Get("payment_reference")
	if transactionID == "" {
		transactionID = r.FormValue("payment_reference")
	}

	if reference == "" || transactionID == "" {
		log.Printf("[API] Payment notification missing identifiers: reference=%q transaction=%q",
			reference, transactionID)
		w.WriteHeader(http.StatusOK)
		return
	}

	verified, err := h.payments.VerifyPayment(r.Context(), transactionID)
	if err != nil {
		log.Printf("[API] Payment notification verify error for %s: %v", reference, err)
		w.WriteHeader(http.StatusOK)
		return
	}

	status := domain.StatusCancelled
	if verified {
		status = domain.StatusCompleted
	}
	if err := h.orders.UpdateStatus(r.Context(), reference, status); err != nil {
		log.Printf("[API] Payment notification failed to update order %s: %v", reference, err)
	}
	w.WriteHeader(http.StatusOK)
}
