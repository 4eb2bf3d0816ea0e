package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/example/storefront/internal/domain/cart"
	domain "github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/order"
	"github.com/example/storefront/internal/payment"
)

// State tracks a single checkout attempt.
type State string

const (
	StateEditing     State = "editing"
	StateSubmitting  State = "submitting"
	StateRedirecting State = "redirecting"
	StateFailed      State = "failed"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrSubmitInFlight = errors.New("checkout already in progress")
	ErrMissingEmail   = errors.New("email is required")
)

// Form is the checkout form as submitted.
type Form struct {
	FirstName      string                `json:"firstName"`
	LastName       string                `json:"lastName"`
	Email          string                `json:"email"`
	Phone          string                `json:"phone"`
	Address        string                `json:"address"`
	City           string                `json:"city"`
	PostalCode     string                `json:"postalCode"`
	DeliveryMethod domain.DeliveryMethod `json:"deliveryMethod"`
}

// PaymentCreator requests a gateway transaction and returns the redirect URL.
type PaymentCreator interface {
	CreateTransaction(ctx context.Context, req payment.TransactionRequest) (string, error)
}

// Flow orchestrates one checkout attempt: build the order record, request a
// gateway transaction, hand the payment URL back for the redirect.
//
// Order creation and transaction creation are two independent calls with no
// compensation between them; an order record can exist without a gateway
// transaction when the second call fails. The confirmation handler and the
// gateway notification reconcile the order status afterwards.
type Flow struct {
	orders   *order.Service
	payments PaymentCreator
	baseURL  string
	now      func() time.Time

	mu       sync.Mutex
	attempts map[string]State
}

func NewFlow(orders *order.Service, payments PaymentCreator, baseURL string) *Flow {
	return &Flow{
		orders:   orders,
		payments: payments,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
		attempts: make(map[string]State),
	}
}

// AttemptState reports the state of the session's current attempt.
func (f *Flow) AttemptState(sessionID string) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if state, ok := f.attempts[sessionID]; ok {
		return state
	}
	return StateEditing
}

// begin moves the session into submitting, rejecting a second submit while
// one is outstanding.
func (f *Flow) begin(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attempts[sessionID] == StateSubmitting {
		return ErrSubmitInFlight
	}
	f.attempts[sessionID] = StateSubmitting
	return nil
}

func (f *Flow) finish(sessionID string, state State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[sessionID] = state
}

// Submit runs one checkout attempt for the session and returns the payment
// URL to redirect the browser to. On any failure the session lands in the
// failed state and the caller keeps the user on the checkout page.
func (f *Flow) Submit(ctx context.Context, sessionID string, store *cart.Store, form Form, userID string) (string, error) {
	items := store.State().Items
	if len(items) == 0 {
		return "", ErrEmptyCart
	}
	if form.Email == "" {
		return "", ErrMissingEmail
	}

	if err := f.begin(sessionID); err != nil {
		return "", err
	}

	loggedIn := userID != ""
	if userID == "" {
		userID = domain.AnonymousUserID
	}

	reference := domain.NewReference(f.now())
	total := cart.Total(items, loggedIn)
	name := strings.TrimSpace(form.FirstName + " " + form.LastName)

	orderItems := make([]domain.Item, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, domain.Item{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	o := &domain.Order{
		Reference: reference,
		UserID:    userID,
		Email:     form.Email,
		Items:     orderItems,
		Total:     total,
		Shipping: domain.ShippingDetails{
			Method:     form.DeliveryMethod,
			Name:       name,
			Address:    form.Address,
			City:       form.City,
			PostalCode: form.PostalCode,
			Email:      form.Email,
			Phone:      form.Phone,
		},
		Status: domain.StatusCreated,
	}

	if _, err := f.orders.Create(ctx, o); err != nil {
		f.finish(sessionID, StateFailed)
		log.Printf("[Checkout] Failed to create order %s: %v", reference, err)
		return "", err
	}

	paymentURL, err := f.payments.CreateTransaction(ctx, payment.TransactionRequest{
		Amount:          total,
		Reference:       reference,
		Email:           form.Email,
		ReturnURL:       f.returnURL(reference, total, form.Email, name),
		CancelURL:       f.baseURL + "/payment-failed",
		NotificationURL: f.baseURL + "/api/payment-notification?reference=" + url.QueryEscape(reference),
		Order:           o,
	})
	if err != nil {
		f.finish(sessionID, StateFailed)
		log.Printf("[Checkout] Failed to create transaction for %s: %v", reference, err)
		return "", err
	}

	f.finish(sessionID, StateRedirecting)
	return paymentURL, nil
}

// returnURL carries reference, amount, email and name back to the
// confirmation page as plain query parameters.
func (f *Flow) returnURL(reference string, amount float64, email, name string) string {
	params := url.Values{}
	params.Set("reference", reference)
	params.Set("amount", fmt.Sprintf("%.2f", amount))
	params.Set("email", email)
	params.Set("name", name)
	return f.baseURL + "/payment-success?" + params.Encode()
}
