package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/order"
)

func newIPServer(t *testing.T, ip string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"ip": ip})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRequest(method order.DeliveryMethod) TransactionRequest {
	return TransactionRequest{
		Amount:          17.00,
		Reference:       "ORD-1718000000000",
		Email:           "jurgita@example.lt",
		ReturnURL:       "https://shop.example.lt/payment-success?reference=ORD-1718000000000",
		CancelURL:       "https://shop.example.lt/payment-failed",
		NotificationURL: "https://shop.example.lt/api/payment-notification?reference=ORD-1718000000000",
		Order: &order.Order{
			Reference: "ORD-1718000000000",
			Email:     "jurgita@example.lt",
			Items: []order.Item{
				{ID: "A", Name: "Auksinė apyrankė", Price: 17.00, Quantity: 1},
			},
			Shipping: order.ShippingDetails{
				Method:  method,
				Name:    "Jurgita K",
				Phone:   "+37060000000",
				Address: "Gedimino pr. 1",
				City:    "Vilnius",
			},
		},
	}
}

// ============================================
// CreateTransaction Tests
// ============================================

func TestClient_CreateTransaction_BuildsGatewayPayload(t *testing.T) {
	ipSrv := newIPServer(t, "203.0.113.7")

	var captured transactionPayload
	var authHeader string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "tx-123",
			"status": "created",
			"payment_methods": map[string]any{
				"other": []map[string]string{
					{"name": "card", "url": "https://pay.example/card"},
					{"name": "redirect", "url": "https://pay.example/redirect/tx-123"},
				},
			},
		})
	}))
	defer gateway.Close()

	c := NewClient(gateway.URL, ipSrv.URL, "store-1", "secret-1")
	url, err := c.CreateTransaction(context.Background(), testRequest(order.DeliveryShipping))

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/redirect/tx-123", url)

	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("store-1:secret-1"))
	assert.Equal(t, expectedAuth, authHeader)

	assert.Equal(t, "17.00", captured.Transaction.Amount)
	assert.Equal(t, "EUR", captured.Transaction.Currency)
	assert.Equal(t, "ORD-1718000000000", captured.Transaction.Reference)
	assert.Equal(t, "Order ID: ORD-1718000000000", captured.Transaction.MerchantData)
	assert.Equal(t, http.MethodGet, captured.Transaction.TransactionURL.ReturnURL.Method)
	assert.Equal(t, http.MethodPost, captured.Transaction.TransactionURL.NotificationURL.Method)

	assert.Equal(t, "203.0.113.7", captured.Customer.IP)
	assert.Equal(t, "LT", captured.Customer.Country)
	assert.Equal(t, "LT", captured.Customer.Locale)

	require.Len(t, captured.Order.Items, 1)
	assert.Equal(t, "17.00", captured.Order.Items[0].Price)
}

func TestClient_CreateTransaction_AddressOnlyForShipping(t *testing.T) {
	ipSrv := newIPServer(t, "203.0.113.7")

	t.Run("shipping carries address with placeholders", func(t *testing.T) {
		var captured transactionPayload
		gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&captured)
			json.NewEncoder(w).Encode(map[string]any{
				"payment_methods": map[string]any{
					"other": []map[string]string{{"name": "redirect", "url": "https://pay.example/r"}},
				},
			})
		}))
		defer gateway.Close()

		c := NewClient(gateway.URL, ipSrv.URL, "store-1", "secret-1")
		req := testRequest(order.DeliveryShipping)
		req.Order.Shipping.PostalCode = ""

		_, err := c.CreateTransaction(context.Background(), req)
		require.NoError(t, err)

		require.NotNil(t, captured.Customer.Address)
		assert.Equal(t, "Gedimino pr. 1", captured.Customer.Address.Street)
		assert.Equal(t, "Not provided", captured.Customer.Address.PostalCode)
		assert.Equal(t, "LT", captured.Customer.Address.Country)
	})

	t.Run("pickup omits the address block", func(t *testing.T) {
		var rawBody map[string]json.RawMessage
		gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &rawBody)
			json.NewEncoder(w).Encode(map[string]any{
				"payment_methods": map[string]any{
					"other": []map[string]string{{"name": "redirect", "url": "https://pay.example/r"}},
				},
			})
		}))
		defer gateway.Close()

		c := NewClient(gateway.URL, ipSrv.URL, "store-1", "secret-1")
		_, err := c.CreateTransaction(context.Background(), testRequest(order.DeliveryPickup))
		require.NoError(t, err)

		var customer map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rawBody["customer"], &customer))
		_, hasAddress := customer["address"]
		assert.False(t, hasAddress, "pickup orders must not send an address")
	})
}

func TestClient_CreateTransaction_GatewayRejection(t *testing.T) {
	ipSrv := newIPServer(t, "203.0.113.7")

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid amount"})
	}))
	defer gateway.Close()

	c := NewClient(gateway.URL, ipSrv.URL, "store-1", "secret-1")
	_, err := c.CreateTransaction(context.Background(), testRequest(order.DeliveryShipping))

	var pe *PaymentError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusUnprocessableEntity, pe.StatusCode)
	assert.Equal(t, "invalid amount", pe.Message)
}

func TestClient_CreateTransaction_MissingRedirectMethod(t *testing.T) {
	ipSrv := newIPServer(t, "203.0.113.7")

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"payment_methods": map[string]any{
				"other": []map[string]string{{"name": "card", "url": "https://pay.example/card"}},
			},
		})
	}))
	defer gateway.Close()

	c := NewClient(gateway.URL, ipSrv.URL, "store-1", "secret-1")
	_, err := c.CreateTransaction(context.Background(), testRequest(order.DeliveryShipping))

	assert.ErrorIs(t, err, ErrPaymentURLMissing)
}

func TestClient_CreateTransaction_IPLookupFailure(t *testing.T) {
	ipSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer ipSrv.Close()

	gatewayCalled := false
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gatewayCalled = true
	}))
	defer gateway.Close()

	c := NewClient(gateway.URL, ipSrv.URL, "store-1", "secret-1")
	_, err := c.CreateTransaction(context.Background(), testRequest(order.DeliveryShipping))

	var pe *PaymentError
	require.ErrorAs(t, err, &pe)
	assert.False(t, gatewayCalled, "gateway must not be called when the ip lookup fails")
}

// ============================================
// VerifyPayment Tests
// ============================================

func TestClient_VerifyPayment(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		verified bool
	}{
		{"completed transaction verifies", "completed", true},
		{"pending transaction does not verify", "pending", false},
		{"cancelled transaction does not verify", "cancelled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/tx-123", r.URL.Path)
				json.NewEncoder(w).Encode(map[string]string{"id": "tx-123", "status": tt.status})
			}))
			defer gateway.Close()

			c := NewClient(gateway.URL, "", "store-1", "secret-1")
			verified, err := c.VerifyPayment(context.Background(), "tx-123")

			require.NoError(t, err)
			assert.Equal(t, tt.verified, verified)
		})
	}
}

func TestClient_VerifyPayment_GatewayError(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "transaction not found"})
	}))
	defer gateway.Close()

	c := NewClient(gateway.URL, "", "store-1", "secret-1")
	verified, err := c.VerifyPayment(context.Background(), "tx-missing")

	assert.False(t, verified)
	var ve *VerificationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, http.StatusNotFound, ve.StatusCode)
	assert.Equal(t, "transaction not found", ve.Message)
}
