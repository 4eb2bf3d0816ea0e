package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/example/storefront/internal/domain/order"
)

const (
	currency = "EUR"
	country  = "LT"

	// placeholder fills missing shipping address fields; the gateway
	// rejects empty address attributes.
	placeholder = "Not provided"
)

// Client talks to the payment gateway's transaction API with Basic auth
// credentials loaded once at startup.
type Client struct {
	apiURL      string
	ipLookupURL string
	storeID     string
	secretKey   string
	httpClient  *http.Client
}

func NewClient(apiURL, ipLookupURL, storeID, secretKey string) *Client {
	return &Client{
		apiURL:      apiURL,
		ipLookupURL: ipLookupURL,
		storeID:     storeID,
		secretKey:   secretKey,
		httpClient:  http.DefaultClient,
	}
}

func (c *Client) authHeader() string {
	credentials := c.storeID + ":" + c.secretKey
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

// resolveIP fetches the caller's public IP from the IP-echo service. The
// gateway requires it for fraud checks.
func (c *Client) resolveIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ipLookupURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ip lookup failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("ip lookup failed: %w", err)
	}
	return body.IP, nil
}

// CreateTransaction builds a gateway transaction from the order and returns
// the redirect payment URL. Every step is sequential with no retry: a single
// failure fails the whole call and the user stays on the checkout page.
func (c *Client) CreateTransaction(ctx context.Context, req TransactionRequest) (string, error) {
	ip, err := c.resolveIP(ctx)
	if err != nil {
		return "", &PaymentError{Err: err}
	}

	payload := c.buildPayload(req, ip)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &PaymentError{Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", &PaymentError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.authHeader())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &PaymentError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readGatewayError(resp.Body)
		log.Printf("[Payment] Transaction request rejected: status=%d message=%q reference=%s",
			resp.StatusCode, msg, req.Reference)
		if msg == "" {
			msg = fmt.Sprintf("payment request failed: %s", resp.Status)
		}
		return "", &PaymentError{StatusCode: resp.StatusCode, Message: msg}
	}

	var data transactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", &PaymentError{Err: err}
	}

	if data.PaymentMethods != nil {
		for _, method := range data.PaymentMethods.Other {
			if method.Name == "redirect" && method.URL != "" {
				return method.URL, nil
			}
		}
	}
	return "", &PaymentError{Err: ErrPaymentURLMissing}
}

func (c *Client) buildPayload(req TransactionRequest, ip string) transactionPayload {
	amount := formatAmount(req.Amount)
	shipping := req.Order.Shipping

	customer := customerBlock{
		Email:   req.Email,
		Country: country,
		Locale:  country,
		IP:      ip,
		Name:    shipping.Name,
		Phone:   shipping.Phone,
	}
	// Address attributes only travel for deliveries; pickup orders omit
	// the block entirely.
	if shipping.Method == order.DeliveryShipping {
		customer.Address = &customerAddress{
			Street:     orPlaceholder(shipping.Address),
			City:       orPlaceholder(shipping.City),
			PostalCode: orPlaceholder(shipping.PostalCode),
			Country:    country,
		}
	}

	items := make([]orderItem, 0, len(req.Order.Items))
	for _, item := range req.Order.Items {
		name := item.Name
		if name == "" {
			name = "Unknown Product"
		}
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, orderItem{
			Name:     name,
			Price:    formatAmount(item.Price),
			Quantity: quantity,
		})
	}

	return transactionPayload{
		Transaction: transactionBlock{
			Amount:            amount,
			Currency:          currency,
			Reference:         req.Reference,
			MerchantData:      "Order ID: " + req.Reference,
			RecurringRequired: false,
			TransactionURL: transactionURLs{
				ReturnURL:       transactionURL{URL: req.ReturnURL, Method: http.MethodGet},
				CancelURL:       transactionURL{URL: req.CancelURL, Method: http.MethodGet},
				NotificationURL: transactionURL{URL: req.NotificationURL, Method: http.MethodPost},
			},
		},
		Customer: customer,
		Order: orderBlock{
			Reference: req.Reference,
			Amount:    amount,
			Currency:  currency,
			Items:     items,
		},
		AppInfo: appInfo{
			Module:          "storefront",
			Platform:        "Go",
			PlatformVersion: "1.0",
		},
	}
}

// VerifyPayment fetches the transaction by its gateway id and reports
// whether it completed. A pending or failed transaction is false, not an
// error; only the call itself failing is a VerificationError.
func (c *Client) VerifyPayment(ctx context.Context, transactionID string) (bool, error) {
	url := c.apiURL + "/" + transactionID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, &VerificationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authHeader())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &VerificationError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := readGatewayError(resp.Body)
		log.Printf("[Payment] Verification rejected: status=%d message=%q transaction=%s",
			resp.StatusCode, msg, transactionID)
		if msg == "" {
			msg = fmt.Sprintf("payment verification failed: %s", resp.Status)
		}
		return false, &VerificationError{StatusCode: resp.StatusCode, Message: msg}
	}

	var data transactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return false, &VerificationError{Err: err}
	}
	return data.Status == "completed", nil
}

func readGatewayError(r io.Reader) string {
	var ge gatewayError
	if err := json.NewDecoder(r).Decode(&ge); err != nil {
		return ""
	}
	return ge.Message
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
