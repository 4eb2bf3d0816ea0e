package payment

import "github.com/example/storefront/internal/domain/order"

// TransactionRequest is what the checkout flow hands to the gateway client.
type TransactionRequest struct {
	Amount          float64
	Reference       string
	Email           string
	ReturnURL       string
	CancelURL       string
	NotificationURL string
	Order           *order.Order
}

// Wire types for the gateway's transaction API. Amounts travel as strings
// formatted to exactly two decimals; currency is fixed EUR, country and
// locale fixed LT.

type transactionURL struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

type transactionURLs struct {
	ReturnURL       transactionURL `json:"return_url"`
	CancelURL       transactionURL `json:"cancel_url"`
	NotificationURL transactionURL `json:"notification_url"`
}

type transactionBlock struct {
	Amount            string          `json:"amount"`
	Currency          string          `json:"currency"`
	Reference         string          `json:"reference"`
	MerchantData      string          `json:"merchant_data"`
	RecurringRequired bool            `json:"recurring_required"`
	TransactionURL    transactionURLs `json:"transaction_url"`
}

type customerAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type customerBlock struct {
	Email   string           `json:"email"`
	Country string           `json:"country"`
	Locale  string           `json:"locale"`
	IP      string           `json:"ip"`
	Name    string           `json:"name"`
	Phone   string           `json:"phone"`
	Address *customerAddress `json:"address,omitempty"`
}

type orderItem struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

type orderBlock struct {
	Reference string      `json:"reference"`
	Amount    string      `json:"amount"`
	Currency  string      `json:"currency"`
	Items     []orderItem `json:"items"`
}

type appInfo struct {
	Module          string `json:"module"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
}

type transactionPayload struct {
	Transaction transactionBlock `json:"transaction"`
	Customer    customerBlock    `json:"customer"`
	Order       orderBlock       `json:"order"`
	AppInfo     appInfo          `json:"app_info"`
}

// transactionResponse is the gateway's answer to a create or verify call.
type transactionResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	PaymentMethods *struct {
		Other []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"other"`
	} `json:"payment_methods,omitempty"`
}

// gatewayError is the error body the gateway sends on non-2xx responses.
type gatewayError struct {
	Message string `json:"message"`
}
