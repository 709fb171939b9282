package entity

import (
	"encoding/json"
	"net/url"
)

// InvoiceOrder is the merchant's create-invoice request body.
type InvoiceOrder struct {
	MerchantOrderId string `json:"merchantOrderId"`
	PaymentAmount   Amount `json:"paymentAmount"`
	PaymentMethod   string `json:"paymentMethod,omitempty"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerName    string `json:"customerName,omitempty"`
	CustomerPhone   string `json:"customerPhone,omitempty"`
	ProductDetails  string `json:"productDetails,omitempty"`
}

// InvoiceOrderFromForm reads a form-encoded create-invoice request.
func InvoiceOrderFromForm(values url.Values) *InvoiceOrder {
	return &InvoiceOrder{
		MerchantOrderId: values.Get("merchantOrderId"),
		PaymentAmount:   Amount(values.Get("paymentAmount")),
		PaymentMethod:   values.Get("paymentMethod"),
		CustomerEmail:   values.Get("customerEmail"),
		CustomerName:    values.Get("customerName"),
		CustomerPhone:   values.Get("customerPhone"),
		ProductDetails:  values.Get("productDetails"),
	}
}

// InvoiceRequest is the signed create-transaction payload posted to /v2/inquiry.
type InvoiceRequest struct {
	MerchantCode     string         `json:"merchantCode"`
	PaymentAmount    int64          `json:"paymentAmount"`
	PaymentMethod    string         `json:"paymentMethod"`
	MerchantOrderId  string         `json:"merchantOrderId"`
	ProductDetails   string         `json:"productDetails"`
	AdditionalParam  string         `json:"additionalParam"`
	MerchantUserInfo string         `json:"merchantUserInfo"`
	CustomerVaName   string         `json:"customerVaName"`
	Email            string         `json:"email"`
	PhoneNumber      string         `json:"phoneNumber"`
	ItemDetails      []ItemDetail   `json:"itemDetails"`
	CustomerDetail   CustomerDetail `json:"customerDetail"`
	CallbackUrl      string         `json:"callbackUrl"`
	ReturnUrl        string         `json:"returnUrl"`
	Signature        string         `json:"signature"`

	// ExpiryPeriod in minutes
	ExpiryPeriod int `json:"expiryPeriod"`
}

type ItemDetail struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

type CustomerDetail struct {
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	PhoneNumber    string  `json:"phoneNumber"`
	BillingAddress Address `json:"billingAddress"`
}

type Address struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
}

// InvoiceResponse holds the fields of the gateway's inquiry response the
// relay cares about; the full body is passed back untouched.
type InvoiceResponse struct {
	MerchantCode  string `json:"merchantCode"`
	Reference     string `json:"reference"`
	PaymentUrl    string `json:"paymentUrl"`
	VaNumber      string `json:"vaNumber"`
	Amount        Amount `json:"amount"`
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

// InvoiceResult is what the relay returns to the merchant for a created invoice.
type InvoiceResult struct {
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data"`
	PaymentUrl  string          `json:"paymentUrl"`
	Reference   string          `json:"reference"`
	CallbackUrl string          `json:"callbackUrl"`
}
