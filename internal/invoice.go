package internal

import (
	"duitku/entity"
	"strconv"
)

const (
	defaultPaymentMethod  = "VC"
	defaultCustomerName   = "Customer"
	defaultFirstName      = "Test"
	defaultLastName       = "Customer"
	defaultCustomerPhone  = "081234567890"
	defaultProductDetails = "Test Product"
	defaultItemName       = "Test Item"

	// invoiceExpiryMinutes is how long the gateway keeps the payment page open
	invoiceExpiryMinutes = 10
)

var defaultBillingAddress = entity.Address{
	Address:     "Jl. Test",
	City:        "Jakarta",
	PostalCode:  "12345",
	CountryCode: "ID",
}

// InvoiceBuilder assembles signed create-transaction requests.
type InvoiceBuilder struct {
	credentials entity.Credentials
	urls        entity.MerchantUrls
	sign        SignFunc
}

func NewInvoiceBuilder(credentials entity.Credentials, urls entity.MerchantUrls) *InvoiceBuilder {
	return &InvoiceBuilder{
		credentials: credentials,
		urls:        urls,
		sign:        ComputeSignature,
	}
}

// Build validates the order, applies defaults and signs the request.
// Invalid input is reported as *ValidationError before any signing happens.
func (b *InvoiceBuilder) Build(order *entity.InvoiceOrder) (*entity.InvoiceRequest, error) {
	if order == nil || order.MerchantOrderId == "" || order.PaymentAmount == "" || order.CustomerEmail == "" {
		return nil, &ValidationError{Message: "merchantOrderId, paymentAmount, dan customerEmail wajib diisi"}
	}
	amount, err := order.PaymentAmount.Int64()
	if err != nil {
		return nil, &ValidationError{Message: "paymentAmount tidak valid", Err: err}
	}

	signature, err := b.sign(PurposeCreateTransaction, []string{
		b.credentials.MerchantCode,
		order.MerchantOrderId,
		strconv.FormatInt(amount, 10),
	}, b.credentials.ApiKey)
	if err != nil {
		return nil, err
	}

	firstName := valueOr(order.CustomerName, defaultFirstName)
	phone := valueOr(order.CustomerPhone, defaultCustomerPhone)

	address := defaultBillingAddress
	address.FirstName = firstName
	address.LastName = defaultLastName

	return &entity.InvoiceRequest{
		MerchantCode:    b.credentials.MerchantCode,
		PaymentAmount:   amount,
		PaymentMethod:   valueOr(order.PaymentMethod, defaultPaymentMethod),
		MerchantOrderId: order.MerchantOrderId,
		ProductDetails:  valueOr(order.ProductDetails, defaultProductDetails),
		CustomerVaName:  valueOr(order.CustomerName, defaultCustomerName),
		Email:           order.CustomerEmail,
		PhoneNumber:     phone,
		ItemDetails: []entity.ItemDetail{
			{Name: defaultItemName, Price: amount, Quantity: 1},
		},
		CustomerDetail: entity.CustomerDetail{
			FirstName:      firstName,
			LastName:       defaultLastName,
			Email:          order.CustomerEmail,
			PhoneNumber:    phone,
			BillingAddress: address,
		},
		CallbackUrl:  b.urls.Callback,
		ReturnUrl:    b.urls.Return,
		Signature:    signature,
		ExpiryPeriod: invoiceExpiryMinutes,
	}, nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
