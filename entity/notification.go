package entity

import "net/url"

// Notification is the asynchronous payment result posted by the gateway to
// the callback url, either form-encoded or as JSON.
type Notification struct {
	MerchantCode     string `json:"merchantCode"`
	Amount           Amount `json:"amount"`
	MerchantOrderId  string `json:"merchantOrderId"`
	ProductDetail    string `json:"productDetail,omitempty"`
	AdditionalParam  string `json:"additionalParam,omitempty"`
	PaymentCode      string `json:"paymentCode,omitempty"`
	ResultCode       Code   `json:"resultCode"`
	MerchantUserId   string `json:"merchantUserId,omitempty"`
	Reference        string `json:"reference,omitempty"`
	Signature        string `json:"signature"`
	PublisherOrderId string `json:"publisherOrderId,omitempty"`
	SpUserHash       string `json:"spUserHash,omitempty"`
	SettlementDate   string `json:"settlementDate,omitempty"`
	IssuerCode       string `json:"issuerCode,omitempty"`
}

// NotificationFromForm reads the form fields the gateway uses for callbacks.
func NotificationFromForm(values url.Values) *Notification {
	return &Notification{
		MerchantCode:     values.Get("merchantCode"),
		Amount:           Amount(values.Get("amount")),
		MerchantOrderId:  values.Get("merchantOrderId"),
		ProductDetail:    values.Get("productDetail"),
		AdditionalParam:  values.Get("additionalParam"),
		PaymentCode:      values.Get("paymentCode"),
		ResultCode:       Code(values.Get("resultCode")),
		MerchantUserId:   values.Get("merchantUserId"),
		Reference:        values.Get("reference"),
		Signature:        values.Get("signature"),
		PublisherOrderId: values.Get("publisherOrderId"),
		SpUserHash:       values.Get("spUserHash"),
		SettlementDate:   values.Get("settlementDate"),
		IssuerCode:       values.Get("issuerCode"),
	}
}

// Gateway result codes carried in Notification.ResultCode
const (
	ResultCodeSuccess = "00"
	ResultCodeFailed  = "01"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
	PaymentPending PaymentStatus = "PENDING"
)

type RejectReason string

const (
	ReasonMissingParameter RejectReason = "MissingParameter"
	ReasonInvalidSignature RejectReason = "InvalidSignature"
)

// Outcome is the verdict on one notification. Exactly one of Status (when
// Accepted) or Reason (when rejected) is meaningful.
type Outcome struct {
	Accepted   bool          `json:"accepted"`
	Status     PaymentStatus `json:"status,omitempty"`
	ResultCode string        `json:"result_code,omitempty"`
	Reason     RejectReason  `json:"reason,omitempty"`
}

func Accepted(status PaymentStatus, resultCode string) *Outcome {
	return &Outcome{Accepted: true, Status: status, ResultCode: resultCode}
}

func Rejected(reason RejectReason) *Outcome {
	return &Outcome{Reason: reason}
}
