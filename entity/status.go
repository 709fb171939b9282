package entity

import (
	"encoding/json"
	"net/url"
)

// StatusQuery is the signed payload posted to /transactionStatus.
type StatusQuery struct {
	MerchantCode    string `json:"merchantCode"`
	MerchantOrderId string `json:"merchantOrderId"`
	Signature       string `json:"signature"`
}

// StatusRequest is the merchant's check-transaction request body.
type StatusRequest struct {
	MerchantOrderId string `json:"merchantOrderId"`
}

func StatusRequestFromForm(values url.Values) *StatusRequest {
	return &StatusRequest{MerchantOrderId: values.Get("merchantOrderId")}
}

// TransactionStatus is the gateway's status response, decoded only for logging.
type TransactionStatus struct {
	MerchantOrderId string `json:"merchantOrderId"`
	Reference       string `json:"reference"`
	Amount          Amount `json:"amount"`
	StatusCode      string `json:"statusCode"`
	StatusMessage   string `json:"statusMessage"`
}

type StatusResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}
