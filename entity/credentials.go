// Package entity defines data models for the Duitku relay service.
package entity

// Credentials identify the merchant to the gateway. The api key is never
// transmitted; it only takes part in signature digests.
type Credentials struct {
	MerchantCode string
	ApiKey       string
}

// MerchantUrls are the endpoints configured for the merchant.
type MerchantUrls struct {
	// Gateway is the base url, without trailing slash
	Gateway  string
	Callback string
	Return   string
}
