package internal

import (
	"crypto/hmac"
	"fmt"
	"strings"

	"github.com/golang-module/dongle"
)

// Purpose selects the field schema of a gateway signature. The order of the
// fields is part of the gateway contract; the api key is always appended last.
type Purpose int

const (
	PurposeCreateTransaction Purpose = iota
	PurposeNotificationVerify
	PurposeStatusQuery
)

var purposeFields = map[Purpose][]string{
	PurposeCreateTransaction:  {"merchantCode", "merchantOrderId", "paymentAmount"},
	PurposeNotificationVerify: {"merchantCode", "amount", "merchantOrderId"},
	PurposeStatusQuery:        {"merchantCode", "merchantOrderId"},
}

// Fields returns the schema of the purpose without the trailing api key.
func (p Purpose) Fields() []string {
	fields := purposeFields[p]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

func (p Purpose) String() string {
	switch p {
	case PurposeCreateTransaction:
		return "create transaction"
	case PurposeNotificationVerify:
		return "notification"
	case PurposeStatusQuery:
		return "status query"
	}
	return fmt.Sprintf("purpose(%d)", int(p))
}

// SignFunc computes a signature; ComputeSignature is the implementation used outside tests.
type SignFunc func(purpose Purpose, fields []string, apiKey string) (string, error)

// ComputeSignature returns the lowercase hex MD5 digest of the fields followed
// by the api key, concatenated without separators. Fields must be given in the
// order of purpose.Fields(), already rendered as text.
func ComputeSignature(purpose Purpose, fields []string, apiKey string) (string, error) {
	schema := purpose.Fields()
	if len(schema) == 0 {
		return "", fmt.Errorf("unknown signature purpose %d", int(purpose))
	}
	if len(fields) != len(schema) {
		return "", fmt.Errorf("%s signature: %w: got %d, want %d", purpose, ErrFieldCount, len(fields), len(schema))
	}

	var builder strings.Builder
	for i, value := range fields {
		if value == "" {
			return "", &MissingFieldError{Purpose: purpose, Field: schema[i]}
		}
		builder.WriteString(value)
	}
	if apiKey == "" {
		return "", &MissingFieldError{Purpose: purpose, Field: "apiKey"}
	}
	builder.WriteString(apiKey)

	return dongle.Encrypt.FromString(builder.String()).ByMd5().ToHexString(), nil
}

// VerifySignature recomputes the signature and compares it with candidate,
// ignoring letter case. It never fails; any error counts as a mismatch.
func VerifySignature(purpose Purpose, fields []string, apiKey string, candidate string) bool {
	expected, err := ComputeSignature(purpose, fields, apiKey)
	if err != nil {
		return false
	}
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	return hmac.Equal([]byte(expected), []byte(candidate))
}
