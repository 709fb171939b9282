package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a money value in the smallest currency unit as it appeared on
// the wire. Clients send it either as a JSON number or as a string.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	text, err := unmarshalText(data)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(text)
	return nil
}

func (a Amount) String() string {
	return string(a)
}

// Int64 parses the amount as a positive whole number. Decimal notation is
// accepted as long as there is no fractional part, so "50000.00" yields 50000.
// Values beyond the int64 range are rejected.
func (a Amount) Int64() (int64, error) {
	if a == "" {
		return 0, fmt.Errorf("empty amount")
	}
	value, err := decimal.NewFromString(string(a))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", string(a))
	}
	if !value.IsInteger() {
		return 0, fmt.Errorf("amount %s has a fractional part", value.String())
	}
	if !value.IsPositive() {
		return 0, fmt.Errorf("amount %s is not positive", value.String())
	}
	if !value.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %s is out of range", value.String())
	}
	return value.IntPart(), nil
}

// Code is a gateway code such as a result code. It is sent as a string but
// tolerated as a JSON number.
type Code string

func (c *Code) UnmarshalJSON(data []byte) error {
	text, err := unmarshalText(data)
	if err != nil {
		return fmt.Errorf("code: %w", err)
	}
	*c = Code(text)
	return nil
}

func (c Code) String() string {
	return string(c)
}

// unmarshalText reads a JSON string verbatim or a JSON number rendered the
// way a JavaScript client prints it, so 50000.0 becomes "50000".
func unmarshalText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	value, err := decimal.NewFromString(n.String())
	if err != nil {
		return "", err
	}
	return value.String(), nil
}
