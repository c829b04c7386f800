package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrZeroAmount      = errors.New("asset: amount must be greater than zero")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for token")
	ErrInvalidAmount   = errors.New("asset: invalid decimal amount")
)

// Amount is an immutable quantity of a token in its smallest unit.
type Amount struct {
	raw   *big.Int
	token Token
}

// NewAmount creates an Amount from a base-unit value.
func NewAmount(token Token, raw *big.Int) Amount {
	if raw == nil {
		raw = new(big.Int)
	}
	return Amount{raw: new(big.Int).Set(raw), token: token}
}

// ParseAmount converts a human decimal string into an Amount of token.
func ParseAmount(token Token, s string) (Amount, error) {
	raw, err := ToBaseUnits(s, token.Decimals)
	if err != nil {
		return Amount{}, err
	}
	return Amount{raw: raw, token: token}, nil
}

// Raw returns a copy of the base-unit value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

// Token returns the token of the amount.
func (a Amount) Token() Token {
	return a.token
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// CoveredBy reports whether an allowance or balance of raw base units is
// enough to spend a.
func (a Amount) CoveredBy(raw *big.Int) bool {
	if raw == nil {
		return a.IsZero()
	}
	return raw.Cmp(a.Raw()) >= 0
}

// ToDecimal converts the amount to decimal.Decimal for display.
func (a Amount) ToDecimal() decimal.Decimal {
	return FromBaseUnits(a.Raw(), a.token.Decimals)
}

// String returns e.g. "25 THRONOS".
func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.ToDecimal().String(), a.token.Symbol)
}

// ToBaseUnits scales a positive decimal string by 10^decimals. Precision
// beyond the token's decimals is rejected rather than truncated.
func ToBaseUnits(s string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidAmount, s, err)
	}
	return DecimalToBaseUnits(d, decimals)
}

// DecimalToBaseUnits is ToBaseUnits for an already parsed decimal.
func DecimalToBaseUnits(d decimal.Decimal, decimals uint8) (*big.Int, error) {
	if d.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if d.IsZero() {
		return nil, ErrZeroAmount
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, ErrTooManyDecimals
	}
	return scaled.BigInt(), nil
}

// FromBaseUnits converts a base-unit value back to a decimal.
func FromBaseUnits(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}
