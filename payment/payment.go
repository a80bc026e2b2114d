// Package payment talks to the payment provider. Callers only see an opaque
// intent handle and a paid/pending/failed status.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// Purpose tags what an intent is paying for.
type Purpose string

const (
	PurposeOrder       Purpose = "order"
	PurposeReservation Purpose = "reservation"
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

// Intent is the client-side handle for a payment.
type Intent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
	MinorAmount  int64   `json:"minorAmount"`
	Currency     string  `json:"currency"`
	Status       Status  `json:"status"`
	ScanURI      string  `json:"scanUri,omitempty"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string, purpose Purpose) (*Intent, error)
	Status(ctx context.Context, intentID string) (Status, error)
}

// ToMinorUnits converts a major-unit amount into the smallest currency unit,
// rounding half away from zero.
func ToMinorUnits(amount float64) (int64, error) {
	d := decimal.NewFromFloat(amount)
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	minor := d.Mul(decimal.NewFromInt(100)).Round(0)
	if !minor.IsPositive() {
		return 0, fmt.Errorf("%w: %v rounds to zero", ErrInvalidAmount, amount)
	}
	return minor.IntPart(), nil
}
