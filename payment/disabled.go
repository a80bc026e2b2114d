package payment

import (
	"context"
	"errors"
)

var ErrDisabled = errors.New("payments are not configured")

// Disabled is used when no provider keys are set; every call fails.
type Disabled struct{}

func (Disabled) CreateIntent(context.Context, float64, string, Purpose) (*Intent, error) {
	return nil, ErrDisabled
}

func (Disabled) Status(context.Context, string) (Status, error) {
	return "", ErrDisabled
}
