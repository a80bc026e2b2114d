package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	"go.uber.org/zap"

	"bookmarket/logger"
)

const omiseSourcesURL = "https://api.omise.co/sources"

// Omise creates PromptPay charges; the charge id doubles as the client secret.
type Omise struct {
	client    *omise.Client
	publicKey string
	currency  string

	httpClient *http.Client
	sourcesURL string
}

func NewOmise(publicKey, secretKey, currency string) (*Omise, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("omise client init failed: %w", err)
	}
	return &Omise{
		client:     client,
		publicKey:  publicKey,
		currency:   currency,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		sourcesURL: omiseSourcesURL,
	}, nil
}

type qrSource struct {
	ID            string `json:"id"`
	ScannableCode struct {
		Image struct {
			URI string `json:"uri"`
		} `json:"image"`
	} `json:"scannable_code"`
}

func (o *Omise) CreateIntent(ctx context.Context, amount float64, currency string, purpose Purpose) (*Intent, error) {
	minor, err := ToMinorUnits(amount)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = o.currency
	}
	currency = strings.ToLower(currency)

	source, err := o.createSource(ctx, minor, currency)
	if err != nil {
		return nil, err
	}

	charge := &omise.Charge{}
	if err := o.client.Do(charge, &operations.CreateCharge{
		Amount:      minor,
		Currency:    currency,
		Source:      source.ID,
		Description: string(purpose),
	}); err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}

	logger.FromCtx(ctx).Info("payment intent created",
		zap.String("charge_id", charge.ID),
		zap.String("source_id", source.ID),
		zap.String("purpose", string(purpose)),
		zap.Int64("amount_minor", minor),
	)

	return &Intent{
		ID:           charge.ID,
		ClientSecret: charge.ID,
		Amount:       amount,
		MinorAmount:  minor,
		Currency:     currency,
		Status:       mapChargeStatus(charge.Paid, string(charge.Status)),
		ScanURI:      source.ScannableCode.Image.URI,
	}, nil
}

func (o *Omise) Status(_ context.Context, intentID string) (Status, error) {
	charge := &omise.Charge{}
	if err := o.client.Do(charge, &operations.RetrieveCharge{ChargeID: intentID}); err != nil {
		return "", fmt.Errorf("retrieve charge: %w", err)
	}
	return mapChargeStatus(charge.Paid, string(charge.Status)), nil
}

// createSource registers a PromptPay source with the public key.
func (o *Omise) createSource(ctx context.Context, minor int64, currency string) (*qrSource, error) {
	body, err := json.Marshal(map[string]any{
		"amount":   minor,
		"currency": currency,
		"type":     "promptpay",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.sourcesURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(o.publicKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create source: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read source response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("create source returned status %d: %s", resp.StatusCode, raw)
	}

	var src qrSource
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("parse source response: %w", err)
	}
	if src.ID == "" {
		return nil, fmt.Errorf("create source: empty source id")
	}
	return &src, nil
}

func mapChargeStatus(paid bool, status string) Status {
	if paid || status == "successful" {
		return StatusPaid
	}
	switch status {
	case "failed", "expired", "reversed":
		return StatusFailed
	}
	return StatusPending
}
