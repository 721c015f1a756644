package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
)

type CheckoutClient interface {
	// RequestPayment creates a hosted payment for one donation and returns
	// the redirect link the donor should be sent to.
	RequestPayment(ctx context.Context, reference string, amount decimal.Decimal, currency, successURL, failureURL string) (*CheckoutPaymentResponse, error)
}

type CheckoutPaymentResponse struct {
	PaymentID   string
	RedirectURL string
}

type checkoutClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	secretKey  string
}

func NewCheckoutClient(cfg *config.Checkout) CheckoutClient {
	return &checkoutClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: cfg.BaseApiURL,
		secretKey:  cfg.SecretKey,
	}
}

type checkoutLink struct {
	Href string `json:"href"`
}

type checkoutPaymentResult struct {
	ID     string                  `json:"id"`
	Status string                  `json:"status"`
	Links  map[string]checkoutLink `json:"_links"`
}

func (c *checkoutClientImpl) RequestPayment(ctx context.Context, reference string, amount decimal.Decimal, currency, successURL, failureURL string) (*CheckoutPaymentResponse, error) {
	payload := map[string]interface{}{
		"amount":    amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency":  currency,
		"reference": reference,
		"source": map[string]string{
			"type": "hosted",
		},
		"success_url": successURL,
		"failure_url": failureURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/payments", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("checkout error %d: %s", resp.StatusCode, string(b))
	}

	var result checkoutPaymentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode checkout response: %w", err)
	}

	return &CheckoutPaymentResponse{
		PaymentID:   result.ID,
		RedirectURL: result.Links["redirect"].Href,
	}, nil
}
