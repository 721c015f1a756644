package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay/liqpay"
)

type LiqPayClient interface {
	// CheckoutLink builds the signed hosted-checkout redirect for a donation.
	CheckoutLink(reference string, amount decimal.Decimal, currency, description, callbackURL, resultURL string) (string, error)

	// P2PCredit moves previously collected funds to the company card/IBAN.
	// This is the payout leg; its own result arrives through the callback.
	P2PCredit(ctx context.Context, reference string, amount decimal.Decimal, currency, receiverIBAN string) error
}

type liqPayClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	publicKey  string
	privateKey string
}

func NewLiqPayClient(cfg *config.LiqPay) LiqPayClient {
	return &liqPayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: cfg.BaseApiURL,
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
	}
}

func (c *liqPayClientImpl) encode(params map[string]interface{}) (data, signature string, err error) {
	params["public_key"] = c.publicKey
	params["version"] = 3

	raw, err := json.Marshal(params)
	if err != nil {
		return "", "", fmt.Errorf("marshal liqpay params: %w", err)
	}

	data = base64.StdEncoding.EncodeToString(raw)
	return data, liqpay.Sign(c.privateKey, data), nil
}

func (c *liqPayClientImpl) CheckoutLink(reference string, amount decimal.Decimal, currency, description, callbackURL, resultURL string) (string, error) {
	data, signature, err := c.encode(map[string]interface{}{
		"action":      "pay",
		"amount":      amount.InexactFloat64(),
		"currency":    currency,
		"description": description,
		"order_id":    reference,
		"server_url":  callbackURL,
		"result_url":  resultURL,
	})
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("data", data)
	q.Set("signature", signature)

	return c.baseApiURL + "/3/checkout?" + q.Encode(), nil
}

func (c *liqPayClientImpl) P2PCredit(ctx context.Context, reference string, amount decimal.Decimal, currency, receiverIBAN string) error {
	data, signature, err := c.encode(map[string]interface{}{
		"action":   "p2pcredit",
		"amount":   amount.InexactFloat64(),
		"currency": currency,
		"order_id": reference,
		"iban":     receiverIBAN,
	})
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("data", data)
	form.Set("signature", signature)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/request", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("liqpay error %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Result string `json:"result"`
		Status string `json:"status"`
		ErrMsg string `json:"err_description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode liqpay response: %w", err)
	}
	if result.Result == "error" || result.Status == "error" || result.Status == "failure" {
		return fmt.Errorf("liqpay p2pcredit rejected: %s", result.ErrMsg)
	}

	return nil
}
