package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay/wayforpay"
)

type WayForPayClient interface {
	// CreateInvoice builds a hosted payment page for one donation.
	CreateInvoice(ctx context.Context, reference string, amount decimal.Decimal, currency, productName, callbackURL string) (string, error)

	// Account2Card transfers settled funds to the company account. The
	// transfer result arrives later through the same service callback.
	Account2Card(ctx context.Context, reference string, amount decimal.Decimal, currency, recipientIBAN, recipientName string) error
}

type wayForPayClientImpl struct {
	httpClient      *http.Client
	baseApiURL      string
	merchantAccount string
	merchantDomain  string
	secretKey       string
}

func NewWayForPayClient(cfg *config.WayForPay) WayForPayClient {
	return &wayForPayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:      cfg.BaseApiURL,
		merchantAccount: cfg.MerchantAccount,
		merchantDomain:  cfg.MerchantDomain,
		secretKey:       cfg.SecretKey,
	}
}

func (c *wayForPayClientImpl) post(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("wayforpay error %d: %s", resp.StatusCode, string(b))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode wayforpay response: %w", err)
	}

	return result, nil
}

func (c *wayForPayClientImpl) CreateInvoice(ctx context.Context, reference string, amount decimal.Decimal, currency, productName, callbackURL string) (string, error) {
	orderDate := time.Now().Unix()
	amountStr := amount.StringFixed(2)

	signature := wayforpay.Sign(c.secretKey,
		c.merchantAccount,
		c.merchantDomain,
		reference,
		strconv.FormatInt(orderDate, 10),
		amountStr,
		currency,
		productName,
		"1",
		amountStr,
	)

	result, err := c.post(ctx, map[string]interface{}{
		"transactionType":    "CREATE_INVOICE",
		"merchantAccount":    c.merchantAccount,
		"merchantDomainName": c.merchantDomain,
		"merchantSignature":  signature,
		"apiVersion":         1,
		"orderReference":     reference,
		"orderDate":          orderDate,
		"amount":             amountStr,
		"currency":           currency,
		"productName":        []string{productName},
		"productCount":       []int{1},
		"productPrice":       []string{amountStr},
		"serviceUrl":         callbackURL,
	})
	if err != nil {
		return "", err
	}

	invoiceURL, _ := result["invoiceUrl"].(string)
	if invoiceURL == "" {
		reason, _ := result["reason"].(string)
		return "", fmt.Errorf("wayforpay invoice rejected: %s", reason)
	}

	return invoiceURL, nil
}

func (c *wayForPayClientImpl) Account2Card(ctx context.Context, reference string, amount decimal.Decimal, currency, recipientIBAN, recipientName string) error {
	amountStr := amount.StringFixed(2)

	signature := wayforpay.Sign(c.secretKey,
		c.merchantAccount,
		reference,
		amountStr,
		currency,
	)

	result, err := c.post(ctx, map[string]interface{}{
		"transactionType":   "P2P_CREDIT",
		"merchantAccount":   c.merchantAccount,
		"merchantSignature": signature,
		"apiVersion":        1,
		"orderReference":    reference,
		"amount":            amountStr,
		"currency":          currency,
		"recipientIban":     recipientIBAN,
		"recipientName":     recipientName,
	})
	if err != nil {
		return err
	}

	if reason, ok := result["reasonCode"].(float64); ok && int(reason) != 1100 {
		msg, _ := result["reason"].(string)
		return fmt.Errorf("wayforpay payout rejected: code=%d reason=%s", int(reason), msg)
	}

	return nil
}
