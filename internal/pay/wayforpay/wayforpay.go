package wayforpay

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/payref"
)

const Name = "wayforpay"

type Provider struct {
	merchantAccount string
	secretKey       string
}

func New(cfg *config.WayForPay) *Provider {
	return &Provider{
		merchantAccount: cfg.MerchantAccount,
		secretKey:       cfg.SecretKey,
	}
}

func (p *Provider) Name() string { return Name }

// Sign computes the WayForPay HMAC-MD5 over field values joined with ";".
func Sign(secret string, fields ...string) string {
	mac := hmac.New(md5.New, []byte(secret))
	mac.Write([]byte(strings.Join(fields, ";")))
	return hex.EncodeToString(mac.Sum(nil))
}

type callbackPayload struct {
	MerchantAccount   string  `json:"merchantAccount"`
	OrderReference    string  `json:"orderReference"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	AuthCode          string  `json:"authCode"`
	CardPan           string  `json:"cardPan"`
	TransactionStatus string  `json:"transactionStatus"`
	ReasonCode        int     `json:"reasonCode"`
	TransactionID     int64   `json:"transactionId"`
	MerchantSignature string  `json:"merchantSignature"`
}

// Verify recomputes the signature over the fixed ordered field list of the
// service callback and compares it to merchantSignature.
func (p *Provider) Verify(header http.Header, body []byte) (pay.VerifiedEvent, error) {
	var payload callbackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return pay.VerifiedEvent{}, fmt.Errorf("decode wayforpay callback: %w", err)
	}

	want := Sign(p.secretKey,
		payload.MerchantAccount,
		payload.OrderReference,
		formatAmount(payload.Amount),
		payload.Currency,
		payload.AuthCode,
		payload.CardPan,
		payload.TransactionStatus,
		strconv.Itoa(payload.ReasonCode),
	)
	if !hmac.Equal([]byte(want), []byte(payload.MerchantSignature)) {
		return pay.VerifiedEvent{}, fmt.Errorf("wayforpay signature mismatch")
	}

	return pay.VerifiedEvent{Provider: Name, Payload: body}, nil
}

func (p *Provider) Classify(ev pay.VerifiedEvent) (*pay.SemanticEvent, error) {
	var payload callbackPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode wayforpay callback: %w", err)
	}

	// Payout legs reuse the same callback URL; they are recognizable by the
	// two-field reference form.
	payoutLeg := payref.IsPayout(payload.OrderReference)

	var kind pay.EventKind
	switch payload.TransactionStatus {
	case "InProcessing", "Pending":
		kind = pay.ChargeInitiated
	case "Approved":
		kind = pay.ChargeSettled
		if payoutLeg {
			kind = pay.PayoutSettled
		}
	case "Declined", "Expired", "RefundedVoided":
		kind = pay.ChargeFailed
		if payoutLeg {
			kind = pay.PayoutFailed
		}
	default:
		return nil, nil
	}

	se := &pay.SemanticEvent{
		Kind:         kind,
		Provider:     Name,
		ProviderTxID: strconv.FormatInt(payload.TransactionID, 10),
		Amount:       decimal.NewFromFloat(payload.Amount),
		Currency:     payload.Currency,
	}

	if payoutLeg {
		ref, err := payref.DecodePayout(payload.OrderReference)
		if err != nil {
			return nil, fmt.Errorf("wayforpay payout reference: %w", err)
		}
		se.DonationID = ref.DonationID
		se.ProviderTxID = ref.ProviderTxID
	} else {
		ref, err := payref.DecodeCheckout(payload.OrderReference)
		if err != nil {
			return nil, fmt.Errorf("wayforpay order reference: %w", err)
		}
		se.DonationID = ref.DonationID
		se.Checkout = &ref
	}

	return se, nil
}

// Ack builds the signed accept response WayForPay requires to stop
// redelivering a callback.
func (p *Provider) Ack(ev *pay.SemanticEvent) interface{} {
	orderReference := ""
	if ev != nil && ev.Checkout != nil {
		ref, err := ev.Checkout.Encode()
		if err == nil {
			orderReference = ref
		}
	}
	now := strconv.FormatInt(time.Now().Unix(), 10)
	return map[string]string{
		"orderReference": orderReference,
		"status":         "accept",
		"time":           now,
		"signature":      Sign(p.secretKey, orderReference, "accept", now),
	}
}

func formatAmount(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.Equal(d.Truncate(0)) {
		return d.Truncate(0).String()
	}
	return d.StringFixed(2)
}
