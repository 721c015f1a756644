package liqpay

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/payref"
)

const Name = "liqpay"

type Provider struct {
	privateKey string
}

func New(cfg *config.LiqPay) *Provider {
	return &Provider{privateKey: cfg.PrivateKey}
}

func (p *Provider) Name() string { return Name }

// Sign computes base64(sha1(privateKey + data + privateKey)), the scheme
// LiqPay uses for both outbound requests and callback verification.
func Sign(privateKey, data string) string {
	h := sha1.Sum([]byte(privateKey + data + privateKey))
	return base64.StdEncoding.EncodeToString(h[:])
}

// Verify expects a form-encoded body with data and signature fields. The
// verified payload handed to the classifier is the decoded data JSON.
func (p *Provider) Verify(header http.Header, body []byte) (pay.VerifiedEvent, error) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return pay.VerifiedEvent{}, fmt.Errorf("parse liqpay form: %w", err)
	}
	data := form.Get("data")
	signature := form.Get("signature")
	if data == "" || signature == "" {
		return pay.VerifiedEvent{}, fmt.Errorf("liqpay callback missing data or signature")
	}

	want := Sign(p.privateKey, data)
	if subtle.ConstantTimeCompare([]byte(want), []byte(signature)) != 1 {
		return pay.VerifiedEvent{}, fmt.Errorf("liqpay signature mismatch")
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return pay.VerifiedEvent{}, fmt.Errorf("decode liqpay data: %w", err)
	}

	return pay.VerifiedEvent{Provider: Name, Payload: decoded}, nil
}

type callbackPayload struct {
	Action    string  `json:"action"`
	Status    string  `json:"status"`
	OrderID   string  `json:"order_id"`
	PaymentID int64   `json:"payment_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

func (p *Provider) Classify(ev pay.VerifiedEvent) (*pay.SemanticEvent, error) {
	var payload callbackPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode liqpay callback: %w", err)
	}

	payoutLeg := payload.Action == "p2pcredit"

	var kind pay.EventKind
	switch payload.Status {
	case "processing", "wait_accept":
		kind = pay.ChargeInitiated
	case "success", "sandbox":
		kind = pay.ChargeSettled
		if payoutLeg {
			kind = pay.PayoutSettled
		}
	case "failure", "error", "reversed":
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
		ProviderTxID: fmt.Sprintf("%d", payload.PaymentID),
		Amount:       decimal.NewFromFloat(payload.Amount),
		Currency:     payload.Currency,
	}

	if payoutLeg {
		ref, err := payref.DecodePayout(payload.OrderID)
		if err != nil {
			return nil, fmt.Errorf("liqpay payout reference: %w", err)
		}
		se.DonationID = ref.DonationID
		se.ProviderTxID = ref.ProviderTxID
	} else {
		ref, err := payref.DecodeCheckout(payload.OrderID)
		if err != nil {
			return nil, fmt.Errorf("liqpay order reference: %w", err)
		}
		se.DonationID = ref.DonationID
		se.Checkout = &ref
	}

	return se, nil
}
