package checkoutpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/payref"
)

const Name = "checkout"

type Provider struct {
	webhookSecret    string
	authorizationKey string
}

func New(cfg *config.Checkout) *Provider {
	return &Provider{
		webhookSecret:    cfg.WebhookSecret,
		authorizationKey: cfg.AuthorizationKey,
	}
}

func (p *Provider) Name() string { return Name }

// Verify checks both the static Authorization header and the Cko-Signature
// HMAC-SHA256 over the raw body. The header comparison is constant-time.
func (p *Provider) Verify(header http.Header, body []byte) (pay.VerifiedEvent, error) {
	auth := header.Get("Authorization")
	if subtle.ConstantTimeCompare([]byte(auth), []byte(p.authorizationKey)) != 1 {
		return pay.VerifiedEvent{}, fmt.Errorf("checkout authorization header mismatch")
	}

	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	got := header.Get("Cko-Signature")
	if !hmac.Equal([]byte(want), []byte(got)) {
		return pay.VerifiedEvent{}, fmt.Errorf("checkout body signature mismatch")
	}

	return pay.VerifiedEvent{Provider: Name, Payload: body}, nil
}

type webhookPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		ID           string `json:"id"`
		ActionID     string `json:"action_id"`
		Amount       int64  `json:"amount"` // minor units
		Currency     string `json:"currency"`
		Reference    string `json:"reference"`
		ResponseCode string `json:"response_code"`
	} `json:"data"`
}

func (p *Provider) Classify(ev pay.VerifiedEvent) (*pay.SemanticEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode checkout webhook: %w", err)
	}

	var kind pay.EventKind
	switch payload.Type {
	case "payment_pending":
		kind = pay.ChargeInitiated
	case "payment_captured":
		kind = pay.ChargeSettled
	case "payment_declined", "payment_expired":
		kind = pay.ChargeFailed
	case "payout_paid":
		kind = pay.PayoutSettled
	case "payout_declined":
		kind = pay.PayoutFailed
	default:
		return nil, nil
	}

	se := &pay.SemanticEvent{
		Kind:         kind,
		Provider:     Name,
		EventID:      payload.ID,
		ProviderTxID: payload.Data.ID,
		Amount:       decimal.New(payload.Data.Amount, -2),
		Currency:     payload.Data.Currency,
	}

	switch kind {
	case pay.PayoutSettled, pay.PayoutFailed:
		ref, err := payref.DecodePayout(payload.Data.Reference)
		if err != nil {
			return nil, fmt.Errorf("checkout payout reference: %w", err)
		}
		se.DonationID = ref.DonationID
		se.ProviderTxID = ref.ProviderTxID
	default:
		ref, err := payref.DecodeCheckout(payload.Data.Reference)
		if err != nil {
			return nil, fmt.Errorf("checkout charge reference: %w", err)
		}
		se.DonationID = ref.DonationID
		se.Checkout = &ref
	}

	return se, nil
}
