package stripepay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/payref"
)

const Name = "stripe"

type Provider struct {
	webhookSecret string
}

func New(cfg *config.Stripe) *Provider {
	return &Provider{webhookSecret: cfg.WebhookSecret}
}

func (p *Provider) Name() string { return Name }

// Verify recomputes the HMAC-SHA256 of the raw body against the
// Stripe-Signature header via the SDK routine.
func (p *Provider) Verify(header http.Header, body []byte) (pay.VerifiedEvent, error) {
	if _, err := webhook.ConstructEvent(body, header.Get("Stripe-Signature"), p.webhookSecret); err != nil {
		return pay.VerifiedEvent{}, fmt.Errorf("stripe signature check: %w", err)
	}
	return pay.VerifiedEvent{Provider: Name, Payload: body}, nil
}

func (p *Provider) Classify(ev pay.VerifiedEvent) (*pay.SemanticEvent, error) {
	var event stripe.Event
	if err := json.Unmarshal(ev.Payload, &event); err != nil {
		return nil, fmt.Errorf("decode stripe event: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		ref, err := payref.DecodeCheckout(sess.ClientReferenceID)
		if err != nil {
			return nil, fmt.Errorf("stripe session reference: %w", err)
		}
		txID := sess.ID
		if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
			txID = sess.PaymentIntent.ID
		}
		return &pay.SemanticEvent{
			Kind:         pay.ChargeSettled,
			Provider:     Name,
			EventID:      event.ID,
			DonationID:   ref.DonationID,
			ProviderTxID: txID,
			Amount:       decimal.New(sess.AmountTotal, -2),
			Currency:     strings.ToUpper(string(sess.Currency)),
			Checkout:     &ref,
		}, nil

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		se := &pay.SemanticEvent{
			Kind:         pay.ChargeFailed,
			Provider:     Name,
			EventID:      event.ID,
			ProviderTxID: pi.ID,
		}
		if raw, ok := pi.Metadata["reference"]; ok {
			if ref, err := payref.DecodeCheckout(raw); err == nil {
				se.DonationID = ref.DonationID
				se.Checkout = &ref
			}
		}
		return se, nil

	case "account.updated":
		var acct stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		if !acct.ChargesEnabled {
			return nil, nil
		}
		return &pay.SemanticEvent{
			Kind:       pay.MerchantOnboarded,
			Provider:   Name,
			EventID:    event.ID,
			CompanyRef: acct.ID,
		}, nil
	}

	return nil, nil
}
