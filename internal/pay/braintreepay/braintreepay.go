package braintreepay

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/payref"
)

const Name = "braintree"

// Provider verifies and classifies Braintree webhooks through the SDK's own
// parse-and-verify call. The gateway is shared with the outbound client.
type Provider struct {
	gateway *braintree.Braintree
}

func New(gateway *braintree.Braintree) *Provider {
	return &Provider{gateway: gateway}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) parse(body []byte) (*braintree.WebhookNotification, error) {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse braintree form: %w", err)
	}
	n, err := p.gateway.WebhookNotification().Parse(form.Get("bt_signature"), form.Get("bt_payload"))
	if err != nil {
		return nil, fmt.Errorf("braintree webhook parse: %w", err)
	}
	return n, nil
}

func (p *Provider) Verify(header http.Header, body []byte) (pay.VerifiedEvent, error) {
	if _, err := p.parse(body); err != nil {
		return pay.VerifiedEvent{}, err
	}
	return pay.VerifiedEvent{Provider: Name, Payload: body}, nil
}

func (p *Provider) Classify(ev pay.VerifiedEvent) (*pay.SemanticEvent, error) {
	n, err := p.parse(ev.Payload)
	if err != nil {
		return nil, err
	}

	switch n.Kind {
	case braintree.TransactionSettledWebhook:
		txn := n.Subject.Transaction
		if txn == nil {
			return nil, fmt.Errorf("braintree settled webhook without transaction")
		}
		se := &pay.SemanticEvent{
			Kind:         pay.ChargeSettled,
			Provider:     Name,
			ProviderTxID: txn.Id,
			Amount:       fromBraintreeDecimal(txn.Amount),
			Currency:     txn.CurrencyISOCode,
		}
		if txn.OrderId != "" {
			ref, err := payref.DecodeCheckout(txn.OrderId)
			if err != nil {
				return nil, fmt.Errorf("braintree order reference: %w", err)
			}
			se.DonationID = ref.DonationID
			se.Checkout = &ref
		}
		return se, nil

	case braintree.TransactionSettlementDeclinedWebhook:
		txn := n.Subject.Transaction
		if txn == nil {
			return nil, fmt.Errorf("braintree declined webhook without transaction")
		}
		se := &pay.SemanticEvent{
			Kind:         pay.ChargeFailed,
			Provider:     Name,
			ProviderTxID: txn.Id,
		}
		if txn.OrderId != "" {
			if ref, err := payref.DecodeCheckout(txn.OrderId); err == nil {
				se.DonationID = ref.DonationID
				se.Checkout = &ref
			}
		}
		return se, nil

	case braintree.DisbursementWebhook, braintree.DisbursementExceptionWebhook:
		d := n.Subject.Disbursement
		if d == nil || len(d.TransactionIds) == 0 {
			return nil, nil
		}
		kind := pay.PayoutSettled
		if n.Kind == braintree.DisbursementExceptionWebhook || !d.Success {
			kind = pay.PayoutFailed
		}
		return &pay.SemanticEvent{
			Kind:         kind,
			Provider:     Name,
			EventID:      d.Id,
			ProviderTxID: d.TransactionIds[0],
			Amount:       fromBraintreeDecimal(d.Amount),
		}, nil

	case braintree.SubMerchantAccountApprovedWebhook:
		ma := n.Subject.MerchantAccount
		if ma == nil {
			return nil, fmt.Errorf("braintree onboarding webhook without merchant account")
		}
		return &pay.SemanticEvent{
			Kind:       pay.MerchantOnboarded,
			Provider:   Name,
			CompanyRef: ma.Id,
		}, nil
	}

	return nil, nil
}

func fromBraintreeDecimal(d *braintree.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return decimal.New(d.Unscaled, -int32(d.Scale))
}
