// Package pay defines the provider-agnostic webhook pipeline: every payment
// provider is a Provider variant that verifies an inbound request and maps it
// to one of a small set of semantic events the ledger knows how to apply.
package pay

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/payref"
)

type EventKind string

const (
	ChargeInitiated   EventKind = "charge_initiated"
	ChargeSettled     EventKind = "charge_settled"
	ChargeFailed      EventKind = "charge_failed"
	PayoutSettled     EventKind = "payout_settled"
	PayoutFailed      EventKind = "payout_failed"
	MerchantOnboarded EventKind = "merchant_onboarded"
)

// VerifiedEvent is a webhook payload whose authenticity has been proven.
// Only verified payloads reach a classifier.
type VerifiedEvent struct {
	Provider string
	Payload  []byte
}

// SemanticEvent is the provider-independent outcome of classification.
// DonationID may be empty when the provider only reports its own transaction
// id; the ledger then resolves the donation by ProviderTxID.
type SemanticEvent struct {
	Kind     EventKind
	Provider string

	// EventID is the provider-assigned delivery id, used for dedupe.
	// Empty when the provider does not assign one.
	EventID string

	DonationID   string
	ProviderTxID string

	// CompanyRef is the provider-side merchant/account id, set for
	// merchant_onboarded events.
	CompanyRef string

	Amount   decimal.Decimal
	Currency string

	Checkout *payref.Checkout
}

// Provider is the per-vendor capability the orchestrator sequences:
// verify first, classify second, never the other way around.
type Provider interface {
	Name() string
	Verify(header http.Header, body []byte) (VerifiedEvent, error)
	// Classify returns nil for event types the reconciliation layer ignores.
	Classify(ev VerifiedEvent) (*SemanticEvent, error)
}

// Acknowledger is implemented by providers that require a specific
// acknowledgment body instead of the default JSON ack.
type Acknowledger interface {
	Ack(ev *SemanticEvent) interface{}
}
