package stripepay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
)

const testWebhookSecret = "whsec_test_secret"

func testProvider() *Provider {
	return New(&config.Stripe{WebhookSecret: testWebhookSecret})
}

// signedHeader builds the t=...,v1=... header the same way Stripe does:
// HMAC-SHA256 over "<timestamp>.<body>" keyed with the endpoint secret.
func signedHeader(body []byte) http.Header {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, body)

	h := http.Header{}
	h.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	return h
}

// eventBody pins api_version to the SDK's; ConstructEvent rejects a mismatch.
func eventBody(id, eventType, object string) []byte {
	return []byte(fmt.Sprintf(
		`{"id": %q, "api_version": %q, "type": %q, "data": {"object": %s}}`,
		id, stripe.APIVersion, eventType, object,
	))
}

func TestVerifyAccepts(t *testing.T) {
	p := testProvider()
	body := eventBody("evt_1", "checkout.session.completed", `{}`)

	_, err := p.Verify(signedHeader(body), body)
	assert.NoError(t, err)
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	p := testProvider()
	body := eventBody("evt_1", "checkout.session.completed", `{}`)
	h := signedHeader(body)

	_, err := p.Verify(h, eventBody("evt_2", "checkout.session.completed", `{}`))
	assert.Error(t, err)
}

func TestVerifyRejectsMissingHeader(t *testing.T) {
	p := testProvider()
	body := eventBody("evt_1", "checkout.session.completed", `{}`)

	_, err := p.Verify(http.Header{}, body)
	assert.Error(t, err)
}

func TestClassifySessionCompleted(t *testing.T) {
	p := testProvider()
	body := eventBody("evt_sess", "checkout.session.completed", `{
		"id": "cs_test_1",
		"client_reference_id": "evt-1/cmp-1/usr-1/false/don-1",
		"amount_total": 5000,
		"currency": "usd",
		"payment_intent": {"id": "pi_123"}
	}`)

	verified, err := p.Verify(signedHeader(body), body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, pay.ChargeSettled, ev.Kind)
	assert.Equal(t, "evt_sess", ev.EventID)
	assert.Equal(t, "don-1", ev.DonationID)
	assert.Equal(t, "pi_123", ev.ProviderTxID)
	assert.True(t, ev.Amount.Equal(decimal.NewFromInt(50)), "amount %s", ev.Amount)
	assert.Equal(t, "USD", ev.Currency)
	require.NotNil(t, ev.Checkout)
	assert.Equal(t, "evt-1", ev.Checkout.EventID)
}

func TestClassifyPaymentFailed(t *testing.T) {
	p := testProvider()
	body := eventBody("evt_fail", "payment_intent.payment_failed", `{
		"id": "pi_456",
		"metadata": {"reference": "evt-1/cmp-1/usr-1/false/don-1"}
	}`)

	verified, err := p.Verify(signedHeader(body), body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, pay.ChargeFailed, ev.Kind)
	assert.Equal(t, "don-1", ev.DonationID)
	assert.Equal(t, "pi_456", ev.ProviderTxID)
}

func TestClassifyAccountUpdated(t *testing.T) {
	p := testProvider()
	body := eventBody("evt_acct", "account.updated", `{
		"id": "acct_789",
		"charges_enabled": true
	}`)

	verified, err := p.Verify(signedHeader(body), body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, pay.MerchantOnboarded, ev.Kind)
	assert.Equal(t, "acct_789", ev.CompanyRef)
}

func TestClassifyAccountNotYetEnabled(t *testing.T) {
	p := testProvider()
	body := eventBody("evt_acct2", "account.updated", `{
		"id": "acct_789",
		"charges_enabled": false
	}`)

	verified, err := p.Verify(signedHeader(body), body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestClassifyIgnoresUnknownType(t *testing.T) {
	p := testProvider()
	body := eventBody("evt_x", "charge.refunded", `{}`)

	verified, err := p.Verify(signedHeader(body), body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	assert.Nil(t, ev)
}
