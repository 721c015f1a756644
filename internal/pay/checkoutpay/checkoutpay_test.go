package checkoutpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
)

const (
	testWebhookSecret = "wh-secret"
	testAuthKey       = "auth-key-123"
)

func testProvider() *Provider {
	return New(&config.Checkout{
		WebhookSecret:    testWebhookSecret,
		AuthorizationKey: testAuthKey,
	})
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func signedHeaders(body []byte) http.Header {
	h := http.Header{}
	h.Set("Authorization", testAuthKey)
	h.Set("Cko-Signature", sign(body))
	return h
}

func chargeBody(eventType string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_abc",
		"type": %q,
		"data": {
			"id": "pay_xyz",
			"amount": 5000,
			"currency": "USD",
			"reference": "evt-1/cmp-1/usr-1/false/don-1"
		}
	}`, eventType))
}

func TestVerifyAccepts(t *testing.T) {
	p := testProvider()
	body := chargeBody("payment_captured")

	_, err := p.Verify(signedHeaders(body), body)
	assert.NoError(t, err)
}

func TestVerifyRejectsBadAuthorization(t *testing.T) {
	p := testProvider()
	body := chargeBody("payment_captured")

	h := signedHeaders(body)
	h.Set("Authorization", "wrong")

	_, err := p.Verify(h, body)
	assert.Error(t, err)
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	p := testProvider()
	body := chargeBody("payment_captured")
	h := signedHeaders(body)

	// flip a single byte after signing
	tampered := append([]byte(nil), body...)
	tampered[len(tampered)/2] ^= 0x01

	_, err := p.Verify(h, tampered)
	assert.Error(t, err)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	p := testProvider()
	body := chargeBody("payment_captured")

	h := signedHeaders(body)
	h.Set("Cko-Signature", sign([]byte("something else")))

	_, err := p.Verify(h, body)
	assert.Error(t, err)
}

func TestClassifyCaptured(t *testing.T) {
	p := testProvider()
	body := chargeBody("payment_captured")

	verified, err := p.Verify(signedHeaders(body), body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, pay.ChargeSettled, ev.Kind)
	assert.Equal(t, "evt_abc", ev.EventID)
	assert.Equal(t, "don-1", ev.DonationID)
	assert.Equal(t, "pay_xyz", ev.ProviderTxID)
	assert.True(t, ev.Amount.Equal(decimal.NewFromInt(50)), "amount %s", ev.Amount)
	assert.Equal(t, "USD", ev.Currency)
}

func TestClassifyDeclined(t *testing.T) {
	p := testProvider()
	body := chargeBody("payment_declined")

	verified, err := p.Verify(signedHeaders(body), body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, pay.ChargeFailed, ev.Kind)
}

func TestClassifyPayout(t *testing.T) {
	body := []byte(`{
		"id": "evt_po",
		"type": "payout_declined",
		"data": {
			"id": "pay_po",
			"amount": 5000,
			"currency": "USD",
			"reference": "pay_xyz/don-1"
		}
	}`)

	p := testProvider()
	verified, err := p.Verify(signedHeaders(body), body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, pay.PayoutFailed, ev.Kind)
	assert.Equal(t, "don-1", ev.DonationID)
	assert.Equal(t, "pay_xyz", ev.ProviderTxID)
}

func TestClassifyIgnoresUnknownType(t *testing.T) {
	p := testProvider()
	body := chargeBody("card_verified")

	verified, err := p.Verify(signedHeaders(body), body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestClassifyBadReference(t *testing.T) {
	body := []byte(`{
		"id": "evt_bad",
		"type": "payment_captured",
		"data": {
			"id": "pay_bad",
			"amount": 5000,
			"currency": "USD",
			"reference": "not-a-composite-key"
		}
	}`)

	p := testProvider()
	verified, err := p.Verify(signedHeaders(body), body)
	require.NoError(t, err)

	_, err = p.Classify(verified)
	assert.Error(t, err)
}
