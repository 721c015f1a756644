package liqpay

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
)

const testPrivateKey = "sandbox_private_key"

func testProvider() *Provider {
	return New(&config.LiqPay{PrivateKey: testPrivateKey})
}

func callbackBody(t *testing.T, payload map[string]interface{}) []byte {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	data := base64.StdEncoding.EncodeToString(raw)

	form := url.Values{}
	form.Set("data", data)
	form.Set("signature", Sign(testPrivateKey, data))

	return []byte(form.Encode())
}

func TestVerifyAccepts(t *testing.T) {
	p := testProvider()
	body := callbackBody(t, map[string]interface{}{
		"action":   "pay",
		"status":   "success",
		"order_id": "evt-1/cmp-1/usr-1/false/don-1",
	})

	_, err := p.Verify(http.Header{}, body)
	assert.NoError(t, err)
}

func TestVerifyRejectsTamperedData(t *testing.T) {
	p := testProvider()
	body := callbackBody(t, map[string]interface{}{
		"action":   "pay",
		"status":   "success",
		"order_id": "evt-1/cmp-1/usr-1/false/don-1",
	})

	form, err := url.ParseQuery(string(body))
	require.NoError(t, err)

	other := base64.StdEncoding.EncodeToString([]byte(`{"status":"success","amount":9999}`))
	form.Set("data", other)

	_, err = p.Verify(http.Header{}, []byte(form.Encode()))
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSignature(t *testing.T) {
	p := testProvider()

	form := url.Values{}
	form.Set("data", base64.StdEncoding.EncodeToString([]byte(`{}`)))

	_, err := p.Verify(http.Header{}, []byte(form.Encode()))
	assert.Error(t, err)
}

func TestClassifySuccessCharge(t *testing.T) {
	p := testProvider()
	body := callbackBody(t, map[string]interface{}{
		"action":     "pay",
		"status":     "success",
		"order_id":   "evt-1/cmp-1/usr-1/false/don-1",
		"payment_id": 123456,
		"amount":     50.0,
		"currency":   "UAH",
	})

	verified, err := p.Verify(http.Header{}, body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, pay.ChargeSettled, ev.Kind)
	assert.Equal(t, "don-1", ev.DonationID)
	assert.Equal(t, "123456", ev.ProviderTxID)
	assert.True(t, ev.Amount.Equal(decimal.NewFromInt(50)), "amount %s", ev.Amount)
	assert.Equal(t, "UAH", ev.Currency)
}

func TestClassifyFailureCharge(t *testing.T) {
	p := testProvider()
	body := callbackBody(t, map[string]interface{}{
		"action":   "pay",
		"status":   "failure",
		"order_id": "evt-1/cmp-1/usr-1/false/don-1",
	})

	verified, err := p.Verify(http.Header{}, body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, pay.ChargeFailed, ev.Kind)
}

func TestClassifyPayoutLegs(t *testing.T) {
	p := testProvider()

	tests := []struct {
		status string
		want   pay.EventKind
	}{
		{"success", pay.PayoutSettled},
		{"failure", pay.PayoutFailed},
	}

	for _, tt := range tests {
		body := callbackBody(t, map[string]interface{}{
			"action":   "p2pcredit",
			"status":   tt.status,
			"order_id": "tx-555/don-1",
			"amount":   50.0,
			"currency": "UAH",
		})

		verified, err := p.Verify(http.Header{}, body)
		require.NoError(t, err)

		ev, err := p.Classify(verified)
		require.NoError(t, err)
		require.NotNil(t, ev)
		assert.Equal(t, tt.want, ev.Kind)
		assert.Equal(t, "don-1", ev.DonationID)
		assert.Equal(t, "tx-555", ev.ProviderTxID)
	}
}

func TestClassifyIgnoresUnknownStatus(t *testing.T) {
	p := testProvider()
	body := callbackBody(t, map[string]interface{}{
		"action":   "pay",
		"status":   "3ds_verify",
		"order_id": "evt-1/cmp-1/usr-1/false/don-1",
	})

	verified, err := p.Verify(http.Header{}, body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	assert.Nil(t, ev)
}
