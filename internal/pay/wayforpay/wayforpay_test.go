package wayforpay

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
)

const testSecret = "flk3409refn54t54t*FNJRET"

func testProvider() *Provider {
	return New(&config.WayForPay{
		MerchantAccount: "test_merch",
		SecretKey:       testSecret,
	})
}

func signedCallback(t *testing.T, orderReference, status string, amount float64) []byte {
	t.Helper()

	payload := map[string]interface{}{
		"merchantAccount":   "test_merch",
		"orderReference":    orderReference,
		"amount":            amount,
		"currency":          "UAH",
		"authCode":          "123456",
		"cardPan":           "41****1111",
		"transactionStatus": status,
		"reasonCode":        1100,
		"transactionId":     900100,
	}
	payload["merchantSignature"] = Sign(testSecret,
		"test_merch", orderReference, formatAmount(amount), "UAH",
		"123456", "41****1111", status, "1100",
	)

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestVerifyAccepts(t *testing.T) {
	p := testProvider()
	body := signedCallback(t, "evt-1/cmp-1/usr-1/false/don-1", "Approved", 50)

	_, err := p.Verify(http.Header{}, body)
	assert.NoError(t, err)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	p := testProvider()
	body := signedCallback(t, "evt-1/cmp-1/usr-1/false/don-1", "Approved", 50)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	payload["merchantSignature"] = "0000deadbeef0000deadbeef0000dead"
	tampered, err := json.Marshal(payload)
	require.NoError(t, err)

	_, err = p.Verify(http.Header{}, tampered)
	assert.Error(t, err)
}

func TestVerifyRejectsTamperedAmount(t *testing.T) {
	p := testProvider()
	body := signedCallback(t, "evt-1/cmp-1/usr-1/false/don-1", "Approved", 50)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	payload["amount"] = 5000.0
	tampered, err := json.Marshal(payload)
	require.NoError(t, err)

	_, err = p.Verify(http.Header{}, tampered)
	assert.Error(t, err)
}

func TestClassifyApprovedCharge(t *testing.T) {
	p := testProvider()
	body := signedCallback(t, "evt-1/cmp-1/usr-1/false/don-1", "Approved", 50)

	verified, err := p.Verify(http.Header{}, body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, pay.ChargeSettled, ev.Kind)
	assert.Equal(t, "don-1", ev.DonationID)
	assert.Equal(t, "900100", ev.ProviderTxID)
	assert.Equal(t, "UAH", ev.Currency)
	assert.True(t, ev.Amount.Equal(decimal.NewFromInt(50)), "amount %s", ev.Amount)
	require.NotNil(t, ev.Checkout)
	assert.Equal(t, "evt-1", ev.Checkout.EventID)
}

func TestClassifyDeclinedCharge(t *testing.T) {
	p := testProvider()
	body := signedCallback(t, "evt-1/cmp-1/usr-1/false/don-1", "Declined", 50)

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
		{"Approved", pay.PayoutSettled},
		{"Declined", pay.PayoutFailed},
	}

	for _, tt := range tests {
		body := signedCallback(t, "tx-900100/don-1", tt.status, 50)

		verified, err := p.Verify(http.Header{}, body)
		require.NoError(t, err)

		ev, err := p.Classify(verified)
		require.NoError(t, err)
		require.NotNil(t, ev)
		assert.Equal(t, tt.want, ev.Kind)
		assert.Equal(t, "don-1", ev.DonationID)
		assert.Equal(t, "tx-900100", ev.ProviderTxID)
	}
}

func TestClassifyIgnoresUnknownStatus(t *testing.T) {
	p := testProvider()
	body := signedCallback(t, "evt-1/cmp-1/usr-1/false/don-1", "WaitingAuthComplete", 50)

	verified, err := p.Verify(http.Header{}, body)
	require.NoError(t, err)

	ev, err := p.Classify(verified)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestAckIsSigned(t *testing.T) {
	p := testProvider()
	body := signedCallback(t, "evt-1/cmp-1/usr-1/false/don-1", "Approved", 50)

	verified, err := p.Verify(http.Header{}, body)
	require.NoError(t, err)
	ev, err := p.Classify(verified)
	require.NoError(t, err)

	ack, ok := p.Ack(ev).(map[string]string)
	require.True(t, ok)

	assert.Equal(t, "accept", ack["status"])
	assert.Equal(t, Sign(testSecret, ack["orderReference"], "accept", ack["time"]), ack["signature"])
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "50", formatAmount(50))
	assert.Equal(t, "50.50", formatAmount(50.5))
	assert.Equal(t, "0.99", formatAmount(0.99))
}
