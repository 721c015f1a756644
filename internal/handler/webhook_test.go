package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay/wayforpay"
)

const testSecret = "handler-test-secret"

type ledgerStub struct {
	applied  []*pay.SemanticEvent
	failWith error
}

func (s *ledgerStub) Apply(ctx context.Context, ev *pay.SemanticEvent) error {
	s.applied = append(s.applied, ev)
	return s.failWith
}

// stubProvider has no Acknowledger, so the handler answers with the
// default ack body.
type stubProvider struct {
	verifyErr   error
	classifyErr error
	event       *pay.SemanticEvent
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Verify(header http.Header, body []byte) (pay.VerifiedEvent, error) {
	if p.verifyErr != nil {
		return pay.VerifiedEvent{}, p.verifyErr
	}
	return pay.VerifiedEvent{Provider: "stub", Payload: body}, nil
}

func (p *stubProvider) Classify(ev pay.VerifiedEvent) (*pay.SemanticEvent, error) {
	return p.event, p.classifyErr
}

func signedWayForPayBody(t *testing.T, orderReference, status string) string {
	t.Helper()

	payload := map[string]interface{}{
		"merchantAccount":   "test_merch",
		"orderReference":    orderReference,
		"amount":            50,
		"currency":          "UAH",
		"authCode":          "123456",
		"cardPan":           "41****1111",
		"transactionStatus": status,
		"reasonCode":        1100,
		"transactionId":     900100,
	}
	payload["merchantSignature"] = wayforpay.Sign(testSecret,
		"test_merch", orderReference, "50", "UAH",
		"123456", "41****1111", status, "1100",
	)

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(body)
}

func invoke(t *testing.T, provider pay.Provider, ledger *ledgerStub, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/"+provider.Name(), strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewWebhookHandler(ledger)
	return rec, h.Handle(provider)(c)
}

func TestHandleValidSignatureApplies(t *testing.T) {
	provider := wayforpay.New(&config.WayForPay{MerchantAccount: "test_merch", SecretKey: testSecret})
	ledger := &ledgerStub{}
	body := signedWayForPayBody(t, "evt-1/cmp-1/usr-1/false/don-1", "Approved")

	rec, err := invoke(t, provider, ledger, body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ledger.applied, 1)
	assert.Equal(t, pay.ChargeSettled, ledger.applied[0].Kind)
	assert.Equal(t, "don-1", ledger.applied[0].DonationID)

	// provider-specific signed ack
	var ack map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, "accept", ack["status"])
	assert.NotEmpty(t, ack["signature"])
}

func TestHandleTamperedSignatureRejectsBeforeApply(t *testing.T) {
	provider := wayforpay.New(&config.WayForPay{MerchantAccount: "test_merch", SecretKey: testSecret})
	ledger := &ledgerStub{}
	body := signedWayForPayBody(t, "evt-1/cmp-1/usr-1/false/don-1", "Approved")
	body = strings.Replace(body, `"amount":50`, `"amount":5000`, 1)

	rec, err := invoke(t, provider, ledger, body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, ledger.applied, "nothing may mutate on a rejected request")
}

func TestHandleDefaultAck(t *testing.T) {
	provider := &stubProvider{event: &pay.SemanticEvent{Kind: pay.ChargeSettled, Provider: "stub", DonationID: "don-1"}}
	ledger := &ledgerStub{}

	rec, err := invoke(t, provider, ledger, `{}`)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())
	assert.Len(t, ledger.applied, 1)
}

func TestHandleIgnoredEventStillAcks(t *testing.T) {
	provider := &stubProvider{event: nil}
	ledger := &ledgerStub{}

	rec, err := invoke(t, provider, ledger, `{}`)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, ledger.applied)
}

func TestHandleUnclassifiablePayload(t *testing.T) {
	provider := &stubProvider{classifyErr: assert.AnError}
	ledger := &ledgerStub{}

	rec, err := invoke(t, provider, ledger, `{}`)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ledger.applied)
}

func TestHandleApplyFailureReturns500(t *testing.T) {
	provider := &stubProvider{event: &pay.SemanticEvent{Kind: pay.ChargeSettled, Provider: "stub", DonationID: "don-1"}}
	ledger := &ledgerStub{failWith: assert.AnError}

	_, err := invoke(t, provider, ledger, `{}`)
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
}
