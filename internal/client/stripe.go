package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	stripeclient "github.com/stripe/stripe-go/v74/client"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
)

type StripeClient interface {
	// CreateCheckoutSession builds a hosted payment page for one donation.
	// reference travels through client_reference_id and the payment intent
	// metadata so webhooks can find their way back to the donation.
	CreateCheckoutSession(ctx context.Context, reference string, amount decimal.Decimal, currency, successURL, cancelURL string) (*CheckoutSessionResponse, error)
}

type CheckoutSessionResponse struct {
	SessionID   string
	RedirectURL string
}

type stripeClientImpl struct {
	api *stripeclient.API
}

func NewStripeClient(cfg *config.Stripe) StripeClient {
	api := &stripeclient.API{}
	api.Init(cfg.SecretKey, nil)
	return &stripeClientImpl{api: api}
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, reference string, amount decimal.Decimal, currency, successURL, cancelURL string) (*CheckoutSessionResponse, error) {
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(reference),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(currency)),
					UnitAmount: stripe.Int64(cents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Donation"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"reference": reference},
		},
	}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}

	return &CheckoutSessionResponse{
		SessionID:   sess.ID,
		RedirectURL: sess.URL,
	}, nil
}
