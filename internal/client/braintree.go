package client

import (
	"context"
	"fmt"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/model"
)

// --- INTERFACE ---

type BraintreeClient interface {
	// ClientToken issues a token the frontend drop-in UI needs before it can
	// produce a payment method nonce.
	ClientToken(ctx context.Context) (string, error)

	// Charge takes a frontend nonce and submits a sale for settlement.
	// reference travels in the order id so webhooks can map the settlement
	// back to the donation.
	Charge(ctx context.Context, nonce, reference string, amount decimal.Decimal, merchantAccountID string) (string, error)

	// CreateSubMerchant registers a company as a sub-merchant so settled
	// funds can be disbursed to its bank account.
	CreateSubMerchant(ctx context.Context, company *model.Company) (string, error)

	// Gateway exposes the underlying SDK gateway for webhook verification.
	Gateway() *braintree.Braintree
}

// --- IMPLEMENTATION ---

type braintreeClientImpl struct {
	gateway                 *braintree.Braintree
	masterMerchantAccountID string
}

func NewBraintreeClient(cfg *config.Braintree) BraintreeClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway:                 gateway,
		masterMerchantAccountID: cfg.MasterMerchantAccountID,
	}
}

func (c *braintreeClientImpl) Gateway() *braintree.Braintree {
	return c.gateway
}

func (c *braintreeClientImpl) ClientToken(ctx context.Context) (string, error) {
	token, err := c.gateway.ClientToken().Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("generate client token: %w", err)
	}
	return token, nil
}

func (c *braintreeClientImpl) Charge(ctx context.Context, nonce, reference string, amount decimal.Decimal, merchantAccountID string) (string, error) {
	// Convert shopspring's Decimal to braintree's *Decimal format.
	// "50.00" -> braintree.NewDecimal(5000, 2)
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	btAmount := braintree.NewDecimal(cents, 2)

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             btAmount,
		PaymentMethodNonce: nonce,
		OrderId:            reference,
		MerchantAccountId:  merchantAccountID,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transaction creation failed: %w", err)
	}

	if tx.Status == braintree.TransactionStatusProcessorDeclined {
		return "", fmt.Errorf("transaction declined by processor: %s", tx.ProcessorResponseText)
	}

	return tx.Id, nil
}

func (c *braintreeClientImpl) CreateSubMerchant(ctx context.Context, company *model.Company) (string, error) {
	req := &braintree.MerchantAccount{
		MasterMerchantAccountId: c.masterMerchantAccountID,
		Id:                      company.ID,
		TOSAccepted:             true,
		Individual: &braintree.MerchantAccountPerson{
			FirstName:   company.RecipientName,
			Email:       company.Email,
			DateOfBirth: company.DateOfBirth,
		},
		FundingOptions: &braintree.MerchantAccountFundingOptions{
			Destination:   braintree.FUNDING_DEST_BANK,
			AccountNumber: company.IBAN,
			RoutingNumber: company.MFO,
		},
	}

	account, err := c.gateway.MerchantAccount().Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create sub-merchant: %w", err)
	}

	return account.Id, nil
}
