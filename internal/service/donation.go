package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/client"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/dto"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/model"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/payref"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/repository"
)

type DonationService interface {
	Initiate(ctx context.Context, userID string, req *dto.InitiateDonationRequest) (*dto.InitiateDonationResponse, error)
	Get(ctx context.Context, id string) (*model.Donation, error)

	// BraintreeClientToken issues the token the drop-in UI exchanges for a
	// payment method nonce before Initiate can charge it.
	BraintreeClientToken(ctx context.Context) (string, error)
}

type donationServiceImpl struct {
	donationRepo repository.DonationRepository
	eventRepo    repository.EventRepository
	companyRepo  repository.CompanyRepository

	stripeClient    client.StripeClient
	checkoutClient  client.CheckoutClient
	liqPayClient    client.LiqPayClient
	wayForPayClient client.WayForPayClient
	braintreeClient client.BraintreeClient

	serviceBaseURL string
}

func NewDonationService(
	donationRepo repository.DonationRepository,
	eventRepo repository.EventRepository,
	companyRepo repository.CompanyRepository,
	stripeClient client.StripeClient,
	checkoutClient client.CheckoutClient,
	liqPayClient client.LiqPayClient,
	wayForPayClient client.WayForPayClient,
	braintreeClient client.BraintreeClient,
	serviceBaseURL string,
) DonationService {
	return &donationServiceImpl{
		donationRepo:    donationRepo,
		eventRepo:       eventRepo,
		companyRepo:     companyRepo,
		stripeClient:    stripeClient,
		checkoutClient:  checkoutClient,
		liqPayClient:    liqPayClient,
		wayForPayClient: wayForPayClient,
		braintreeClient: braintreeClient,
		serviceBaseURL:  serviceBaseURL,
	}
}

func (s *donationServiceImpl) Get(ctx context.Context, id string) (*model.Donation, error) {
	return s.donationRepo.FindByID(ctx, id)
}

func (s *donationServiceImpl) BraintreeClientToken(ctx context.Context) (string, error) {
	return s.braintreeClient.ClientToken(ctx)
}

func (s *donationServiceImpl) Initiate(ctx context.Context, userID string, req *dto.InitiateDonationRequest) (*dto.InitiateDonationResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	event, err := s.eventRepo.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event.DonationsDisabled {
		return nil, fmt.Errorf("donations are disabled for this event")
	}

	company, err := s.companyRepo.Get(ctx, event.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = event.Currency
	}

	donation := &model.Donation{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		CompanyID: company.ID,
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		Status:    model.DonationPending,
		Provider:  req.Provider,
		Anonymous: req.Anonymous,
	}

	reference, err := payref.Checkout{
		EventID:    event.ID,
		CompanyID:  company.ID,
		UserID:     userID,
		Anonymous:  req.Anonymous,
		DonationID: donation.ID,
	}.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode order reference: %w", err)
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, fmt.Errorf("store donation: %w", err)
	}

	successURL := fmt.Sprintf("%s/api/donations/success?donation_id=%s&event_id=%s", s.serviceBaseURL, donation.ID, event.ID)
	failureURL := fmt.Sprintf("%s/api/donations/failure?donation_id=%s&event_id=%s", s.serviceBaseURL, donation.ID, event.ID)

	resp := &dto.InitiateDonationResponse{DonationID: donation.ID}

	switch req.Provider {
	case "stripe":
		session, err := s.stripeClient.CreateCheckoutSession(ctx, reference, amount, currency, successURL, failureURL)
		if err != nil {
			return nil, fmt.Errorf("stripe checkout session: %w", err)
		}
		resp.RedirectURL = session.RedirectURL

	case "checkout":
		payment, err := s.checkoutClient.RequestPayment(ctx, reference, amount, currency, successURL, failureURL)
		if err != nil {
			return nil, fmt.Errorf("checkout payment: %w", err)
		}
		resp.RedirectURL = payment.RedirectURL
		resp.ProviderTxID = payment.PaymentID

	case "liqpay":
		callbackURL := s.serviceBaseURL + "/api/webhooks/liqpay"
		link, err := s.liqPayClient.CheckoutLink(reference, amount, currency, "Donation to "+event.Name, callbackURL, successURL)
		if err != nil {
			return nil, fmt.Errorf("liqpay checkout link: %w", err)
		}
		resp.RedirectURL = link

	case "wayforpay":
		callbackURL := s.serviceBaseURL + "/api/webhooks/wayforpay"
		invoiceURL, err := s.wayForPayClient.CreateInvoice(ctx, reference, amount, currency, "Donation to "+event.Name, callbackURL)
		if err != nil {
			return nil, fmt.Errorf("wayforpay invoice: %w", err)
		}
		resp.RedirectURL = invoiceURL

	case "braintree":
		if req.Nonce == "" {
			return nil, fmt.Errorf("braintree donation requires a payment method nonce")
		}
		txID, err := s.braintreeClient.Charge(ctx, req.Nonce, reference, amount, company.BraintreeMerchantID)
		if err != nil {
			return nil, fmt.Errorf("braintree charge: %w", err)
		}
		// The charge is submitted; settlement still arrives via webhook.
		if err := s.donationRepo.SetProviderTxID(ctx, donation.ID, txID); err != nil {
			return nil, fmt.Errorf("record braintree transaction id: %w", err)
		}
		resp.ProviderTxID = txID

	default:
		return nil, fmt.Errorf("unknown payment provider %q", req.Provider)
	}

	return resp, nil
}
