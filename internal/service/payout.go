package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/client"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/metrics"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/model"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/payref"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/repository"
)

// PayoutService issues the second leg for providers that separate pay-in from
// disbursement. The payout's own reference carries tx/donation so the eventual
// payout webhook can be reconciled back to the original donation.
type PayoutService interface {
	Supports(provider string) bool
	Initiate(ctx context.Context, donation *model.Donation, providerTxID string) error
}

type payoutServiceImpl struct {
	liqPayClient    client.LiqPayClient
	wayForPayClient client.WayForPayClient
	companyRepo     repository.CompanyRepository
}

func NewPayoutService(
	liqPayClient client.LiqPayClient,
	wayForPayClient client.WayForPayClient,
	companyRepo repository.CompanyRepository,
) PayoutService {
	return &payoutServiceImpl{
		liqPayClient:    liqPayClient,
		wayForPayClient: wayForPayClient,
		companyRepo:     companyRepo,
	}
}

func (s *payoutServiceImpl) Supports(provider string) bool {
	return provider == "liqpay" || provider == "wayforpay"
}

func (s *payoutServiceImpl) Initiate(ctx context.Context, donation *model.Donation, providerTxID string) error {
	company, err := s.companyRepo.Get(ctx, donation.CompanyID)
	if err != nil {
		metrics.PayoutInitiationsTotal.WithLabelValues(donation.Provider, "error").Inc()
		return fmt.Errorf("load company %s: %w", donation.CompanyID, err)
	}

	reference, err := payref.Payout{
		ProviderTxID: providerTxID,
		DonationID:   donation.ID,
	}.Encode()
	if err != nil {
		metrics.PayoutInitiationsTotal.WithLabelValues(donation.Provider, "error").Inc()
		return fmt.Errorf("encode payout reference: %w", err)
	}

	switch donation.Provider {
	case "liqpay":
		err = s.liqPayClient.P2PCredit(ctx, reference, donation.Amount, donation.Currency, company.IBAN)
	case "wayforpay":
		err = s.wayForPayClient.Account2Card(ctx, reference, donation.Amount, donation.Currency, company.IBAN, company.RecipientName)
	default:
		return fmt.Errorf("provider %q has no payout leg", donation.Provider)
	}

	if err != nil {
		metrics.PayoutInitiationsTotal.WithLabelValues(donation.Provider, "error").Inc()
		return fmt.Errorf("initiate %s payout: %w", donation.Provider, err)
	}

	metrics.PayoutInitiationsTotal.WithLabelValues(donation.Provider, "ok").Inc()
	log.WithFields(log.Fields{
		"provider":    donation.Provider,
		"donation_id": donation.ID,
		"reference":   reference,
	}).Info("payout leg initiated")

	return nil
}
