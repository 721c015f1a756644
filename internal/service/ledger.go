package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/model"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/pay"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/repository"
)

// LedgerService applies semantic events to donation records and the owning
// event's raised amount. Delivery is at-least-once, so every transition is a
// conditional update; a redelivered event affects zero rows and changes
// nothing.
type LedgerService interface {
	Apply(ctx context.Context, ev *pay.SemanticEvent) error
}

type ledgerServiceImpl struct {
	db               *gorm.DB
	donationRepo     repository.DonationRepository
	eventRepo        repository.EventRepository
	companyRepo      repository.CompanyRepository
	webhookEventRepo repository.WebhookEventRepository
	payouts          PayoutService
	notifier         Notifier
}

func NewLedgerService(
	db *gorm.DB,
	donationRepo repository.DonationRepository,
	eventRepo repository.EventRepository,
	companyRepo repository.CompanyRepository,
	webhookEventRepo repository.WebhookEventRepository,
	payouts PayoutService,
	notifier Notifier,
) LedgerService {
	return &ledgerServiceImpl{
		db:               db,
		donationRepo:     donationRepo,
		eventRepo:        eventRepo,
		companyRepo:      companyRepo,
		webhookEventRepo: webhookEventRepo,
		payouts:          payouts,
		notifier:         notifier,
	}
}

func (s *ledgerServiceImpl) Apply(ctx context.Context, ev *pay.SemanticEvent) error {
	if ev.EventID != "" {
		seen, err := s.webhookEventRepo.Exists(ctx, ev.Provider, ev.EventID)
		if err != nil {
			return fmt.Errorf("check processed events: %w", err)
		}
		if seen {
			log.WithFields(log.Fields{
				"provider": ev.Provider,
				"event_id": ev.EventID,
			}).Debug("duplicate delivery, already processed")
			return nil
		}
	}

	var err error
	switch ev.Kind {
	case pay.ChargeInitiated:
		// informational only; the donation row was created at initiation
	case pay.ChargeSettled:
		err = s.applyChargeSettled(ctx, ev)
	case pay.ChargeFailed:
		err = s.applyChargeFailed(ctx, ev)
	case pay.PayoutSettled:
		err = s.applyPayoutSettled(ctx, ev)
	case pay.PayoutFailed:
		err = s.applyPayoutFailed(ctx, ev)
	case pay.MerchantOnboarded:
		err = s.applyMerchantOnboarded(ctx, ev)
	default:
		log.WithField("kind", ev.Kind).Warn("unknown semantic event")
	}
	if err != nil {
		return err
	}

	if ev.EventID != "" {
		// Recorded outside the business transaction: the conditional updates
		// above already make a redelivery harmless, this only short-circuits it.
		if err := s.webhookEventRepo.MarkProcessed(ctx, ev.Provider, ev.EventID, string(ev.Kind)); err != nil {
			log.WithError(err).Warn("mark webhook event processed")
		}
	}

	return nil
}

// resolve finds the donation an event refers to, by internal id when the
// reference carried one, otherwise by the provider's transaction id. A nil
// result means the event refers to nothing we know; the caller acknowledges
// anyway so the provider stops redelivering.
func (s *ledgerServiceImpl) resolve(ctx context.Context, ev *pay.SemanticEvent) (*model.Donation, error) {
	var (
		donation *model.Donation
		err      error
	)
	if ev.DonationID != "" {
		donation, err = s.donationRepo.FindByID(ctx, ev.DonationID)
	} else if ev.ProviderTxID != "" {
		donation, err = s.donationRepo.FindByProviderTxID(ctx, ev.Provider, ev.ProviderTxID)
	} else {
		return nil, nil
	}

	if err != nil {
		if repository.IsNotFound(err) {
			log.WithFields(log.Fields{
				"provider":       ev.Provider,
				"donation_id":    ev.DonationID,
				"provider_tx_id": ev.ProviderTxID,
				"kind":           ev.Kind,
			}).Warn("webhook references unknown donation")
			return nil, nil
		}
		return nil, fmt.Errorf("resolve donation: %w", err)
	}

	return donation, nil
}

func (s *ledgerServiceImpl) applyChargeSettled(ctx context.Context, ev *pay.SemanticEvent) error {
	donation, err := s.resolve(ctx, ev)
	if err != nil || donation == nil {
		return err
	}

	// The provider-declared settled amount is authoritative; the stored
	// amount is what the client declared at initiation and loses on mismatch.
	amount := donation.Amount
	if !ev.Amount.IsZero() {
		amount = ev.Amount
	}

	var applied bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.donationRepo.SettleCharge(ctx, tx, donation.ID, ev.ProviderTxID, amount)
		if err != nil {
			return fmt.Errorf("settle charge: %w", err)
		}
		if rows == 0 {
			// already terminal
			return nil
		}
		applied = true

		return s.eventRepo.IncrementRaised(ctx, tx, donation.EventID, amount)
	})
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	donation.Amount = amount
	donation.Status = model.DonationCompleted
	donation.ProviderTxID = ev.ProviderTxID

	go func(d model.Donation) {
		if err := s.notifier.DonationSettled(context.Background(), &d); err != nil {
			log.WithError(err).WithField("donation_id", d.ID).Error("settlement notification failed")
		}
	}(*donation)

	if s.payouts.Supports(donation.Provider) {
		// Best effort: the charge did settle, a payout hiccup must not
		// unwind it or fail the acknowledgment.
		if err := s.payouts.Initiate(ctx, donation, ev.ProviderTxID); err != nil {
			log.WithError(err).WithField("donation_id", donation.ID).Error("payout initiation failed")
		}
	}

	return nil
}

func (s *ledgerServiceImpl) applyChargeFailed(ctx context.Context, ev *pay.SemanticEvent) error {
	donation, err := s.resolve(ctx, ev)
	if err != nil || donation == nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.donationRepo.FailCharge(ctx, tx, donation.ID, ev.ProviderTxID)
		if err != nil {
			return fmt.Errorf("fail charge: %w", err)
		}
		return nil
	})
}

func (s *ledgerServiceImpl) applyPayoutSettled(ctx context.Context, ev *pay.SemanticEvent) error {
	donation, err := s.resolve(ctx, ev)
	if err != nil || donation == nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.donationRepo.SettlePayout(ctx, tx, donation.ID, ev.ProviderTxID)
		if err != nil {
			return fmt.Errorf("settle payout: %w", err)
		}
		return nil
	})
}

func (s *ledgerServiceImpl) applyPayoutFailed(ctx context.Context, ev *pay.SemanticEvent) error {
	donation, err := s.resolve(ctx, ev)
	if err != nil || donation == nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A completed donation was credited at settlement; reverse it.
		rows, err := s.donationRepo.FailPayoutCompleted(ctx, tx, donation.ID)
		if err != nil {
			return fmt.Errorf("fail payout: %w", err)
		}
		if rows == 1 {
			return s.eventRepo.DecrementRaised(ctx, tx, donation.EventID, donation.Amount)
		}

		// Out-of-order arrival: the payout failure beat the settlement to
		// durability. Failing the still-pending row means the settlement,
		// when it lands, finds no pending donation and credits nothing, so
		// the net effect stays zero.
		if _, err := s.donationRepo.FailPayoutPending(ctx, tx, donation.ID); err != nil {
			return fmt.Errorf("fail pending payout: %w", err)
		}
		return nil
	})
}

func (s *ledgerServiceImpl) applyMerchantOnboarded(ctx context.Context, ev *pay.SemanticEvent) error {
	rows, err := s.companyRepo.MarkLinked(ctx, ev.Provider, ev.CompanyRef)
	if err != nil {
		return fmt.Errorf("mark company linked: %w", err)
	}
	if rows == 0 {
		log.WithFields(log.Fields{
			"provider":    ev.Provider,
			"company_ref": ev.CompanyRef,
		}).Warn("onboarding webhook references unknown company")
	}
	return nil
}
