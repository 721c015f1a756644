package service

import (
	"context"
	"fmt"
	"net/smtp"

	log "github.com/sirupsen/logrus"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/config"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/model"
)

// Notifier is the outbound email collaborator the ledger pings after a
// settlement. Failures are the caller's to log; they never affect the ledger.
type Notifier interface {
	DonationSettled(ctx context.Context, donation *model.Donation) error
}

type smtpNotifier struct {
	addr          string
	auth          smtp.Auth
	from          string
	notifyAddress string
}

func NewSMTPNotifier(cfg *config.SMTP) Notifier {
	return &smtpNotifier{
		addr:          cfg.Host + ":" + cfg.Port,
		auth:          smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
		from:          cfg.From,
		notifyAddress: cfg.NotifyAddress,
	}
}

func (n *smtpNotifier) DonationSettled(ctx context.Context, donation *model.Donation) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Donation settled\r\n\r\nDonation %s for event %s settled: %s %s\r\n",
		n.from, n.notifyAddress,
		donation.ID, donation.EventID,
		donation.Amount.StringFixed(2), donation.Currency,
	)

	if err := smtp.SendMail(n.addr, n.auth, n.from, []string{n.notifyAddress}, []byte(msg)); err != nil {
		return fmt.Errorf("send settlement mail: %w", err)
	}

	return nil
}

type logNotifier struct{}

// NewLogNotifier returns a Notifier that only logs, for development and tests.
func NewLogNotifier() Notifier {
	return &logNotifier{}
}

func (n *logNotifier) DonationSettled(ctx context.Context, donation *model.Donation) error {
	log.WithFields(log.Fields{
		"donation_id": donation.ID,
		"event_id":    donation.EventID,
		"amount":      donation.Amount.StringFixed(2),
		"currency":    donation.Currency,
	}).Info("donation settled notification")
	return nil
}
