package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/model"
)

type DonationRepository interface {
	Create(ctx context.Context, donation *model.Donation) error
	FindByID(ctx context.Context, id string) (*model.Donation, error)
	FindByProviderTxID(ctx context.Context, provider, txID string) (*model.Donation, error)
	SetProviderTxID(ctx context.Context, id, txID string) error

	// SettleCharge moves pending -> completed and records the provider
	// transaction id and settled amount. Returns 0 rows when the donation is
	// already terminal, which is what makes redelivery a no-op.
	SettleCharge(ctx context.Context, tx *gorm.DB, id, providerTxID string, amount decimal.Decimal) (int64, error)

	// FailCharge moves pending -> failed.
	FailCharge(ctx context.Context, tx *gorm.DB, id, providerTxID string) (int64, error)

	// SettlePayout records the payout leg on an already-completed donation.
	SettlePayout(ctx context.Context, tx *gorm.DB, id, payoutTxID string) (int64, error)

	// FailPayoutCompleted reverses a settled donation. Only a completed row
	// qualifies; the caller must undo the earlier credit when rows == 1.
	FailPayoutCompleted(ctx context.Context, tx *gorm.DB, id string) (int64, error)

	// FailPayoutPending handles the payout failure arriving before its
	// charge settlement was durably recorded: the donation goes straight to
	// failed and the later settlement finds no pending row to credit.
	FailPayoutPending(ctx context.Context, tx *gorm.DB, id string) (int64, error)
}

type donationRepoImpl struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepoImpl{
		db: db,
	}
}

func (r *donationRepoImpl) Create(ctx context.Context, donation *model.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *donationRepoImpl) FindByID(ctx context.Context, id string) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&donation).Error

	if err != nil {
		return nil, err
	}

	return &donation, nil
}

func (r *donationRepoImpl) FindByProviderTxID(ctx context.Context, provider, txID string) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_tx_id = ?", provider, txID).
		First(&donation).Error

	if err != nil {
		return nil, err
	}

	return &donation, nil
}

func (r *donationRepoImpl) SetProviderTxID(ctx context.Context, id, txID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"provider_tx_id": txID,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *donationRepoImpl) SettleCharge(ctx context.Context, tx *gorm.DB, id, providerTxID string, amount decimal.Decimal) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&model.Donation{}).
		Where("id = ? AND status = ?", id, model.DonationPending).
		Updates(map[string]interface{}{
			"status":         model.DonationCompleted,
			"provider_tx_id": providerTxID,
			"amount":         amount,
			"payout_status":  model.PayoutPending,
			"updated_at":     time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *donationRepoImpl) FailCharge(ctx context.Context, tx *gorm.DB, id, providerTxID string) (int64, error) {
	updates := map[string]interface{}{
		"status":     model.DonationFailed,
		"updated_at": time.Now(),
	}
	if providerTxID != "" {
		updates["provider_tx_id"] = providerTxID
	}

	result := tx.WithContext(ctx).
		Model(&model.Donation{}).
		Where("id = ? AND status = ?", id, model.DonationPending).
		Updates(updates)

	return result.RowsAffected, result.Error
}

func (r *donationRepoImpl) SettlePayout(ctx context.Context, tx *gorm.DB, id, payoutTxID string) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&model.Donation{}).
		Where("id = ? AND status = ? AND payout_status <> ?", id, model.DonationCompleted, model.PayoutCompleted).
		Updates(map[string]interface{}{
			"payout_status": model.PayoutCompleted,
			"payout_tx_id":  payoutTxID,
			"updated_at":    time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *donationRepoImpl) FailPayoutCompleted(ctx context.Context, tx *gorm.DB, id string) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&model.Donation{}).
		Where("id = ? AND status = ?", id, model.DonationCompleted).
		Updates(map[string]interface{}{
			"status":        model.DonationFailed,
			"payout_status": model.PayoutFailed,
			"updated_at":    time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *donationRepoImpl) FailPayoutPending(ctx context.Context, tx *gorm.DB, id string) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&model.Donation{}).
		Where("id = ? AND status = ?", id, model.DonationPending).
		Updates(map[string]interface{}{
			"status":        model.DonationFailed,
			"payout_status": model.PayoutFailed,
			"updated_at":    time.Now(),
		})

	return result.RowsAffected, result.Error
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
