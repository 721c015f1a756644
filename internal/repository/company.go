package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/model"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	Get(ctx context.Context, id string) (*model.Company, error)
	SetProviderAccount(ctx context.Context, id, provider, accountID string) error

	// MarkLinked flips the linkage flag once a provider confirms onboarding
	// for the account it assigned. Returns rows affected; 0 means the
	// account id resolves to no company.
	MarkLinked(ctx context.Context, provider, accountID string) (int64, error)
}

type companyRepoImpl struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepoImpl{
		db: db,
	}
}

func (r *companyRepoImpl) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *companyRepoImpl) Get(ctx context.Context, id string) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&company).Error
	if err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *companyRepoImpl) SetProviderAccount(ctx context.Context, id, provider, accountID string) error {
	column, err := providerAccountColumn(provider)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&model.Company{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       accountID,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *companyRepoImpl) MarkLinked(ctx context.Context, provider, accountID string) (int64, error) {
	column, err := providerAccountColumn(provider)
	if err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).
		Model(&model.Company{}).
		Where(column+" = ?", accountID).
		Updates(map[string]interface{}{
			"linked":     true,
			"updated_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}

func providerAccountColumn(provider string) (string, error) {
	switch provider {
	case "stripe":
		return "stripe_account_id", nil
	case "braintree":
		return "braintree_merchant_id", nil
	case "wayforpay":
		return "way_for_pay_merchant_id", nil
	default:
		return "", fmt.Errorf("provider %q has no merchant linkage", provider)
	}
}
