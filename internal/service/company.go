package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/client"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/dto"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/model"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/repository"
)

type CompanyService interface {
	CreateCompany(ctx context.Context, req *dto.CreateCompanyRequest) (string, error)
	GetCompany(ctx context.Context, id string) (*model.Company, error)
}

type companyServiceImpl struct {
	companyRepo     repository.CompanyRepository
	braintreeClient client.BraintreeClient
}

func NewCompanyService(
	companyRepo repository.CompanyRepository,
	braintreeClient client.BraintreeClient,
) CompanyService {
	return &companyServiceImpl{
		companyRepo:     companyRepo,
		braintreeClient: braintreeClient,
	}
}

func (s *companyServiceImpl) CreateCompany(ctx context.Context, req *dto.CreateCompanyRequest) (string, error) {
	company := &model.Company{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Email:         req.Email,
		IBAN:          req.IBAN,
		MFO:           req.MFO,
		RecipientName: req.RecipientName,
		DateOfBirth:   req.DateOfBirth,
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		return "", fmt.Errorf("store company: %w", err)
	}

	// Kick off sub-merchant onboarding; the approval itself lands later via
	// webhook, so a synchronous failure here only delays linkage.
	accountID, err := s.braintreeClient.CreateSubMerchant(ctx, company)
	if err != nil {
		log.WithError(err).WithField("company_id", company.ID).Warn("braintree onboarding request failed")
		return company.ID, nil
	}

	if err := s.companyRepo.SetProviderAccount(ctx, company.ID, "braintree", accountID); err != nil {
		return "", fmt.Errorf("record braintree account: %w", err)
	}

	return company.ID, nil
}

func (s *companyServiceImpl) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	return s.companyRepo.Get(ctx, id)
}
