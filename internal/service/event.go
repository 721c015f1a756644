package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/dto"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/model"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/repository"
)

type EventService interface {
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (string, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
}

type eventServiceImpl struct {
	eventRepo   repository.EventRepository
	companyRepo repository.CompanyRepository
}

func NewEventService(
	eventRepo repository.EventRepository,
	companyRepo repository.CompanyRepository,
) EventService {
	return &eventServiceImpl{
		eventRepo:   eventRepo,
		companyRepo: companyRepo,
	}
}

func (s *eventServiceImpl) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (string, error) {
	goal, err := decimal.NewFromString(req.GoalAmount)
	if err != nil {
		return "", fmt.Errorf("invalid goal amount: %w", err)
	}

	if _, err := s.companyRepo.Get(ctx, req.CompanyID); err != nil {
		return "", fmt.Errorf("find company: %w", err)
	}

	event := &model.Event{
		ID:            uuid.NewString(),
		CompanyID:     req.CompanyID,
		Name:          req.Name,
		GoalAmount:    goal,
		CurrentAmount: decimal.Zero,
		Currency:      req.Currency,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return "", fmt.Errorf("store event: %w", err)
	}

	return event.ID, nil
}

func (s *eventServiceImpl) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return s.eventRepo.FindByID(ctx, id)
}
