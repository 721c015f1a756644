package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationFailed    DonationStatus = "failed"
)

type PayoutStatus string

const (
	PayoutNone      PayoutStatus = ""
	PayoutPending   PayoutStatus = "pending"
	PayoutCompleted PayoutStatus = "completed"
	PayoutFailed    PayoutStatus = "failed"
)

type Donation struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	EventID   string `gorm:"size:64;index;not null"`
	CompanyID string `gorm:"size:64;index;not null"` // denormalized for the payout leg
	UserID    string `gorm:"size:64;index"`          // empty for anonymous donors

	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency string          `gorm:"size:8;not null"`
	Status   DonationStatus  `gorm:"size:32;index;not null"` // pending, completed, failed

	Provider     string `gorm:"size:32;index;not null"`
	ProviderTxID string `gorm:"size:128;index"` // empty until the provider confirms

	PayoutStatus PayoutStatus `gorm:"size:32"`
	PayoutTxID   string       `gorm:"size:128;index"`

	Anonymous bool `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Event struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	CompanyID string `gorm:"size:64;index;not null"`

	Name          string          `gorm:"size:255;not null"`
	GoalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency      string          `gorm:"size:8;not null"`

	DonationsDisabled bool `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Company struct {
	ID   string `gorm:"primaryKey;size:64;not null"`
	Name string `gorm:"size:255;not null"`

	// Payout destination, required by the KYC step of some providers.
	IBAN          string `gorm:"size:64"`
	MFO           string `gorm:"size:32"` // bank routing code
	RecipientName string `gorm:"size:255"`
	DateOfBirth   string `gorm:"size:16"`
	Email         string `gorm:"size:255"`

	StripeAccountID     string `gorm:"size:128;index"`
	BraintreeMerchantID string `gorm:"size:128;index"`
	WayForPayMerchantID string `gorm:"size:128;index"`

	Linked bool `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"` // provider-assigned event id
	Provider    string `gorm:"primaryKey;size:32;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
