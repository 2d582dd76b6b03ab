// Package ppa owns the Power Purchase Agreement aggregate: its lifecycle,
// its usage/billing/payment ledger and its persistence.
package ppa

import (
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
	"github.com/SuryaEnergia/api-ppa/internal/billing"
	"github.com/SuryaEnergia/api-ppa/internal/tariff"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contract statuses.
const (
	StatusDraft      = "draft"
	StatusActive     = "active"
	StatusExpired    = "expired"
	StatusTerminated = "terminated"
)

// Contract types.
const (
	TypeNetMetering   = "net_metering"
	TypeGrossMetering = "gross_metering"
	TypeOpenAccess    = "open_access"
)

const daysPerYear = 365.25

// SystemSpecs describes the solar installation covered by the contract.
type SystemSpecs struct {
	CapacityKW                float64   `json:"capacityKw"`
	PanelType                 string    `json:"panelType"`
	PanelManufacturer         string    `json:"panelManufacturer,omitempty"`
	InverterType              string    `json:"inverterType"`
	InstallationDate          time.Time `json:"installationDate"`
	EstimatedAnnualProduction float64   `json:"estimatedAnnualProduction"`
	Location                  string    `json:"location,omitempty"`
}

// Signatory is one party listed on the agreement.
type Signatory struct {
	Name        string     `json:"name"`
	Designation string     `json:"designation"`
	SignedAt    *time.Time `json:"signedAt,omitempty"`
}

// ProductionRecord is one energy-meter reading with the tariff that applied
// on the reading date.
type ProductionRecord struct {
	KWH        float64   `json:"kwh"`
	Date       time.Time `json:"date"`
	TariffRate float64   `json:"tariffRate"`
}

// BillingRecord is one billed amount with its tariff snapshot.
type BillingRecord struct {
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	TariffRate float64   `json:"tariffRate"`
}

// PaymentRecord is one received payment.
type PaymentRecord struct {
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// OpexPaymentRecord is one monthly OPEX charge (fee + energy component).
type OpexPaymentRecord struct {
	MonthlyFee   float64   `json:"monthlyFee"`
	EnergyAmount float64   `json:"energyAmount"`
	KWHConsumed  float64   `json:"kwhConsumed"`
	Total        float64   `json:"total"`
	Date         time.Time `json:"date"`
}

// PPA is the aggregate root for one Power Purchase Agreement. Histories are
// append-only and the running totals only ever grow. Version backs the
// optimistic compare-and-set in the repository, so two concurrent ledger
// writes cannot silently overwrite each other.
type PPA struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`

	ContractNumber string `gorm:"size:64;uniqueIndex" json:"contractNumber"`
	CustomerID     uint   `gorm:"not null;index" json:"customerId"`

	SystemSpecs  SystemSpecs   `gorm:"type:jsonb;serializer:json" json:"systemSpecs"`
	BillingTerms billing.Terms `gorm:"type:jsonb;serializer:json" json:"billingTerms"`

	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Status       string    `gorm:"size:20;not null;default:'draft';index" json:"status"`
	ContractType string    `gorm:"size:20;not null;default:'net_metering'" json:"contractType"`

	CreatedBy string `gorm:"size:64" json:"createdBy"`
	UpdatedBy string `gorm:"size:64" json:"updatedBy"`

	Signatories []Signatory `gorm:"type:jsonb;serializer:json" json:"signatories,omitempty"`

	TotalEnergyProduced float64 `gorm:"not null;default:0" json:"totalEnergyProduced"`
	TotalBilled         float64 `gorm:"not null;default:0" json:"totalBilled"`
	TotalPaid           float64 `gorm:"not null;default:0" json:"totalPaid"`

	LastBillingDate *time.Time `json:"lastBillingDate,omitempty"`
	NextBillingDate *time.Time `json:"nextBillingDate,omitempty"`
	SignedAt        *time.Time `json:"signedAt,omitempty"`
	TenureYears     float64    `json:"tenureYears"`

	Version int64 `gorm:"not null;default:0" json:"version"`

	EscalationHistory  []tariff.EscalationRecord `gorm:"type:jsonb;serializer:json" json:"escalationHistory,omitempty"`
	ProductionHistory  []ProductionRecord        `gorm:"type:jsonb;serializer:json" json:"productionHistory,omitempty"`
	BillingHistory     []BillingRecord           `gorm:"type:jsonb;serializer:json" json:"billingHistory,omitempty"`
	PaymentHistory     []PaymentRecord           `gorm:"type:jsonb;serializer:json" json:"paymentHistory,omitempty"`
	OpexPaymentHistory []OpexPaymentRecord       `gorm:"type:jsonb;serializer:json" json:"opexPaymentHistory,omitempty"`
}

var validContractTypes = map[string]bool{
	TypeNetMetering:   true,
	TypeGrossMetering: true,
	TypeOpenAccess:    true,
}

// Generate builds a new PPA. The contract starts active when its start date
// has already arrived, draft otherwise. Start dates are accepted up to one
// year in the past (existing installations) and two years in the future
// (planned ones).
func Generate(customerID uint, specs SystemSpecs, terms billing.Terms, start, end time.Time, contractType, createdBy string, now time.Time) (*PPA, error) {
	if !start.Before(end) {
		return nil, apperrors.Validation("startDate", "start date must be before end date")
	}
	if start.Before(now.AddDate(0, 0, -365)) {
		return nil, apperrors.Validation("startDate", "start date cannot be more than 1 year in the past")
	}
	if start.After(now.AddDate(0, 0, 730)) {
		return nil, apperrors.Validation("startDate", "start date cannot be more than 2 years in the future")
	}

	if specs.CapacityKW <= 0 {
		return nil, apperrors.Validation("systemSpecs.capacityKw", "system capacity must be greater than 0")
	}
	if specs.PanelType == "" {
		return nil, apperrors.Validation("systemSpecs.panelType", "panel type is required")
	}
	if specs.InverterType == "" {
		return nil, apperrors.Validation("systemSpecs.inverterType", "inverter type is required")
	}
	if specs.EstimatedAnnualProduction <= 0 {
		return nil, apperrors.Validation("systemSpecs.estimatedAnnualProduction", "estimated annual production must be greater than 0")
	}

	if err := terms.Validate(); err != nil {
		return nil, err
	}

	if contractType == "" {
		contractType = TypeNetMetering
	}
	if !validContractTypes[contractType] {
		return nil, apperrors.Validation("contractType", "must be net_metering, gross_metering or open_access")
	}

	status := StatusDraft
	if !start.After(now) {
		status = StatusActive
	}

	return &PPA{
		ContractNumber: "PPA-" + uuid.NewString(),
		CustomerID:     customerID,
		SystemSpecs:    specs,
		BillingTerms:   terms,
		StartDate:      start,
		EndDate:        end,
		Status:         status,
		ContractType:   contractType,
		CreatedBy:      createdBy,
		UpdatedBy:      createdBy,
		TenureYears:    end.Sub(start).Hours() / 24 / daysPerYear,
	}, nil
}

// OutstandingAmount is billed minus paid. It may go negative: prepayments
// are allowed.
func (p PPA) OutstandingAmount() float64 {
	return p.TotalBilled - p.TotalPaid
}
