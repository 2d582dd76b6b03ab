// Package invoice turns energy usage and a resolved tariff into invoice
// records.
package invoice

import (
	"math"
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/billing"
	"gorm.io/gorm"
)

// Invoice statuses.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Invoice is one billed period for a customer. PPAID links the contract the
// rate came from; zero when the rate came from the customer record or the
// dynamic tariff lookup.
type Invoice struct {
	gorm.Model
	CustomerID uint `gorm:"not null;index" json:"customerId"`
	PPAID      uint `gorm:"index" json:"ppaId,omitempty"`

	Month    int     `gorm:"not null" json:"month"`
	Year     int     `gorm:"not null" json:"year"`
	UsageKWH float64 `gorm:"not null" json:"usageKwh"`

	TariffRate  float64 `gorm:"not null" json:"tariffRate"`
	EnergyValue float64 `gorm:"not null" json:"energyValue"`
	TaxAmount   float64 `gorm:"not null;default:0" json:"taxAmount"`
	TotalAmount float64 `gorm:"not null" json:"totalAmount"`
	Currency    string  `gorm:"size:8;default:'INR'" json:"currency"`

	Status  string     `gorm:"size:16;not null;default:'pending';index" json:"status"`
	DueDate time.Time  `json:"dueDate"`
	PaidAt  *time.Time `json:"paidAt,omitempty"`

	GracePeriodDays    int     `gorm:"not null;default:0" json:"gracePeriodDays"`
	PenaltyRatePercent float64 `gorm:"not null;default:0" json:"penaltyRatePercent"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Amount computes the energy value of an invoice.
func Amount(usageKWH, tariffRate float64) float64 {
	return round2(usageKWH * tariffRate)
}

// Generate builds an invoice for a usage period at the given rate. When
// terms are present, the invoice picks up the contract's tax rate, payment
// terms, grace period and penalty rate; otherwise net30 with no tax applies.
func Generate(customerID, ppaID uint, month, year int, usageKWH, rate float64, terms *billing.Terms, now time.Time) Invoice {
	energy := Amount(usageKWH, rate)

	inv := Invoice{
		CustomerID:  customerID,
		PPAID:       ppaID,
		Month:       month,
		Year:        year,
		UsageKWH:    usageKWH,
		TariffRate:  rate,
		EnergyValue: energy,
		TotalAmount: energy,
		Currency:    "INR",
		Status:      StatusPending,
		DueDate:     now.AddDate(0, 0, 30),
	}

	if terms != nil {
		inv.TaxAmount = round2(energy * terms.TaxRatePercent / 100)
		inv.TotalAmount = round2(energy + inv.TaxAmount)
		inv.DueDate = now.AddDate(0, 0, billing.PaymentTermDays(terms.PaymentTerms))
		inv.GracePeriodDays = terms.GracePeriodDays
		inv.PenaltyRatePercent = terms.PenaltyRatePercent
		if terms.Currency != "" {
			inv.Currency = terms.Currency
		}
	}
	return inv
}

// PenaltyAmount is the late-payment penalty accrued at asOf: zero until the
// due date plus grace period has passed or once the invoice is paid.
func (i Invoice) PenaltyAmount(asOf time.Time) float64 {
	if i.Status == StatusPaid {
		return 0
	}
	deadline := i.DueDate.AddDate(0, 0, i.GracePeriodDays)
	if !asOf.After(deadline) {
		return 0
	}
	return round2(i.TotalAmount * i.PenaltyRatePercent / 100)
}

// MarkPaid stamps the invoice paid.
func (i Invoice) MarkPaid(now time.Time) Invoice {
	i.Status = StatusPaid
	i.PaidAt = &now
	return i
}
