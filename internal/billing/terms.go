// Package billing holds the pricing policy attached to a PPA. A Terms value
// is embedded in the contract document as JSONB and validated once, at
// contract creation.
package billing

import (
	"fmt"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
)

// Escalation types. Only fixed_percentage and custom_schedule are fully
// computable; the index-linked variants need external CPI/WPI data and the
// resolver falls back to the unescalated base rate for them.
const (
	EscalationFixedPercentage = "fixed_percentage"
	EscalationCustomSchedule  = "custom_schedule"
	EscalationCPILinked       = "cpi_linked"
	EscalationWPILinked       = "wpi_linked"
)

// Billing cycles.
const (
	CycleMonthly   = "monthly"
	CycleQuarterly = "quarterly"
	CycleAnnually  = "annually"
)

// Business models. CAPEX: the customer buys the system and pays it off in
// installments. OPEX: the provider owns the system and charges a monthly fee
// plus an energy rate.
const (
	ModelCapex = "capex"
	ModelOpex  = "opex"
)

// ScheduleEntry is one step of a custom escalation schedule: in contract
// year Year the rate is multiplied by (1 + Rate).
type ScheduleEntry struct {
	Year int     `json:"year"`
	Rate float64 `json:"rate"`
}

// Slab is one consumption-tier pricing band. Min is inclusive, Max exclusive;
// a nil Max means the band is open-ended.
type Slab struct {
	Min  float64  `json:"min"`
	Max  *float64 `json:"max,omitempty"`
	Rate float64  `json:"rate"`
	Unit string   `json:"unit"`
}

// TimeOfUseRate prices a daily time window, e.g. "22:00-06:00".
type TimeOfUseRate struct {
	TimeRange string  `json:"timeRange"`
	Rate      float64 `json:"rate"`
	Unit      string  `json:"unit"`
}

// Terms describes how one contract is priced.
type Terms struct {
	BaseRate       float64 `json:"baseRate"`
	EscalationType string  `json:"escalationType"`
	// EscalationRate is the annual rate for fixed_percentage, e.g. 0.02.
	EscalationRate     float64         `json:"escalationRate"`
	EscalationSchedule []ScheduleEntry `json:"escalationSchedule,omitempty"`
	BillingCycle       string          `json:"billingCycle"`
	PaymentTerms       string          `json:"paymentTerms"`
	Slabs              []Slab          `json:"slabs,omitempty"`
	TimeOfUseRates     []TimeOfUseRate `json:"timeOfUseRates,omitempty"`
	TaxRatePercent     float64         `json:"taxRatePercent"`
	PenaltyRatePercent float64         `json:"penaltyRatePercent"`
	Currency           string          `json:"currency"`
	SubsidySchemeID    string          `json:"subsidySchemeId,omitempty"`
	AutoInvoice        bool            `json:"autoInvoice"`
	GracePeriodDays    int             `json:"gracePeriodDays"`

	BusinessModel  string  `json:"businessModel"`
	CapexAmount    float64 `json:"capexAmount,omitempty"`
	OpexMonthlyFee float64 `json:"opexMonthlyFee,omitempty"`
	OpexEnergyRate float64 `json:"opexEnergyRate,omitempty"`
}

var validCycles = map[string]bool{
	CycleMonthly:   true,
	CycleQuarterly: true,
	CycleAnnually:  true,
}

var validPaymentTerms = map[string]bool{
	"net15": true,
	"net30": true,
	"net45": true,
	"net60": true,
}

var validEscalationTypes = map[string]bool{
	EscalationFixedPercentage: true,
	EscalationCustomSchedule:  true,
	EscalationCPILinked:       true,
	EscalationWPILinked:       true,
}

// PaymentTermDays maps a payment-terms code to its net day count.
func PaymentTermDays(terms string) int {
	switch terms {
	case "net15":
		return 15
	case "net30":
		return 30
	case "net45":
		return 45
	case "net60":
		return 60
	}
	return 30
}

// Validate checks the terms once at PPA creation. Pure; every failure names
// the offending field.
func (t Terms) Validate() error {
	if t.BaseRate <= 0 {
		return apperrors.Validation("baseRate", "tariff rate must be greater than 0")
	}
	if t.EscalationType != "" && !validEscalationTypes[t.EscalationType] {
		return apperrors.Validation("escalationType", fmt.Sprintf("unknown escalation type %q", t.EscalationType))
	}
	if t.EscalationRate < 0 {
		return apperrors.Validation("escalationRate", "escalation rate cannot be negative")
	}
	if !validCycles[t.BillingCycle] {
		return apperrors.Validation("billingCycle", "must be monthly, quarterly or annually")
	}
	if !validPaymentTerms[t.PaymentTerms] {
		return apperrors.Validation("paymentTerms", "must be net15, net30, net45 or net60")
	}
	if t.TaxRatePercent < 0 {
		return apperrors.Validation("taxRatePercent", "tax rate cannot be negative")
	}
	if t.PenaltyRatePercent < 0 || t.PenaltyRatePercent > 10 {
		return apperrors.Validation("penaltyRatePercent", "penalty rate must be between 0 and 10")
	}
	if err := validateSchedule(t.EscalationSchedule); err != nil {
		return err
	}
	return t.validateBusinessModel()
}

// Schedule years must be unique, ascending and start at year 1.
func validateSchedule(schedule []ScheduleEntry) error {
	if len(schedule) == 0 {
		return nil
	}
	if schedule[0].Year != 1 {
		return apperrors.Validation("escalationSchedule", "schedule must start at year 1")
	}
	seen := map[int]bool{}
	prev := 0
	for _, e := range schedule {
		if seen[e.Year] {
			return apperrors.Validation("escalationSchedule", fmt.Sprintf("duplicate year %d", e.Year))
		}
		if e.Year <= prev {
			return apperrors.Validation("escalationSchedule", "schedule years must be ascending")
		}
		if e.Rate < 0 {
			return apperrors.Validation("escalationSchedule", fmt.Sprintf("negative rate for year %d", e.Year))
		}
		seen[e.Year] = true
		prev = e.Year
	}
	return nil
}

// Exactly one business-model field group must be populated, matching the
// chosen model.
func (t Terms) validateBusinessModel() error {
	switch t.BusinessModel {
	case ModelCapex:
		if t.CapexAmount <= 0 {
			return apperrors.Validation("capexAmount", "capex amount must be greater than 0")
		}
		if t.OpexMonthlyFee != 0 || t.OpexEnergyRate != 0 {
			return apperrors.Validation("businessModel", "opex fields set on a capex contract")
		}
	case ModelOpex:
		if t.OpexMonthlyFee <= 0 {
			return apperrors.Validation("opexMonthlyFee", "opex monthly fee must be greater than 0")
		}
		if t.OpexEnergyRate <= 0 {
			return apperrors.Validation("opexEnergyRate", "opex energy rate must be greater than 0")
		}
		if t.CapexAmount != 0 {
			return apperrors.Validation("businessModel", "capex amount set on an opex contract")
		}
	default:
		return apperrors.Validation("businessModel", "must be capex or opex")
	}
	return nil
}
