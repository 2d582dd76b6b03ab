package ppa

import (
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/billing"
	"github.com/SuryaEnergia/api-ppa/internal/tariff"
)

// IsActive is a read-time predicate: the stored status must be active AND
// now must fall inside the contract window. A contract past its end date
// reports inactive even while the stored status still reads "active"; the
// engine never flips the row to expired on its own.
func (p PPA) IsActive(now time.Time) bool {
	return p.Status == StatusActive &&
		!now.Before(p.StartDate) &&
		!now.After(p.EndDate)
}

// Sign marks the agreement signed and activates a draft. Signing an
// already-active contract only stamps SignedAt.
func (p PPA) Sign(now time.Time) PPA {
	p.SignedAt = &now
	if p.Status == StatusDraft {
		p.Status = StatusActive
	}
	return p
}

// Terminate is an administrative overwrite of the status; no billing logic
// hangs off it.
func (p PPA) Terminate() PPA {
	p.Status = StatusTerminated
	return p
}

// CurrentTariffRate is the contract's effective rate at asOf, zero when the
// contract is not active then.
func (p PPA) CurrentTariffRate(asOf time.Time) float64 {
	return tariff.CurrentRate(p.BillingTerms, p.StartDate, asOf, p.IsActive(asOf))
}

// ShouldGenerateInvoice reports whether a billing run is due. The cadence
// thresholds are fixed-day approximations (30/90/365), not calendar-month
// arithmetic.
func (p PPA) ShouldGenerateInvoice(now time.Time) bool {
	if !p.IsActive(now) {
		return false
	}
	if p.LastBillingDate == nil {
		return true
	}

	days := int(now.Sub(*p.LastBillingDate).Hours() / 24)
	switch p.BillingTerms.BillingCycle {
	case billing.CycleMonthly:
		return days >= 30
	case billing.CycleQuarterly:
		return days >= 90
	case billing.CycleAnnually:
		return days >= 365
	}
	return false
}
