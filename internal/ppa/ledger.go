package ppa

import (
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
	"github.com/SuryaEnergia/api-ppa/internal/billing"
	"github.com/SuryaEnergia/api-ppa/internal/tariff"
)

// Ledger mutators take the contract by value and return the updated copy,
// so callers never mutate a shared reference; the repository's version
// check serializes concurrent writers.

// RecordEnergyProduction appends a meter reading with the tariff that
// applied on the reading date and bumps the running total.
func (p PPA) RecordEnergyProduction(kwh float64, readingDate time.Time) (PPA, error) {
	if kwh <= 0 {
		return p, apperrors.Validation("kwh", "energy reading must be greater than 0")
	}
	p.ProductionHistory = append(p.ProductionHistory, ProductionRecord{
		KWH:        kwh,
		Date:       readingDate,
		TariffRate: p.CurrentTariffRate(readingDate),
	})
	p.TotalEnergyProduced += kwh
	return p, nil
}

// RecordBilling appends a billing record with a tariff snapshot, bumps the
// billed total and advances the billing dates. Custom-schedule contracts
// also fold any newly reached escalation years into the escalation history
// here, once per year.
func (p PPA) RecordBilling(amount float64, billingDate time.Time) (PPA, error) {
	if amount <= 0 {
		return p, apperrors.Validation("amount", "billing amount must be greater than 0")
	}

	rate := p.CurrentTariffRate(billingDate)
	if p.BillingTerms.EscalationType == billing.EscalationCustomSchedule && p.IsActive(billingDate) {
		rate, p.EscalationHistory = tariff.ApplySchedule(p.BillingTerms, p.StartDate, billingDate, p.EscalationHistory)
	}

	p.BillingHistory = append(p.BillingHistory, BillingRecord{
		Amount:     amount,
		Date:       billingDate,
		TariffRate: rate,
	})
	p.TotalBilled += amount
	p.LastBillingDate = &billingDate
	next := NextBillingDate(p.BillingTerms.BillingCycle, billingDate)
	p.NextBillingDate = &next
	return p, nil
}

// RecordPayment appends a received payment and bumps the paid total. No
// check against the outstanding balance: prepayments are allowed.
func (p PPA) RecordPayment(amount float64, paymentDate time.Time) (PPA, error) {
	if amount <= 0 {
		return p, apperrors.Validation("amount", "payment amount must be greater than 0")
	}
	p.PaymentHistory = append(p.PaymentHistory, PaymentRecord{
		Amount: amount,
		Date:   paymentDate,
	})
	p.TotalPaid += amount
	return p, nil
}

// RecordOpexPayment charges one OPEX month: the fixed fee plus the energy
// rate applied to consumption. Only valid on opex contracts.
func (p PPA) RecordOpexPayment(kwhConsumed float64, date time.Time) (PPA, error) {
	if p.BillingTerms.BusinessModel != billing.ModelOpex {
		return p, apperrors.Validation("businessModel", "opex payment on a non-opex contract")
	}
	if kwhConsumed < 0 {
		return p, apperrors.Validation("kwhConsumed", "consumption cannot be negative")
	}
	energy := p.BillingTerms.OpexEnergyRate * kwhConsumed
	rec := OpexPaymentRecord{
		MonthlyFee:   p.BillingTerms.OpexMonthlyFee,
		EnergyAmount: energy,
		KWHConsumed:  kwhConsumed,
		Total:        p.BillingTerms.OpexMonthlyFee + energy,
		Date:         date,
	}
	p.OpexPaymentHistory = append(p.OpexPaymentHistory, rec)
	return p, nil
}

// NextBillingDate derives the next billing date from the cycle. Monthly and
// quarterly jump past the cycle and truncate to the first of that month;
// annually is a plain 365-day add.
func NextBillingDate(cycle string, base time.Time) time.Time {
	switch cycle {
	case billing.CycleMonthly:
		return firstOfMonth(base.AddDate(0, 0, 32))
	case billing.CycleQuarterly:
		return firstOfMonth(base.AddDate(0, 0, 92))
	case billing.CycleAnnually:
		return base.AddDate(0, 0, 365)
	}
	return base
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// Installment is one due payment of a CAPEX schedule.
type Installment struct {
	Label   string    `json:"label"`
	Amount  float64   `json:"amount"`
	DueDate time.Time `json:"dueDate"`
}

// CapexSchedule is the fixed two-installment default: 20% down at contract
// start, the remaining 80% due 30 days later.
func CapexSchedule(start time.Time, amount float64) []Installment {
	return []Installment{
		{Label: "down_payment", Amount: amount * 0.20, DueDate: start},
		{Label: "balance", Amount: amount * 0.80, DueDate: start.AddDate(0, 0, 30)},
	}
}

// OpexMonthlyAmount is the monthly OPEX charge for a consumption value.
func OpexMonthlyAmount(monthlyFee, energyRate, kwhConsumed float64) float64 {
	return monthlyFee + energyRate*kwhConsumed
}
