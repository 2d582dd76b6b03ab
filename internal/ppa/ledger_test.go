package ppa

import (
	"testing"
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
	"github.com/SuryaEnergia/api-ppa/internal/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEnergyProduction(t *testing.T) {
	contract := activeContract(t, testNow.AddDate(0, 0, -100))

	updated, err := contract.RecordEnergyProduction(1200, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, updated.TotalEnergyProduced)
	require.Len(t, updated.ProductionHistory, 1)
	assert.Equal(t, 8.0, updated.ProductionHistory[0].TariffRate, "tariff snapshot at reading date")

	updated, err = updated.RecordEnergyProduction(800, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, updated.TotalEnergyProduced)
	assert.Len(t, updated.ProductionHistory, 2)

	// Original value untouched.
	assert.Zero(t, contract.TotalEnergyProduced)
}

func TestRecordEnergyProductionRejectsNonPositive(t *testing.T) {
	contract := activeContract(t, testNow.AddDate(0, 0, -100))
	_, err := contract.RecordEnergyProduction(0, testNow)
	assert.True(t, apperrors.IsValidation(err))
	_, err = contract.RecordEnergyProduction(-5, testNow)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecordBillingAdvancesDates(t *testing.T) {
	contract := activeContract(t, testNow.AddDate(0, 0, -100))

	billingDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	updated, err := contract.RecordBilling(2500, billingDate)
	require.NoError(t, err)

	assert.Equal(t, 2500.0, updated.TotalBilled)
	require.NotNil(t, updated.LastBillingDate)
	assert.Equal(t, billingDate, *updated.LastBillingDate)

	// Monthly: +32 days lands on April 16, truncated to April 1.
	require.NotNil(t, updated.NextBillingDate)
	next := *updated.NextBillingDate
	assert.Equal(t, time.April, next.Month())
	assert.Equal(t, 1, next.Day())

	require.Len(t, updated.BillingHistory, 1)
	assert.Equal(t, 2500.0, updated.BillingHistory[0].Amount)
}

func TestRecordBillingFoldsEscalationHistoryOnce(t *testing.T) {
	terms := testTerms()
	terms.EscalationType = billing.EscalationCustomSchedule
	terms.EscalationSchedule = []billing.ScheduleEntry{
		{Year: 1, Rate: 0.02},
		{Year: 2, Rate: 0.03},
	}

	start := testNow.AddDate(0, 0, -300)
	contract, err := Generate(1, testSpecs(), terms, start, start.AddDate(20, 0, 0), "", "42", testNow)
	require.NoError(t, err)

	first, err := contract.RecordBilling(1000, testNow)
	require.NoError(t, err)
	require.Len(t, first.EscalationHistory, 1, "still in contract year 1")
	assert.Equal(t, 1, first.EscalationHistory[0].Year)

	// Billing again in the same contract year must not re-record year 1.
	second, err := first.RecordBilling(1000, testNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, second.EscalationHistory, 1)
	assert.Equal(t, 2000.0, second.TotalBilled)
}

func TestRecordPayment(t *testing.T) {
	contract := activeContract(t, testNow.AddDate(0, 0, -100))

	billed, err := contract.RecordBilling(5000, testNow)
	require.NoError(t, err)
	paid, err := billed.RecordPayment(3000, testNow)
	require.NoError(t, err)

	assert.Equal(t, 3000.0, paid.TotalPaid)
	assert.Equal(t, 2000.0, paid.OutstandingAmount())

	// Overpayment is allowed; the balance just goes negative.
	over, err := paid.RecordPayment(4000, testNow)
	require.NoError(t, err)
	assert.Equal(t, -2000.0, over.OutstandingAmount())

	_, err = paid.RecordPayment(-1, testNow)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecordOpexPayment(t *testing.T) {
	contract := activeContract(t, testNow.AddDate(0, 0, -100))

	updated, err := contract.RecordOpexPayment(400, testNow)
	require.NoError(t, err)
	require.Len(t, updated.OpexPaymentHistory, 1)

	rec := updated.OpexPaymentHistory[0]
	assert.Equal(t, 1500.0, rec.MonthlyFee)
	assert.Equal(t, 1800.0, rec.EnergyAmount) // 4.5 × 400
	assert.Equal(t, 3300.0, rec.Total)
}

func TestRecordOpexPaymentRejectsCapexContract(t *testing.T) {
	terms := testTerms()
	terms.BusinessModel = billing.ModelCapex
	terms.OpexMonthlyFee = 0
	terms.OpexEnergyRate = 0
	terms.CapexAmount = 450000

	contract, err := Generate(1, testSpecs(), terms, testNow.AddDate(0, 0, -100), testNow.AddDate(20, 0, 0), "", "42", testNow)
	require.NoError(t, err)

	_, err = contract.RecordOpexPayment(400, testNow)
	assert.True(t, apperrors.IsValidation(err))
}

func TestNextBillingDate(t *testing.T) {
	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	monthly := NextBillingDate(billing.CycleMonthly, base)
	assert.Equal(t, time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), monthly)

	quarterly := NextBillingDate(billing.CycleQuarterly, base)
	assert.Equal(t, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC), quarterly)

	annually := NextBillingDate(billing.CycleAnnually, base)
	assert.Equal(t, base.AddDate(0, 0, 365), annually)
}

func TestCapexSchedule(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	installments := CapexSchedule(start, 500000)

	require.Len(t, installments, 2)
	assert.Equal(t, 100000.0, installments[0].Amount)
	assert.Equal(t, start, installments[0].DueDate)
	assert.Equal(t, 400000.0, installments[1].Amount)
	assert.Equal(t, start.AddDate(0, 0, 30), installments[1].DueDate)
}

func TestOpexMonthlyAmount(t *testing.T) {
	assert.Equal(t, 3300.0, OpexMonthlyAmount(1500, 4.5, 400))
	assert.Equal(t, 1500.0, OpexMonthlyAmount(1500, 4.5, 0))
}
