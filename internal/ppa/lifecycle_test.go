package ppa

import (
	"testing"
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
	"github.com/SuryaEnergia/api-ppa/internal/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testSpecs() SystemSpecs {
	return SystemSpecs{
		CapacityKW:                10,
		PanelType:                 "monocrystalline",
		InverterType:              "string",
		InstallationDate:          testNow.AddDate(0, -1, 0),
		EstimatedAnnualProduction: 14000,
	}
}

func testTerms() billing.Terms {
	return billing.Terms{
		BaseRate:       8.0,
		EscalationType: billing.EscalationFixedPercentage,
		EscalationRate: 0.02,
		BillingCycle:   billing.CycleMonthly,
		PaymentTerms:   "net30",
		Currency:       "INR",
		BusinessModel:  billing.ModelOpex,
		OpexMonthlyFee: 1500,
		OpexEnergyRate: 4.5,
	}
}

func activeContract(t *testing.T, start time.Time) *PPA {
	t.Helper()
	contract, err := Generate(1, testSpecs(), testTerms(), start, start.AddDate(20, 0, 0), TypeNetMetering, "42", testNow)
	require.NoError(t, err)
	return contract
}

func TestGenerateStatusDependsOnStartDate(t *testing.T) {
	past := activeContract(t, testNow.AddDate(0, 0, -100))
	assert.Equal(t, StatusActive, past.Status)

	future, err := Generate(1, testSpecs(), testTerms(), testNow.AddDate(0, 0, 30), testNow.AddDate(20, 0, 30), "", "42", testNow)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, future.Status)
	assert.Equal(t, TypeNetMetering, future.ContractType, "contract type defaults to net metering")
}

func TestGenerateValidatesDates(t *testing.T) {
	_, err := Generate(1, testSpecs(), testTerms(), testNow, testNow.AddDate(0, 0, -1), "", "42", testNow)
	assert.True(t, apperrors.IsValidation(err), "end before start")

	_, err = Generate(1, testSpecs(), testTerms(), testNow.AddDate(0, 0, -400), testNow.AddDate(20, 0, 0), "", "42", testNow)
	assert.True(t, apperrors.IsValidation(err), "start more than a year back")

	_, err = Generate(1, testSpecs(), testTerms(), testNow.AddDate(0, 0, 800), testNow.AddDate(20, 0, 800), "", "42", testNow)
	assert.True(t, apperrors.IsValidation(err), "start more than two years out")
}

func TestGenerateValidatesSpecsAndTerms(t *testing.T) {
	specs := testSpecs()
	specs.CapacityKW = 0
	_, err := Generate(1, specs, testTerms(), testNow, testNow.AddDate(20, 0, 0), "", "42", testNow)
	assert.True(t, apperrors.IsValidation(err))

	terms := testTerms()
	terms.BaseRate = 0
	_, err = Generate(1, testSpecs(), terms, testNow, testNow.AddDate(20, 0, 0), "", "42", testNow)
	assert.True(t, apperrors.IsValidation(err))

	_, err = Generate(1, testSpecs(), testTerms(), testNow, testNow.AddDate(20, 0, 0), "behind_the_meter", "42", testNow)
	assert.True(t, apperrors.IsValidation(err))
}

func TestGenerateDerivesTenure(t *testing.T) {
	contract := activeContract(t, testNow)
	assert.InDelta(t, 20.0, contract.TenureYears, 0.05)
}

func TestIsActiveChecksStatusAndWindow(t *testing.T) {
	contract := activeContract(t, testNow.AddDate(0, 0, -100))

	assert.True(t, contract.IsActive(testNow))
	assert.False(t, contract.IsActive(contract.StartDate.AddDate(0, 0, -1)), "before start")

	// Past the end date the stored status still reads active, but the
	// predicate reports inactive.
	afterEnd := contract.EndDate.AddDate(0, 0, 1)
	assert.Equal(t, StatusActive, contract.Status)
	assert.False(t, contract.IsActive(afterEnd))

	terminated := contract.Terminate()
	assert.False(t, terminated.IsActive(testNow))
}

func TestSignActivatesDraft(t *testing.T) {
	draft, err := Generate(1, testSpecs(), testTerms(), testNow.AddDate(0, 0, 30), testNow.AddDate(20, 0, 30), "", "42", testNow)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, draft.Status)

	signed := draft.Sign(testNow)
	assert.Equal(t, StatusActive, signed.Status)
	require.NotNil(t, signed.SignedAt)
	assert.Equal(t, testNow, *signed.SignedAt)

	// Draft copy untouched: mutators work on values.
	assert.Equal(t, StatusDraft, draft.Status)
}

func TestShouldGenerateInvoiceCadence(t *testing.T) {
	contract := activeContract(t, testNow.AddDate(-1, 0, 0))

	assert.True(t, contract.ShouldGenerateInvoice(testNow), "no prior billing")

	last := testNow.AddDate(0, 0, -31)
	contract.LastBillingDate = &last
	assert.True(t, contract.ShouldGenerateInvoice(testNow), "monthly, 31 days since billing")

	last = testNow.AddDate(0, 0, -10)
	contract.LastBillingDate = &last
	assert.False(t, contract.ShouldGenerateInvoice(testNow), "monthly, 10 days since billing")

	contract.BillingTerms.BillingCycle = billing.CycleQuarterly
	last = testNow.AddDate(0, 0, -91)
	contract.LastBillingDate = &last
	assert.True(t, contract.ShouldGenerateInvoice(testNow))
	last = testNow.AddDate(0, 0, -89)
	contract.LastBillingDate = &last
	assert.False(t, contract.ShouldGenerateInvoice(testNow))

	contract.BillingTerms.BillingCycle = billing.CycleAnnually
	last = testNow.AddDate(0, 0, -365)
	contract.LastBillingDate = &last
	assert.True(t, contract.ShouldGenerateInvoice(testNow))
	last = testNow.AddDate(0, 0, -300)
	contract.LastBillingDate = &last
	assert.False(t, contract.ShouldGenerateInvoice(testNow))
}

func TestShouldGenerateInvoiceInactiveContract(t *testing.T) {
	contract := activeContract(t, testNow.AddDate(0, 0, -100))
	terminated := contract.Terminate()
	assert.False(t, terminated.ShouldGenerateInvoice(testNow))
}

func TestCurrentTariffRateEndToEnd(t *testing.T) {
	// base 8.0, escalation 2%, started ~2 years ago: 8.0 × 1.02² = 8.3232.
	// Generate only accepts starts up to a year back, so age the contract
	// after construction.
	contract := activeContract(t, testNow.AddDate(0, 0, -100))
	contract.StartDate = testNow.AddDate(0, 0, -800)
	assert.InDelta(t, 8.3232, contract.CurrentTariffRate(testNow), 1e-9)

	// Inactive contracts have no current price.
	assert.Equal(t, 0.0, contract.Terminate().CurrentTariffRate(testNow))
}
