// internal/ppa/dto.go
package ppa

import "github.com/SuryaEnergia/api-ppa/internal/billing"

type CreatePPADTO struct {
	CustomerID   uint          `json:"customerId"`
	SystemSpecs  SystemSpecs   `json:"systemSpecs"`
	BillingTerms billing.Terms `json:"billingTerms"`
	StartDate    string        `json:"startDate"`
	EndDate      string        `json:"endDate"`
	ContractType string        `json:"contractType"`
}

type amountDTO struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

type energyDTO struct {
	KWH  float64 `json:"kwh"`
	Date string  `json:"date"`
}

type opexDTO struct {
	KWHConsumed float64 `json:"kwhConsumed"`
	Date        string  `json:"date"`
}
