package ppa

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
	"github.com/SuryaEnergia/api-ppa/internal/auth"
	"github.com/SuryaEnergia/api-ppa/internal/billing"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error, fallback string) {
	var ve *apperrors.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrNotFound):
		http.Error(w, "PPA not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrConflict):
		http.Error(w, "contract was modified concurrently, retry", http.StatusConflict)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}

// Create handles POST /ppas.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	// 1) decode into the DTO
	var dto CreatePPADTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}

	// 2) parse dates
	start, err := parseDate(dto.StartDate)
	if err != nil {
		http.Error(w, "invalid startDate", http.StatusBadRequest)
		return
	}
	end, err := parseDate(dto.EndDate)
	if err != nil {
		http.Error(w, "invalid endDate", http.StatusBadRequest)
		return
	}

	// 3) build and validate the contract
	actor := auth.ActorID(r.Context())
	contract, err := Generate(dto.CustomerID, dto.SystemSpecs, dto.BillingTerms, start, end, dto.ContractType, actor, time.Now().UTC())
	if err != nil {
		writeEngineError(w, err, "could not build contract")
		return
	}

	// 4) persist
	if err := h.Repository.Create(h.DB, contract); err != nil {
		http.Error(w, "could not create PPA", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(contract)
}

// Get handles GET /ppas/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	contract, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		writeEngineError(w, err, "could not load PPA")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contract)
}

// ListByCustomer handles GET /customers/{id}/ppas.
func (h *Handler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.Atoi(mux.Vars(r)["id"])
	list, err := h.Repository.FindByCustomer(h.DB, uint(customerID))
	if err != nil {
		http.Error(w, "could not list PPAs", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// mutate runs a read-modify-write cycle under the version check.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func(PPA) (PPA, error)) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	contract, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		writeEngineError(w, err, "could not load PPA")
		return
	}

	updated, err := fn(*contract)
	if err != nil {
		writeEngineError(w, err, "could not update PPA")
		return
	}
	updated.UpdatedBy = auth.ActorID(r.Context())

	if err := h.Repository.UpdateWithVersion(h.DB, &updated); err != nil {
		writeEngineError(w, err, "could not persist PPA")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// Sign handles POST /ppas/{id}/sign.
func (h *Handler) Sign(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(p PPA) (PPA, error) {
		return p.Sign(time.Now().UTC()), nil
	})
}

// Terminate handles POST /ppas/{id}/terminate. Administrative status
// overwrite, no billing logic attached.
func (h *Handler) Terminate(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(p PPA) (PPA, error) {
		return p.Terminate(), nil
	})
}

// RecordEnergy handles POST /ppas/{id}/energy.
func (h *Handler) RecordEnergy(w http.ResponseWriter, r *http.Request) {
	var dto energyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	date, err := parseDate(dto.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(p PPA) (PPA, error) {
		return p.RecordEnergyProduction(dto.KWH, date)
	})
}

// RecordBilling handles POST /ppas/{id}/billing.
func (h *Handler) RecordBilling(w http.ResponseWriter, r *http.Request) {
	var dto amountDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	date, err := parseDate(dto.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(p PPA) (PPA, error) {
		return p.RecordBilling(dto.Amount, date)
	})
}

// RecordPayment handles POST /ppas/{id}/payments.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var dto amountDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	date, err := parseDate(dto.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(p PPA) (PPA, error) {
		return p.RecordPayment(dto.Amount, date)
	})
}

// RecordOpexPayment handles POST /ppas/{id}/opex-payments.
func (h *Handler) RecordOpexPayment(w http.ResponseWriter, r *http.Request) {
	var dto opexDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	date, err := parseDate(dto.Date)
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	h.mutate(w, r, func(p PPA) (PPA, error) {
		return p.RecordOpexPayment(dto.KWHConsumed, date)
	})
}

// CurrentTariff handles GET /ppas/{id}/tariff. Returns the effective rate
// now, plus invoice-due status.
func (h *Handler) CurrentTariff(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	contract, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		writeEngineError(w, err, "could not load PPA")
		return
	}

	now := time.Now().UTC()
	resp := struct {
		ContractNumber string  `json:"contractNumber"`
		Rate           float64 `json:"rate"`
		Currency       string  `json:"currency"`
		Active         bool    `json:"active"`
		InvoiceDue     bool    `json:"invoiceDue"`
	}{
		ContractNumber: contract.ContractNumber,
		Rate:           contract.CurrentTariffRate(now),
		Currency:       contract.BillingTerms.Currency,
		Active:         contract.IsActive(now),
		InvoiceDue:     contract.ShouldGenerateInvoice(now),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// PaymentSchedule handles GET /ppas/{id}/payment-schedule. CAPEX contracts
// get the fixed installment plan; OPEX contracts get the monthly charge for
// an optional ?kwh= consumption value.
func (h *Handler) PaymentSchedule(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	contract, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		writeEngineError(w, err, "could not load PPA")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch contract.BillingTerms.BusinessModel {
	case billing.ModelCapex:
		json.NewEncoder(w).Encode(map[string]interface{}{
			"businessModel": billing.ModelCapex,
			"installments":  CapexSchedule(contract.StartDate, contract.BillingTerms.CapexAmount),
		})
	case billing.ModelOpex:
		kwh, _ := strconv.ParseFloat(r.URL.Query().Get("kwh"), 64)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"businessModel": billing.ModelOpex,
			"monthlyFee":    contract.BillingTerms.OpexMonthlyFee,
			"energyRate":    contract.BillingTerms.OpexEnergyRate,
			"monthlyAmount": OpexMonthlyAmount(contract.BillingTerms.OpexMonthlyFee, contract.BillingTerms.OpexEnergyRate, kwh),
		})
	default:
		http.Error(w, "contract has no business model", http.StatusBadRequest)
	}
}
