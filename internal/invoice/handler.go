package invoice

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/billing"
	"github.com/SuryaEnergia/api-ppa/internal/customer"
	"github.com/SuryaEnergia/api-ppa/internal/ppa"
	"github.com/SuryaEnergia/api-ppa/internal/tariff"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	PPAs       ppa.Repository
	Customers  customer.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		PPAs:       ppa.NewRepository(),
		Customers:  customer.NewRepository(),
	}
}

type generateDTO struct {
	CustomerID uint    `json:"customerId"`
	PPAID      uint    `json:"ppaId,omitempty"`
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	UsageKWH   float64 `json:"usageKwh"`
}

// Generate handles POST /invoices/generate. The rate comes from the
// contract when ppaId is given (slab-resolved against the usage when the
// contract defines slabs), otherwise from the customer's flat tariff rate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	// 1) decode
	var dto generateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if dto.UsageKWH < 0 {
		http.Error(w, "usageKwh cannot be negative", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()

	// 2) resolve the rate
	var rate float64
	var terms *billing.Terms

	if dto.PPAID != 0 {
		contract, err := h.PPAs.FindByID(h.DB, dto.PPAID)
		if err != nil {
			http.Error(w, "PPA not found", http.StatusNotFound)
			return
		}
		rate = contract.CurrentTariffRate(now)
		if len(contract.BillingTerms.Slabs) > 0 && contract.IsActive(now) {
			rate = tariff.ResolveSlabRate(dto.UsageKWH, contract.BillingTerms.Slabs)
		}
		terms = &contract.BillingTerms
	} else {
		cust, err := h.Customers.FindByID(h.DB, dto.CustomerID)
		if err != nil {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}
		rate = cust.TariffRate
	}

	// 3) build and persist
	inv := Generate(dto.CustomerID, dto.PPAID, dto.Month, dto.Year, dto.UsageKWH, rate, terms, now)
	if err := h.Repository.Create(h.DB, &inv); err != nil {
		http.Error(w, "could not create invoice", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(inv)
}

// List handles GET /invoices, optionally filtered by ?customerId=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var invoices []Invoice
	var err error

	if c := r.URL.Query().Get("customerId"); c != "" {
		id, convErr := strconv.Atoi(c)
		if convErr != nil {
			http.Error(w, "invalid customerId", http.StatusBadRequest)
			return
		}
		invoices, err = h.Repository.ListByCustomer(h.DB, uint(id))
	} else {
		invoices, err = h.Repository.ListAll(h.DB)
	}
	if err != nil {
		http.Error(w, "could not list invoices", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(invoices)
}

// Get handles GET /invoices/{id}, including the penalty accrued so far.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	inv, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}

	resp := struct {
		Invoice
		PenaltyAccrued float64 `json:"penaltyAccrued"`
	}{*inv, inv.PenaltyAmount(time.Now().UTC())}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// MarkPaid handles POST /invoices/{id}/pay.
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	inv, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		http.Error(w, "invoice not found", http.StatusNotFound)
		return
	}

	updated := inv.MarkPaid(time.Now().UTC())
	if err := h.Repository.Update(h.DB, &updated); err != nil {
		http.Error(w, "could not update invoice", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}
