package discom

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	Store    Store
	Resolver *Resolver
}

func NewHandler(db *gorm.DB, resolver *Resolver) *Handler {
	return &Handler{DB: db, Store: NewStore(db), Resolver: resolver}
}

// GetDynamicTariff handles GET /tariffs/dynamic. Query params: discom,
// state, category, customerType, optional date (RFC3339) and consumption.
func (h *Handler) GetDynamicTariff(w http.ResponseWriter, r *http.Request) {
	qp := r.URL.Query()

	q := Query{
		DiscomCode:   qp.Get("discom"),
		State:        qp.Get("state"),
		Category:     qp.Get("category"),
		CustomerType: qp.Get("customerType"),
	}
	if d := qp.Get("date"); d != "" {
		asOf, err := time.Parse(time.RFC3339, d)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		q.AsOf = asOf
	}
	if c := qp.Get("consumption"); c != "" {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil || v < 0 {
			http.Error(w, "invalid consumption", http.StatusBadRequest)
			return
		}
		q.Consumption = &v
	}

	res, err := h.Resolver.Resolve(r.Context(), q)
	if err != nil {
		if apperrors.IsValidation(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "could not resolve tariff", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// CreateDiscom handles POST /discoms.
func (h *Handler) CreateDiscom(w http.ResponseWriter, r *http.Request) {
	var d Discom
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if d.Code == "" {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}
	if err := h.Store.SaveDiscom(&d); err != nil {
		http.Error(w, "could not save discom", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(d)
}

type updateTariffsDTO struct {
	State          string            `json:"state"`
	Category       string            `json:"category"`
	CustomerType   string            `json:"customerType"`
	BaseRate       float64           `json:"baseRate"`
	EffectiveFrom  string            `json:"effectiveFrom"`
	EffectiveUntil string            `json:"effectiveUntil,omitempty"`
	Slabs          []TariffSlab      `json:"slabs,omitempty"`
	TimeOfUse      []TimeOfUseTariff `json:"timeOfUse,omitempty"`
}

// UpdateTariffs handles POST /discoms/{code}/tariffs: stores a regulatory
// tariff structure (with slab and time-of-use rows) for the discom.
func (h *Handler) UpdateTariffs(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	if _, err := h.Store.FindDiscom(code); err != nil {
		http.Error(w, "discom not found", http.StatusNotFound)
		return
	}

	var dto updateTariffsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if dto.BaseRate <= 0 {
		http.Error(w, "baseRate must be greater than 0", http.StatusBadRequest)
		return
	}

	from := time.Now().UTC()
	if dto.EffectiveFrom != "" {
		t, err := time.Parse(time.RFC3339, dto.EffectiveFrom)
		if err != nil {
			http.Error(w, "invalid effectiveFrom", http.StatusBadRequest)
			return
		}
		from = t
	}

	ts := TariffStructure{
		DiscomCode:    code,
		State:         dto.State,
		Category:      dto.Category,
		CustomerType:  dto.CustomerType,
		BaseRate:      dto.BaseRate,
		Currency:      "INR",
		EffectiveFrom: from,
		Source:        SourceStored,
		Slabs:         dto.Slabs,
		TimeOfUse:     dto.TimeOfUse,
	}
	if dto.EffectiveUntil != "" {
		t, err := time.Parse(time.RFC3339, dto.EffectiveUntil)
		if err != nil {
			http.Error(w, "invalid effectiveUntil", http.StatusBadRequest)
			return
		}
		ts.EffectiveUntil = &t
	}

	if err := h.Store.SaveTariff(&ts); err != nil {
		http.Error(w, "could not save tariff", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ts)
}
