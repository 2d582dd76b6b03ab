package usage

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

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

// Create handles POST /energy-usage.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var reading Reading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		http.Error(w, "malformed JSON", http.StatusBadRequest)
		return
	}
	if reading.UsageKWH < 0 {
		http.Error(w, "usageKwh cannot be negative", http.StatusBadRequest)
		return
	}
	if reading.Month < 1 || reading.Month > 12 {
		http.Error(w, "month must be between 1 and 12", http.StatusBadRequest)
		return
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}

	if err := h.Repository.Create(h.DB, &reading); err != nil {
		http.Error(w, "could not save reading", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(reading)
}

// ListByCustomer handles GET /customers/{id}/energy-usage.
func (h *Handler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.Atoi(mux.Vars(r)["id"])
	readings, err := h.Repository.ListByCustomer(h.DB, uint(customerID))
	if err != nil {
		http.Error(w, "could not list readings", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(readings)
}
