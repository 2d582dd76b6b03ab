package discom

import (
	"errors"
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
	"gorm.io/gorm"
)

// Store is the persistence surface the resolver needs. The gorm
// implementation binds a *gorm.DB; tests swap in fakes.
type Store interface {
	FindDiscom(code string) (*Discom, error)
	SaveDiscom(d *Discom) error
	// FindEffectiveTariff picks the stored structure matching the scope
	// whose effective window contains asOf, latest EffectiveFrom first.
	FindEffectiveTariff(discomCode, state, category, customerType string, asOf time.Time) (*TariffStructure, error)
	SaveTariff(ts *TariffStructure) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindDiscom(code string) (*Discom, error) {
	var d Discom
	if err := s.db.Where("code = ?", code).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *gormStore) SaveDiscom(d *Discom) error {
	return s.db.Save(d).Error
}

func (s *gormStore) FindEffectiveTariff(discomCode, state, category, customerType string, asOf time.Time) (*TariffStructure, error) {
	var ts TariffStructure
	err := s.db.
		Where("discom_code = ? AND state = ? AND category = ? AND customer_type = ?",
			discomCode, state, category, customerType).
		Where("effective_from <= ?", asOf).
		Where("effective_until IS NULL OR effective_until >= ?", asOf).
		Order("effective_from DESC").
		Preload("Slabs").
		Preload("TimeOfUse").
		First(&ts).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &ts, nil
}

func (s *gormStore) SaveTariff(ts *TariffStructure) error {
	return s.db.Save(ts).Error
}
