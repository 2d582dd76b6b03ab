// Package discom resolves tariffs from DISCOM (distribution company)
// sources, independent of any contract's own billing terms. Resolution is
// layered: live API, stored regulatory tariff, rule-based default, constant
// fallback.
package discom

import (
	"time"

	"gorm.io/gorm"
)

// Tariff record sources.
const (
	SourceAPI      = "api"
	SourceStored   = "stored"
	SourceDefault  = "default"
	SourceFallback = "fallback"
)

// Discom is one distribution company. When APIActive is set and an endpoint
// is configured, the resolver tries the live API first.
type Discom struct {
	gorm.Model
	Code        string `gorm:"size:32;uniqueIndex" json:"code"`
	Name        string `json:"name"`
	State       string `gorm:"size:64;index" json:"state"`
	APIEndpoint string `json:"apiEndpoint,omitempty"`
	APIKey      string `json:"-"`
	APIActive   bool   `json:"apiActive"`
}

// TariffStructure is a regulatory tariff scoped to
// (discom, state, category, customer type) with an effective-date window.
type TariffStructure struct {
	gorm.Model
	DiscomCode     string     `gorm:"size:32;index" json:"discomCode"`
	State          string     `gorm:"size:64" json:"state"`
	Category       string     `gorm:"size:64" json:"category"`
	CustomerType   string     `gorm:"size:32" json:"customerType"`
	BaseRate       float64    `gorm:"not null" json:"baseRate"`
	Currency       string     `gorm:"size:8;default:'INR'" json:"currency"`
	EffectiveFrom  time.Time  `gorm:"index" json:"effectiveFrom"`
	EffectiveUntil *time.Time `json:"effectiveUntil,omitempty"`
	Source         string     `gorm:"size:16" json:"source"`

	Slabs     []TariffSlab      `gorm:"foreignKey:TariffStructureID;constraint:OnDelete:CASCADE" json:"slabs,omitempty"`
	TimeOfUse []TimeOfUseTariff `gorm:"foreignKey:TariffStructureID;constraint:OnDelete:CASCADE" json:"timeOfUse,omitempty"`
}

// TariffSlab is one consumption band of a stored tariff (min inclusive,
// max exclusive, nil max open-ended).
type TariffSlab struct {
	ID                uint     `gorm:"primaryKey" json:"id"`
	TariffStructureID uint     `gorm:"not null;index" json:"tariffStructureId"`
	Min               float64  `json:"min"`
	Max               *float64 `json:"max,omitempty"`
	Rate              float64  `json:"rate"`
	Unit              string   `gorm:"size:16;default:'kwh'" json:"unit"`
}

// TimeOfUseTariff is one daily time-window rate of a stored tariff.
type TimeOfUseTariff struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	TariffStructureID uint    `gorm:"not null;index" json:"tariffStructureId"`
	TimeRange         string  `gorm:"size:16" json:"timeRange"`
	Rate              float64 `json:"rate"`
	Unit              string  `gorm:"size:16;default:'kwh'" json:"unit"`
}

// Migrate creates the discom tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Discom{}, &TariffStructure{}, &TariffSlab{}, &TimeOfUseTariff{})
}
