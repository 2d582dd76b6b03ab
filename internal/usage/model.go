// Package usage stores energy-meter readings per customer and month.
package usage

import (
	"time"

	"gorm.io/gorm"
)

// Reading is one month of metered consumption for a customer.
type Reading struct {
	gorm.Model
	CustomerID uint      `gorm:"not null;index" json:"customerId"`
	Month      int       `gorm:"not null" json:"month"`
	Year       int       `gorm:"not null" json:"year"`
	UsageKWH   float64   `gorm:"not null" json:"usageKwh"`
	Timestamp  time.Time `json:"timestamp"`
}
