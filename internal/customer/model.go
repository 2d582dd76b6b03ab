package customer

import (
	"gorm.io/gorm"
)

// Customer is an account holding one or more solar PPAs. TariffRate is the
// simple per-kWh rate used for invoices generated outside a contract; a
// contract's own billing terms take precedence when one exists.
type Customer struct {
	gorm.Model
	Name         string  `json:"name"`
	Email        string  `json:"email" gorm:"unique"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	State        string  `json:"state"`
	DiscomCode   string  `json:"discomCode"`
	TariffRate   float64 `json:"tariffRate"`
	PasswordHash string  `json:"-"`
	IsAdmin      bool    `json:"isAdmin"`
}
