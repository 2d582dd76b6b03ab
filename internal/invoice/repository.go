package invoice

import "gorm.io/gorm"

type Repository interface {
	Create(db *gorm.DB, i *Invoice) error
	FindByID(db *gorm.DB, id uint) (*Invoice, error)
	ListAll(db *gorm.DB) ([]Invoice, error)
	ListByCustomer(db *gorm.DB, customerID uint) ([]Invoice, error)
	Update(db *gorm.DB, i *Invoice) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, i *Invoice) error {
	return db.Create(i).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Invoice, error) {
	var inv Invoice
	err := db.First(&inv, id).Error
	return &inv, err
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Invoice, error) {
	var invoices []Invoice
	err := db.Find(&invoices).Error
	return invoices, err
}

func (r *repositoryImpl) ListByCustomer(db *gorm.DB, customerID uint) ([]Invoice, error) {
	var invoices []Invoice
	err := db.Where("customer_id = ?", customerID).Find(&invoices).Error
	return invoices, err
}

func (r *repositoryImpl) Update(db *gorm.DB, i *Invoice) error {
	return db.Save(i).Error
}
