package usage

import "gorm.io/gorm"

type Repository interface {
	Create(db *gorm.DB, r *Reading) error
	FindByID(db *gorm.DB, id uint) (*Reading, error)
	ListByCustomer(db *gorm.DB, customerID uint) ([]Reading, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (repo *repositoryImpl) Create(db *gorm.DB, r *Reading) error {
	return db.Create(r).Error
}

func (repo *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Reading, error) {
	var reading Reading
	err := db.First(&reading, id).Error
	return &reading, err
}

func (repo *repositoryImpl) ListByCustomer(db *gorm.DB, customerID uint) ([]Reading, error) {
	var readings []Reading
	err := db.Where("customer_id = ?", customerID).Order("year, month").Find(&readings).Error
	return readings, err
}
