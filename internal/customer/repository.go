package customer

import "gorm.io/gorm"

type Repository interface {
	Save(db *gorm.DB, c *Customer) error
	FindByEmail(db *gorm.DB, email string) (*Customer, error)
	FindByID(db *gorm.DB, id uint) (*Customer, error)
	ListAll(db *gorm.DB) ([]Customer, error)
	Update(db *gorm.DB, id uint, updated *Customer) error
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, c *Customer) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) FindByEmail(db *gorm.DB, email string) (*Customer, error) {
	var c Customer
	err := db.Where("email = ?", email).First(&c).Error
	return &c, err
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Customer, error) {
	var c Customer
	err := db.First(&c, id).Error
	return &c, err
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Customer, error) {
	var customers []Customer
	err := db.Find(&customers).Error
	return customers, err
}

func (r *repositoryImpl) Update(db *gorm.DB, id uint, updated *Customer) error {
	var existing Customer
	if err := db.First(&existing, id).Error; err != nil {
		return err
	}

	existing.Name = updated.Name
	existing.Email = updated.Email
	existing.Phone = updated.Phone
	existing.Address = updated.Address
	existing.State = updated.State
	existing.DiscomCode = updated.DiscomCode
	existing.TariffRate = updated.TariffRate

	return db.Save(&existing).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Customer{}, id).Error
}
