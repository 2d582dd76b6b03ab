package ppa

import (
	"errors"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, p *PPA) error
	FindByID(db *gorm.DB, id uint) (*PPA, error)
	FindByCustomer(db *gorm.DB, customerID uint) ([]PPA, error)
	// UpdateWithVersion persists p only if the stored row still carries
	// p's version, bumping it by one. A lost race returns ErrConflict,
	// which the caller may retry after re-reading.
	UpdateWithVersion(db *gorm.DB, p *PPA) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, p *PPA) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*PPA, error) {
	var p PPA
	if err := db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repositoryImpl) FindByCustomer(db *gorm.DB, customerID uint) ([]PPA, error) {
	var list []PPA
	err := db.Where("customer_id = ?", customerID).Find(&list).Error
	return list, err
}

func (r *repositoryImpl) UpdateWithVersion(db *gorm.DB, p *PPA) error {
	prev := p.Version
	p.Version = prev + 1

	tx := db.Model(&PPA{}).
		Where("id = ? AND version = ?", p.ID, prev).
		Select("*").
		Omit("id", "created_at").
		Updates(p)
	if tx.Error != nil {
		p.Version = prev
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		p.Version = prev
		return apperrors.ErrConflict
	}
	return nil
}
