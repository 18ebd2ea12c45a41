package repository

import (
	"github.com/yukikurage/workforce-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDirectoryRepository is a GORM implementation of DirectoryRepository
type GormDirectoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a new DirectoryRepository
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &GormDirectoryRepository{db: db}
}

// ListDepartments lists departments by name
func (r *GormDirectoryRepository) ListDepartments() ([]models.Department, error) {
	var depts []models.Department
	if err := r.db.Order("name").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

// CreateDepartment creates a new department
func (r *GormDirectoryRepository) CreateDepartment(dept *models.Department) error {
	return r.db.Create(dept).Error
}

// DeleteDepartment deletes a department nobody references
func (r *GormDirectoryRepository) DeleteDepartment(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var dept models.Department
		if err := tx.First(&dept, id).Error; err != nil {
			return err
		}

		if err := ensureUnreferenced(tx, "department", dept.Name); err != nil {
			return err
		}

		return tx.Delete(&dept).Error
	})
}

// ListDesignations lists designations by name
func (r *GormDirectoryRepository) ListDesignations() ([]models.Designation, error) {
	var desigs []models.Designation
	if err := r.db.Order("name").Find(&desigs).Error; err != nil {
		return nil, err
	}
	return desigs, nil
}

// CreateDesignation creates a new designation
func (r *GormDirectoryRepository) CreateDesignation(desig *models.Designation) error {
	return r.db.Create(desig).Error
}

// DeleteDesignation deletes a designation nobody references
func (r *GormDirectoryRepository) DeleteDesignation(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var desig models.Designation
		if err := tx.First(&desig, id).Error; err != nil {
			return err
		}

		if err := ensureUnreferenced(tx, "designation", desig.Name); err != nil {
			return err
		}

		return tx.Delete(&desig).Error
	})
}

// SeedDefaults inserts the default reference lists, leaving existing names untouched
func (r *GormDirectoryRepository) SeedDefaults(departments, designations []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range departments {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Department{Name: name}).Error; err != nil {
				return err
			}
		}
		for _, name := range designations {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Designation{Name: name}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureUnreferenced(tx *gorm.DB, column, name string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where(column+" = ?", name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrReferenced
	}
	return nil
}
