package services

import (
	"errors"
	"strings"

	"github.com/yukikurage/workforce-portal/internal/constants"
	"github.com/yukikurage/workforce-portal/internal/models"
	"github.com/yukikurage/workforce-portal/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrNotDirectoryManager = newError(ErrAuthorization, "only admins and directors can manage departments and designations")
	ErrNameRequired        = newError(ErrValidation, "name is required")
	ErrDepartmentNotFound  = newError(ErrNotFound, "department not found")
	ErrDesignationNotFound = newError(ErrNotFound, "designation not found")
	ErrDepartmentExists    = newError(ErrDuplicate, "department already exists")
	ErrDesignationExists   = newError(ErrDuplicate, "designation already exists")
	ErrDepartmentInUse     = newError(ErrValidation, "cannot delete: users are assigned to this department")
	ErrDesignationInUse    = newError(ErrValidation, "cannot delete: users are assigned to this designation")
)

// DirectoryService manages the department and designation reference lists.
type DirectoryService struct {
	repo   repository.DirectoryRepository
	logger *zap.Logger
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(repo repository.DirectoryRepository, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		repo:   repo,
		logger: logger,
	}
}

// SeedDefaults installs the default departments and designations.
func (s *DirectoryService) SeedDefaults() error {
	if err := s.repo.SeedDefaults(constants.DefaultDepartments, constants.DefaultDesignations); err != nil {
		return persistence("seed directory", err, nil)
	}
	return nil
}

// ListDepartments lists departments by name.
func (s *DirectoryService) ListDepartments() ([]models.Department, error) {
	depts, err := s.repo.ListDepartments()
	if err != nil {
		return nil, persistence("list departments", err, nil)
	}
	return depts, nil
}

// AddDepartment creates a department.
func (s *DirectoryService) AddDepartment(actor *models.User, name string) (*models.Department, error) {
	if !actor.SeesAllTasks() {
		return nil, ErrNotDirectoryManager
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	dept := &models.Department{Name: name}
	if err := s.repo.CreateDepartment(dept); err != nil {
		err = persistence("create department", err, nil)
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDepartmentExists
		}
		return nil, err
	}
	return dept, nil
}

// DeleteDepartment deletes a department no user references.
func (s *DirectoryService) DeleteDepartment(actor *models.User, id uint64) error {
	if !actor.SeesAllTasks() {
		return ErrNotDirectoryManager
	}

	if err := s.repo.DeleteDepartment(id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return ErrDepartmentInUse
		}
		return persistence("delete department", err, ErrDepartmentNotFound)
	}
	return nil
}

// ListDesignations lists designations by name.
func (s *DirectoryService) ListDesignations() ([]models.Designation, error) {
	desigs, err := s.repo.ListDesignations()
	if err != nil {
		return nil, persistence("list designations", err, nil)
	}
	return desigs, nil
}

// AddDesignation creates a designation.
func (s *DirectoryService) AddDesignation(actor *models.User, name string) (*models.Designation, error) {
	if !actor.SeesAllTasks() {
		return nil, ErrNotDirectoryManager
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	desig := &models.Designation{Name: name}
	if err := s.repo.CreateDesignation(desig); err != nil {
		err = persistence("create designation", err, nil)
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDesignationExists
		}
		return nil, err
	}
	return desig, nil
}

// DeleteDesignation deletes a designation no user references.
func (s *DirectoryService) DeleteDesignation(actor *models.User, id uint64) error {
	if !actor.SeesAllTasks() {
		return ErrNotDirectoryManager
	}

	if err := s.repo.DeleteDesignation(id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return ErrDesignationInUse
		}
		return persistence("delete designation", err, ErrDesignationNotFound)
	}
	return nil
}
