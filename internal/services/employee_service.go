package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EmployeeInput struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Position string          `json:"position"`
	Salary   decimal.Decimal `json:"salary"`
}

type EmployeeService interface {
	ListEmployees(ctx context.Context, scope Scope) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, scope Scope, in EmployeeInput) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, scope Scope, id string, in EmployeeInput) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, scope Scope, id string) error
}

type employeeService struct {
	db *gorm.DB
}

func NewEmployeeService(db *gorm.DB) EmployeeService {
	return &employeeService{db: db}
}

func validateEmployee(in EmployeeInput) error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Position) == "" {
		return validationError(models.ErrMissingFields, "name and position are required")
	}
	if in.Salary.IsNegative() {
		return validationError(models.ErrValidationFailed, "salary cannot be negative")
	}
	return nil
}

func (s *employeeService) ListEmployees(ctx context.Context, scope Scope) ([]models.Employee, error) {
	employees := []models.Employee{}
	q := scope.apply(s.db.WithContext(ctx), "restaurant_id")
	if err := q.Order("created_at DESC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (s *employeeService) CreateEmployee(ctx context.Context, scope Scope, in EmployeeInput) (*models.Employee, error) {
	if err := validateEmployee(in); err != nil {
		return nil, err
	}
	employee := models.Employee{
		RestaurantID: scope.restaurantPtr(),
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Phone:        in.Phone,
		Position:     strings.TrimSpace(in.Position),
		Salary:       in.Salary.Round(2),
	}
	if err := s.db.WithContext(ctx).Create(&employee).Error; err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return &employee, nil
}

func (s *employeeService) find(db *gorm.DB, scope Scope, id string) (*models.Employee, error) {
	var employee models.Employee
	if err := scope.apply(db, "restaurant_id").First(&employee, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrEmployeeNotFound, "employee not found")
	}
	return &employee, nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, scope Scope, id string, in EmployeeInput) (*models.Employee, error) {
	if err := validateEmployee(in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	employee, err := s.find(db, scope, id)
	if err != nil {
		return nil, err
	}
	err = db.Model(employee).Updates(map[string]interface{}{
		"name":     strings.TrimSpace(in.Name),
		"email":    in.Email,
		"phone":    in.Phone,
		"position": strings.TrimSpace(in.Position),
		"salary":   in.Salary.Round(2),
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}
	return s.find(db, scope, id)
}

func (s *employeeService) DeleteEmployee(ctx context.Context, scope Scope, id string) error {
	db := s.db.WithContext(ctx)
	employee, err := s.find(db, scope, id)
	if err != nil {
		return err
	}
	return db.Delete(employee).Error
}
