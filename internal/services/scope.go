package services

import (
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"gorm.io/gorm"
)

// Scope identifies the back-office caller. Restaurant admins only see rows of their own restaurant.
type Scope struct {
	UserID       string
	Username     string
	Role         models.Role
	RestaurantID string
}

// Global reports whether the caller is not restricted to one restaurant
func (s Scope) Global() bool {
	return s.Role == models.RoleSuperAdmin
}

// apply restricts q to the caller's restaurant using column
func (s Scope) apply(q *gorm.DB, column string) *gorm.DB {
	if s.Global() {
		return q
	}
	return q.Where(column+" = ?", s.RestaurantID)
}

// restaurantPtr is the restaurant id to stamp on rows created by the caller
func (s Scope) restaurantPtr() *string {
	if s.RestaurantID == "" {
		return nil
	}
	id := s.RestaurantID
	return &id
}
