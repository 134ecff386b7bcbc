package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeLifecycleScoped(t *testing.T) {
	db := setupTestDB(t)
	f := seedMenu(t, db)
	svc := NewEmployeeService(db)
	ctx := context.Background()
	mine := restaurantAdmin(f.restaurant.ID)
	theirs := restaurantAdmin("other")

	_, err := svc.CreateEmployee(ctx, mine, EmployeeInput{Name: "Bob"})
	assert.True(t, errors.Is(err, ErrValidation))
	_, err = svc.CreateEmployee(ctx, mine, EmployeeInput{Name: "Bob", Position: "Cook", Salary: decimal.NewFromInt(-1)})
	assert.True(t, errors.Is(err, ErrValidation))

	bob, err := svc.CreateEmployee(ctx, mine, EmployeeInput{Name: "Bob", Position: "Cook", Salary: decimal.RequireFromString("2100.50")})
	require.NoError(t, err)
	require.NotNil(t, bob.RestaurantID)
	assert.Equal(t, f.restaurant.ID, *bob.RestaurantID)

	listed, err := svc.ListEmployees(ctx, mine)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	listed, err = svc.ListEmployees(ctx, theirs)
	require.NoError(t, err)
	assert.Empty(t, listed)
	listed, err = svc.ListEmployees(ctx, superAdmin)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = svc.UpdateEmployee(ctx, theirs, bob.ID, EmployeeInput{Name: "Bob", Position: "Chef"})
	assert.True(t, errors.Is(err, ErrNotFound))

	promoted, err := svc.UpdateEmployee(ctx, mine, bob.ID, EmployeeInput{Name: "Bob", Position: "Chef", Salary: decimal.NewFromInt(3000)})
	require.NoError(t, err)
	assert.Equal(t, "Chef", promoted.Position)
	assert.Equal(t, "3000.00", promoted.Salary.StringFixed(2))

	assert.True(t, errors.Is(svc.DeleteEmployee(ctx, theirs, bob.ID), ErrNotFound))
	require.NoError(t, svc.DeleteEmployee(ctx, mine, bob.ID))
	listed, err = svc.ListEmployees(ctx, superAdmin)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
