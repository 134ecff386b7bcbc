package auth

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-key-32-characters"

func testUser() *models.User {
	u := &models.User{Username: "resto1", Role: models.RoleRestaurantAdmin}
	u.ID = "user-1"
	u.Restaurant = &models.Restaurant{Name: "Burger Palace"}
	u.Restaurant.ID = "rest-1"
	return u
}

func TestIssueAndVerify(t *testing.T) {
	m := NewTokenManager(testSecret, 7*24*time.Hour)

	token, expiresAt, err := m.Issue(testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "resto1", claims.Username)
	assert.Equal(t, string(models.RoleRestaurantAdmin), claims.Role)
	assert.Equal(t, "rest-1", claims.RestaurantID)
}

func TestVerifyRejectsTokenSignedEightDaysAgo(t *testing.T) {
	m := NewTokenManager(testSecret, 7*24*time.Hour)
	m.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	token, _, err := m.Issue(testUser())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	token, _, err := NewTokenManager("another-secret", time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret, time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsNonHMAC(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"uid":  "user-1",
		"role": "SUPER_ADMIN",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret, time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresKnownRoleAndUser(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	now := time.Now()

	noRole, err := m.Sign(Claims{UserID: "user-1", Role: "admin"}, now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = m.Verify(noRole)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noUser, err := m.Sign(Claims{Role: string(models.RoleSuperAdmin)}, now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = m.Verify(noUser)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager(testSecret, time.Hour).Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
