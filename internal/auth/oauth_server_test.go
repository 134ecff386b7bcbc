package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Restaurant{}, &models.User{}, &models.OAuthClient{}, &models.OAuthToken{})
	require.NoError(t, err)

	return db
}

// createOwnedClient stores a client with a bcrypt-hashed secret owned by a restaurant admin
func createOwnedClient(t *testing.T, db *gorm.DB, clientID, secret string) *models.User {
	user := &models.User{Username: "resto1", Role: models.RoleRestaurantAdmin, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	restaurant := &models.Restaurant{Name: "Burger Palace", Location: "City Center", Enabled: true, AdminID: &user.ID}
	require.NoError(t, db.Create(restaurant).Error)

	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	client := &models.OAuthClient{
		ID:     clientID,
		Secret: string(hashedSecret),
		Name:   "pos-sync",
		UserID: user.ID,
		Scopes: "orders",
	}
	require.NoError(t, db.Create(client).Error)

	user.Restaurant = restaurant
	return user
}

func TestOAuthServerInitialization(t *testing.T) {
	db := setupTestDB(t)

	oauthService := NewOAuthService(db, NewTokenManager(testSecret, time.Hour))
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
	assert.NotNil(t, oauthService.TokenStore())
}

func TestClientTokenCarriesOwnerClaims(t *testing.T) {
	db := setupTestDB(t)
	tokens := NewTokenManager(testSecret, time.Hour)
	oauthService := NewOAuthService(db, tokens)
	owner := createOwnedClient(t, db, "test_client", "test_secret")

	tokenInfo, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "test_client",
		ClientSecret: "test_secret",
		Scope:        "orders",
	})
	require.NoError(t, err)

	claims, err := tokens.Verify(tokenInfo.GetAccess())
	require.NoError(t, err)
	assert.Equal(t, owner.ID, claims.UserID)
	assert.Equal(t, string(models.RoleRestaurantAdmin), claims.Role)
	assert.Equal(t, owner.Restaurant.ID, claims.RestaurantID)
	assert.Equal(t, "orders", claims.Scope)
	assert.Contains(t, []string(claims.Audience), "test_client")

	var stored models.OAuthToken
	require.NoError(t, db.Where("access_token = ?", tokenInfo.GetAccess()).First(&stored).Error)
	assert.Equal(t, "test_client", stored.ClientID)
	assert.Nil(t, stored.RefreshToken)
}

func TestClientTokenRejectedForOrphanClient(t *testing.T) {
	db := setupTestDB(t)
	oauthService := NewOAuthService(db, NewTokenManager(testSecret, time.Hour))

	hashedSecret, err := bcrypt.GenerateFromPassword([]byte("s"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.OAuthClient{ID: "orphan", Secret: string(hashedSecret), UserID: "missing"}).Error)

	_, err = oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "orphan",
		ClientSecret: "s",
	})
	assert.Error(t, err)
}

func TestClientStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	createOwnedClient(t, db, "integration_test_client", "integration_test_secret")

	clientStore := NewGormClientStore(db)
	retrievedClient, err := clientStore.GetByID(context.Background(), "integration_test_client")
	require.NoError(t, err)
	assert.Equal(t, "integration_test_client", retrievedClient.GetID())

	_, err = clientStore.GetByID(context.Background(), "nope")
	assert.Error(t, err)
}

func TestTokenStoreLifecycle(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	oauthService := NewOAuthService(db, NewTokenManager(testSecret, time.Hour))
	createOwnedClient(t, db, "c1", "s1")
	ti, err := oauthService.GetServer().Manager.GenerateAccessToken(ctx, oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID: "c1", ClientSecret: "s1",
	})
	require.NoError(t, err)

	loaded, err := store.GetByAccess(ctx, ti.GetAccess())
	require.NoError(t, err)
	assert.Equal(t, "c1", loaded.GetClientID())
	assert.InDelta(t, time.Hour.Seconds(), loaded.GetAccessExpiresIn().Seconds(), 5)

	_, err = store.GetByCode(ctx, "whatever")
	assert.ErrorIs(t, err, errCodeGrantDisabled)

	purged, err := store.PurgeExpired(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = store.GetByAccess(ctx, ti.GetAccess())
	assert.Error(t, err)
}

func TestPurgeExpiredEveryRemovesStaleTokens(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	require.NoError(t, db.Create(&models.OAuthToken{ClientID: "c1", AccessToken: "stale", ExpiresAt: time.Now().Add(-time.Minute)}).Error)
	require.NoError(t, db.Create(&models.OAuthToken{ClientID: "c1", AccessToken: "live", ExpiresAt: time.Now().Add(time.Hour)}).Error)

	log := logrus.New()
	log.SetOutput(io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.PurgeExpiredEvery(ctx, 10*time.Millisecond, log) }()

	assert.Eventually(t, func() bool {
		_, err := store.GetByAccess(context.Background(), "stale")
		return err != nil
	}, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	_, err := store.GetByAccess(context.Background(), "live")
	assert.NoError(t, err)
}
