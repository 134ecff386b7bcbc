package auth

import (
	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"gorm.io/gorm"
)

// OAuthService exposes the client_credentials token endpoint for integration clients
type OAuthService struct {
	server     *server.Server
	tokenStore *GormTokenStore
}

func NewOAuthService(db *gorm.DB, tokens *TokenManager) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: tokens.TTL()})

	// Access tokens are JWTs with the owner's identity claims
	manager.MapAccessGenerate(NewClientAccessGenerate(tokens, db))

	// Configure token store
	tokenStore := NewGormTokenStore(db)
	manager.MustTokenStorage(tokenStore, nil)

	// Configure client store
	manager.MapClientStorage(NewGormClientStore(db))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.ClientCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)

	return &OAuthService{
		server:     srv,
		tokenStore: tokenStore,
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// TokenStore returns the persistent store of issued tokens
func (o *OAuthService) TokenStore() *GormTokenStore {
	return o.tokenStore
}
