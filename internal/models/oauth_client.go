package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OAuthClient is a machine client allowed to use the client_credentials grant.
// Tokens issued to it act on behalf of UserID.
type OAuthClient struct {
	ID        string         `gorm:"primaryKey" json:"client_id"`
	Secret    string         `gorm:"not null" json:"-"`
	Name      string         `json:"name"`
	Domain    string         `json:"domain,omitempty"`
	UserID    string         `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Scopes    string         `json:"scopes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

func (c *OAuthClient) GetID() string     { return c.ID }
func (c *OAuthClient) GetSecret() string { return c.Secret }
func (c *OAuthClient) GetDomain() string { return c.Domain }
func (c *OAuthClient) IsPublic() bool    { return false }
func (c *OAuthClient) GetUserID() string { return c.UserID }

// VerifyPassword checks a presented secret against the stored bcrypt hash
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
