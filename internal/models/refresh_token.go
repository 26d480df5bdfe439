package models

import (
	"time"
)

// RefreshToken is an issued refresh JWT. Rotation revokes the presented token
// and stores its successor, so each token can be exchanged once.
type RefreshToken struct {
	BaseModel
	UserID    string     `gorm:"size:36;index;not null" json:"userId"`
	Token     string     `gorm:"size:512;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expiresAt"`
	IsRevoked bool       `gorm:"default:false" json:"isRevoked"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Active reports whether the token can still be exchanged at now.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt)
}

// Revoke marks the token as used at now.
func (t *RefreshToken) Revoke(now time.Time) {
	t.IsRevoked = true
	t.RevokedAt = &now
}
