package model

import "time"

// User rows are owned by the identity service, this API only reads them
type User struct {
	ID               string `gorm:"primaryKey"`
	Email            string
	Premium          bool `gorm:"not null;default:false"`
	PremiumExpiresAt *time.Time

	// Overrides the premium tier ceiling (bytes) when bigger than 0
	MaxStorage int64 `gorm:"not null;default:0"`
}

// PremiumActive reports whether the premium tier is usable at t
func (u *User) PremiumActive(t time.Time) bool {
	if !u.Premium {
		return false
	}

	return u.PremiumExpiresAt == nil || !u.PremiumExpiresAt.Before(t)
}
