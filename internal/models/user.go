package models

import "time"

// User is the account record. Email is the sole login identifier; the
// username is derived from the email local part at registration time.
type User struct {
	ID                uint   `gorm:"primaryKey"`
	Email             string `gorm:"size:100;unique;not null"`
	Username          string `gorm:"size:50;unique;not null"`
	FirstName         string `gorm:"size:60;not null"`
	LastName          string `gorm:"size:50;not null"`
	Bio               string
	AvatarURL         string
	PasswordHash      string `gorm:"not null"`
	VerificationToken string `gorm:"size:32;index"` // empty once the email is verified
	IsActive          bool   `gorm:"default:false"`
	IsStaff           bool   `gorm:"default:false"`
	IsAdmin           bool   `gorm:"default:false"`
	IsSuperuser       bool   `gorm:"default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastLoginAt       *time.Time
}

// PublicUser is the projection returned by the API. The password hash and
// verification token never leave the service.
type PublicUser struct {
	ID          uint       `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Bio         string     `json:"bio,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	IsActive    bool       `json:"is_active"`
	IsAdmin     bool       `json:"is_admin"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login,omitempty"`
}

// Public returns the API view of the account.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Username:    u.Username,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		IsActive:    u.IsActive,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// AuthTokens is the signed access/refresh pair issued on login and refresh.
type AuthTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
