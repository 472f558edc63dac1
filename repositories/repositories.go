package repositories

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// Repositories struct holds all repository interfaces
type Repositories struct {
	Users      UserRepository
	SocialAuth SocialAuthRepository
	Audit      AuditRepository
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		SocialAuth: NewSocialAuthRepository(db),
		Audit:      NewAuditRepository(db),
	}
}
