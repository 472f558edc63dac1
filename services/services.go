package services

import (
	"github.com/blogem/microsoft-login/repositories"
)

// Services holds all service instances
type Services struct {
	Login LoginService
	Users UserService
	Audit AuditService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, postLoginPath string) *Services {
	users := NewUserService(repos.Users, repos.SocialAuth, postLoginPath)
	return &Services{
		Login: NewLoginService(users),
		Users: users,
		Audit: NewAuditService(repos.Audit),
	}
}
