package services

import (
	"fmt"

	"realchat/auth"
	"realchat/domain"
	"realchat/errors"
	"realchat/repositories"
)

// IAuthService is the credential boundary consumed by the gateway: the
// gateway only ever exchanges a bearer token for a verified identity.
type IAuthService interface {
	Register(username, password string) (domain.User, error)
	Login(username, password string) (domain.User, string, error)
	Resolve(token string) (domain.User, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         auth.TokenService
}

func NewAuthService(repo repositories.IUserRepository, tokens auth.TokenService) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

func (s *AuthService) Register(username, password string) (domain.User, error) {
	valReq := auth.RegisterRequest{
		Username: username,
		Password: password,
	}

	// Business rules first, before any expensive cryptographic work.
	if err := auth.ValidateRegister(valReq); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", errors.ErrInvalidPassword, err)
	}

	// Hashing happens here so the repository never sees a plain password.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.userRepository.CreateUser(username, hashedPassword)
	if err != nil {
		return domain.User{}, err // Propagates ErrUserAlreadyExists if the name is taken
	}

	return domain.User{ID: user.ID, Username: user.Username}, nil
}

func (s *AuthService) Login(username, password string) (domain.User, string, error) {
	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.User{}, "", errors.ErrInvalidCredentials
	}

	identity := domain.User{ID: user.ID, Username: user.Username}
	token, err := s.tokens.Generate(identity)
	if err != nil {
		return domain.User{}, "", errors.ErrTokenGeneration
	}

	return identity, token, nil
}

// Resolve exchanges a session token for the identity it was issued to.
func (s *AuthService) Resolve(token string) (domain.User, error) {
	user, err := s.tokens.Resolve(token)
	if err != nil {
		return domain.User{}, errors.ErrInvalidCredentials
	}
	return user, nil
}
