package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"realchat/domain"
)

// SessionClaims is the payload carried inside a session token. Keeping
// the username in the claims lets a connection be authenticated without
// touching storage.
type SessionClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session tokens (HS256).
type TokenService struct {
	key []byte
	ttl time.Duration
}

func NewTokenService(key []byte, ttl time.Duration) TokenService {
	return TokenService{key: key, ttl: ttl}
}

// Generate creates a signed session token for a user.
func (s TokenService) Generate(user domain.User) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "realchat",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Resolve validates a token's signature and expiry and returns the
// identity it was issued for.
func (s TokenService) Resolve(tokenString string) (domain.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil {
		return domain.User{}, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return domain.User{}, jwt.ErrSignatureInvalid
	}
	return domain.User{ID: claims.UserID, Username: claims.Username}, nil
}
