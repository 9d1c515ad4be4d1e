package services

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"realchat/auth"
	"realchat/errors"
	"realchat/repositories"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newAuthService(t *testing.T) IAuthService {
	t.Helper()
	repo := repositories.NewUserRepository(openTestDB(t))
	tokens := auth.NewTokenService([]byte("test_signing_key"), time.Hour)
	return NewAuthService(repo, tokens)
}

func TestAuthService_Register(t *testing.T) {
	svc := newAuthService(t)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		user, err := svc.Register("alice", "ComplexPass123!")
		req.NoError(err)
		req.NotEmpty(user.ID)
		req.Equal("alice", user.Username)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.Register("bob", "simple")
		req.ErrorIs(err, errors.ErrInvalidPassword)
	})

	t.Run("should fail when username is already taken", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.Register("alice", "AnotherComplex123!")
		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_LoginAndResolve(t *testing.T) {
	svc := newAuthService(t)
	req := require.New(t)

	registered, err := svc.Register("alice", "Secret123456!")
	req.NoError(err)

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)
		user, token, err := svc.Login("alice", "Secret123456!")
		req.NoError(err)
		req.Equal(registered, user)
		req.NotEmpty(token)
	})

	t.Run("should resolve a freshly issued token", func(t *testing.T) {
		req := require.New(t)
		_, token, err := svc.Login("alice", "Secret123456!")
		req.NoError(err)

		resolved, err := svc.Resolve(token)
		req.NoError(err)
		req.Equal(registered, resolved)
	})

	t.Run("should fail with a wrong password", func(t *testing.T) {
		req := require.New(t)
		_, _, err := svc.Login("alice", "WrongPassword1!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should fail for an unknown user", func(t *testing.T) {
		req := require.New(t)
		_, _, err := svc.Login("nobody", "Secret123456!")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should fail to resolve garbage tokens", func(t *testing.T) {
		req := require.New(t)
		_, err := svc.Resolve("not-a-token")
		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})
}
