package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskhub/internal/domain"
	"github.com/phrazzld/taskhub/internal/mocks"
	"github.com/phrazzld/taskhub/internal/platform/memory"
	"github.com/phrazzld/taskhub/internal/service"
	"github.com/phrazzld/taskhub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (service.UserService, *mocks.MockJWTService) {
	t.Helper()
	jwt := &mocks.MockJWTService{
		GenerateTokenFn: func(_ context.Context, u *domain.User) (string, error) {
			return "token-for-" + u.ID.String(), nil
		},
	}
	svc, err := service.NewUserService(
		memory.NewUserStore(memory.NewDB()),
		&mocks.MockPasswordHasher{},
		jwt,
		discardLogger(),
	)
	require.NoError(t, err)
	return svc, jwt
}

func TestUserServiceRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newUserService(t)

	res, err := svc.Register(ctx, service.RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "secret123",
		Role:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, domain.RoleAdmin, res.User.Role)
	assert.Equal(t, "hashed:secret123", res.User.HashedPassword)
	assert.Equal(t, "token-for-"+res.User.ID.String(), res.Token)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, service.RegisterInput{
			Name: "Imposter", Email: "alice@example.com", Password: "secret123",
		})
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("unknown role falls back to user", func(t *testing.T) {
		res, err := svc.Register(ctx, service.RegisterInput{
			Name: "Bob", Email: "bob@example.com", Password: "secret123", Role: "overlord",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, res.User.Role)
	})

	t.Run("invalid input", func(t *testing.T) {
		cases := map[string]service.RegisterInput{
			"short password": {Name: "C", Email: "c@example.com", Password: "123"},
			"bad email":      {Name: "C", Email: "not-an-email", Password: "secret123"},
			"missing name":   {Name: " ", Email: "c@example.com", Password: "secret123"},
		}
		for name, in := range cases {
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, domain.ErrValidation, name)
		}
	})
}

func TestUserServiceLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newUserService(t)

	reg, err := svc.Register(ctx, service.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "ALICE@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	for name, creds := range map[string][2]string{
		"wrong password": {"alice@example.com", "nope-nope"},
		"unknown email":  {"nobody@example.com", "secret123"},
		"empty":          {"", ""},
	} {
		_, err := svc.Login(ctx, creds[0], creds[1])
		assert.ErrorIs(t, err, service.ErrInvalidCredentials, name)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, name)
	}
}

func TestUserServiceGetUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newUserService(t)

	reg, err := svc.Register(ctx, service.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)

	u, err := svc.GetUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	_, err = svc.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserServiceTokenFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("signing failed")
	svc, err := service.NewUserService(
		memory.NewUserStore(memory.NewDB()),
		&mocks.MockPasswordHasher{},
		&mocks.MockJWTService{Err: boom},
		discardLogger(),
	)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), service.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, boom)
}
