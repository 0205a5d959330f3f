package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rafflehq/raffle-backend/internal/models"
	"github.com/rafflehq/raffle-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAdminUserRepo struct {
	users map[string]*models.AdminUser
}

func newFakeAdminUserRepo() *fakeAdminUserRepo {
	return &fakeAdminUserRepo{users: make(map[string]*models.AdminUser)}
}

func (f *fakeAdminUserRepo) Create(ctx context.Context, user *models.AdminUser) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	stored := *user
	f.users[user.Email] = &stored
	return nil
}

func (f *fakeAdminUserRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", email, models.ErrNotFound)
	}
	return user, nil
}

func (f *fakeAdminUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, models.ErrNotFound
}

func newAuthService() (*AuthServiceImpl, *fakeAdminUserRepo) {
	repo := newFakeAdminUserRepo()
	tokens := jwt.NewTokenService("test-secret", 3600)
	return NewAuthService(repo, tokens), repo
}

func TestRegisterAndLogin(t *testing.T) {
	service, _ := newAuthService()

	user, err := service.Register(context.Background(), &models.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)
	assert.Empty(t, user.Password, "hash never leaves the service")

	token, err := service.Login(context.Background(), &models.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := newAuthService()
	req := &models.RegisterRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "correct horse"}

	_, err := service.Register(context.Background(), req)
	require.NoError(t, err)
	_, err = service.Register(context.Background(), req)
	assert.Error(t, err)
}

func TestLoginBadCredentials(t *testing.T) {
	service, _ := newAuthService()
	_, err := service.Register(context.Background(), &models.RegisterRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), &models.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	// Unknown accounts are indistinguishable from wrong passwords
	_, err = service.Login(context.Background(), &models.LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}
