package usecase_test

import (
	"context"
	"testing"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func authTestConfig() config.Config {
	return config.Config{JWTSecret: "test_secret"}
}

func activeUser(t *testing.T, password string) model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return model.User{
		ID:           7,
		Email:        "user@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		IsActive:     true,
	}
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	ctx := context.Background()
	userRepo := new(UserRepoMock)
	user := activeUser(t, "secret123")
	userRepo.On("FindByEmail", ctx, "user@example.com").Return(user, nil)

	uc := usecase.NewAuthUsecase(authTestConfig(), userRepo)

	out, err := uc.Login(ctx, usecase.LoginInput{Email: "user@example.com", Password: "secret123"})
	require.NoError(t, err)

	assert.Equal(t, int64(7), out.User.ID)
	assert.NotEmpty(t, out.AccessToken)
	assert.Greater(t, out.ExpiresIn, 0)

	//発行したトークンが自分のシークレットで検証できること
	token, err := jwt.Parse(out.AccessToken, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test_secret"), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(7), claims["sub"])
	assert.Equal(t, "USER", claims["role"])
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	userRepo := new(UserRepoMock)
	userRepo.On("FindByEmail", ctx, "user@example.com").Return(activeUser(t, "secret123"), nil)

	uc := usecase.NewAuthUsecase(authTestConfig(), userRepo)

	_, err := uc.Login(ctx, usecase.LoginInput{Email: "user@example.com", Password: "wrong"})
	assertHTTPStatus(t, err, 401)
}

func TestAuthUsecase_Login_UnknownEmailSameError(t *testing.T) {
	ctx := context.Background()
	userRepo := new(UserRepoMock)
	userRepo.On("FindByEmail", ctx, "nobody@example.com").Return(model.User{}, repo.ErrNotFound)

	uc := usecase.NewAuthUsecase(authTestConfig(), userRepo)

	_, err := uc.Login(ctx, usecase.LoginInput{Email: "nobody@example.com", Password: "whatever"})
	assertHTTPStatus(t, err, 401)
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	ctx := context.Background()
	userRepo := new(UserRepoMock)
	u := activeUser(t, "secret123")
	u.IsActive = false
	userRepo.On("FindByEmail", ctx, "user@example.com").Return(u, nil)

	uc := usecase.NewAuthUsecase(authTestConfig(), userRepo)

	_, err := uc.Login(ctx, usecase.LoginInput{Email: "user@example.com", Password: "secret123"})
	assertHTTPStatus(t, err, 403)
}

func TestAuthUsecase_Login_MissingFields(t *testing.T) {
	uc := usecase.NewAuthUsecase(authTestConfig(), new(UserRepoMock))

	_, err := uc.Login(context.Background(), usecase.LoginInput{Email: "", Password: ""})
	assertHTTPStatus(t, err, 400)
}
