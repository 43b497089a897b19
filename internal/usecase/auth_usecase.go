package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// accesstokenの有効期限
const accessTokenTTL = 15 * time.Minute

type AuthUsecase struct {
	cfg   config.Config
	users repo.UserRepository
}

func NewAuthUsecase(cfg config.Config, users repo.UserRepository) *AuthUsecase {
	return &AuthUsecase{cfg: cfg, users: users}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type LoginOutput struct {
	User        UserDTO `json:"user"`
	AccessToken string  `json:"access_token"`
	ExpiresIn   int     `json:"expires_in"`
}

// ログイン。パスワードはbcryptで照合し、成功したらJWTを返す。
// 存在しないメールも照合失敗も同じ401（どちらか漏らさない）。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusForbidden, "account disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, expiresIn, err := u.issueAccessToken(user)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "token issue failed")
	}

	return LoginOutput{
		User: UserDTO{
			ID:       user.ID,
			Email:    user.Email,
			Role:     string(user.Role),
			IsActive: user.IsActive,
		},
		AccessToken: token,
		ExpiresIn:   expiresIn,
	}, nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user model.User) (string, int, error) {
	now := time.Now()
	exp := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int(accessTokenTTL.Seconds()), nil
}
