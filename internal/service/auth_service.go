package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"taskpad/internal/domain"
	"taskpad/internal/logger"
	"taskpad/internal/repository"
)

const googleUserinfoURL = "https://www.googleapis.com/userinfo/v2/me"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
)

// AuthService implements email/password and Google sign-in. All failures
// carry human-readable messages; none are fatal.
type AuthService struct {
	users *repository.UserRepository

	// userinfoURL is overridable in tests
	userinfoURL string
}

func NewAuthService(users *repository.UserRepository) *AuthService {
	return &AuthService{users: users, userinfoURL: googleUserinfoURL}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", errors.New("invalid email address")
	}
	return email, nil
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (domain.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Identity{}, err
	}
	if len(password) < 6 {
		return domain.Identity{}, errors.New("password must be at least 6 characters")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.Identity{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return domain.Identity{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Identity{}, err
	}

	u := &domain.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		return domain.Identity{}, err
	}
	logger.Info("user signed up", "email", email)
	return u.Identity(), nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.Identity{}, err
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.Identity{}, ErrInvalidCredentials
		}
		return domain.Identity{}, err
	}
	if u.PasswordHash == "" {
		return domain.Identity{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.Identity{}, ErrInvalidCredentials
	}
	return u.Identity(), nil
}

// SignInWithGoogle exchanges a provider access token for an identity by
// fetching the Google userinfo document, then upserts the account. The
// OAuth handshake itself happens on the client.
func (s *AuthService) SignInWithGoogle(ctx context.Context, accessToken string) (domain.Identity, error) {
	if accessToken == "" {
		return domain.Identity{}, errors.New("no access token received")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	client := oauth2.NewClient(ctx, ts)

	resp, err := client.Get(s.userinfoURL)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Identity{}, errors.New("login failed, please try again")
	}

	var info struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return domain.Identity{}, fmt.Errorf("failed to decode user info: %w", err)
	}

	email, err := normalizeEmail(info.Email)
	if err != nil {
		return domain.Identity{}, errors.New("provider returned no usable email")
	}

	u := &domain.User{Email: email, Name: info.Name, Picture: info.Picture}
	if err := s.users.Upsert(ctx, u); err != nil {
		return domain.Identity{}, err
	}
	logger.Info("user signed in with google", "email", email)
	return u.Identity(), nil
}

// RequestPasswordReset issues a reset token for the account. The token is
// returned to the caller for delivery (mail transport is not part of this
// service); unknown emails still get a token so the endpoint does not
// reveal which accounts exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	return GenerateResetToken(email)
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := ParseResetToken(token)
	if err != nil {
		return errors.New("reset link is invalid or has expired")
	}
	if len(newPassword) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, email, string(hash)); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.New("reset link is invalid or has expired")
		}
		return err
	}
	logger.Info("password reset", "email", email)
	return nil
}

// Identity looks up the display fields for a scoping email. Used when a
// session token is presented without the rest of the profile.
func (s *AuthService) Identity(ctx context.Context, email string) (domain.Identity, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.Identity{}, err
	}
	return u.Identity(), nil
}
