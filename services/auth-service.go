package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"taskcanvas/logging"
	"taskcanvas/models"
)

const minPasswordLength = 6

type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, userID string) (models.User, error)
}

type AuthService struct {
	users     UserStore
	tokens    *TokenService
	revoked   RevocationStore
	blackList BlackList
}

// NewAuthService wires the credential flow. blackList may be nil.
func NewAuthService(users UserStore, tokens *TokenService, revoked RevocationStore, blackList BlackList) *AuthService {
	if revoked == nil {
		revoked = NewMemoryRevocations()
	}
	return &AuthService{users: users, tokens: tokens, revoked: revoked, blackList: blackList}
}

func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (models.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return models.AuthResponse{}, models.NewError(models.ErrValidation, "name is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return models.AuthResponse{}, models.NewError(models.ErrValidation, "invalid email address")
	}
	if err := s.validatePassword(req.Password); err != nil {
		return models.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := s.users.Create(ctx, models.User{Name: name, Email: email, PasswordHash: string(hash)})
	if err != nil {
		logging.Logger.Warnf("Event ID: SIGNUP_FAILED, Description: Could not create user %s: %v", email, err)
		return models.AuthResponse{}, err
	}
	logging.Logger.Infof("Event ID: SIGNUP_SUCCESS, Description: User %s registered", user.ID)
	return s.respond(user)
}

func (s *AuthService) validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return models.NewError(models.ErrValidation, fmt.Sprintf("password must be at least %d characters long", minPasswordLength))
	}
	if s.blackList.Forbids(password) {
		return models.NewError(models.ErrValidation, "password is too common")
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	invalid := models.NewError(models.ErrUnauthorized, "Invalid email or password")
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			logging.Logger.Warnf("Event ID: LOGIN_UNKNOWN_EMAIL, Description: Login attempt for unknown email")
			return models.AuthResponse{}, invalid
		}
		return models.AuthResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logging.Logger.Warnf("Event ID: LOGIN_BAD_PASSWORD, Description: Wrong password for user %s", user.ID)
		return models.AuthResponse{}, invalid
	}
	logging.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: User %s logged in", user.ID)
	return s.respond(user)
}

func (s *AuthService) respond(user models.User) (models.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return models.AuthResponse{}, err
	}
	return models.AuthResponse{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to its claims, rejecting revoked ones.
// A revocation store outage is logged and does not block requests.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		logging.Logger.Errorf("Event ID: REVOCATION_CHECK_FAILED, Description: Could not check token %s: %v", claims.ID, err)
		return claims, nil
	}
	if revoked {
		return nil, models.NewError(models.ErrUnauthorized, "Token has been revoked")
	}
	return claims, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, models.NewError(models.ErrUnauthorized, "User no longer exists")
	}
	return user, err
}

// Logout revokes the token described by claims until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return models.NewError(models.ErrUnauthorized, "Invalid token")
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	logging.Logger.Infof("Event ID: LOGOUT_SUCCESS, Description: Token %s revoked for user %s", claims.ID, claims.Subject)
	return nil
}
