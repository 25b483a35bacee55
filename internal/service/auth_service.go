package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"conftix/internal/auth"
	apperrors "conftix/internal/errors"
	"conftix/internal/mailer"
	"conftix/internal/model"
	"conftix/internal/repository"
)

const (
	bcryptCost        = 10
	minPasswordLength = 8
)

var (
	// ErrInvalidCredentials is returned for both unknown emails and wrong
	// passwords, so login failures never reveal whether an account exists.
	ErrInvalidCredentials = errors.New("Your email address and password didn't match. Please try again.")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// AuthService handles registration and authentication.
type AuthService interface {
	Register(ctx context.Context, name, email, password, password2 string, agreeTerms bool) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	mail       *mailer.Mailer
	validate   *validator.Validate
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, mail *mailer.Mailer) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		tokenStore: tokenStore,
		mail:       mail,
		validate:   validator.New(),
	}
}

// Register creates a new user with a hashed password. The password is entered
// twice and both values must match. Validation failures are reported per-field
// via FieldErrors; nothing is persisted unless every check passes.
func (s *authService) Register(ctx context.Context, name, email, password, password2 string, agreeTerms bool) (*model.User, error) {
	fieldErrs := apperrors.FieldErrors{}

	if name == "" {
		fieldErrs["name"] = "This field is required."
	}
	if email == "" {
		fieldErrs["email"] = "This field is required."
	} else if err := s.validate.Var(email, "email"); err != nil {
		fieldErrs["email"] = "Enter a valid email address."
	}
	if !agreeTerms {
		fieldErrs["agree_terms"] = "This field is required."
	}
	if password != password2 {
		fieldErrs["password2"] = "The two password fields didn't match."
	}
	if len(password) < minPasswordLength {
		fieldErrs["password"] = fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength)
	}

	if _, ok := fieldErrs["email"]; !ok && email != "" {
		_, err := s.users.FindByEmail(ctx, email)
		if err == nil {
			fieldErrs["email"] = "That email address has already been registered"
		} else if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("check user existence: %w", err)
		}
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	go s.sendWelcomeEmail(user)

	return user, nil
}

func (s *authService) sendWelcomeEmail(user *model.User) {
	body := fmt.Sprintf("Hello, %s\n\nYour account has been created. You can now buy tickets and fill in your badge details from your profile page.\n", user.Name)
	if err := s.mail.Send(user.Email, "Welcome to the conference", body); err != nil {
		log.Printf("send welcome email to %s: %v", user.Email, err)
	}
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error) {
	user, err = s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	accessToken, err = s.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	storedUserID, storedEmail, err := s.tokenStore.GetRefreshToken(ctx, tokenID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err = s.jwtService.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	return accessToken, nil
}

// Logout invalidates a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}

	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}
