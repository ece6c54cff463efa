package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"smartfarm/internal/models"
	"smartfarm/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the identity carried by a bearer token.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.StandardClaims
}

// AccountInput carries the fields of a new account. Profile fields that do
// not apply to the role are ignored.
type AccountInput struct {
	Name           string
	Email          string
	Password       string
	Phone          string
	Location       string
	Organization   string
	Specialization string
}

// ProfileInput is a partial profile update; empty fields keep their value.
type ProfileInput struct {
	Name           string
	Email          string
	Phone          string
	Location       string
	Organization   string
	Specialization string
}

// AuthService handles registration, login, tokens and profile updates.
type AuthService struct {
	userRepo repositories.UserRepository
	secret   []byte
	tokenTTL time.Duration
	events   EventPublisher
	log      *zap.Logger
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, events EventPublisher, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secret:   []byte(jwtSecret),
		tokenTTL: tokenTTL,
		events:   events,
		log:      log,
	}
}

// Register creates a self-service farmer account and returns it with a token.
func (s *AuthService) Register(ctx context.Context, in AccountInput) (*models.User, string, error) {
	user, err := createAccount(ctx, s.userRepo, models.RoleFarmer, in)
	if err != nil {
		return nil, "", err
	}
	emit(s.events, s.log, Event{Type: EventUserRegistered, EntityID: user.ID, ActorID: user.ID, Role: string(user.Role)})

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks credentials. Unknown email and wrong password both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, "", fmt.Errorf("failed to look up account: %w", err)
		}
		// Burn the same bcrypt time as a real comparison.
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// IssueToken signs an HS256 token carrying the user's ID and role.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateToken parses and verifies a token, rejecting any algorithm other
// than HMAC and any expired or role-less token.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v: %w", err, ErrUnauthenticated)
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("invalid token claims: %w", ErrUnauthenticated)
	}
	return claims, nil
}

// UpdateProfile applies the non-empty fields of in to the caller's account
// and returns it with a fresh token.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, "", fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, "", err
	}

	if email := normalizeEmail(in.Email); email != "" && email != user.Email {
		if err := ensureEmailFree(ctx, s.userRepo, email); err != nil {
			return nil, "", err
		}
		user.Email = email
	}
	user.Name = keep(in.Name, user.Name)
	user.Phone = keep(in.Phone, user.Phone)
	user.Location = keep(in.Location, user.Location)
	user.Organization = keep(in.Organization, user.Organization)
	user.Specialization = keep(in.Specialization, user.Specialization)

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, "", fmt.Errorf("email %s: %w", user.Email, ErrDuplicateEmail)
		}
		return nil, "", err
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// EnsureAccount creates user with password unless its email is already
// taken. It reports whether an account was created.
func (s *AuthService) EnsureAccount(ctx context.Context, user *models.User, password string) (bool, error) {
	_, err := s.userRepo.GetByEmail(ctx, normalizeEmail(user.Email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}

	created, err := createAccount(ctx, s.userRepo, user.Role, AccountInput{
		Name:           user.Name,
		Email:          user.Email,
		Password:       password,
		Phone:          user.Phone,
		Location:       user.Location,
		Organization:   user.Organization,
		Specialization: user.Specialization,
	})
	if err != nil {
		return false, err
	}
	*user = *created
	return true, nil
}

// createAccount hashes the password and stores a user with the given role.
func createAccount(ctx context.Context, users repositories.UserRepository, role models.Role, in AccountInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", ErrValidation)
	}
	if err := ensureEmailFree(ctx, users, email); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	switch role {
	case models.RoleFarmer:
		user.Phone = in.Phone
		user.Location = in.Location
	case models.RoleAdvisor:
		user.Organization = in.Organization
		user.Specialization = in.Specialization
	}

	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("email %s: %w", email, ErrDuplicateEmail)
		}
		return nil, err
	}
	return user, nil
}

func ensureEmailFree(ctx context.Context, users repositories.UserRepository, email string) error {
	_, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return fmt.Errorf("email %s: %w", email, ErrDuplicateEmail)
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	}
	return fmt.Errorf("failed to check email: %w", err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// keep returns v unless it is blank, in which case current is kept.
func keep(v, current string) string {
	if strings.TrimSpace(v) == "" {
		return current
	}
	return v
}

var (
	dummyOnce sync.Once
	dummy     []byte
)

func dummyHash() []byte {
	dummyOnce.Do(func() {
		dummy, _ = bcrypt.GenerateFromPassword([]byte("smartfarm-dummy"), bcrypt.DefaultCost)
	})
	return dummy
}
