package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"smartfarm/internal/models"
	"smartfarm/internal/repositories"
	"smartfarm/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func newAuthService(repo *MockUserRepository, pub services.EventPublisher) *services.AuthService {
	return services.NewAuthService(repo, testJWTSecret, time.Hour, pub, zap.NewNop())
}

func notFoundErr(what string) error {
	return fmt.Errorf("%s: %w", what, repositories.ErrNotFound)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	pub := new(MockPublisher)
	authService := newAuthService(mockRepo, pub)

	mockRepo.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, notFoundErr("user")).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = "user-1" }).
		Return(nil).Once()
	pub.On("Publish", services.EventUserRegistered, mock.Anything).Return(nil).Once()

	user, token, err := authService.Register(ctx, services.AccountInput{
		Name:     "Jane",
		Email:    "  Jane@Example.com ",
		Password: "password123",
		Phone:    "+250788000000",
		Location: "Musanze",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, models.RoleFarmer, user.Role)
	assert.Equal(t, "Musanze", user.Location)
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))

	claims, err := authService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleFarmer, claims.Role)

	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)

	mockRepo.On("GetByEmail", mock.Anything, "taken@example.com").Return(&models.User{ID: "existing"}, nil).Once()

	_, _, err := authService.Register(ctx, services.AccountInput{Name: "Dup", Email: "taken@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrDuplicateEmail)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterDuplicateRace(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)

	mockRepo.On("GetByEmail", mock.Anything, "race@example.com").Return(nil, notFoundErr("user")).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("failed to create user: %w", repositories.ErrDuplicate)).Once()

	_, _, err := authService.Register(ctx, services.AccountInput{Name: "Race", Email: "race@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrDuplicateEmail)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterMissingFields(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)

	_, _, err := authService.Register(context.Background(), services.AccountInput{Email: "x@example.com"})
	assert.ErrorIs(t, err, services.ErrValidation)
	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: "user-123", Email: "farmer@example.com", Password: string(hashed), Role: models.RoleFarmer}

	// Successful login
	mockRepo.On("GetByEmail", mock.Anything, "farmer@example.com").Return(user, nil).Once()
	got, token, err := authService.Login(ctx, "Farmer@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "user-123", got.ID)

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims["user_id"])
	assert.Equal(t, "farmer", claims["role"])
	assert.Contains(t, claims, "exp")

	// Wrong password
	mockRepo.On("GetByEmail", mock.Anything, "farmer@example.com").Return(user, nil).Once()
	_, _, wrongPassErr := authService.Login(ctx, "farmer@example.com", "wrongpassword")

	// Unknown email
	mockRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, notFoundErr("user")).Once()
	_, _, unknownErr := authService.Login(ctx, "ghost@example.com", "password123")

	assert.ErrorIs(t, wrongPassErr, services.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownErr, services.ErrInvalidCredentials)
	assert.Equal(t, wrongPassErr.Error(), unknownErr.Error())
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginStorageFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)

	mockRepo.On("GetByEmail", mock.Anything, "a@example.com").Return(nil, errors.New("connection refused")).Once()
	_, _, err := authService.Login(context.Background(), "a@example.com", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := newAuthService(new(MockUserRepository), nil)

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := services.Claims{
		UserID:         "user-123",
		Role:           models.RoleAdvisor,
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}

	claims, err := authService.ValidateToken(sign(valid, jwt.SigningMethodHS256, []byte(testJWTSecret)))
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, models.RoleAdvisor, claims.Role)

	_, err = authService.ValidateToken("invalid.token.string")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = authService.ValidateToken(sign(valid, jwt.SigningMethodHS256, []byte("other_secret")))
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	expired := valid
	expired.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	_, err = authService.ValidateToken(sign(expired, jwt.SigningMethodHS256, []byte(testJWTSecret)))
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	noRole := valid
	noRole.Role = "superuser"
	_, err = authService.ValidateToken(sign(noRole, jwt.SigningMethodHS256, []byte(testJWTSecret)))
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = authService.ValidateToken(sign(valid, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType))
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)

	current := &models.User{ID: "u1", Name: "John", Email: "john@example.com", Role: models.RoleFarmer, Phone: "111", Location: "Huye"}
	mockRepo.On("GetByID", mock.Anything, "u1").Return(current, nil).Once()
	mockRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, notFoundErr("user")).Once()
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, token, err := authService.UpdateProfile(ctx, "u1", services.ProfileInput{Email: "New@example.com", Location: "Musanze"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "John", user.Name)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "111", user.Phone)
	assert.Equal(t, "Musanze", user.Location)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_UpdateProfileEmailTaken(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)

	mockRepo.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", Email: "john@example.com", Role: models.RoleFarmer}, nil).Once()
	mockRepo.On("GetByEmail", mock.Anything, "other@example.com").Return(&models.User{ID: "u2"}, nil).Once()

	_, _, err := authService.UpdateProfile(ctx, "u1", services.ProfileInput{Email: "other@example.com"})
	assert.ErrorIs(t, err, services.ErrDuplicateEmail)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuthService_EnsureAccount(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	authService := newAuthService(mockRepo, nil)

	mockRepo.On("GetByEmail", mock.Anything, "admin@test.com").Return(&models.User{ID: "a1"}, nil).Once()
	created, err := authService.EnsureAccount(ctx, &models.User{Name: "Super Admin", Email: "admin@test.com", Role: models.RoleAdmin}, "password")
	require.NoError(t, err)
	assert.False(t, created)

	mockRepo.On("GetByEmail", mock.Anything, "advisor@test.com").Return(nil, notFoundErr("user")).Twice()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()
	advisor := &models.User{Name: "Agronomist Sarah", Email: "advisor@test.com", Role: models.RoleAdvisor, Organization: "Green NGO"}
	created, err = authService.EnsureAccount(ctx, advisor, "password")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdvisor, advisor.Role)
	assert.Equal(t, "Green NGO", advisor.Organization)
	assert.NotEqual(t, "password", advisor.Password)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterPublishesEventPayload(t *testing.T) {
	mockRepo := new(MockUserRepository)
	pub := new(MockPublisher)
	authService := newAuthService(mockRepo, pub)

	mockRepo.On("GetByEmail", mock.Anything, "e@example.com").Return(nil, notFoundErr("user")).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = "u-evt" }).
		Return(nil).Once()

	var payload services.Event
	pub.On("Publish", services.EventUserRegistered, mock.Anything).
		Run(func(args mock.Arguments) { require.NoError(t, json.Unmarshal(args.Get(1).([]byte), &payload)) }).
		Return(errors.New("broker down")).Once()

	_, _, err := authService.Register(context.Background(), services.AccountInput{Name: "E", Email: "e@example.com", Password: "pw123456"})
	require.NoError(t, err, "publication failures must not fail the write")
	assert.Equal(t, "u-evt", payload.EntityID)
	assert.Equal(t, "farmer", payload.Role)
	assert.False(t, payload.OccurredAt.IsZero())
}
