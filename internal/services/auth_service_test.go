package services_test

import (
	"fmt"
	"testing"

	"oneset/internal/models"
	"oneset/internal/repositories"
	"oneset/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetAll() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func userNotFound(username string) error {
	return fmt.Errorf("user with username %s: %w", username, repositories.ErrNotFound)
}

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	user := &models.User{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
	}

	mockRepo.On("GetByUsername", "alice").Return(nil, userNotFound("alice")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.RegisterUser(user)
	assert.NoError(t, err)
	// The stored password must be a bcrypt hash of the original.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUserDuplicateUsername(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	existing := &models.User{ID: "id-1", Username: "alice"}
	mockRepo.On("GetByUsername", "alice").Return(existing, nil).Once()

	err := authService.RegisterUser(&models.User{Username: "alice", Password: "secret123"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	// Nothing is written when the username is taken.
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	stored := &models.User{ID: "id-1", Username: "alice", Password: string(hashed)}

	// Successful login returns the user and a token.
	mockRepo.On("GetByUsername", "alice").Return(stored, nil).Once()
	user, token, err := authService.LoginUser("alice", "secret123")
	assert.NoError(t, err)
	assert.Equal(t, "id-1", user.ID)
	assert.NotEmpty(t, token)

	// Wrong password fails without revealing which part was wrong.
	mockRepo.On("GetByUsername", "alice").Return(stored, nil).Once()
	_, _, err = authService.LoginUser("alice", "wrong")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")

	// Unknown username fails with the same message.
	mockRepo.On("GetByUsername", "bob").Return(nil, userNotFound("bob")).Once()
	_, _, err = authService.LoginUser("bob", "secret123")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
	mockRepo.AssertExpectations(t)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")

	user := &models.User{ID: "id-1", Username: "alice", IsSuperuser: true}
	token, err := authService.GenerateToken(user)
	assert.NoError(t, err)

	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "id-1", claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, true, claims["is_superuser"])
}

func TestAuthService_ValidateTokenRejectsTampering(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_jwt_secret")
	otherService := services.NewAuthService(mockRepo, "different_secret")

	token, err := otherService.GenerateToken(&models.User{ID: "id-1", Username: "alice"})
	assert.NoError(t, err)

	_, err = authService.ValidateToken(token)
	assert.Error(t, err)
}
