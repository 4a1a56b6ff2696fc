package app

import (
	"context"
	"time"

	"todo-api/internal/model"
	"todo-api/internal/pkg/jwtutil"
	"todo-api/internal/pkg/password"
	"todo-api/internal/repository"
)

type AuthService struct {
	userRepo      *repository.UserRepository
	todoRepo      *repository.TodoRepository
	jwtSecret     string
	jwtExpiration time.Duration
	bcryptCost    int
}

type RegisterInput struct {
	Email    string
	Password string
	Name     *string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Profile struct {
	ID        string       `json:"id"`
	Email     string       `json:"email"`
	Name      *string      `json:"name"`
	CreatedAt time.Time    `json:"createdAt"`
	Count     ProfileCount `json:"_count"`
}

type ProfileCount struct {
	Todos int64 `json:"todos"`
}

func NewAuthService(
	userRepo *repository.UserRepository,
	todoRepo *repository.TodoRepository,
	jwtSecret string,
	jwtExpiration time.Duration,
	bcryptCost int,
) *AuthService {
	if bcryptCost <= 0 {
		bcryptCost = password.DefaultCost
	}
	return &AuthService{
		userRepo:      userRepo,
		todoRepo:      todoRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		bcryptCost:    bcryptCost,
	}
}

// Register creates the user and signs a token for it. A concurrent
// registration of the same email that slips past the lookup surfaces as
// repository.ErrDuplicate from the unique index.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := password.Hash(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:    input.Email,
		Password: hash,
		Name:     input.Name,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login answers an unknown email and a wrong password with the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(user.Password, input.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Authenticate verifies a bearer token and resolves the user it names.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserGone
	}
	return &Identity{ID: user.ID, Email: user.Email}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	count, err := s.todoRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		Count:     ProfileCount{Todos: count},
	}, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}
