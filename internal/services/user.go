package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fintrack-app/apiserver/internal/auth"
	"github.com/fintrack-app/apiserver/internal/events"
	"github.com/fintrack-app/apiserver/internal/logger"
	"github.com/fintrack-app/apiserver/internal/store"
	"github.com/fintrack-app/apiserver/types"
)

const minPasswordLength = 8

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// EventPublisher announces successful registrations.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event events.UserRegistered) (string, error)
}

// UserService encapsulates the registration, login and lookup use-cases.
type UserService struct {
	repo   UserRepository
	hasher auth.PasswordHasher
	events EventPublisher
	logger *logger.Logger
}

func NewUserService(repo UserRepository, hasher auth.PasswordHasher, publisher EventPublisher, log *logger.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		events: publisher,
		logger: log,
	}
}

// Register validates and creates a new identity, returning the
// store-assigned ID. Validation fails fast in a fixed order; nothing
// is written unless every check passes.
func (s *UserService) Register(ctx context.Context, email, password, firstName, lastName string) (int, error) {
	if !types.IsValidEmail(email) {
		return 0, invalidInput("invalid email format")
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, invalidInput("email already exists")
	}

	if len(password) < minPasswordLength {
		return 0, invalidInput("password too short")
	}
	if strings.TrimSpace(firstName) == "" {
		return 0, invalidInput("first name required")
	}
	if strings.TrimSpace(lastName) == "" {
		return 0, invalidInput("last name required")
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}

	user, err := s.repo.Create(ctx, types.NewUser(email, passwordHash, firstName, lastName))
	if err != nil {
		// Two concurrent registrations for the same address race past
		// the exists check; the unique index picks the loser.
		if errors.Is(err, store.ErrEmailTaken) {
			return 0, invalidInput("email already exists")
		}
		return 0, err
	}

	s.publishRegistered(ctx, user)

	return user.ID, nil
}

// Login verifies credentials and returns the full user record. Unknown
// email and wrong password produce the identical failure so callers
// cannot probe which addresses are registered.
func (s *UserService) Login(ctx context.Context, email, password string) (types.User, error) {
	if strings.TrimSpace(email) == "" {
		return types.User{}, invalidInput("email required")
	}
	if password == "" {
		return types.User{}, invalidInput("password required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, invalidCredentials("invalid email or password")
		}
		return types.User{}, err
	}

	if !s.hasher.Matches(password, user.PasswordHash) {
		return types.User{}, invalidCredentials("invalid email or password")
	}

	return user, nil
}

// GetByID fetches a user by identifier.
func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, notFound("user not found")
		}
		return types.User{}, err
	}
	return user, nil
}

// publishRegistered is best-effort: a broker outage must not fail a
// registration that is already durable.
func (s *UserService) publishRegistered(ctx context.Context, user types.User) {
	if s.events == nil {
		return
	}
	event := events.UserRegistered{
		UserID:       user.ID,
		Email:        user.Email,
		RegisteredAt: time.Now(),
	}
	if _, err := s.events.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Error("failed to publish registered event",
			"user_id", user.ID,
			"error", err.Error())
	}
}
