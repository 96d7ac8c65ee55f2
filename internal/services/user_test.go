package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fintrack-app/apiserver/internal/auth"
	"github.com/fintrack-app/apiserver/internal/events"
	"github.com/fintrack-app/apiserver/internal/logger"
	"github.com/fintrack-app/apiserver/internal/store"
	"github.com/fintrack-app/apiserver/types"
)

// fakeUserRepo is an in-memory UserRepository. Like the real store it
// treats emails case-insensitively by lowercasing lookups.
type fakeUserRepo struct {
	users  map[int]types.User
	nextID int

	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]types.User{}, nextID: 1}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	email = strings.ToLower(email)
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if r.createErr != nil {
		return types.User{}, r.createErr
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

type fakePublisher struct {
	published []events.UserRegistered
	err       error
}

func (p *fakePublisher) PublishUserRegistered(ctx context.Context, event events.UserRegistered) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, event)
	return "msg-1", nil
}

func newTestService(repo *fakeUserRepo, publisher EventPublisher) *UserService {
	return NewUserService(repo, auth.NewBcryptHasher(bcrypt.MinCost), publisher, logger.New(0))
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	publisher := &fakePublisher{}
	svc := newTestService(repo, publisher)

	userID, err := svc.Register(context.Background(), "Bob@Example.com", "password123", "Bob", "Smith")
	require.NoError(t, err)
	assert.Greater(t, userID, 0)

	saved, err := repo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", saved.Email)
	assert.NotEqual(t, "password123", saved.PasswordHash)

	exists, err := repo.ExistsByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, userID, publisher.published[0].UserID)
	assert.Equal(t, "bob@example.com", publisher.published[0].Email)
}

func TestRegister_ValidationOrder(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	_, err := svc.Register(context.Background(), "bob@example.com", "password123", "Bob", "Smith")
	require.NoError(t, err)

	tests := []struct {
		name      string
		email     string
		password  string
		firstName string
		lastName  string
		message   string
	}{
		{name: "invalid email", email: "not-an-email", password: "password123", firstName: "Bob", lastName: "Smith", message: "invalid email format"},
		{name: "duplicate email", email: "bob@example.com", password: "password123", firstName: "Bob", lastName: "Smith", message: "email already exists"},
		{name: "duplicate email different case", email: "BOB@example.com", password: "password123", firstName: "Bob", lastName: "Smith", message: "email already exists"},
		{name: "short password", email: "new@example.com", password: "short", firstName: "Bob", lastName: "Smith", message: "password too short"},
		{name: "empty password", email: "new@example.com", password: "", firstName: "Bob", lastName: "Smith", message: "password too short"},
		{name: "blank first name", email: "new@example.com", password: "password123", firstName: "   ", lastName: "Smith", message: "first name required"},
		{name: "blank last name", email: "new@example.com", password: "password123", firstName: "Bob", lastName: "", message: "last name required"},
		// Invalid email wins over everything after it.
		{name: "invalid email and short password", email: "nope", password: "x", firstName: "", lastName: "", message: "invalid email format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(repo.users)

			_, err := svc.Register(context.Background(), tt.email, tt.password, tt.firstName, tt.lastName)

			var svcErr *Error
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, KindInvalidInput, svcErr.Kind)
			assert.Equal(t, tt.message, svcErr.Message)
			assert.Len(t, repo.users, before, "validation failure must not write")
		})
	}
}

func TestRegister_InsertRace(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = store.ErrEmailTaken
	svc := newTestService(repo, nil)

	_, err := svc.Register(context.Background(), "bob@example.com", "password123", "Bob", "Smith")

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindInvalidInput, svcErr.Kind)
	assert.Equal(t, "email already exists", svcErr.Message)
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	repo := newFakeUserRepo()
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(repo, publisher)

	userID, err := svc.Register(context.Background(), "bob@example.com", "password123", "Bob", "Smith")
	require.NoError(t, err)
	assert.Greater(t, userID, 0)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	userID, err := svc.Register(context.Background(), "bob@example.com", "password123", "Bob", "Smith")
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), "bob@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "Bob Smith", user.FullName())
}

func TestLogin_Failures(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	_, err := svc.Register(context.Background(), "bob@example.com", "password123", "Bob", "Smith")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		kind     Kind
		message  string
	}{
		{name: "blank email", email: "   ", password: "password123", kind: KindInvalidInput, message: "email required"},
		{name: "empty password", email: "bob@example.com", password: "", kind: KindInvalidInput, message: "password required"},
		{name: "unknown email", email: "nobody@example.com", password: "password123", kind: KindInvalidCredentials, message: "invalid email or password"},
		{name: "wrong password", email: "bob@example.com", password: "password124", kind: KindInvalidCredentials, message: "invalid email or password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.email, tt.password)

			var svcErr *Error
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, tt.kind, svcErr.Kind)
			assert.Equal(t, tt.message, svcErr.Message)
		})
	}
}

func TestLogin_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	_, err := svc.Register(context.Background(), "bob@example.com", "password123", "Bob", "Smith")
	require.NoError(t, err)

	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "password123")
	_, wrongErr := svc.Login(context.Background(), "bob@example.com", "wrongpassword")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestGetByID(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, nil)

	userID, err := svc.Register(context.Background(), "bob@example.com", "password123", "Bob", "Smith")
	require.NoError(t, err)

	user, err := svc.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)

	_, err = svc.GetByID(context.Background(), userID+1)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
	assert.Equal(t, "user not found", svcErr.Message)
}

func TestUseCases_UnexpectedErrorPassesThrough(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = errors.New("store unavailable")
	svc := newTestService(repo, nil)

	_, err := svc.Register(context.Background(), "bob@example.com", "password123", "Bob", "Smith")

	require.Error(t, err)
	var svcErr *Error
	assert.False(t, errors.As(err, &svcErr), "infrastructure errors must stay unclassified")
}
