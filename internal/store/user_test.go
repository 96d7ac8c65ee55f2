package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fintrack-app/apiserver/types"
)

func newMockRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func userColumns() []string {
	return []string{"id", "email", "password_hash", "first_name", "last_name", "created_at"}
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, password_hash, first_name, last_name, created_at")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(7, "bob@example.com", "hash", "Bob", "Smith", now))

	user, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT").
		WithArgs(7).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_GetByEmail_NormalizesCase(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT").
		WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(7, "bob@example.com", "hash", "Bob", "Smith", now))

	user, err := repo.GetByEmail(context.Background(), "BOB@Example.com")
	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "Bob@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := types.NewUser("bob@example.com", "hash", "Bob", "Smith")

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(user.Email, user.PasswordHash, user.FirstName, user.LastName, user.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	saved, err := repo.Create(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 7, saved.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := repo.Create(context.Background(), types.NewUser("bob@example.com", "hash", "Bob", "Smith"))
	assert.ErrorIs(t, err, ErrEmailTaken)
}
