package services

import (
	"context"
	"testing"
	"time"

	"tourdesk/internal/domain"
	"tourdesk/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthIssueAndVerify(t *testing.T) {
	svc := AuthService{Secret: []byte("test-secret"), TTL: time.Hour}
	token, exp, err := svc.Issue(7, RoleOperator)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	rc, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rc.OperatorID)
	assert.Equal(t, RoleOperator, rc.Role)
}

func TestAuthVerifyRejectsExpiredAndForeignTokens(t *testing.T) {
	past := func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := AuthService{Secret: []byte("s"), TTL: time.Hour, Now: past}.Issue(1, RoleAdmin)
	require.NoError(t, err)

	_, err = AuthService{Secret: []byte("s")}.Verify(expired)
	assert.True(t, domain.IsAuth(err))

	other, _, err := AuthService{Secret: []byte("other")}.Issue(1, RoleAdmin)
	require.NoError(t, err)
	_, err = AuthService{Secret: []byte("s")}.Verify(other)
	assert.True(t, domain.IsAuth(err))

	_, err = AuthService{Secret: []byte("s")}.Verify("")
	assert.True(t, domain.IsAuth(err))
}

func TestAuthLogin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia"), bcrypt.MinCost)
	require.NoError(t, err)
	cols := []string{"id", "name", "email", "password_hash", "role", "status"}
	mock.ExpectQuery("FROM operators").WithArgs("ops@example.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, "Ops", "ops@example.com", string(hash), "operator", "active"))
	mock.ExpectQuery("FROM operators").WithArgs("ops@example.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, "Ops", "ops@example.com", string(hash), "operator", "active"))

	svc := AuthService{Operators: repositories.OperatorRepository{DB: db}, Secret: []byte("s")}
	sess, err := svc.Login(context.Background(), "ops@example.com", "rahasia")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, int64(3), sess.Operator.ID)

	_, err = svc.Login(context.Background(), "ops@example.com", "salah")
	assert.True(t, domain.IsAuth(err))

	_, err = svc.Login(context.Background(), "", "")
	assert.True(t, domain.IsValidation(err))
}

func TestBootstrapAdminOnlyWhenEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO operators").
		WithArgs("Administrator", "admin@example.com", sqlmock.AnyArg(), RoleAdmin, "active").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	svc := AuthService{Operators: repositories.OperatorRepository{DB: db}}
	require.NoError(t, svc.BootstrapAdmin(context.Background(), "admin@example.com", "pw"))
	require.NoError(t, svc.BootstrapAdmin(context.Background(), "admin@example.com", "pw"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
