package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAdminSeedIsIdempotent(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec("INSERT INTO admins").
		WithArgs(sqlmock.AnyArg(), "root", "bcrypt-hash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, CreateAdmin(context.Background(), "root", "bcrypt-hash"))

	// second startup hits the conflict clause and writes nothing
	mock.ExpectExec("INSERT INTO admins").
		WithArgs(sqlmock.AnyArg(), "root", "bcrypt-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, CreateAdmin(context.Background(), "root", "bcrypt-hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAdminByLogin(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("FROM admins WHERE login").WithArgs("root").
		WillReturnRows(sqlmock.NewRows([]string{"id", "login", "password_hash", "created_at"}).
			AddRow("b7a9c1f0-0000-0000-0000-000000000001", "root", "bcrypt-hash", at(0)))

	admin, err := GetAdminByLogin(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, "root", admin.Login)
	assert.Equal(t, "bcrypt-hash", admin.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}
