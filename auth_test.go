package hairmanager

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
)

func TestLoginUser_IssuesTokenForOwner(t *testing.T) {
	service, mock := newTestService(t)

	email := gofakeit.Email()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	assert.NoError(t, err)

	mock.ExpectQuery(`FROM hairmanager.users WHERE email = \$1`).
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "password_hash", "created_at"}).
			AddRow("usr_42", email, string(hash), time.Now()))

	signed, err := service.LoginUser(context.Background(), email, "correct-horse")
	assert.NoError(t, err)

	token, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(*jwt.RegisteredClaims)
	assert.Equal(t, "usr_42", claims.Subject)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	service, mock := newTestService(t)

	email := gofakeit.Email()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	assert.NoError(t, err)

	mock.ExpectQuery(`FROM hairmanager.users WHERE email = \$1`).
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "password_hash", "created_at"}).
			AddRow("usr_42", email, string(hash), time.Now()))

	_, err = service.LoginUser(context.Background(), email, "wrong")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrUnauthorized, apiErr.Code)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestLoginUser_UnknownEmailSameError(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery(`FROM hairmanager.users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(assert.AnError)

	_, err := service.LoginUser(context.Background(), "nobody@example.com", "whatever")
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrUnauthorized, apiErr.Code)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}
