package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

func (d Datasource) CreateUser(ctx context.Context, usr model.User) (model.User, error) {
	usr.UserID = model.GenerateUUIDWithSuffix("usr")
	usr.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO hairmanager.users (user_id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, usr.UserID, usr.Email, usr.PasswordHash, usr.CreatedAt)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "unique_violation" {
			return model.User{}, apierror.NewAPIError(apierror.ErrConflict, "An account with this email already exists", err)
		}
		return model.User{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create account", err)
	}

	return usr, nil
}

func (d Datasource) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	usr := model.User{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT user_id, email, password_hash, created_at
		FROM hairmanager.users WHERE email = $1
	`, email).Scan(&usr.UserID, &usr.Email, &usr.PasswordHash, &usr.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Account not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve account", err)
	}
	return &usr, nil
}

func (d Datasource) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	usr := model.User{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT user_id, email, password_hash, created_at
		FROM hairmanager.users WHERE user_id = $1
	`, userID).Scan(&usr.UserID, &usr.Email, &usr.PasswordHash, &usr.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Account not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve account", err)
	}
	return &usr, nil
}
