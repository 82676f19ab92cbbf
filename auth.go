package hairmanager

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/timknowlden/HairManager-sub001/config"
	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

const tokenLifetime = 24 * time.Hour

// RegisterUser creates a tenant account with a bcrypt-hashed password.
func (h *HairManager) RegisterUser(ctx context.Context, email, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to hash password", err)
	}

	return h.datasource.CreateUser(ctx, model.User{
		Email:        email,
		PasswordHash: string(hash),
	})
}

// LoginUser verifies credentials and issues a signed token carrying the
// tenant's ID as subject. Bad email and bad password are indistinguishable
// to the caller.
func (h *HairManager) LoginUser(ctx context.Context, email, password string) (string, error) {
	usr, err := h.datasource.GetUserByEmail(ctx, email)
	if err != nil {
		return "", apierror.NewAPIError(apierror.ErrUnauthorized, "Invalid email or password", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return "", apierror.NewAPIError(apierror.ErrUnauthorized, "Invalid email or password", nil)
	}

	cnf, err := config.Fetch()
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   usr.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	})

	signed, err := token.SignedString([]byte(cnf.Server.JWTSecret))
	if err != nil {
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "Failed to sign token", err)
	}
	return signed, nil
}

// GetProfile retrieves a tenant's business settings.
func (h *HairManager) GetProfile(ctx context.Context, ownerID string) (*model.Profile, error) {
	return h.datasource.GetProfile(ctx, ownerID)
}

// UpdateProfile saves a tenant's business settings, including the delivery
// provider API key.
func (h *HairManager) UpdateProfile(ctx context.Context, prof model.Profile) (model.Profile, error) {
	return h.datasource.UpsertProfile(ctx, prof)
}
