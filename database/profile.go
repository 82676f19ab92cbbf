package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

func profileCacheKey(ownerID string) string {
	return fmt.Sprintf("profile:%s", ownerID)
}

func (d Datasource) GetProfile(ctx context.Context, ownerID string) (*model.Profile, error) {
	cacheKey := profileCacheKey(ownerID)

	var cached model.Profile
	if d.Cache != nil {
		if err := d.Cache.Get(ctx, cacheKey, &cached); err == nil && cached.OwnerID != "" {
			return &cached, nil
		}
	}

	prof := model.Profile{}
	var businessName, address, phone, apiKey, notificationEmail sql.NullString

	err := d.Conn.QueryRowContext(ctx, `
		SELECT owner_id, business_name, address, phone, sendgrid_api_key, notification_email, updated_at
		FROM hairmanager.profiles WHERE owner_id = $1
	`, ownerID).Scan(&prof.OwnerID, &businessName, &address, &phone, &apiKey, &notificationEmail, &prof.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Profile not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve profile", err)
	}

	prof.BusinessName = businessName.String
	prof.Address = address.String
	prof.Phone = phone.String
	prof.SendgridAPIKey = apiKey.String
	prof.NotificationEmail = notificationEmail.String

	if d.Cache != nil {
		if err := d.Cache.Set(ctx, cacheKey, prof, 5*time.Minute); err != nil {
			log.Printf("Failed to cache profile: %v", err)
		}
	}
	return &prof, nil
}

func (d Datasource) UpsertProfile(ctx context.Context, prof model.Profile) (model.Profile, error) {
	prof.UpdatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO hairmanager.profiles
			(owner_id, business_name, address, phone, sendgrid_api_key, notification_email, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			sendgrid_api_key = EXCLUDED.sendgrid_api_key,
			notification_email = EXCLUDED.notification_email,
			updated_at = EXCLUDED.updated_at
	`, prof.OwnerID, prof.BusinessName, prof.Address, prof.Phone,
		prof.SendgridAPIKey, prof.NotificationEmail, prof.UpdatedAt)
	if err != nil {
		return model.Profile{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to save profile", err)
	}

	// A stale cached profile would keep serving an old API key.
	if d.Cache != nil {
		if err := d.Cache.Delete(ctx, profileCacheKey(prof.OwnerID)); err != nil {
			log.Printf("Failed to invalidate cached profile: %v", err)
		}
	}

	return prof, nil
}
