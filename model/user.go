package model

import "time"

// User is a tenant account. Every owned record in the system is scoped by
// the user's ID.
type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile holds a tenant's business settings, including the delivery
// provider API key used by the poll reconciler.
type Profile struct {
	OwnerID           string    `json:"owner_id"`
	BusinessName      string    `json:"business_name"`
	Address           string    `json:"address,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	SendgridAPIKey    string    `json:"sendgrid_api_key,omitempty"`
	NotificationEmail string    `json:"notification_email,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}
