package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Appointment statuses.
const (
	AppointmentBooked    = "booked"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Client is a customer of the tenant's business.
type Client struct {
	ClientID  string    `json:"client_id"`
	OwnerID   string    `json:"owner_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is a bookable offering (cut, colour, treatment) with a price and
// duration.
type Service struct {
	ServiceID    string          `json:"service_id"`
	OwnerID      string          `json:"owner_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	DurationMins int             `json:"duration_mins"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Location is a place where appointments happen, either a salon address or a
// mobile base.
type Location struct {
	LocationID string    `json:"location_id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Latitude   float64   `json:"latitude,omitempty"`
	Longitude  float64   `json:"longitude,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Appointment links a client, a service and a location to a time slot.
type Appointment struct {
	AppointmentID string    `json:"appointment_id"`
	OwnerID       string    `json:"owner_id"`
	ClientID      string    `json:"client_id"`
	ServiceID     string    `json:"service_id"`
	LocationID    string    `json:"location_id,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsValidAppointmentStatus reports whether a status belongs to the
// appointment status set.
func IsValidAppointmentStatus(status string) bool {
	switch status {
	case AppointmentBooked, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// Distance is the result of a mapping-API lookup between two addresses.
type Distance struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}
