package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"

	"github.com/timknowlden/HairManager-sub001/model"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) ValidateRegisterRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) ValidateLoginRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type UpdateProfileRequest struct {
	BusinessName      string `json:"business_name"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	SendgridAPIKey    string `json:"sendgrid_api_key"`
	NotificationEmail string `json:"notification_email"`
}

func (r *UpdateProfileRequest) ValidateUpdateProfileRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.BusinessName, validation.Required),
		validation.Field(&r.NotificationEmail, is.Email),
	)
}

func (r *UpdateProfileRequest) ToProfile(ownerID string) model.Profile {
	return model.Profile{
		OwnerID:           ownerID,
		BusinessName:      r.BusinessName,
		Address:           r.Address,
		Phone:             r.Phone,
		SendgridAPIKey:    r.SendgridAPIKey,
		NotificationEmail: r.NotificationEmail,
	}
}

type CreateClientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Notes     string `json:"notes"`
}

func (r *CreateClientRequest) ValidateCreateClientRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.Email, is.Email),
	)
}

func (r *CreateClientRequest) ToClient(ownerID string) model.Client {
	return model.Client{
		OwnerID:   ownerID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Notes:     r.Notes,
	}
}

type CreateServiceRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	DurationMins int             `json:"duration_mins"`
}

func (r *CreateServiceRequest) ValidateCreateServiceRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.DurationMins, validation.Min(0)),
	)
}

func (r *CreateServiceRequest) ToService(ownerID string) model.Service {
	return model.Service{
		OwnerID:      ownerID,
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		DurationMins: r.DurationMins,
	}
}

type CreateLocationRequest struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (r *CreateLocationRequest) ValidateCreateLocationRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}

func (r *CreateLocationRequest) ToLocation(ownerID string) model.Location {
	return model.Location{
		OwnerID:   ownerID,
		Name:      r.Name,
		Address:   r.Address,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

type CreateAppointmentRequest struct {
	ClientID   string    `json:"client_id"`
	ServiceID  string    `json:"service_id"`
	LocationID string    `json:"location_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes"`
}

func (r *CreateAppointmentRequest) ValidateCreateAppointmentRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID, validation.Required),
		validation.Field(&r.ServiceID, validation.Required),
		validation.Field(&r.StartTime, validation.Required),
		validation.Field(&r.EndTime, validation.Required),
		validation.Field(&r.Status, validation.In(
			model.AppointmentBooked, model.AppointmentCompleted, model.AppointmentCancelled, "")),
	)
}

func (r *CreateAppointmentRequest) ToAppointment(ownerID string) model.Appointment {
	return model.Appointment{
		OwnerID:    ownerID,
		ClientID:   r.ClientID,
		ServiceID:  r.ServiceID,
		LocationID: r.LocationID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Status:     r.Status,
		Notes:      r.Notes,
	}
}

type SendInvoiceRequest struct {
	InvoiceRef     string   `json:"invoice_ref"`
	Recipients     []string `json:"recipients"`
	Subject        string   `json:"subject"`
	Body           string   `json:"body"`
	AttachmentPath string   `json:"attachment_path"`
}

func (r *SendInvoiceRequest) ValidateSendInvoiceRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Recipients, validation.Required, validation.Each(is.Email)),
		validation.Field(&r.Subject, validation.Required),
		validation.Field(&r.Body, validation.Required),
	)
}

func (r *SendInvoiceRequest) ToInvoiceEmail(ownerID string) model.InvoiceEmail {
	return model.InvoiceEmail{
		OwnerID:        ownerID,
		InvoiceRef:     r.InvoiceRef,
		Recipients:     r.Recipients,
		Subject:        r.Subject,
		Body:           r.Body,
		AttachmentPath: r.AttachmentPath,
	}
}

// OverrideStatusRequest is the manual status override payload. unknown is
// excluded: it is reserved for unmapped provider events.
type OverrideStatusRequest struct {
	Status string `json:"status"`
}

func (r *OverrideStatusRequest) ValidateOverrideStatusRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Status, validation.Required, validation.In(
			model.StatusPending, model.StatusSent, model.StatusDelivered,
			model.StatusFailed, model.StatusOpened)),
	)
}

type DistanceRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

func (r *DistanceRequest) ValidateDistanceRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Origin, validation.Required),
		validation.Field(&r.Destination, validation.Required),
	)
}
