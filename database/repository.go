package database

import (
	"context"
	"time"

	"github.com/timknowlden/HairManager-sub001/model"
)

// IDataSource defines the interface for data source operations, grouping
// related functionalities.
type IDataSource interface {
	emailLog
	user
	profile
	client
	service
	location
	appointment
}

// emailLog defines methods for the email delivery log. Write methods other
// than creation touch only the mutable columns: status, provider_event_id,
// error_message and updated_at.
type emailLog interface {
	CreateEmailLog(ctx context.Context, entry *model.EmailLog) (*model.EmailLog, error)
	GetEmailLogByID(ctx context.Context, ownerID, logID string) (*model.EmailLog, error)
	GetAllEmailLogs(ctx context.Context, ownerID string, limit, offset int) ([]model.EmailLog, error)
	GetOutstandingEmailLogs(ctx context.Context, ownerID string, limit int) ([]model.EmailLog, error)
	GetRecentEmailLogsByRecipient(ctx context.Context, recipientEmail string, since time.Time, limit int) ([]model.EmailLog, error)
	UpdateEmailLogSendResult(ctx context.Context, logID, status, messageID, errorMessage string) error
	UpdateEmailLogsByMessageID(ctx context.Context, incomingID, canonicalID, status, eventID, errorMessage string) (int64, error)
	UpdateEmailLogDelivery(ctx context.Context, logID, status, eventID, errorMessage string) error
	OverrideEmailLogStatus(ctx context.Context, ownerID, logID, status string) (*model.EmailLog, error)
}

// user defines methods for tenant accounts.
type user interface {
	CreateUser(ctx context.Context, usr model.User) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
}

// profile defines methods for tenant business settings.
type profile interface {
	GetProfile(ctx context.Context, ownerID string) (*model.Profile, error)
	UpsertProfile(ctx context.Context, prof model.Profile) (model.Profile, error)
}

// client defines methods for handling a tenant's customers.
type client interface {
	CreateClient(ctx context.Context, cli model.Client) (model.Client, error)
	GetClientByID(ctx context.Context, ownerID, clientID string) (*model.Client, error)
	GetAllClients(ctx context.Context, ownerID string, limit, offset int) ([]model.Client, error)
	UpdateClient(ctx context.Context, cli *model.Client) error
	DeleteClient(ctx context.Context, ownerID, clientID string) error
}

// service defines methods for bookable offerings.
type service interface {
	CreateService(ctx context.Context, svc model.Service) (model.Service, error)
	GetServiceByID(ctx context.Context, ownerID, serviceID string) (*model.Service, error)
	GetAllServices(ctx context.Context, ownerID string) ([]model.Service, error)
	UpdateService(ctx context.Context, svc *model.Service) error
	DeleteService(ctx context.Context, ownerID, serviceID string) error
}

// location defines methods for appointment locations.
type location interface {
	CreateLocation(ctx context.Context, loc model.Location) (model.Location, error)
	GetLocationByID(ctx context.Context, ownerID, locationID string) (*model.Location, error)
	GetAllLocations(ctx context.Context, ownerID string) ([]model.Location, error)
	UpdateLocation(ctx context.Context, loc *model.Location) error
	DeleteLocation(ctx context.Context, ownerID, locationID string) error
}

// appointment defines methods for bookings.
type appointment interface {
	CreateAppointment(ctx context.Context, apt model.Appointment) (model.Appointment, error)
	GetAppointmentByID(ctx context.Context, ownerID, appointmentID string) (*model.Appointment, error)
	GetAppointments(ctx context.Context, ownerID string, from, to time.Time) ([]model.Appointment, error)
	UpdateAppointment(ctx context.Context, apt *model.Appointment) error
	DeleteAppointment(ctx context.Context, ownerID, appointmentID string) error
}
