package hairmanager

import (
	"context"
	"time"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/internal/notification"
	"github.com/timknowlden/HairManager-sub001/internal/search"
	"github.com/timknowlden/HairManager-sub001/model"
)

// CreateClient records a new customer and queues it for search indexing.
func (h *HairManager) CreateClient(ctx context.Context, cli model.Client) (model.Client, error) {
	created, err := h.datasource.CreateClient(ctx, cli)
	if err != nil {
		return model.Client{}, err
	}
	if err := h.queueIndexData(created.ClientID, search.CollectionClients, created); err != nil {
		notification.NotifyError(err)
	}
	return created, nil
}

func (h *HairManager) GetClient(ctx context.Context, ownerID, clientID string) (*model.Client, error) {
	return h.datasource.GetClientByID(ctx, ownerID, clientID)
}

func (h *HairManager) GetClients(ctx context.Context, ownerID string, limit, offset int) ([]model.Client, error) {
	return h.datasource.GetAllClients(ctx, ownerID, limit, offset)
}

func (h *HairManager) UpdateClient(ctx context.Context, cli *model.Client) error {
	if err := h.datasource.UpdateClient(ctx, cli); err != nil {
		return err
	}
	if err := h.queueIndexData(cli.ClientID, search.CollectionClients, cli); err != nil {
		notification.NotifyError(err)
	}
	return nil
}

func (h *HairManager) DeleteClient(ctx context.Context, ownerID, clientID string) error {
	return h.datasource.DeleteClient(ctx, ownerID, clientID)
}

func (h *HairManager) CreateService(ctx context.Context, svc model.Service) (model.Service, error) {
	return h.datasource.CreateService(ctx, svc)
}

func (h *HairManager) GetService(ctx context.Context, ownerID, serviceID string) (*model.Service, error) {
	return h.datasource.GetServiceByID(ctx, ownerID, serviceID)
}

func (h *HairManager) GetServices(ctx context.Context, ownerID string) ([]model.Service, error) {
	return h.datasource.GetAllServices(ctx, ownerID)
}

func (h *HairManager) UpdateService(ctx context.Context, svc *model.Service) error {
	return h.datasource.UpdateService(ctx, svc)
}

func (h *HairManager) DeleteService(ctx context.Context, ownerID, serviceID string) error {
	return h.datasource.DeleteService(ctx, ownerID, serviceID)
}

func (h *HairManager) CreateLocation(ctx context.Context, loc model.Location) (model.Location, error) {
	return h.datasource.CreateLocation(ctx, loc)
}

func (h *HairManager) GetLocation(ctx context.Context, ownerID, locationID string) (*model.Location, error) {
	return h.datasource.GetLocationByID(ctx, ownerID, locationID)
}

func (h *HairManager) GetLocations(ctx context.Context, ownerID string) ([]model.Location, error) {
	return h.datasource.GetAllLocations(ctx, ownerID)
}

func (h *HairManager) UpdateLocation(ctx context.Context, loc *model.Location) error {
	return h.datasource.UpdateLocation(ctx, loc)
}

func (h *HairManager) DeleteLocation(ctx context.Context, ownerID, locationID string) error {
	return h.datasource.DeleteLocation(ctx, ownerID, locationID)
}

// CreateAppointment books a time slot. The slot must not overlap another
// non-cancelled appointment for the same tenant.
func (h *HairManager) CreateAppointment(ctx context.Context, apt model.Appointment) (model.Appointment, error) {
	if !apt.EndTime.After(apt.StartTime) {
		return model.Appointment{}, apierror.NewAPIError(apierror.ErrInvalidInput, "Appointment end must be after its start", nil)
	}

	overlapping, err := h.datasource.GetAppointments(ctx, apt.OwnerID, apt.StartTime, apt.EndTime)
	if err != nil {
		return model.Appointment{}, err
	}
	for _, other := range overlapping {
		if other.Status != model.AppointmentCancelled {
			return model.Appointment{}, apierror.NewAPIError(apierror.ErrConflict, "Time slot overlaps an existing appointment", nil)
		}
	}

	created, err := h.datasource.CreateAppointment(ctx, apt)
	if err != nil {
		return model.Appointment{}, err
	}
	if err := h.queueIndexData(created.AppointmentID, search.CollectionAppointments, created); err != nil {
		notification.NotifyError(err)
	}
	return created, nil
}

func (h *HairManager) GetAppointment(ctx context.Context, ownerID, appointmentID string) (*model.Appointment, error) {
	return h.datasource.GetAppointmentByID(ctx, ownerID, appointmentID)
}

func (h *HairManager) GetAppointments(ctx context.Context, ownerID string, from, to time.Time) ([]model.Appointment, error) {
	return h.datasource.GetAppointments(ctx, ownerID, from, to)
}

func (h *HairManager) UpdateAppointment(ctx context.Context, apt *model.Appointment) error {
	if apt.Status == "" {
		apt.Status = model.AppointmentBooked
	}
	if !model.IsValidAppointmentStatus(apt.Status) {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid appointment status", nil)
	}
	if err := h.datasource.UpdateAppointment(ctx, apt); err != nil {
		return err
	}
	if err := h.queueIndexData(apt.AppointmentID, search.CollectionAppointments, apt); err != nil {
		notification.NotifyError(err)
	}
	return nil
}

func (h *HairManager) DeleteAppointment(ctx context.Context, ownerID, appointmentID string) error {
	return h.datasource.DeleteAppointment(ctx, ownerID, appointmentID)
}
