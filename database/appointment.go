package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

func (d Datasource) CreateAppointment(ctx context.Context, apt model.Appointment) (model.Appointment, error) {
	apt.AppointmentID = model.GenerateUUIDWithSuffix("apt")
	apt.CreatedAt = time.Now()
	if apt.Status == "" {
		apt.Status = model.AppointmentBooked
	}

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO hairmanager.appointments
			(appointment_id, owner_id, client_id, service_id, location_id,
			 start_time, end_time, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, apt.AppointmentID, apt.OwnerID, apt.ClientID, apt.ServiceID, nullString(apt.LocationID),
		apt.StartTime, apt.EndTime, apt.Status, apt.Notes, apt.CreatedAt)
	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok && pqErr.Code.Name() == "foreign_key_violation" {
			return model.Appointment{}, apierror.NewAPIError(apierror.ErrBadRequest, "Referenced client, service or location does not exist", err)
		}
		return model.Appointment{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create appointment", err)
	}

	return apt, nil
}

func (d Datasource) GetAppointmentByID(ctx context.Context, ownerID, appointmentID string) (*model.Appointment, error) {
	apt := model.Appointment{}
	var locationID, notes sql.NullString

	err := d.Conn.QueryRowContext(ctx, `
		SELECT appointment_id, owner_id, client_id, service_id, location_id,
		       start_time, end_time, status, notes, created_at
		FROM hairmanager.appointments WHERE owner_id = $1 AND appointment_id = $2
	`, ownerID, appointmentID).Scan(&apt.AppointmentID, &apt.OwnerID, &apt.ClientID, &apt.ServiceID,
		&locationID, &apt.StartTime, &apt.EndTime, &apt.Status, &notes, &apt.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Appointment not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve appointment", err)
	}

	apt.LocationID = locationID.String
	apt.Notes = notes.String
	return &apt, nil
}

// GetAppointments lists the tenant's appointments overlapping the given
// window, ordered by start time.
func (d Datasource) GetAppointments(ctx context.Context, ownerID string, from, to time.Time) ([]model.Appointment, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT appointment_id, owner_id, client_id, service_id, location_id,
		       start_time, end_time, status, notes, created_at
		FROM hairmanager.appointments
		WHERE owner_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time
	`, ownerID, from, to)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve appointments", err)
	}
	defer rows.Close()

	appointments := []model.Appointment{}
	for rows.Next() {
		apt := model.Appointment{}
		var locationID, notes sql.NullString
		if err := rows.Scan(&apt.AppointmentID, &apt.OwnerID, &apt.ClientID, &apt.ServiceID,
			&locationID, &apt.StartTime, &apt.EndTime, &apt.Status, &notes, &apt.CreatedAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan appointment data", err)
		}
		apt.LocationID = locationID.String
		apt.Notes = notes.String
		appointments = append(appointments, apt)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over appointments", err)
	}

	return appointments, nil
}

func (d Datasource) UpdateAppointment(ctx context.Context, apt *model.Appointment) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE hairmanager.appointments
		SET client_id = $1, service_id = $2, location_id = $3,
		    start_time = $4, end_time = $5, status = $6, notes = $7
		WHERE owner_id = $8 AND appointment_id = $9
	`, apt.ClientID, apt.ServiceID, nullString(apt.LocationID),
		apt.StartTime, apt.EndTime, apt.Status, apt.Notes, apt.OwnerID, apt.AppointmentID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update appointment", err)
	}
	return requireRow(result, "Appointment not found")
}

func (d Datasource) DeleteAppointment(ctx context.Context, ownerID, appointmentID string) error {
	result, err := d.Conn.ExecContext(ctx, `
		DELETE FROM hairmanager.appointments WHERE owner_id = $1 AND appointment_id = $2
	`, ownerID, appointmentID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete appointment", err)
	}
	return requireRow(result, "Appointment not found")
}
