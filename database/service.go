package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

func (d Datasource) CreateService(ctx context.Context, svc model.Service) (model.Service, error) {
	svc.ServiceID = model.GenerateUUIDWithSuffix("svc")
	svc.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO hairmanager.services
			(service_id, owner_id, name, description, price, duration_mins, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, svc.ServiceID, svc.OwnerID, svc.Name, svc.Description, svc.Price, svc.DurationMins, svc.CreatedAt)
	if err != nil {
		return model.Service{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create service", err)
	}

	return svc, nil
}

func (d Datasource) GetServiceByID(ctx context.Context, ownerID, serviceID string) (*model.Service, error) {
	svc := model.Service{}
	var description sql.NullString

	err := d.Conn.QueryRowContext(ctx, `
		SELECT service_id, owner_id, name, description, price, duration_mins, created_at
		FROM hairmanager.services WHERE owner_id = $1 AND service_id = $2
	`, ownerID, serviceID).Scan(&svc.ServiceID, &svc.OwnerID, &svc.Name,
		&description, &svc.Price, &svc.DurationMins, &svc.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Service not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve service", err)
	}

	svc.Description = description.String
	return &svc, nil
}

func (d Datasource) GetAllServices(ctx context.Context, ownerID string) ([]model.Service, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT service_id, owner_id, name, description, price, duration_mins, created_at
		FROM hairmanager.services WHERE owner_id = $1 ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve services", err)
	}
	defer rows.Close()

	services := []model.Service{}
	for rows.Next() {
		svc := model.Service{}
		var description sql.NullString
		if err := rows.Scan(&svc.ServiceID, &svc.OwnerID, &svc.Name,
			&description, &svc.Price, &svc.DurationMins, &svc.CreatedAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan service data", err)
		}
		svc.Description = description.String
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over services", err)
	}

	return services, nil
}

func (d Datasource) UpdateService(ctx context.Context, svc *model.Service) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE hairmanager.services
		SET name = $1, description = $2, price = $3, duration_mins = $4
		WHERE owner_id = $5 AND service_id = $6
	`, svc.Name, svc.Description, svc.Price, svc.DurationMins, svc.OwnerID, svc.ServiceID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update service", err)
	}
	return requireRow(result, "Service not found")
}

func (d Datasource) DeleteService(ctx context.Context, ownerID, serviceID string) error {
	result, err := d.Conn.ExecContext(ctx, `
		DELETE FROM hairmanager.services WHERE owner_id = $1 AND service_id = $2
	`, ownerID, serviceID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete service", err)
	}
	return requireRow(result, "Service not found")
}
