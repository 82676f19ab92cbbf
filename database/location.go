package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

func (d Datasource) CreateLocation(ctx context.Context, loc model.Location) (model.Location, error) {
	loc.LocationID = model.GenerateUUIDWithSuffix("loc")
	loc.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO hairmanager.locations
			(location_id, owner_id, name, address, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, loc.LocationID, loc.OwnerID, loc.Name, loc.Address, loc.Latitude, loc.Longitude, loc.CreatedAt)
	if err != nil {
		return model.Location{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create location", err)
	}

	return loc, nil
}

func (d Datasource) GetLocationByID(ctx context.Context, ownerID, locationID string) (*model.Location, error) {
	loc := model.Location{}
	var address sql.NullString
	var latitude, longitude sql.NullFloat64

	err := d.Conn.QueryRowContext(ctx, `
		SELECT location_id, owner_id, name, address, latitude, longitude, created_at
		FROM hairmanager.locations WHERE owner_id = $1 AND location_id = $2
	`, ownerID, locationID).Scan(&loc.LocationID, &loc.OwnerID, &loc.Name,
		&address, &latitude, &longitude, &loc.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Location not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve location", err)
	}

	loc.Address = address.String
	loc.Latitude = latitude.Float64
	loc.Longitude = longitude.Float64
	return &loc, nil
}

func (d Datasource) GetAllLocations(ctx context.Context, ownerID string) ([]model.Location, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT location_id, owner_id, name, address, latitude, longitude, created_at
		FROM hairmanager.locations WHERE owner_id = $1 ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve locations", err)
	}
	defer rows.Close()

	locations := []model.Location{}
	for rows.Next() {
		loc := model.Location{}
		var address sql.NullString
		var latitude, longitude sql.NullFloat64
		if err := rows.Scan(&loc.LocationID, &loc.OwnerID, &loc.Name,
			&address, &latitude, &longitude, &loc.CreatedAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan location data", err)
		}
		loc.Address = address.String
		loc.Latitude = latitude.Float64
		loc.Longitude = longitude.Float64
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over locations", err)
	}

	return locations, nil
}

func (d Datasource) UpdateLocation(ctx context.Context, loc *model.Location) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE hairmanager.locations
		SET name = $1, address = $2, latitude = $3, longitude = $4
		WHERE owner_id = $5 AND location_id = $6
	`, loc.Name, loc.Address, loc.Latitude, loc.Longitude, loc.OwnerID, loc.LocationID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update location", err)
	}
	return requireRow(result, "Location not found")
}

func (d Datasource) DeleteLocation(ctx context.Context, ownerID, locationID string) error {
	result, err := d.Conn.ExecContext(ctx, `
		DELETE FROM hairmanager.locations WHERE owner_id = $1 AND location_id = $2
	`, ownerID, locationID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete location", err)
	}
	return requireRow(result, "Location not found")
}
