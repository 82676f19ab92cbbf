package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

func (d Datasource) CreateClient(ctx context.Context, cli model.Client) (model.Client, error) {
	cli.ClientID = model.GenerateUUIDWithSuffix("cli")
	cli.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO hairmanager.clients
			(client_id, owner_id, first_name, last_name, email, phone, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, cli.ClientID, cli.OwnerID, cli.FirstName, cli.LastName, cli.Email, cli.Phone, cli.Notes, cli.CreatedAt)
	if err != nil {
		return model.Client{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create client", err)
	}

	return cli, nil
}

func (d Datasource) GetClientByID(ctx context.Context, ownerID, clientID string) (*model.Client, error) {
	cli := model.Client{}
	var lastName, email, phone, notes sql.NullString

	err := d.Conn.QueryRowContext(ctx, `
		SELECT client_id, owner_id, first_name, last_name, email, phone, notes, created_at
		FROM hairmanager.clients WHERE owner_id = $1 AND client_id = $2
	`, ownerID, clientID).Scan(&cli.ClientID, &cli.OwnerID, &cli.FirstName,
		&lastName, &email, &phone, &notes, &cli.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Client not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve client", err)
	}

	cli.LastName = lastName.String
	cli.Email = email.String
	cli.Phone = phone.String
	cli.Notes = notes.String
	return &cli, nil
}

func (d Datasource) GetAllClients(ctx context.Context, ownerID string, limit, offset int) ([]model.Client, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT client_id, owner_id, first_name, last_name, email, phone, notes, created_at
		FROM hairmanager.clients WHERE owner_id = $1
		ORDER BY first_name, last_name LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve clients", err)
	}
	defer rows.Close()

	clients := []model.Client{}
	for rows.Next() {
		cli := model.Client{}
		var lastName, email, phone, notes sql.NullString
		if err := rows.Scan(&cli.ClientID, &cli.OwnerID, &cli.FirstName,
			&lastName, &email, &phone, &notes, &cli.CreatedAt); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan client data", err)
		}
		cli.LastName = lastName.String
		cli.Email = email.String
		cli.Phone = phone.String
		cli.Notes = notes.String
		clients = append(clients, cli)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over clients", err)
	}

	return clients, nil
}

func (d Datasource) UpdateClient(ctx context.Context, cli *model.Client) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE hairmanager.clients
		SET first_name = $1, last_name = $2, email = $3, phone = $4, notes = $5
		WHERE owner_id = $6 AND client_id = $7
	`, cli.FirstName, cli.LastName, cli.Email, cli.Phone, cli.Notes, cli.OwnerID, cli.ClientID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update client", err)
	}
	return requireRow(result, "Client not found")
}

func (d Datasource) DeleteClient(ctx context.Context, ownerID, clientID string) error {
	result, err := d.Conn.ExecContext(ctx, `
		DELETE FROM hairmanager.clients WHERE owner_id = $1 AND client_id = $2
	`, ownerID, clientID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete client", err)
	}
	return requireRow(result, "Client not found")
}

// requireRow converts a zero-row write into a not-found error.
func requireRow(result sql.Result, message string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read update result", err)
	}
	if affected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, message, nil)
	}
	return nil
}
