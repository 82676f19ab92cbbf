package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

const emailLogColumns = `
	log_id, owner_id, invoice_ref, recipient_email, subject, status,
	provider_message_id, provider_event_id, error_message, attachment_path,
	sent_at, updated_at
`

// CreateEmailLog inserts one row for one recipient. The send path calls this
// once per recipient even for a single logical send.
func (d Datasource) CreateEmailLog(ctx context.Context, entry *model.EmailLog) (*model.EmailLog, error) {
	entry.LogID = model.GenerateUUIDWithSuffix("email")
	entry.SentAt = time.Now()
	entry.UpdatedAt = entry.SentAt

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO hairmanager.email_logs
			(log_id, owner_id, invoice_ref, recipient_email, subject, status,
			 provider_message_id, provider_event_id, error_message, attachment_path,
			 sent_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, entry.LogID, entry.OwnerID, entry.InvoiceRef, entry.RecipientEmail, entry.Subject,
		entry.Status, nullString(entry.ProviderMessageID), nullString(entry.ProviderEventID),
		nullString(entry.ErrorMessage), nullString(entry.AttachmentPath), entry.SentAt, entry.UpdatedAt)

	if err != nil {
		pqErr, ok := err.(*pq.Error)
		if ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return nil, apierror.NewAPIError(apierror.ErrConflict, "Email log with this ID already exists", err)
			default:
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Database error occurred", err)
			}
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create email log", err)
	}

	return entry, nil
}

func (d Datasource) GetEmailLogByID(ctx context.Context, ownerID, logID string) (*model.EmailLog, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+emailLogColumns+`
		FROM hairmanager.email_logs
		WHERE owner_id = $1 AND log_id = $2
	`, ownerID, logID)

	entry, err := scanEmailLog(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Email log not found", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve email log", err)
	}
	return entry, nil
}

func (d Datasource) GetAllEmailLogs(ctx context.Context, ownerID string, limit, offset int) ([]model.EmailLog, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+emailLogColumns+`
		FROM hairmanager.email_logs
		WHERE owner_id = $1
		ORDER BY sent_at DESC LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve email logs", err)
	}
	defer rows.Close()

	return collectEmailLogs(rows)
}

// GetOutstandingEmailLogs returns the rows the poll reconciler still cares
// about: pending or sent, with a provider message ID to match against.
func (d Datasource) GetOutstandingEmailLogs(ctx context.Context, ownerID string, limit int) ([]model.EmailLog, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+emailLogColumns+`
		FROM hairmanager.email_logs
		WHERE owner_id = $1 AND status IN ('pending', 'sent') AND provider_message_id IS NOT NULL
		ORDER BY sent_at DESC LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve outstanding email logs", err)
	}
	defer rows.Close()

	return collectEmailLogs(rows)
}

// GetRecentEmailLogsByRecipient lists recent rows for one recipient, newest
// first. This feeds the webhook fallback match, so it is deliberately not
// scoped by owner: the incoming webhook carries no tenant identity.
func (d Datasource) GetRecentEmailLogsByRecipient(ctx context.Context, recipientEmail string, since time.Time, limit int) ([]model.EmailLog, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+emailLogColumns+`
		FROM hairmanager.email_logs
		WHERE recipient_email = $1 AND sent_at >= $2
		ORDER BY sent_at DESC LIMIT $3
	`, recipientEmail, since, limit)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve email logs by recipient", err)
	}
	defer rows.Close()

	return collectEmailLogs(rows)
}

// UpdateEmailLogSendResult records the outcome of a send attempt: the status
// and the canonical provider message ID on success, or the failure message.
func (d Datasource) UpdateEmailLogSendResult(ctx context.Context, logID, status, messageID, errorMessage string) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE hairmanager.email_logs
		SET status = $1, provider_message_id = $2, error_message = $3, updated_at = NOW()
		WHERE log_id = $4
	`, status, nullString(messageID), nullString(errorMessage), logID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record send result", err)
	}
	return nil
}

// UpdateEmailLogsByMessageID applies a delivery event to every row whose
// stored provider message ID refers to the incoming identifier. A row
// matches when the stored value equals the full incoming ID, equals its
// canonical prefix, or is the canonical prefix of a decorated incoming ID.
// Returns how many rows matched.
func (d Datasource) UpdateEmailLogsByMessageID(ctx context.Context, incomingID, canonicalID, status, eventID, errorMessage string) (int64, error) {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE hairmanager.email_logs
		SET status = $1, provider_event_id = $2, error_message = $3, updated_at = NOW()
		WHERE provider_message_id IS NOT NULL
		  AND (provider_message_id = $4 OR provider_message_id = $5 OR $4 LIKE provider_message_id || '.%')
	`, status, nullString(eventID), nullString(errorMessage), incomingID, canonicalID)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update email logs by message ID", err)
	}

	matched, err := result.RowsAffected()
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read update result", err)
	}
	return matched, nil
}

// UpdateEmailLogDelivery overwrites the delivery state of a single row.
// Last write wins by arrival order; the provider is the source of truth.
func (d Datasource) UpdateEmailLogDelivery(ctx context.Context, logID, status, eventID, errorMessage string) error {
	_, err := d.Conn.ExecContext(ctx, `
		UPDATE hairmanager.email_logs
		SET status = $1, provider_event_id = $2, error_message = $3, updated_at = NOW()
		WHERE log_id = $4
	`, status, nullString(eventID), nullString(errorMessage), logID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update email log delivery state", err)
	}
	return nil
}

// OverrideEmailLogStatus sets a status by hand, tenant-scoped. Used for
// local testing when no provider integration is configured.
func (d Datasource) OverrideEmailLogStatus(ctx context.Context, ownerID, logID, status string) (*model.EmailLog, error) {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE hairmanager.email_logs
		SET status = $1, updated_at = NOW()
		WHERE owner_id = $2 AND log_id = $3
	`, status, ownerID, logID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to override email log status", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to read update result", err)
	}
	if affected == 0 {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "Email log not found", nil)
	}

	return d.GetEmailLogByID(ctx, ownerID, logID)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmailLog(row rowScanner) (*model.EmailLog, error) {
	entry := model.EmailLog{}
	var invoiceRef, subject, messageID, eventID, errorMessage, attachmentPath sql.NullString

	err := row.Scan(&entry.LogID, &entry.OwnerID, &invoiceRef, &entry.RecipientEmail,
		&subject, &entry.Status, &messageID, &eventID, &errorMessage, &attachmentPath,
		&entry.SentAt, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}

	entry.InvoiceRef = invoiceRef.String
	entry.Subject = subject.String
	entry.ProviderMessageID = messageID.String
	entry.ProviderEventID = eventID.String
	entry.ErrorMessage = errorMessage.String
	entry.AttachmentPath = attachmentPath.String
	return &entry, nil
}

func collectEmailLogs(rows *sql.Rows) ([]model.EmailLog, error) {
	logs := []model.EmailLog{}
	for rows.Next() {
		entry, err := scanEmailLog(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan email log data", err)
		}
		logs = append(logs, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over email logs", err)
	}
	return logs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
