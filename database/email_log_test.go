package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

func emailLogRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"log_id", "owner_id", "invoice_ref", "recipient_email", "subject", "status",
		"provider_message_id", "provider_event_id", "error_message", "attachment_path",
		"sent_at", "updated_at",
	})
}

func TestCreateEmailLog_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("INSERT INTO hairmanager.email_logs").
		WithArgs(sqlmock.AnyArg(), "usr_1", "INV-001", "client@example.com", "Your invoice",
			model.StatusPending, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry, err := ds.CreateEmailLog(context.Background(), &model.EmailLog{
		OwnerID:        "usr_1",
		InvoiceRef:     "INV-001",
		RecipientEmail: "client@example.com",
		Subject:        "Your invoice",
		Status:         model.StatusPending,
	})
	assert.NoError(t, err)
	assert.Contains(t, entry.LogID, "email_")
	assert.WithinDuration(t, time.Now(), entry.SentAt, time.Second)
}

func TestCreateEmailLog_UniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("INSERT INTO hairmanager.email_logs").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err = ds.CreateEmailLog(context.Background(), &model.EmailLog{
		OwnerID:        "usr_1",
		RecipientEmail: "client@example.com",
		Status:         model.StatusPending,
	})
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrConflict, apiErr.Code)
}

func TestUpdateEmailLogsByMessageID_MatchesStoredCanonical(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	// Incoming decorated ID, stored canonical ID: the three-way predicate
	// must receive both forms.
	mock.ExpectExec(`SET status = \$1, provider_event_id = \$2, error_message = \$3, updated_at = NOW\(\)`).
		WithArgs(model.StatusDelivered, "evt_1", sqlmock.AnyArg(), "abc123.filterdrecv-99", "abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	matched, err := ds.UpdateEmailLogsByMessageID(context.Background(),
		"abc123.filterdrecv-99", "abc123", model.StatusDelivered, "evt_1", "")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), matched)
}

func TestUpdateEmailLogsByMessageID_NoMatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec(`UPDATE hairmanager.email_logs`).
		WithArgs(model.StatusFailed, "evt_2", sqlmock.AnyArg(), "missing", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	matched, err := ds.UpdateEmailLogsByMessageID(context.Background(),
		"missing", "missing", model.StatusFailed, "evt_2", "Email bounced")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), matched)
}

func TestGetOutstandingEmailLogs(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	rows := emailLogRows().
		AddRow("email_1", "usr_1", "INV-001", "a@example.com", "Invoice", model.StatusSent,
			"abc123", nil, nil, nil, now, now).
		AddRow("email_2", "usr_1", nil, "b@example.com", "Invoice", model.StatusPending,
			"def456", nil, nil, nil, now.Add(-time.Hour), now)

	mock.ExpectQuery(`WHERE owner_id = \$1 AND status IN \('pending', 'sent'\) AND provider_message_id IS NOT NULL`).
		WithArgs("usr_1", 50).
		WillReturnRows(rows)

	logs, err := ds.GetOutstandingEmailLogs(context.Background(), "usr_1", 50)
	assert.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Equal(t, "abc123", logs[0].ProviderMessageID)
	assert.Equal(t, model.StatusPending, logs[1].Status)
}

func TestGetRecentEmailLogsByRecipient(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	since := now.Add(-7 * 24 * time.Hour)
	rows := emailLogRows().
		AddRow("email_9", "usr_2", nil, "c@example.com", "Invoice", model.StatusSent,
			nil, nil, nil, nil, now.Add(-5*time.Minute), now)

	mock.ExpectQuery(`WHERE recipient_email = \$1 AND sent_at >= \$2`).
		WithArgs("c@example.com", since, 5).
		WillReturnRows(rows)

	logs, err := ds.GetRecentEmailLogsByRecipient(context.Background(), "c@example.com", since, 5)
	assert.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, "email_9", logs[0].LogID)
}

func TestOverrideEmailLogStatus_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec(`SET status = \$1, updated_at = NOW\(\)`).
		WithArgs(model.StatusDelivered, "usr_1", "email_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	mock.ExpectQuery(`WHERE owner_id = \$1 AND log_id = \$2`).
		WithArgs("usr_1", "email_1").
		WillReturnRows(emailLogRows().
			AddRow("email_1", "usr_1", nil, "a@example.com", "Invoice", model.StatusDelivered,
				"abc123", nil, nil, nil, now, now))

	entry, err := ds.OverrideEmailLogStatus(context.Background(), "usr_1", "email_1", model.StatusDelivered)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, entry.Status)
}

func TestOverrideEmailLogStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec(`SET status = \$1, updated_at = NOW\(\)`).
		WithArgs(model.StatusSent, "usr_1", "email_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = ds.OverrideEmailLogStatus(context.Background(), "usr_1", "email_missing", model.StatusSent)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}
