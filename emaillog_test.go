package hairmanager

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

func TestProcessEmailSend_Success(t *testing.T) {
	service, mock := newTestService(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	response := httpmock.NewStringResponse(http.StatusAccepted, "")
	response.Header = http.Header{}
	response.Header.Set("X-Message-Id", "abc123.filterdrecv-7")
	httpmock.RegisterResponder("POST", "https://api.sendgrid.com/v3/mail/send",
		httpmock.ResponderFromResponse(response))

	mock.ExpectQuery(`FROM hairmanager.profiles WHERE owner_id = \$1`).
		WithArgs("usr_1").
		WillReturnRows(profileRow("SG.goodkey"))

	// The stored ID must be the canonical prefix, not the decorated
	// acknowledgment ID.
	mock.ExpectExec(`SET status = \$1, provider_message_id = \$2, error_message = \$3, updated_at = NOW\(\)`).
		WithArgs(model.StatusSent, "abc123", sqlmock.AnyArg(), "email_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	mock.ExpectQuery(`WHERE owner_id = \$1 AND log_id = \$2`).
		WithArgs("usr_1", "email_1").
		WillReturnRows(sqlmock.NewRows(emailLogColumnsForTest()).
			AddRow("email_1", "usr_1", nil, "client@example.com", "Invoice", model.StatusSent,
				"abc123", nil, nil, nil, now, now))

	err := service.ProcessEmailSend(context.Background(), EmailSendPayload{
		LogID:     "email_1",
		OwnerID:   "usr_1",
		Recipient: "client@example.com",
		Subject:   "Invoice",
		Body:      "<p>Hi</p>",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessEmailSend_NoAPIKeyMarksFailed(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery(`FROM hairmanager.profiles WHERE owner_id = \$1`).
		WithArgs("usr_1").
		WillReturnRows(profileRow(""))

	mock.ExpectExec(`SET status = \$1, provider_message_id = \$2, error_message = \$3, updated_at = NOW\(\)`).
		WithArgs(model.StatusFailed, sqlmock.AnyArg(), "No delivery provider API key configured", "email_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := service.ProcessEmailSend(context.Background(), EmailSendPayload{
		LogID:     "email_1",
		OwnerID:   "usr_1",
		Recipient: "client@example.com",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessEmailSend_TransientProfileErrorIsReturned(t *testing.T) {
	service, mock := newTestService(t)

	// The row must stay pending so the queued task can retry once the store
	// recovers.
	mock.ExpectQuery(`FROM hairmanager.profiles WHERE owner_id = \$1`).
		WithArgs("usr_1").
		WillReturnError(errors.New("connection reset"))

	err := service.ProcessEmailSend(context.Background(), EmailSendPayload{
		LogID:     "email_1",
		OwnerID:   "usr_1",
		Recipient: "client@example.com",
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessEmailSend_MissingProfileMarksFailed(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectQuery(`FROM hairmanager.profiles WHERE owner_id = \$1`).
		WithArgs("usr_1").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectExec(`SET status = \$1, provider_message_id = \$2, error_message = \$3, updated_at = NOW\(\)`).
		WithArgs(model.StatusFailed, sqlmock.AnyArg(), "No delivery provider API key configured", "email_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := service.ProcessEmailSend(context.Background(), EmailSendPayload{
		LogID:     "email_1",
		OwnerID:   "usr_1",
		Recipient: "client@example.com",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessEmailSend_ProviderErrorMarksFailed(t *testing.T) {
	service, mock := newTestService(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://api.sendgrid.com/v3/mail/send",
		httpmock.NewStringResponder(http.StatusBadRequest, `{"errors":[{"message":"bad request"}]}`))

	mock.ExpectQuery(`FROM hairmanager.profiles WHERE owner_id = \$1`).
		WithArgs("usr_1").
		WillReturnRows(profileRow("SG.goodkey"))

	mock.ExpectExec(`SET status = \$1, provider_message_id = \$2, error_message = \$3, updated_at = NOW\(\)`).
		WithArgs(model.StatusFailed, sqlmock.AnyArg(), sqlmock.AnyArg(), "email_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := service.ProcessEmailSend(context.Background(), EmailSendPayload{
		LogID:     "email_1",
		OwnerID:   "usr_1",
		Recipient: "client@example.com",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideEmailLogStatus_RejectsUnknown(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.OverrideEmailLogStatus(context.Background(), "usr_1", "email_1", model.StatusUnknown)
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)
}

func TestOverrideEmailLogStatus_Valid(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectExec(`SET status = \$1, updated_at = NOW\(\)`).
		WithArgs(model.StatusDelivered, "usr_1", "email_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	mock.ExpectQuery(`WHERE owner_id = \$1 AND log_id = \$2`).
		WithArgs("usr_1", "email_1").
		WillReturnRows(sqlmock.NewRows(emailLogColumnsForTest()).
			AddRow("email_1", "usr_1", nil, "client@example.com", "Invoice", model.StatusDelivered,
				"abc123", nil, nil, nil, now, now))

	entry, err := service.OverrideEmailLogStatus(context.Background(), "usr_1", "email_1", model.StatusDelivered)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, entry.Status)
}
