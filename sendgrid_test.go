package hairmanager

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

func TestVerifyKey(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	client := NewSendgridClient("SG.key", "https://api.sendgrid.com")

	httpmock.RegisterResponder("GET", "https://api.sendgrid.com/v3/scopes",
		httpmock.NewStringResponder(http.StatusOK, `{"scopes":["mail.send"]}`))

	assert.NoError(t, client.VerifyKey(context.Background()))
}

func TestVerifyKey_Rejected(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	client := NewSendgridClient("SG.bad", "https://api.sendgrid.com")

	httpmock.RegisterResponder("GET", "https://api.sendgrid.com/v3/scopes",
		httpmock.NewStringResponder(http.StatusForbidden, `{"errors":[{"message":"access forbidden"}]}`))

	err := client.VerifyKey(context.Background())
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrUnauthorized, apiErr.Code)
}

func TestVerifyKey_RejectedWithEmptyBody(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	client := NewSendgridClient("SG.bad", "https://api.sendgrid.com")

	// The provider sends some rejections with no body at all; the status
	// code alone must classify them.
	httpmock.RegisterResponder("GET", "https://api.sendgrid.com/v3/scopes",
		httpmock.NewStringResponder(http.StatusUnauthorized, ""))

	err := client.VerifyKey(context.Background())
	assert.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrUnauthorized, apiErr.Code)
}

func TestSearchMessagesByRecipient(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	client := NewSendgridClient("SG.key", "https://api.sendgrid.com")

	httpmock.RegisterResponder("GET", `=~^https://api\.sendgrid\.com/v3/messages`,
		httpmock.NewStringResponder(http.StatusOK,
			`{"messages":[{"msg_id":"m1.recv-0","to_email":"a@example.com","status":"delivered","opens_count":2}]}`))

	messages, err := client.SearchMessagesByRecipient(context.Background(), "a@example.com")
	assert.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Equal(t, "m1.recv-0", messages[0].MsgID)
	assert.Equal(t, "delivered", messages[0].Status)
}

func TestSearchMessagesByRecipient_RetriesTransientFailure(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	client := NewSendgridClient("SG.key", "https://api.sendgrid.com")

	calls := 0
	httpmock.RegisterResponder("GET", `=~^https://api\.sendgrid\.com/v3/messages`,
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return httpmock.NewStringResponse(http.StatusServiceUnavailable, `{}`), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"messages":[]}`), nil
		})

	messages, err := client.SearchMessagesByRecipient(context.Background(), "a@example.com")
	assert.NoError(t, err)
	assert.Empty(t, messages)
	assert.Equal(t, 2, calls)
}

func TestSendMail_ReturnsMessageID(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	client := NewSendgridClient("SG.key", "https://api.sendgrid.com")

	response := httpmock.NewStringResponse(http.StatusAccepted, "")
	response.Header = http.Header{}
	response.Header.Set("X-Message-Id", "abc123")
	httpmock.RegisterResponder("POST", "https://api.sendgrid.com/v3/mail/send",
		httpmock.ResponderFromResponse(response))

	messageID, err := client.SendMail(context.Background(),
		"billing@example.com", "client@example.com", "Your invoice", "<p>Hi</p>", "")
	assert.NoError(t, err)
	assert.Equal(t, "abc123", messageID)
}

func TestStatusForMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  SendgridMessage
		want string
	}{
		{"delivered", SendgridMessage{Status: "delivered"}, model.StatusDelivered},
		{"not delivered", SendgridMessage{Status: "not_delivered"}, model.StatusFailed},
		{"processed", SendgridMessage{Status: "processed"}, model.StatusSent},
		{"opened wins over delivered", SendgridMessage{Status: "delivered", OpensCount: 1}, model.StatusOpened},
		{"unrecognized", SendgridMessage{Status: "quarantined"}, model.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForMessage(tt.msg))
		})
	}
}
