package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	hairmanager "github.com/timknowlden/HairManager-sub001"
	model2 "github.com/timknowlden/HairManager-sub001/api/model"
	"github.com/timknowlden/HairManager-sub001/config"
	"github.com/timknowlden/HairManager-sub001/database"
	"github.com/timknowlden/HairManager-sub001/internal/cache"
	"github.com/timknowlden/HairManager-sub001/internal/request"
	"github.com/timknowlden/HairManager-sub001/model"
)

type TestRequest struct {
	Payload  io.Reader
	Router   *gin.Engine
	Response interface{}
	Method   string
	Route    string
	Auth     string
	Header   map[string]string
}

func SetUpTestRequest(s TestRequest) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(s.Method, s.Route, s.Payload)
	for key, value := range s.Header {
		req.Header.Set(key, value)
	}
	if s.Auth != "" {
		req.Header.Set("Authorization", "Bearer "+s.Auth)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)

	err := json.NewDecoder(resp.Body).Decode(&s.Response)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func setupRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, error) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, err
	}
	t.Cleanup(mr.Close)

	config.MockConfig(&config.Configuration{
		Redis:    config.RedisConfig{Dns: mr.Addr()},
		SendGrid: config.SendGridConfig{ApiUrl: "https://api.sendgrid.com", FromEmail: "billing@example.com"},
		Queue:    config.QueueConfig{EmailSendQueue: "email_send", IndexQueue: "index_data", MaxRetryAttempts: 3},
		Server:   config.ServerConfig{JWTSecret: "test-secret"},
	})

	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}
	newCache, err := cache.NewCache()
	if err != nil {
		return nil, nil, err
	}
	service, err := hairmanager.NewHairManager(&database.Datasource{Conn: db, Cache: newCache})
	if err != nil {
		return nil, nil, err
	}
	router := NewAPI(service).Router()

	return router, mock, nil
}

func signTestToken(t *testing.T, ownerID string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   ownerID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func emailLogTestColumns() []string {
	return []string{
		"log_id", "owner_id", "invoice_ref", "recipient_email", "subject", "status",
		"provider_message_id", "provider_event_id", "error_message", "attachment_path",
		"sent_at", "updated_at",
	}
}

func TestDeliveryWebhook(t *testing.T) {
	router, mock, err := setupRouter(t)
	if err != nil {
		t.Fatalf("Failed to setup router: %v", err)
	}

	mock.ExpectExec(`SET status = \$1, provider_event_id = \$2, error_message = \$3, updated_at = NOW\(\)`).
		WithArgs(model.StatusDelivered, "evt_1", sqlmock.AnyArg(), "abc123.filterdrecv-0", "abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	events := []model.DeliveryEvent{
		{
			Email:       gofakeit.Email(),
			Event:       "delivered",
			SgEventID:   "evt_1",
			SgMessageID: "abc123.filterdrecv-0",
		},
	}
	payloadBytes, _ := request.ToJsonReq(&events)

	var response hairmanager.IngestResult
	testRequest := TestRequest{
		Payload:  payloadBytes,
		Response: &response,
		Method:   "POST",
		Route:    "/webhooks/sendgrid",
		Router:   router,
	}

	resp, err := SetUpTestRequest(testRequest)
	if err != nil {
		t.Error(err)
		return
	}
	// The webhook acknowledges even when nothing matches; here one row did.
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, response.Received)
	assert.Equal(t, 1, response.Matched)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryWebhook_MalformedBody(t *testing.T) {
	router, _, err := setupRouter(t)
	if err != nil {
		t.Fatalf("Failed to setup router: %v", err)
	}

	var response map[string]interface{}
	testRequest := TestRequest{
		Payload:  strings.NewReader(`{"not":"an array"}`),
		Response: &response,
		Method:   "POST",
		Route:    "/webhooks/sendgrid",
		Router:   router,
	}

	resp, err := SetUpTestRequest(testRequest)
	if err != nil {
		t.Error(err)
		return
	}
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestOverrideEmailLogStatusEndpoint(t *testing.T) {
	router, mock, err := setupRouter(t)
	if err != nil {
		t.Fatalf("Failed to setup router: %v", err)
	}
	token := signTestToken(t, "usr_1")

	tests := []struct {
		name         string
		payload      model2.OverrideStatusRequest
		expectedCode int
	}{
		{
			name:         "Valid Status",
			payload:      model2.OverrideStatusRequest{Status: model.StatusDelivered},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Unknown Is Reserved",
			payload:      model2.OverrideStatusRequest{Status: model.StatusUnknown},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Bogus Status",
			payload:      model2.OverrideStatusRequest{Status: "quarantined"},
			expectedCode: http.StatusBadRequest,
		},
	}

	now := time.Now()
	mock.ExpectExec(`SET status = \$1, updated_at = NOW\(\)`).
		WithArgs(model.StatusDelivered, "usr_1", "email_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`WHERE owner_id = \$1 AND log_id = \$2`).
		WithArgs("usr_1", "email_1").
		WillReturnRows(sqlmock.NewRows(emailLogTestColumns()).
			AddRow("email_1", "usr_1", nil, "client@example.com", "Invoice", model.StatusDelivered,
				"abc123", nil, nil, nil, now, now))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payloadBytes, _ := request.ToJsonReq(&tt.payload)
			var response map[string]interface{}
			testRequest := TestRequest{
				Payload:  payloadBytes,
				Response: &response,
				Method:   "PUT",
				Route:    "/email-logs/email_1/status",
				Auth:     token,
				Router:   router,
			}

			resp, err := SetUpTestRequest(testRequest)
			if err != nil {
				t.Error(err)
				return
			}
			assert.Equal(t, tt.expectedCode, resp.Code)

			if tt.expectedCode == http.StatusOK {
				assert.Equal(t, model.StatusDelivered, response["status"])
			}
		})
	}
}

func TestGetAllEmailLogsEndpoint(t *testing.T) {
	router, mock, err := setupRouter(t)
	if err != nil {
		t.Fatalf("Failed to setup router: %v", err)
	}
	token := signTestToken(t, "usr_1")

	now := time.Now()
	mock.ExpectQuery(`WHERE owner_id = \$1`).
		WithArgs("usr_1", 10, 0).
		WillReturnRows(sqlmock.NewRows(emailLogTestColumns()).
			AddRow("email_1", "usr_1", "INV-001", gofakeit.Email(), "Invoice", model.StatusSent,
				"abc123", nil, nil, nil, now, now).
			AddRow("email_2", "usr_1", nil, gofakeit.Email(), "Invoice", model.StatusPending,
				nil, nil, nil, nil, now.Add(-time.Hour), now))

	var response []model.EmailLog
	testRequest := TestRequest{
		Payload:  nil,
		Response: &response,
		Method:   "GET",
		Route:    fmt.Sprintf("/email-logs?limit=%d", 10),
		Auth:     token,
		Router:   router,
	}

	resp, err := SetUpTestRequest(testRequest)
	if err != nil {
		t.Error(err)
		return
	}
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, response, 2)
	assert.Equal(t, "email_1", response[0].LogID)
}

func TestEmailLogsRequireAuth(t *testing.T) {
	router, _, err := setupRouter(t)
	if err != nil {
		t.Fatalf("Failed to setup router: %v", err)
	}

	var response map[string]interface{}
	testRequest := TestRequest{
		Payload:  nil,
		Response: &response,
		Method:   "GET",
		Route:    "/email-logs",
		Router:   router,
	}

	resp, err := SetUpTestRequest(testRequest)
	if err != nil {
		t.Error(err)
		return
	}
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
