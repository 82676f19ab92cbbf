package hairmanager

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/internal/request"
	"github.com/timknowlden/HairManager-sub001/model"
)

// SendgridClient talks to the delivery provider's REST API on behalf of one
// tenant. Each tenant configures its own API key on its profile.
type SendgridClient struct {
	APIKey  string
	BaseURL string
}

// SendgridMessage is one entry of the provider's message search response.
// The events list is the message's delivery history; it is empty for feed
// entries the provider has not expanded.
type SendgridMessage struct {
	MsgID         string                 `json:"msg_id"`
	ToEmail       string                 `json:"to_email"`
	Subject       string                 `json:"subject"`
	Status        string                 `json:"status"`
	LastEventTime string                 `json:"last_event_time"`
	OpensCount    float64                `json:"opens_count"`
	Events        []SendgridMessageEvent `json:"events,omitempty"`
}

// SendgridMessageEvent is one entry of a message's embedded delivery
// history, newest first.
type SendgridMessageEvent struct {
	MsgID     string `json:"msg_id"`
	EventName string `json:"event_name"`
	SgEventID string `json:"sg_event_id"`
	Reason    string `json:"reason"`
	Processed string `json:"processed"`
}

type messageSearchResponse struct {
	Messages []SendgridMessage `json:"messages"`
}

type scopesResponse struct {
	Scopes []string `json:"scopes"`
}

// NewSendgridClient builds a client for a tenant's API key. An empty base URL
// falls back to the configured provider endpoint.
func NewSendgridClient(apiKey, baseURL string) *SendgridClient {
	return &SendgridClient{APIKey: apiKey, BaseURL: baseURL}
}

// VerifyKey probes the provider's scopes endpoint to check that the API key
// is accepted before a poll run burns through per-message lookups.
func (s *SendgridClient) VerifyKey(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v3/scopes", s.BaseURL), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", request.BearerAuth(s.APIKey))

	var scopes scopesResponse
	resp, err := request.Call(req, &scopes)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Delivery provider is unreachable", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apierror.NewAPIError(apierror.ErrUnauthorized, "Delivery provider rejected the configured API key", nil)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apierror.NewAPIError(apierror.ErrInternalServer, fmt.Sprintf("Delivery provider returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// SearchMessagesByRecipient queries the provider's activity feed for recent
// messages to one address. Transient failures are retried with exponential
// backoff before the caller gives up on the row.
func (s *SendgridClient) SearchMessagesByRecipient(ctx context.Context, recipient string) ([]SendgridMessage, error) {
	query := url.QueryEscape(fmt.Sprintf(`to_email="%s"`, recipient))
	endpoint := fmt.Sprintf("%s/v3/messages?query=%s&limit=10", s.BaseURL, query)

	var messages []SendgridMessage
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", request.BearerAuth(s.APIKey))

		var searchResp messageSearchResponse
		resp, err := request.Call(req, &searchResp)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return backoff.Permanent(apierror.NewAPIError(apierror.ErrUnauthorized, "Delivery provider rejected the configured API key", nil))
		}
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("provider returned status %d", resp.StatusCode)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return backoff.Permanent(fmt.Errorf("provider returned status %d", resp.StatusCode))
		}
		messages = searchResp.Messages
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return messages, nil
}

// StatusForMessage maps the provider's activity-feed status vocabulary onto
// the internal status set. An opened message reports as delivered in the
// feed, so open counts take precedence.
func StatusForMessage(msg SendgridMessage) string {
	if msg.OpensCount > 0 {
		return model.StatusOpened
	}
	switch msg.Status {
	case "delivered":
		return model.StatusDelivered
	case "not_delivered", "bounced", "dropped":
		return model.StatusFailed
	case "processed":
		return model.StatusSent
	default:
		return model.StatusUnknown
	}
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Attachments      []mailAttachment  `json:"attachments,omitempty"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailAttachment struct {
	Content     string `json:"content"`
	Filename    string `json:"filename"`
	Type        string `json:"type"`
	Disposition string `json:"disposition"`
}

// SendMail posts one email to the provider and returns the message ID the
// provider acknowledges it with. The acknowledged ID is decorated differently
// from webhook-time IDs, which is why only its canonical prefix is stored.
func (s *SendgridClient) SendMail(ctx context.Context, fromEmail, toEmail, subject, body, attachmentPath string) (string, error) {
	payload := mailSendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: toEmail}}}},
		From:             emailAddress{Email: fromEmail},
		Subject:          subject,
		Content:          []mailContent{{Type: "text/html", Value: body}},
	}

	if attachmentPath != "" {
		content, err := os.ReadFile(attachmentPath)
		if err != nil {
			return "", fmt.Errorf("reading attachment %s: %w", attachmentPath, err)
		}
		payload.Attachments = []mailAttachment{{
			Content:     base64.StdEncoding.EncodeToString(content),
			Filename:    filepath.Base(attachmentPath),
			Type:        "application/pdf",
			Disposition: "attachment",
		}}
	}

	reqBody, err := request.ToJsonReq(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/v3/mail/send", s.BaseURL), reqBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", request.BearerAuth(s.APIKey))
	req.Header.Set("Content-Type", "application/json")

	// The send endpoint acknowledges with an empty 202 body, so the JSON
	// response helper does not apply here.
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", apierror.NewAPIError(apierror.ErrUnauthorized, "Delivery provider rejected the configured API key", nil)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("provider rejected send with status %d", resp.StatusCode)
	}

	return resp.Header.Get("X-Message-Id"), nil
}
