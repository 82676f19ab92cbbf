package model

import (
	"strings"
	"time"
)

// Email delivery statuses. The provider is the source of truth for every
// status after the initial sent/failed written by the send path.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
	StatusOpened    = "opened"
	StatusUnknown   = "unknown"
)

// messageIDDelimiter separates the stable message identifier from the
// routing suffix the provider appends on delivery events.
const messageIDDelimiter = "."

// EmailLog represents one send attempt to one recipient. Multi-recipient
// sends are fanned out into one row per recipient.
type EmailLog struct {
	LogID             string    `json:"log_id"`
	OwnerID           string    `json:"owner_id"`
	InvoiceRef        string    `json:"invoice_ref,omitempty"`
	RecipientEmail    string    `json:"recipient_email"`
	Subject           string    `json:"subject"`
	Status            string    `json:"status"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	ProviderEventID   string    `json:"provider_event_id,omitempty"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	AttachmentPath    string    `json:"attachment_path,omitempty"`
	SentAt            time.Time `json:"sent_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DeliveryEvent is one entry of the JSON array the provider posts to the
// webhook endpoint.
type DeliveryEvent struct {
	Email       string `json:"email"`
	Timestamp   int64  `json:"timestamp"`
	Event       string `json:"event"`
	SgEventID   string `json:"sg_event_id"`
	SgMessageID string `json:"sg_message_id"`
	Reason      string `json:"reason"`
}

// InvoiceEmail describes one logical invoice send before fan-out.
type InvoiceEmail struct {
	OwnerID        string   `json:"owner_id"`
	InvoiceRef     string   `json:"invoice_ref"`
	Recipients     []string `json:"recipients"`
	Subject        string   `json:"subject"`
	Body           string   `json:"body"`
	AttachmentPath string   `json:"attachment_path,omitempty"`
}

// NormalizeMessageID strips the provider's routing suffix from a message
// identifier. The provider decorates the same logical message differently at
// send-acknowledgment time versus webhook time; only the prefix before the
// first delimiter is stable, so it is the join key stored and compared
// everywhere.
func NormalizeMessageID(id string) string {
	if id == "" {
		return ""
	}
	if i := strings.Index(id, messageIDDelimiter); i >= 0 {
		return id[:i]
	}
	return id
}

// StatusForEvent maps the provider's event-type vocabulary onto the closed
// status set. Unrecognized event types map to unknown, never to an error.
func StatusForEvent(eventType string) string {
	switch strings.ToLower(eventType) {
	case "delivered":
		return StatusDelivered
	case "bounce", "dropped", "deferred":
		return StatusFailed
	case "open", "click":
		return StatusOpened
	case "processed":
		return StatusSent
	default:
		return StatusUnknown
	}
}

// ReasonForEvent resolves the human-readable failure reason for an event.
// An explicit provider reason wins; otherwise a generic reason is derived
// from the event type for the failure events that commonly arrive without one.
func ReasonForEvent(eventType, reason string) string {
	if reason != "" {
		return reason
	}
	switch strings.ToLower(eventType) {
	case "bounce":
		return "Email bounced"
	case "dropped":
		return "Email dropped"
	default:
		return ""
	}
}

// MessageIDMatches reports whether a provider-side candidate identifier
// refers to the same logical message as a stored identifier. The stored
// value is canonical; the candidate may be full or decorated.
func MessageIDMatches(stored, candidate string) bool {
	if stored == "" || candidate == "" {
		return false
	}
	if candidate == stored {
		return true
	}
	if NormalizeMessageID(candidate) == stored {
		return true
	}
	return strings.HasPrefix(candidate, stored+messageIDDelimiter)
}

// IsValidOverrideStatus reports whether a status may be set through the
// manual override endpoint. unknown is reserved for unmapped provider events
// and cannot be assigned by hand.
func IsValidOverrideStatus(status string) bool {
	switch status {
	case StatusPending, StatusSent, StatusDelivered, StatusFailed, StatusOpened:
		return true
	}
	return false
}
