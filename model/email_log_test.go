package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMessageID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"strips routing suffix", "abc123.filterdrecv-1234-xyz", "abc123"},
		{"keeps only first segment", "abc123.recv.0", "abc123"},
		{"undecorated id unchanged", "abc123", "abc123"},
		{"empty id", "", ""},
		{"leading delimiter", ".suffix", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMessageID(tt.id))
		})
	}
}

func TestNormalizeMessageIDIdempotent(t *testing.T) {
	ids := []string{"abc123.filterdrecv-1234", "plain", "a.b.c", ""}
	for _, id := range ids {
		once := NormalizeMessageID(id)
		assert.Equal(t, once, NormalizeMessageID(once))
	}
}

func TestStatusForEvent(t *testing.T) {
	tests := []struct {
		event string
		want  string
	}{
		{"delivered", StatusDelivered},
		{"bounce", StatusFailed},
		{"dropped", StatusFailed},
		{"deferred", StatusFailed},
		{"open", StatusOpened},
		{"click", StatusOpened},
		{"processed", StatusSent},
		{"Delivered", StatusDelivered},
		{"spamreport", StatusUnknown},
		{"", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForEvent(tt.event))
		})
	}
}

func TestReasonForEvent(t *testing.T) {
	assert.Equal(t, "550 mailbox unavailable", ReasonForEvent("bounce", "550 mailbox unavailable"))
	assert.Equal(t, "Email bounced", ReasonForEvent("bounce", ""))
	assert.Equal(t, "Email dropped", ReasonForEvent("dropped", ""))
	assert.Equal(t, "", ReasonForEvent("delivered", ""))
	assert.Equal(t, "", ReasonForEvent("deferred", ""))
}

func TestMessageIDMatches(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		candidate string
		want      bool
	}{
		{"exact match", "abc123", "abc123", true},
		{"decorated candidate", "abc123", "abc123.filterdrecv-99", true},
		{"canonical of candidate", "abc123", "abc123.a.b", true},
		{"different id", "abc123", "xyz789", false},
		{"prefix without delimiter", "abc", "abc123", false},
		{"empty stored", "", "abc123", false},
		{"empty candidate", "abc123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MessageIDMatches(tt.stored, tt.candidate))
		})
	}
}

func TestIsValidOverrideStatus(t *testing.T) {
	for _, status := range []string{StatusPending, StatusSent, StatusDelivered, StatusFailed, StatusOpened} {
		assert.True(t, IsValidOverrideStatus(status), status)
	}
	assert.False(t, IsValidOverrideStatus(StatusUnknown))
	assert.False(t, IsValidOverrideStatus("bogus"))
	assert.False(t, IsValidOverrideStatus(""))
}

func TestGenerateUUIDWithSuffix(t *testing.T) {
	id := GenerateUUIDWithSuffix("email")
	assert.Contains(t, id, "email_")
	assert.NotEqual(t, id, GenerateUUIDWithSuffix("email"))
}
