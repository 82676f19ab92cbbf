package hairmanager

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/timknowlden/HairManager-sub001/config"
	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/internal/notification"
	"github.com/timknowlden/HairManager-sub001/internal/search"
	"github.com/timknowlden/HairManager-sub001/model"
)

// GetEmailLog retrieves a single email log entry scoped to the tenant.
func (h *HairManager) GetEmailLog(ctx context.Context, ownerID, logID string) (*model.EmailLog, error) {
	return h.datasource.GetEmailLogByID(ctx, ownerID, logID)
}

// GetEmailLogs lists a tenant's email log entries, newest first.
func (h *HairManager) GetEmailLogs(ctx context.Context, ownerID string, limit, offset int) ([]model.EmailLog, error) {
	return h.datasource.GetAllEmailLogs(ctx, ownerID, limit, offset)
}

// OverrideEmailLogStatus sets a log entry's status by hand. The unknown
// status is reserved for unmapped provider events and is rejected here.
func (h *HairManager) OverrideEmailLogStatus(ctx context.Context, ownerID, logID, status string) (*model.EmailLog, error) {
	if !model.IsValidOverrideStatus(status) {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Status cannot be assigned manually", nil)
	}

	entry, err := h.datasource.OverrideEmailLogStatus(ctx, ownerID, logID, status)
	if err != nil {
		return nil, err
	}

	if err := h.queueIndexData(entry.LogID, search.CollectionEmailLogs, entry); err != nil {
		notification.NotifyError(err)
	}
	return entry, nil
}

// SendInvoiceEmail fans one logical invoice send out into one pending log row
// and one queued task per recipient. The rows exist before any delivery is
// attempted so every later provider signal has something to land on.
func (h *HairManager) SendInvoiceEmail(ctx context.Context, email model.InvoiceEmail) ([]model.EmailLog, error) {
	if len(email.Recipients) == 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "At least one recipient is required", nil)
	}

	logs := make([]model.EmailLog, 0, len(email.Recipients))
	for _, recipient := range email.Recipients {
		entry, err := h.datasource.CreateEmailLog(ctx, &model.EmailLog{
			OwnerID:        email.OwnerID,
			InvoiceRef:     email.InvoiceRef,
			RecipientEmail: recipient,
			Subject:        email.Subject,
			Status:         model.StatusPending,
			AttachmentPath: email.AttachmentPath,
		})
		if err != nil {
			return nil, err
		}

		task := EmailSendPayload{
			LogID:          entry.LogID,
			OwnerID:        email.OwnerID,
			Recipient:      recipient,
			Subject:        email.Subject,
			Body:           email.Body,
			InvoiceRef:     email.InvoiceRef,
			AttachmentPath: email.AttachmentPath,
		}
		if err := h.queue.queueEmailSend(task); err != nil {
			// The row stays pending; the poll reconciler will never match it,
			// so surface the enqueue failure to the caller.
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to queue email for delivery", err)
		}
		logs = append(logs, *entry)
	}

	return logs, nil
}

// ProcessEmailSend performs one queued send: it resolves the tenant's
// provider key, posts the mail and records the outcome on the log row. It is
// the worker-side counterpart of SendInvoiceEmail.
func (h *HairManager) ProcessEmailSend(ctx context.Context, payload EmailSendPayload) error {
	cnf, err := config.Fetch()
	if err != nil {
		return err
	}

	prof, err := h.datasource.GetProfile(ctx, payload.OwnerID)
	if err != nil {
		// A transient store failure must bubble up so the task retries;
		// only a genuinely absent profile settles the row.
		if apiErr, ok := err.(apierror.APIError); !ok || apiErr.Code != apierror.ErrNotFound {
			return err
		}
		prof = &model.Profile{}
	}
	if prof.SendgridAPIKey == "" {
		updateErr := h.datasource.UpdateEmailLogSendResult(ctx, payload.LogID, model.StatusFailed, "", "No delivery provider API key configured")
		if updateErr != nil {
			return updateErr
		}
		return nil
	}

	client := NewSendgridClient(prof.SendgridAPIKey, cnf.SendGrid.ApiUrl)
	fromEmail := prof.NotificationEmail
	if fromEmail == "" {
		fromEmail = cnf.SendGrid.FromEmail
	}

	messageID, err := client.SendMail(ctx, fromEmail, payload.Recipient, payload.Subject, payload.Body, payload.AttachmentPath)
	if err != nil {
		logrus.Errorf("send failed for %s: %v", payload.LogID, err)
		if updateErr := h.datasource.UpdateEmailLogSendResult(ctx, payload.LogID, model.StatusFailed, "", err.Error()); updateErr != nil {
			return updateErr
		}
		notification.NotifyError(err)
		return nil
	}

	canonical := model.NormalizeMessageID(messageID)
	if err := h.datasource.UpdateEmailLogSendResult(ctx, payload.LogID, model.StatusSent, canonical, ""); err != nil {
		return err
	}

	entry, err := h.datasource.GetEmailLogByID(ctx, payload.OwnerID, payload.LogID)
	if err == nil {
		if indexErr := h.queueIndexData(entry.LogID, search.CollectionEmailLogs, entry); indexErr != nil {
			notification.NotifyError(indexErr)
		}
	}
	return nil
}

func (h *HairManager) queueIndexData(id, collection string, data interface{}) error {
	return h.queue.queueIndexData(id, collection, data)
}
