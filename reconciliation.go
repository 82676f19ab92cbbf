package hairmanager

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/timknowlden/HairManager-sub001/config"
	"github.com/timknowlden/HairManager-sub001/internal/apierror"
	"github.com/timknowlden/HairManager-sub001/model"
)

// pollBatchSize caps how many outstanding rows one refresh run will check
// against the provider.
const pollBatchSize = 50

// PollResult summarizes one refresh run.
type PollResult struct {
	Checked int64 `json:"checked"`
	Updated int64 `json:"updated"`
}

// RefreshDeliveryStatus actively polls the provider for the tenant's
// outstanding sends. It complements the webhook path: webhooks can be lost,
// and a poll closes the gap for rows stuck in pending or sent.
func (h *HairManager) RefreshDeliveryStatus(ctx context.Context, ownerID string) (*PollResult, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	prof, err := h.datasource.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if prof.SendgridAPIKey == "" {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "No delivery provider API key configured", nil)
	}

	client := NewSendgridClient(prof.SendgridAPIKey, cnf.SendGrid.ApiUrl)
	if err := client.VerifyKey(ctx); err != nil {
		return nil, err
	}

	outstanding, err := h.datasource.GetOutstandingEmailLogs(ctx, ownerID, pollBatchSize)
	if err != nil {
		return nil, err
	}

	var updated int64
	var wg sync.WaitGroup
	for _, entry := range outstanding {
		wg.Add(1)
		go func(entry model.EmailLog) {
			defer wg.Done()
			changed, err := h.pollEmailLog(ctx, client, entry)
			if err != nil {
				logrus.Errorf("poll failed for %s: %v", entry.LogID, err)
				return
			}
			if changed {
				atomic.AddInt64(&updated, 1)
			}
		}(entry)
	}
	wg.Wait()

	return &PollResult{Checked: int64(len(outstanding)), Updated: atomic.LoadInt64(&updated)}, nil
}

// pollEmailLog checks one row against the provider's activity feed and
// records any status change. A row whose message cannot be found is left
// untouched for the next run.
func (h *HairManager) pollEmailLog(ctx context.Context, client *SendgridClient, entry model.EmailLog) (bool, error) {
	messages, err := client.SearchMessagesByRecipient(ctx, entry.RecipientEmail)
	if err != nil {
		return false, err
	}

	msg := bestMessageMatch(entry.ProviderMessageID, messages)
	if msg == nil {
		return false, nil
	}

	// The newest embedded event carries the most precise outcome; a feed
	// entry without an expanded history only offers its summary status.
	status, eventID, errorMessage := "", "", ""
	if len(msg.Events) > 0 {
		first := msg.Events[0]
		status = model.StatusForEvent(first.EventName)
		eventID = first.SgEventID
		errorMessage = model.ReasonForEvent(first.EventName, first.Reason)
	} else {
		status = StatusForMessage(*msg)
		if status == model.StatusFailed {
			errorMessage = "Delivery failed"
		}
	}

	if status == model.StatusUnknown || status == entry.Status {
		return false, nil
	}
	if err := h.datasource.UpdateEmailLogDelivery(ctx, entry.LogID, status, eventID, errorMessage); err != nil {
		return false, err
	}
	return true, nil
}

// bestMessageMatch picks the feed entry that refers to the stored message
// ID. Exact matches beat canonical matches beat prefix matches; when no
// message-level ID agrees, the embedded event histories are searched with
// the same rules.
func bestMessageMatch(storedID string, messages []SendgridMessage) *SendgridMessage {
	if storedID == "" {
		return nil
	}
	canonical := model.NormalizeMessageID(storedID)

	rules := []func(string) bool{
		func(id string) bool { return id == storedID },
		func(id string) bool { return id == canonical },
		func(id string) bool { return model.NormalizeMessageID(id) == canonical },
		func(id string) bool { return strings.HasPrefix(id, canonical+".") },
	}
	for _, rule := range rules {
		for i := range messages {
			if rule(messages[i].MsgID) {
				return &messages[i]
			}
		}
	}

	for i := range messages {
		for _, event := range messages[i].Events {
			if model.MessageIDMatches(canonical, event.MsgID) {
				return &messages[i]
			}
		}
	}
	return nil
}
