package hairmanager

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/timknowlden/HairManager-sub001/model"
)

const (
	// fallbackLookback bounds how far back a recipient-based match may reach
	// when an event arrives without a usable message ID.
	fallbackLookback = 7 * 24 * time.Hour

	// fallbackFreshness is how recent the newest candidate row must be for a
	// recipient-based match to be trusted.
	fallbackFreshness = 30 * time.Minute

	fallbackCandidates = 5
)

// IngestResult summarizes one webhook batch.
type IngestResult struct {
	Received  int `json:"received"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

// IngestDeliveryEvents applies a webhook batch to the email log. Events are
// matched by provider message ID first and by recipient recency second; an
// event that matches nothing is dropped, never an error. One bad event never
// fails the batch.
func (h *HairManager) IngestDeliveryEvents(ctx context.Context, events []model.DeliveryEvent) IngestResult {
	result := IngestResult{Received: len(events)}

	for _, event := range events {
		matched, err := h.applyDeliveryEvent(ctx, event)
		if err != nil {
			logrus.Errorf("delivery event %s failed: %v", event.SgEventID, err)
			result.Unmatched++
			continue
		}
		if matched {
			result.Matched++
		} else {
			result.Unmatched++
		}
	}

	return result
}

// applyDeliveryEvent matches one event against the log and writes the mapped
// status. The webhook carries no tenant identity, so matching runs across all
// tenants; the message ID is globally unique at the provider.
func (h *HairManager) applyDeliveryEvent(ctx context.Context, event model.DeliveryEvent) (bool, error) {
	if event.SgMessageID == "" {
		logrus.Infof("delivery event %s has no message id, skipping", event.SgEventID)
		return false, nil
	}

	status := model.StatusForEvent(event.Event)
	reason := model.ReasonForEvent(event.Event, event.Reason)

	canonical := model.NormalizeMessageID(event.SgMessageID)
	affected, err := h.datasource.UpdateEmailLogsByMessageID(ctx, event.SgMessageID, canonical, status, event.SgEventID, reason)
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	return h.applyFallbackMatch(ctx, event, status, reason)
}

// applyFallbackMatch attributes an event to the most recent send to the same
// recipient. The newest candidate must be fresh; a stale newest row means the
// event belongs to a send this system never made.
func (h *HairManager) applyFallbackMatch(ctx context.Context, event model.DeliveryEvent, status, reason string) (bool, error) {
	if event.Email == "" {
		return false, nil
	}

	since := time.Now().Add(-fallbackLookback)
	candidates, err := h.datasource.GetRecentEmailLogsByRecipient(ctx, event.Email, since, fallbackCandidates)
	if err != nil {
		return false, err
	}
	if len(candidates) == 0 {
		return false, nil
	}

	newest := candidates[0]
	if time.Since(newest.SentAt) > fallbackFreshness {
		return false, nil
	}

	if err := h.datasource.UpdateEmailLogDelivery(ctx, newest.LogID, status, event.SgEventID, reason); err != nil {
		return false, err
	}
	return true, nil
}
