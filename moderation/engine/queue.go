package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arbiter-social/arbiter/moderation/modstore"
)

const (
	DecisionApprove  = "approve"
	DecisionReject   = "reject"
	DecisionEscalate = "escalate"
)

// reviewed is a terminal status; no decision re-opens an item
var ErrItemReviewed = errors.New("queue item already reviewed")

// ListQueue returns review-queue items matching the filters, sorted by
// severity descending then creation time descending.
func (eng *Engine) ListQueue(ctx context.Context, f modstore.ItemFilters) ([]*modstore.QueueItem, error) {
	return eng.Store.ListItems(ctx, f)
}

// ProcessDecision applies a human reviewer's decision to a queue item,
// atomically updating the item's status and appending the audit action.
// Returns false, with nothing mutated, when the queue id is unknown, and
// ErrItemReviewed when the item has already been reviewed.
//
// A reject without a reason is a caller-side contract violation enforced at
// the API boundary, not here.
func (eng *Engine) ProcessDecision(ctx context.Context, queueID uint, decision, reviewerID, reason string) (bool, error) {
	var status, actionKind string
	switch decision {
	case DecisionApprove:
		status, actionKind = modstore.StatusReviewed, modstore.ActionApproved
	case DecisionReject:
		status, actionKind = modstore.StatusReviewed, modstore.ActionBlocked
	case DecisionEscalate:
		status, actionKind = modstore.StatusEscalated, modstore.ActionFlagged
	default:
		return false, fmt.Errorf("unknown review decision: %s", decision)
	}

	eng.writeMu.Lock()
	defer eng.writeMu.Unlock()

	item, err := eng.Store.GetItem(ctx, queueID)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, nil
	}
	if item.Status == modstore.StatusReviewed {
		return false, ErrItemReviewed
	}

	action := &modstore.ModAction{
		ContentID:   item.ContentID,
		ContentType: item.ContentType,
		Action:      actionKind,
		Automated:   false,
		Severity:    item.Severity,
		ReviewerID:  reviewerID,
		Reason:      reason,
		Tags:        item.Tags,
	}
	found, err := eng.Store.ResolveItem(ctx, queueID, status, action)
	if err != nil || !found {
		return found, err
	}

	eng.incrementActionCounters(ctx, action)
	reviewDecisionCount.WithLabelValues(decision).Inc()
	eng.Logger.Info("review decision processed",
		"queueId", queueID, "decision", decision, "reviewerId", reviewerID, "contentId", item.ContentID)
	return true, nil
}

// CleanupQueue removes reviewed items older than maxAgeDays and returns how
// many were removed. Invoked by an external scheduler; there is no implicit
// timer in the engine.
func (eng *Engine) CleanupQueue(ctx context.Context, maxAgeDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)

	eng.writeMu.Lock()
	defer eng.writeMu.Unlock()
	removed, err := eng.Store.CleanupReviewed(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	queueCleanupCount.Add(float64(removed))
	if removed > 0 {
		eng.Logger.Info("queue cleanup sweep", "removed", removed, "maxAgeDays", maxAgeDays)
	}
	return removed, nil
}
