// Package modstore persists the moderation review queue and the append-only
// audit log of moderation actions.
//
// Two implementations are provided: MemStore for tests and small
// deployments, and GormStore for a durable sqlite/postgres backing. The
// status-flip-plus-audit-append of a review decision is atomic in both: one
// mutex section in MemStore, one transaction in GormStore.
package modstore

import (
	"context"
	"time"

	"github.com/arbiter-social/arbiter/moderation/analyzer"
)

const (
	StatusPending   = "pending"
	StatusEscalated = "escalated"
	StatusReviewed  = "reviewed"
)

const (
	ActionApproved = "approved"
	ActionBlocked  = "blocked"
	ActionFlagged  = "flagged"
)

// A single flagged submission awaiting (or done with) human review. Exactly
// one QueueItem exists per flagged submission.
type QueueItem struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	ContentID   string          `gorm:"index" json:"contentId"`
	ContentType string          `gorm:"index" json:"contentType"`
	Content     string          `json:"content"`
	UserID      string          `gorm:"index" json:"userId"`
	FlagReason  string          `json:"flagReason"`
	Severity    string          `gorm:"index" json:"severity"`
	Confidence  float64         `json:"confidence"`
	Tags        []string        `gorm:"serializer:json" json:"moderationTags"`
	Status      string          `gorm:"index" json:"status"`
	Analysis    analyzer.Result `gorm:"serializer:json" json:"analysis"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// One audit record per moderation action, automated or human. Never mutated
// or deleted; queue cleanup does not touch these.
type ModAction struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	ContentID   string    `gorm:"index" json:"contentId"`
	ContentType string    `json:"contentType"`
	Action      string    `json:"action"`
	Automated   bool      `json:"automated"`
	Severity    string    `json:"severity"`
	ReviewerID  string    `json:"reviewerId,omitempty"`
	Reason      string    `json:"reason"`
	Tags        []string  `gorm:"serializer:json" json:"moderationTags"`
	CreatedAt   time.Time `json:"timestamp"`
}

// Queue listing filters. Zero-valued fields match everything.
type ItemFilters struct {
	Status      string
	Severity    string
	ContentType string
	Limit       int
	Offset      int
}

type Store interface {
	// EnqueueItem inserts a new queue item, assigning ID and CreatedAt.
	EnqueueItem(ctx context.Context, item *QueueItem) error
	// GetItem returns nil (no error) when the id is unknown.
	GetItem(ctx context.Context, id uint) (*QueueItem, error)
	// ListItems returns matching items sorted by severity descending
	// (high > medium > low), then CreatedAt descending.
	ListItems(ctx context.Context, f ItemFilters) ([]*QueueItem, error)
	// ResolveItem atomically sets the item's status and appends the audit
	// action. Returns false, with no mutation at all, when the id is
	// unknown.
	ResolveItem(ctx context.Context, id uint, status string, action *ModAction) (bool, error)
	// AppendAction records an action in the audit log.
	AppendAction(ctx context.Context, action *ModAction) error
	// ListActions returns all actions for a content id, newest first.
	ListActions(ctx context.Context, contentID string) ([]*ModAction, error)
	// CountItems counts queue items in any of the given statuses (all items
	// when none given).
	CountItems(ctx context.Context, statuses ...string) (int, error)
	// CleanupReviewed deletes reviewed items created before the cutoff and
	// returns how many were removed. Pending and escalated items are never
	// removed, regardless of age.
	CleanupReviewed(ctx context.Context, cutoff time.Time) (int, error)
}

func severityRank(severity string) int {
	switch severity {
	case analyzer.SeverityHigh:
		return 3
	case analyzer.SeverityMedium:
		return 2
	case analyzer.SeverityLow:
		return 1
	default:
		return 0
	}
}
