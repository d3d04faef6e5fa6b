package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/arbiter-social/arbiter/moderation/analyzer"
	"github.com/arbiter-social/arbiter/moderation/countstore"
	"github.com/arbiter-social/arbiter/moderation/filter"
	"github.com/arbiter-social/arbiter/moderation/modstore"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
)

const (
	ContentTypePost    = "post"
	ContentTypeReply   = "reply"
	ContentTypeProfile = "profile"
)

func ValidContentType(t string) bool {
	switch t {
	case ContentTypePost, ContentTypeReply, ContentTypeProfile:
		return true
	}
	return false
}

// A piece of user-submitted text on its way to publication. Ephemeral: the
// pipeline stores the text only when the submission gets flagged.
type Submission struct {
	Text        string `json:"text"`
	ContentType string `json:"contentType"`
	AuthorID    string `json:"authorId"`
	ContentID   string `json:"contentId,omitempty"`
}

// The outcome returned to the content-submission flow. Callers must honor
// Allowed, and publish FilteredContent instead of the original text when
// Filtered is set.
type Decision struct {
	Allowed         bool            `json:"allowed"`
	Filtered        bool            `json:"filtered"`
	FilteredContent string          `json:"filteredContent,omitempty"`
	Analysis        analyzer.Result `json:"analysisResult"`
	QueueID         *uint           `json:"queueId,omitempty"`
	ContentID       string          `json:"contentId"`
}

// Runtime for the moderation pipeline: runs the analyzer, applies the
// allow/block/queue policy, and owns the review queue and audit log. No
// other component reads or writes those collections directly.
type Engine struct {
	Logger   *slog.Logger
	Analyzer *analyzer.Analyzer
	Filter   *filter.WordFilter
	Store    modstore.Store
	Counters countstore.CountStore
	// optional; pinged when an item enters the queue already escalated
	Notifier Notifier

	// number of concurrent workers for BulkModerate
	BulkWorkers int

	settingsMu sync.RWMutex
	settings   analyzer.Settings

	// serializes all queue and audit-log mutations
	writeMu sync.Mutex

	resultCache *expirable.LRU[string, analyzer.Result]
}

type EngineConfig struct {
	Logger   *slog.Logger
	Analyzer *analyzer.Analyzer
	Filter   *filter.WordFilter
	Store    modstore.Store
	Counters countstore.CountStore
	Notifier Notifier
	// nil means analyzer defaults
	Settings *analyzer.Settings
	// zero disables the analysis result cache
	CacheSize int
	CacheTTL  time.Duration
	// defaults to 4
	BulkWorkers int
}

func NewEngine(config EngineConfig) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	settings := analyzer.DefaultSettings()
	if config.Settings != nil {
		settings = *config.Settings
	}
	workers := config.BulkWorkers
	if workers <= 0 {
		workers = 4
	}
	eng := &Engine{
		Logger:      logger,
		Analyzer:    config.Analyzer,
		Filter:      config.Filter,
		Store:       config.Store,
		Counters:    config.Counters,
		Notifier:    config.Notifier,
		BulkWorkers: workers,
		settings:    settings,
	}
	if config.CacheSize > 0 {
		eng.resultCache = expirable.NewLRU[string, analyzer.Result](config.CacheSize, nil, config.CacheTTL)
	}
	return eng
}

// ModerateBeforePublish screens a single submission and decides whether it
// may publish immediately, must be blocked, or goes to the review queue.
// Blocking takes precedence over queueing, queueing over passive filtering.
func (eng *Engine) ModerateBeforePublish(ctx context.Context, sub Submission) (dec *Decision, err error) {
	// analysis is pattern-driven; recover any panics the same way an HTTP
	// server would, rather than taking down the submission flow
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("moderation pipeline exception", "err", r, "contentType", sub.ContentType, "authorId", sub.AuthorID)
			dec = nil
			err = fmt.Errorf("moderation pipeline exception: %v", r)
		}
	}()

	contentID := sub.ContentID
	if contentID == "" {
		contentID = "txt-" + HashOfString(sub.AuthorID+"/"+sub.Text)
	}

	start := time.Now()
	res := eng.analyze(sub.Text)
	analysisDuration.Observe(time.Since(start).Seconds())

	dec = &Decision{
		Allowed:   true,
		Analysis:  res,
		ContentID: contentID,
	}

	logger := eng.Logger.With("contentId", contentID, "contentType", sub.ContentType, "authorId", sub.AuthorID)

	if res.SuggestedAction == analyzer.ActionBlock {
		dec.Allowed = false
		if err := eng.recordAction(ctx, &modstore.ModAction{
			ContentID:   contentID,
			ContentType: sub.ContentType,
			Action:      modstore.ActionBlocked,
			Automated:   true,
			Severity:    res.Severity,
			Reason:      res.FlagReason,
			Tags:        res.Tags,
		}); err != nil {
			return nil, fmt.Errorf("recording blocked action: %w", err)
		}
		moderationDecisionCount.WithLabelValues("blocked").Inc()
		logger.Info("content blocked", "severity", res.Severity, "reason", res.FlagReason)
		return dec, nil
	}

	if res.ShouldFlag {
		queueID, escalated, err := eng.enqueueFlagged(ctx, contentID, sub, res)
		if err != nil {
			return nil, fmt.Errorf("enqueueing flagged content: %w", err)
		}
		dec.QueueID = &queueID
		// high severity and credible threats are held back until reviewed;
		// everything else may publish pending review
		dec.Allowed = !(res.Severity == analyzer.SeverityHigh || res.ThreatScore > 0.3)
		moderationDecisionCount.WithLabelValues("queued").Inc()
		logger.Info("content queued for review", "queueId", queueID, "escalated", escalated, "allowed", dec.Allowed)
		return dec, nil
	}

	if cleaned, triggered := eng.Filter.Clean(sub.Text); triggered && cleaned != sub.Text {
		dec.Filtered = true
		dec.FilteredContent = cleaned
		moderationDecisionCount.WithLabelValues("filtered").Inc()
		logger.Debug("content filtered")
		return dec, nil
	}

	moderationDecisionCount.WithLabelValues("allowed").Inc()
	return dec, nil
}

func (eng *Engine) enqueueFlagged(ctx context.Context, contentID string, sub Submission, res analyzer.Result) (uint, bool, error) {
	status := modstore.StatusPending
	escalated := res.Severity == analyzer.SeverityHigh || res.Confidence > 0.8
	if escalated {
		status = modstore.StatusEscalated
	}
	item := &modstore.QueueItem{
		ContentID:   contentID,
		ContentType: sub.ContentType,
		Content:     sub.Text,
		UserID:      sub.AuthorID,
		FlagReason:  res.FlagReason,
		Severity:    res.Severity,
		Confidence:  res.Confidence,
		Tags:        res.Tags,
		Status:      status,
		Analysis:    res,
	}

	eng.writeMu.Lock()
	if err := eng.Store.EnqueueItem(ctx, item); err != nil {
		eng.writeMu.Unlock()
		return 0, false, err
	}
	if err := eng.appendActionLocked(ctx, &modstore.ModAction{
		ContentID:   contentID,
		ContentType: sub.ContentType,
		Action:      modstore.ActionFlagged,
		Automated:   true,
		Severity:    res.Severity,
		Reason:      res.FlagReason,
		Tags:        res.Tags,
	}); err != nil {
		eng.writeMu.Unlock()
		return 0, false, err
	}
	eng.incrementDistinct(ctx, "flagged-authors", "all", sub.AuthorID)
	eng.writeMu.Unlock()

	if escalated {
		queueEscalationCount.Inc()
		if eng.Notifier != nil {
			// the item is already persisted; notification is network I/O and
			// must not hold up other queue/audit writers
			notify := *item
			if err := eng.Notifier.SendEscalation(ctx, &notify); err != nil {
				eng.Logger.Warn("escalation notification failed", "err", err, "queueId", item.ID)
			}
		}
	}
	return item.ID, escalated, nil
}

// BulkModerate screens a batch of submissions concurrently. Results are
// returned in input order regardless of completion order.
func (eng *Engine) BulkModerate(ctx context.Context, subs []Submission) ([]*Decision, error) {
	out := make([]*Decision, len(subs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(eng.BulkWorkers)
	for i, sub := range subs {
		g.Go(func() error {
			dec, err := eng.ModerateBeforePublish(ctx, sub)
			if err != nil {
				return err
			}
			out[i] = dec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// analyze runs the content analyzer, serving repeated identical text from
// the result cache when one is configured. Analysis is deterministic for
// fixed settings; the cache is purged whenever settings change.
func (eng *Engine) analyze(text string) analyzer.Result {
	settings := eng.GetSettings()
	if eng.resultCache == nil {
		return eng.Analyzer.Analyze(text, settings)
	}
	key := HashOfString(text)
	if res, ok := eng.resultCache.Get(key); ok {
		analysisCacheHits.Inc()
		return res
	}
	analysisCacheMisses.Inc()
	res := eng.Analyzer.Analyze(text, settings)
	eng.resultCache.Add(key, res)
	return res
}

// recordAction appends an audit entry under the write lock.
func (eng *Engine) recordAction(ctx context.Context, action *modstore.ModAction) error {
	eng.writeMu.Lock()
	defer eng.writeMu.Unlock()
	return eng.appendActionLocked(ctx, action)
}

func (eng *Engine) appendActionLocked(ctx context.Context, action *modstore.ModAction) error {
	if err := eng.Store.AppendAction(ctx, action); err != nil {
		return err
	}
	eng.incrementActionCounters(ctx, action)
	return nil
}

// incrementActionCounters feeds the stats counters. Counter failures are
// logged, not surfaced: statistics are advisory, the audit log is the source
// of record.
func (eng *Engine) incrementActionCounters(ctx context.Context, action *modstore.ModAction) {
	if eng.Counters == nil {
		return
	}
	eng.increment(ctx, "action", action.Action)
	eng.increment(ctx, "automated", strconv.FormatBool(action.Automated))
	if action.Severity != "" {
		eng.increment(ctx, "severity", action.Severity)
	}
}

func (eng *Engine) increment(ctx context.Context, name, val string) {
	if err := eng.Counters.Increment(ctx, name, val); err != nil {
		eng.Logger.Warn("failed to increment counter", "err", err, "name", name, "val", val)
	}
}

func (eng *Engine) incrementDistinct(ctx context.Context, name, bucket, val string) {
	if eng.Counters == nil {
		return
	}
	if err := eng.Counters.IncrementDistinct(ctx, name, bucket, val); err != nil {
		eng.Logger.Warn("failed to increment distinct counter", "err", err, "name", name, "bucket", bucket)
	}
}
