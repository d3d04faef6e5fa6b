package engine

import (
	"context"
	"fmt"

	"github.com/arbiter-social/arbiter/moderation/analyzer"
	"github.com/arbiter-social/arbiter/moderation/countstore"
	"github.com/arbiter-social/arbiter/moderation/modstore"
)

// Aggregate moderation statistics for one timeframe. Counts come from the
// countstore period buckets; the backlog is a live queue count.
type Stats struct {
	Timeframe              string         `json:"timeframe"`
	Total                  int            `json:"total"`
	Automated              int            `json:"automated"`
	Manual                 int            `json:"manual"`
	ByAction               map[string]int `json:"byAction"`
	BySeverity             map[string]int `json:"bySeverity"`
	QueueBacklog           int            `json:"queueBacklog"`
	DistinctFlaggedAuthors int            `json:"distinctFlaggedAuthors"`
	AutomationRate         float64        `json:"automationRate"`
}

// GetHistory returns the full audit trail for a piece of content, newest
// action first.
func (eng *Engine) GetHistory(ctx context.Context, contentID string) ([]*modstore.ModAction, error) {
	return eng.Store.ListActions(ctx, contentID)
}

// GetStats reports moderation totals for the given timeframe: "total" (or
// empty), "day", or "hour".
func (eng *Engine) GetStats(ctx context.Context, timeframe string) (*Stats, error) {
	period := timeframe
	switch timeframe {
	case "":
		period = countstore.PeriodTotal
	case countstore.PeriodTotal, countstore.PeriodDay, countstore.PeriodHour:
	default:
		return nil, fmt.Errorf("unknown stats timeframe: %s", timeframe)
	}

	stats := &Stats{
		Timeframe:  period,
		ByAction:   make(map[string]int),
		BySeverity: make(map[string]int),
	}

	// counters are optional on the engine; without them only the live queue
	// backlog is reported
	if eng.Counters != nil {
		for _, kind := range []string{modstore.ActionApproved, modstore.ActionBlocked, modstore.ActionFlagged} {
			c, err := eng.Counters.GetCount(ctx, "action", kind, period)
			if err != nil {
				return nil, fmt.Errorf("reading action counter: %w", err)
			}
			stats.ByAction[kind] = c
			stats.Total += c
		}

		for _, sev := range []string{analyzer.SeverityLow, analyzer.SeverityMedium, analyzer.SeverityHigh} {
			c, err := eng.Counters.GetCount(ctx, "severity", sev, period)
			if err != nil {
				return nil, fmt.Errorf("reading severity counter: %w", err)
			}
			stats.BySeverity[sev] = c
		}

		automated, err := eng.Counters.GetCount(ctx, "automated", "true", period)
		if err != nil {
			return nil, fmt.Errorf("reading automation counter: %w", err)
		}
		manual, err := eng.Counters.GetCount(ctx, "automated", "false", period)
		if err != nil {
			return nil, fmt.Errorf("reading automation counter: %w", err)
		}
		stats.Automated = automated
		stats.Manual = manual

		distinct, err := eng.Counters.GetCountDistinct(ctx, "flagged-authors", "all", period)
		if err != nil {
			return nil, fmt.Errorf("reading distinct author counter: %w", err)
		}
		stats.DistinctFlaggedAuthors = distinct
	}

	backlog, err := eng.Store.CountItems(ctx, modstore.StatusPending, modstore.StatusEscalated)
	if err != nil {
		return nil, fmt.Errorf("counting queue backlog: %w", err)
	}
	stats.QueueBacklog = backlog

	if stats.Total > 0 {
		stats.AutomationRate = float64(stats.Automated) / float64(stats.Total) * 100.0
	}
	return stats, nil
}
