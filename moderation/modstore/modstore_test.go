package modstore

import (
	"context"
	"testing"
	"time"

	"github.com/arbiter-social/arbiter/moderation/analyzer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testStores(t *testing.T) map[string]Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	gs, err := NewGormStore(db)
	require.NoError(t, err)
	return map[string]Store{
		"mem":  NewMemStore(),
		"gorm": gs,
	}
}

func testItem(contentID, severity string, createdAt time.Time) *QueueItem {
	return &QueueItem{
		ContentID:   contentID,
		ContentType: "post",
		Content:     "some text",
		UserID:      "user-1",
		FlagReason:  "content flagged for: spam",
		Severity:    severity,
		Confidence:  0.72,
		Tags:        []string{analyzer.TagPotentialSpam},
		Status:      StatusPending,
		CreatedAt:   createdAt,
	}
}

func TestStoreEnqueueAndGet(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			item := testItem("c-1", analyzer.SeverityMedium, time.Time{})
			assert.NoError(store.EnqueueItem(ctx, item))
			assert.NotZero(item.ID)
			assert.False(item.CreatedAt.IsZero())

			got, err := store.GetItem(ctx, item.ID)
			assert.NoError(err)
			if assert.NotNil(got) {
				assert.Equal("c-1", got.ContentID)
				assert.Equal(StatusPending, got.Status)
				assert.Equal([]string{analyzer.TagPotentialSpam}, got.Tags)
			}

			got, err = store.GetItem(ctx, 99999)
			assert.NoError(err)
			assert.Nil(got)
		})
	}
}

func TestStoreListOrdering(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			// oldest high, newest low: severity must still dominate
			require.NoError(t, store.EnqueueItem(ctx, testItem("c-low", analyzer.SeverityLow, base.Add(3*time.Hour))))
			require.NoError(t, store.EnqueueItem(ctx, testItem("c-high-old", analyzer.SeverityHigh, base)))
			require.NoError(t, store.EnqueueItem(ctx, testItem("c-med", analyzer.SeverityMedium, base.Add(2*time.Hour))))
			require.NoError(t, store.EnqueueItem(ctx, testItem("c-high-new", analyzer.SeverityHigh, base.Add(time.Hour))))

			items, err := store.ListItems(ctx, ItemFilters{})
			assert.NoError(err)
			ids := make([]string, len(items))
			for i, item := range items {
				ids[i] = item.ContentID
			}
			assert.Equal([]string{"c-high-new", "c-high-old", "c-med", "c-low"}, ids)

			// filters
			items, err = store.ListItems(ctx, ItemFilters{Severity: analyzer.SeverityHigh})
			assert.NoError(err)
			assert.Len(items, 2)

			items, err = store.ListItems(ctx, ItemFilters{Status: StatusEscalated})
			assert.NoError(err)
			assert.Len(items, 0)

			// pagination
			items, err = store.ListItems(ctx, ItemFilters{Limit: 2, Offset: 1})
			assert.NoError(err)
			ids = ids[:0]
			for _, item := range items {
				ids = append(ids, item.ContentID)
			}
			assert.Equal([]string{"c-high-old", "c-med"}, ids)
		})
	}
}

func TestStoreResolveItem(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			item := testItem("c-1", analyzer.SeverityMedium, time.Time{})
			require.NoError(t, store.EnqueueItem(ctx, item))

			action := &ModAction{
				ContentID:   "c-1",
				ContentType: "post",
				Action:      ActionApproved,
				Automated:   false,
				Severity:    analyzer.SeverityMedium,
				ReviewerID:  "mod-7",
				Reason:      "looks fine",
			}
			found, err := store.ResolveItem(ctx, item.ID, StatusReviewed, action)
			assert.NoError(err)
			assert.True(found)

			got, err := store.GetItem(ctx, item.ID)
			assert.NoError(err)
			assert.Equal(StatusReviewed, got.Status)

			actions, err := store.ListActions(ctx, "c-1")
			assert.NoError(err)
			if assert.Len(actions, 1) {
				assert.Equal(ActionApproved, actions[0].Action)
				assert.False(actions[0].Automated)
				assert.Equal("mod-7", actions[0].ReviewerID)
			}
		})
	}
}

func TestStoreResolveUnknownItem(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			found, err := store.ResolveItem(ctx, 12345, StatusReviewed, &ModAction{
				ContentID: "c-x",
				Action:    ActionApproved,
			})
			assert.NoError(err)
			assert.False(found)

			// no partially-applied mutation
			count, err := store.CountItems(ctx)
			assert.NoError(err)
			assert.Equal(0, count)
			actions, err := store.ListActions(ctx, "c-x")
			assert.NoError(err)
			assert.Len(actions, 0)
		})
	}
}

func TestStoreListActionsOrdering(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			for i, kind := range []string{ActionFlagged, ActionBlocked, ActionApproved} {
				assert.NoError(store.AppendAction(ctx, &ModAction{
					ContentID: "c-1",
					Action:    kind,
					Automated: true,
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				}))
			}
			assert.NoError(store.AppendAction(ctx, &ModAction{
				ContentID: "c-other",
				Action:    ActionApproved,
				Automated: true,
				CreatedAt: base,
			}))

			actions, err := store.ListActions(ctx, "c-1")
			assert.NoError(err)
			if assert.Len(actions, 3) {
				assert.Equal(ActionApproved, actions[0].Action)
				assert.Equal(ActionBlocked, actions[1].Action)
				assert.Equal(ActionFlagged, actions[2].Action)
			}
		})
	}
}

func TestStoreCleanupReviewed(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			old := now.Add(-48 * time.Hour)
			reviewed := testItem("c-reviewed", analyzer.SeverityLow, old)
			reviewed.Status = StatusReviewed
			require.NoError(t, store.EnqueueItem(ctx, reviewed))

			pending := testItem("c-pending", analyzer.SeverityLow, old)
			require.NoError(t, store.EnqueueItem(ctx, pending))

			escalated := testItem("c-escalated", analyzer.SeverityHigh, old)
			escalated.Status = StatusEscalated
			require.NoError(t, store.EnqueueItem(ctx, escalated))

			fresh := testItem("c-fresh", analyzer.SeverityLow, now)
			fresh.Status = StatusReviewed
			require.NoError(t, store.EnqueueItem(ctx, fresh))

			// cutoff now: old reviewed item goes, unreviewed stay at any age
			removed, err := store.CleanupReviewed(ctx, now.Add(-time.Minute))
			assert.NoError(err)
			assert.Equal(1, removed)

			count, err := store.CountItems(ctx)
			assert.NoError(err)
			assert.Equal(3, count)

			count, err = store.CountItems(ctx, StatusPending, StatusEscalated)
			assert.NoError(err)
			assert.Equal(2, count)
		})
	}
}
