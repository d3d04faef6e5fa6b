package engine

import (
	"context"
	"testing"
	"time"

	"github.com/arbiter-social/arbiter/moderation/analyzer"
	"github.com/arbiter-social/arbiter/moderation/modstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerateCleanContent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := EngineTestFixture()

	dec, err := eng.ModerateBeforePublish(ctx, Submission{
		Text:        "This is a nice post about my day!",
		ContentType: ContentTypePost,
		AuthorID:    "user-1",
		ContentID:   "c-1",
	})
	assert.NoError(err)
	assert.True(dec.Allowed)
	assert.False(dec.Filtered)
	assert.Nil(dec.QueueID)
	assert.Equal("c-1", dec.ContentID)

	// no side effects at all
	count, err := eng.Store.CountItems(ctx)
	assert.NoError(err)
	assert.Equal(0, count)
	history, err := eng.GetHistory(ctx, "c-1")
	assert.NoError(err)
	assert.Len(history, 0)
}

func TestModerateBlocksThreats(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := EngineTestFixture()

	dec, err := eng.ModerateBeforePublish(ctx, Submission{
		Text:        "I will kill you if you keep posting",
		ContentType: ContentTypeReply,
		AuthorID:    "user-2",
		ContentID:   "c-2",
	})
	assert.NoError(err)
	assert.False(dec.Allowed)
	assert.Nil(dec.QueueID)
	assert.Equal(analyzer.ActionBlock, dec.Analysis.SuggestedAction)

	// blocked content is logged, never queued
	count, err := eng.Store.CountItems(ctx)
	assert.NoError(err)
	assert.Equal(0, count)

	history, err := eng.GetHistory(ctx, "c-2")
	assert.NoError(err)
	if assert.Len(history, 1) {
		assert.Equal(modstore.ActionBlocked, history[0].Action)
		assert.True(history[0].Automated)
		assert.Empty(history[0].ReviewerID)
	}
}

func TestModerateQueuesAndEscalates(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := EngineTestFixture()

	dec, err := eng.ModerateBeforePublish(ctx, Submission{
		Text:        "BUY NOW!!! CLICK HERE FOR FREE MONEY!!! LIMITED TIME OFFER!!!",
		ContentType: ContentTypePost,
		AuthorID:    "user-3",
		ContentID:   "c-3",
	})
	assert.NoError(err)
	require.NotNil(t, dec.QueueID)
	// high severity holds publication and escalates at insertion
	assert.False(dec.Allowed)

	item, err := eng.Store.GetItem(ctx, *dec.QueueID)
	assert.NoError(err)
	if assert.NotNil(item) {
		assert.Equal(modstore.StatusEscalated, item.Status)
		assert.Equal(analyzer.SeverityHigh, item.Severity)
		assert.Equal("user-3", item.UserID)
		assert.Contains(item.Tags, analyzer.TagPotentialSpam)
		// verbatim text at time of flagging
		assert.Equal("BUY NOW!!! CLICK HERE FOR FREE MONEY!!! LIMITED TIME OFFER!!!", item.Content)
	}

	history, err := eng.GetHistory(ctx, "c-3")
	assert.NoError(err)
	if assert.Len(history, 1) {
		assert.Equal(modstore.ActionFlagged, history[0].Action)
		assert.True(history[0].Automated)
	}
}

func TestModerateQueuesPendingStillPublishes(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := EngineTestFixture()

	// moderate spam: flag-worthy under a lowered threshold but neither high
	// severity nor high confidence
	_, err := eng.UpdateSettings(SettingsPatch{FlagThreshold: ptr(0.5)})
	require.NoError(t, err)

	dec, err := eng.ModerateBeforePublish(ctx, Submission{
		Text:        "buy now, click here, limited time",
		ContentType: ContentTypePost,
		AuthorID:    "user-4",
		ContentID:   "c-4",
	})
	assert.NoError(err)
	require.NotNil(t, dec.QueueID)
	// may publish pending review
	assert.True(dec.Allowed)

	item, err := eng.Store.GetItem(ctx, *dec.QueueID)
	assert.NoError(err)
	if assert.NotNil(item) {
		assert.Equal(modstore.StatusPending, item.Status)
		assert.Equal(analyzer.SeverityMedium, item.Severity)
	}
}

func TestModerateFiltersMildProfanity(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := EngineTestFixture()

	dec, err := eng.ModerateBeforePublish(ctx, Submission{
		Text:        "well damn, that is wild",
		ContentType: ContentTypeReply,
		AuthorID:    "user-5",
		ContentID:   "c-5",
	})
	assert.NoError(err)
	assert.True(dec.Allowed)
	assert.True(dec.Filtered)
	assert.Equal("well ****, that is wild", dec.FilteredContent)
	assert.Nil(dec.QueueID)
}

func TestModerateDerivesContentID(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := EngineTestFixture()

	dec, err := eng.ModerateBeforePublish(ctx, Submission{
		Text:        "hello world",
		ContentType: ContentTypePost,
		AuthorID:    "user-6",
	})
	assert.NoError(err)
	assert.NotEmpty(dec.ContentID)
	assert.Contains(dec.ContentID, "txt-")

	// deterministic for identical author+text
	again, err := eng.ModerateBeforePublish(ctx, Submission{
		Text:        "hello world",
		ContentType: ContentTypePost,
		AuthorID:    "user-6",
	})
	assert.NoError(err)
	assert.Equal(dec.ContentID, again.ContentID)
}

func TestBulkModerateOrdering(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := EngineTestFixture()

	subs := []Submission{
		{Text: "a lovely day in the park", ContentType: ContentTypePost, AuthorID: "u1", ContentID: "b-1"},
		{Text: "I will kill you if you keep posting", ContentType: ContentTypeReply, AuthorID: "u2", ContentID: "b-2"},
		{Text: "another perfectly fine update", ContentType: ContentTypePost, AuthorID: "u3", ContentID: "b-3"},
		{Text: "BUY NOW!!! CLICK HERE FOR FREE MONEY!!! LIMITED TIME OFFER!!!", ContentType: ContentTypePost, AuthorID: "u4", ContentID: "b-4"},
	}
	decisions, err := eng.BulkModerate(ctx, subs)
	assert.NoError(err)
	require.Len(t, decisions, 4)

	assert.Equal("b-1", decisions[0].ContentID)
	assert.True(decisions[0].Allowed)
	assert.Equal("b-2", decisions[1].ContentID)
	assert.False(decisions[1].Allowed)
	assert.Equal("b-3", decisions[2].ContentID)
	assert.True(decisions[2].Allowed)
	assert.Equal("b-4", decisions[3].ContentID)
	assert.NotNil(decisions[3].QueueID)
}

// stallNotifier parks in SendEscalation until released, to exercise what else
// keeps moving while a notification is in flight.
type stallNotifier struct {
	entered chan struct{}
	release chan struct{}
}

func (n *stallNotifier) SendEscalation(ctx context.Context, item *modstore.QueueItem) error {
	n.entered <- struct{}{}
	<-n.release
	return nil
}

func TestEscalationNotifierDoesNotBlockWrites(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	eng := EngineTestFixture()
	n := &stallNotifier{entered: make(chan struct{}), release: make(chan struct{})}
	eng.Notifier = n

	modDone := make(chan struct{})
	go func() {
		defer close(modDone)
		_, err := eng.ModerateBeforePublish(ctx, Submission{
			Text:        "BUY NOW!!! CLICK HERE FOR FREE MONEY!!! LIMITED TIME OFFER!!!",
			ContentType: ContentTypePost,
			AuthorID:    "user-9",
			ContentID:   "c-stall",
		})
		assert.NoError(err)
	}()
	<-n.entered

	// the item is persisted before the notifier is called
	items, err := eng.ListQueue(ctx, modstore.ItemFilters{Status: modstore.StatusEscalated})
	assert.NoError(err)
	assert.Len(items, 1)

	// other queue/audit writers must not wait on the notification
	cleanupDone := make(chan struct{})
	go func() {
		defer close(cleanupDone)
		_, err := eng.CleanupQueue(ctx, 0)
		assert.NoError(err)
	}()
	select {
	case <-cleanupDone:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup blocked behind a stalled escalation notifier")
	}

	close(n.release)
	<-modDone
}

func TestModerateRecoversPanics(t *testing.T) {
	assert := assert.New(t)
	eng := EngineTestFixture()
	// nil filter makes the allow path dereference nil
	eng.Filter = nil

	dec, err := eng.ModerateBeforePublish(context.Background(), Submission{
		Text:        "a perfectly fine update",
		ContentType: ContentTypePost,
		AuthorID:    "user-1",
	})
	assert.Error(err)
	assert.Nil(dec)
}

func ptr[T any](v T) *T {
	return &v
}
