package insights

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventsBody = `[
  {"id":"1","type":"PushEvent","actor":{"login":"alice","avatar_url":"https://a/alice"},
   "payload":{"ref":"refs/heads/main","size":3},"created_at":"2026-08-30T12:00:00Z"},
  {"id":"2","type":"WatchEvent","actor":{"login":"bob","avatar_url":"https://a/bob"},
   "payload":{"action":"started"},"created_at":"2026-08-30T11:00:00Z"},
  {"id":"3","type":"PushEvent","actor":{"login":"dependabot[bot]","avatar_url":""},
   "payload":{"ref":"refs/heads/deps","size":1},"created_at":"2026-08-30T10:00:00Z"},
  {"id":"4","type":"PullRequestEvent","actor":{"login":"carol","avatar_url":"https://a/carol"},
   "payload":{"action":"closed","number":7,"pull_request":{"title":"Fix","merged":true}},
   "created_at":"2026-08-30T09:00:00Z"},
  {"id":"5","type":"CreateEvent","actor":{"login":"alice","avatar_url":"https://a/alice"},
   "payload":{"ref":"feature-x","ref_type":"branch"},"created_at":"2026-08-30T08:00:00Z"},
  {"id":"6","type":"UnknownEvent","actor":{"login":"dave","avatar_url":""},
   "payload":{},"created_at":"2026-08-30T07:00:00Z"}
]`

func TestPulseFeed_FormatsAndFilters(t *testing.T) {
	up := newFakeUpstream()
	up.respond("repos/octo/widgets/events", 200, eventsBody)
	s := newTestService(t, up, false)

	feed := s.PulseFeed(context.Background(), 15)
	require.Len(t, feed, 4, "bot and unknown-type events are dropped")

	assert.Equal(t, "alice", feed[0].Actor)
	assert.Equal(t, "pushed 3 commit(s) to `main`", feed[0].Action)
	assert.Equal(t, PulsePush, feed[0].Kind)
	assert.Equal(t, "https://a/alice", feed[0].AvatarURL)

	assert.Equal(t, "starred the repository", feed[1].Action)
	assert.Equal(t, PulseStar, feed[1].Kind)

	assert.Equal(t, "merged pull request #7", feed[2].Action)
	assert.Equal(t, "created branch `feature-x`", feed[3].Action)

	// Upstream recency order preserved.
	for i := 1; i < len(feed); i++ {
		assert.True(t, !feed[i].OccurredAt.After(feed[i-1].OccurredAt))
	}
}

func TestPulseFeed_CapsAtLimit(t *testing.T) {
	up := newFakeUpstream()
	up.respond("repos/octo/widgets/events", 200, eventsBody)
	s := newTestService(t, up, false)

	feed := s.PulseFeed(context.Background(), 2)
	assert.Len(t, feed, 2)
}

func TestPulseFeed_PlaceholderOnUpstreamFailure(t *testing.T) {
	up := newFakeUpstream()
	up.respond("repos/octo/widgets/events", 403, "")
	s := newTestService(t, up, false)

	feed := s.PulseFeed(context.Background(), 15)
	require.NotEmpty(t, feed, "feed must never be blank")
	assert.Equal(t, "gitpulse", feed[0].Actor)
}

func TestPulseFeed_PlaceholderOnMalformedPayload(t *testing.T) {
	up := newFakeUpstream()
	up.respond("repos/octo/widgets/events", 200, `{"not":"a list"}`)
	s := newTestService(t, up, false)

	feed := s.PulseFeed(context.Background(), 15)
	require.NotEmpty(t, feed)
	assert.Equal(t, "gitpulse", feed[0].Actor)
}
