package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/pubsub"
	"github.com/dmitrijs2005/gophboard/internal/server/metrics"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMessages_MostRecentOldestFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")

	for _, text := range []string{"M1", "M2", "M3"} {
		_, err := e.messages.Send(ctx, alice, text)
		require.NoError(t, err)
	}

	two, err := e.messages.List(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"M2", "M3"}, contents(two))

	all, err := e.messages.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"M1", "M2", "M3"}, contents(all))
}

func TestListMessages_LimitBounds(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	e.messages.maxLimit = 3

	for i := 0; i < 5; i++ {
		_, err := e.messages.Send(ctx, alice, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	capped, err := e.messages.List(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"m2", "m3", "m4"}, contents(capped))

	negative, err := e.messages.List(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, negative, 3, "default limit is also clamped to the maximum")
}

func TestSendMessage_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	alice := e.register(t, "alice")

	live := e.messages.Subscribe(ctx)

	_, err := e.messages.Send(ctx, nil, "hi")
	require.Error(t, err)
	assert.Equal(t, "You must be logged in to send messages", err.Error())
	assert.Equal(t, common.KindAuthentication, common.KindOf(err))

	_, err = e.messages.Send(ctx, alice, "   ")
	require.Error(t, err)
	assert.Equal(t, "Message cannot be empty", err.Error())

	assert.Empty(t, live, "rejected sends must not publish")

	stored, err := e.messages.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSendMessage_PublishesToLiveSubscribersOnly(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := e.messages.Subscribe(ctx)
	second := e.messages.Subscribe(ctx)

	sent, err := e.messages.Send(ctx, alice, "  hello ")
	require.NoError(t, err)
	assert.Equal(t, "hello", sent.Content)

	for _, ch := range []<-chan *models.Message{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, sent.ID, got.ID)
			assert.Equal(t, "hello", got.Content)
			assert.Equal(t, alice.ID, got.UserID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the message")
		}
	}

	late := e.messages.Subscribe(ctx)
	assert.Empty(t, late, "late subscribers get no replay")
	assert.Empty(t, first, "exactly one notification per send")
}

func TestSendMessage_StoreFailureDoesNotPublish(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	bus := pubsub.New[*models.Message](4)
	defer bus.Close()
	s := NewMessageService(db, &fakeRepoManager{m: &fakeMessagesRepo{createErr: errBoom}}, bus, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	live := s.Subscribe(ctx)

	_, err := s.Send(ctx, &models.User{ID: "u1"}, "hello")
	require.Error(t, err)
	assert.Equal(t, common.KindInternal, common.KindOf(err))
	assert.Empty(t, live)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscribe_TracksActiveSubscribers(t *testing.T) {
	db, _ := newSQLMockDB(t)
	bus := pubsub.New[*models.Message](1)
	defer bus.Close()
	m := metrics.New()
	s := NewMessageService(db, &fakeRepoManager{}, bus, testConfig(), WithMetrics(m))

	gauge := func(v int) func() bool {
		want := fmt.Sprintf(`# HELP gophboard_subscribers_active Live messageAdded subscriptions.
# TYPE gophboard_subscribers_active gauge
gophboard_subscribers_active %d
`, v)
		return func() bool {
			return testutil.GatherAndCompare(m.Registry(), strings.NewReader(want), "gophboard_subscribers_active") == nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.Subscribe(ctx)
	s.Subscribe(ctx)
	assert.Equal(t, 2, bus.Subscribers(TopicMessageCreated))
	assert.True(t, gauge(2)())

	cancel()
	assert.Eventually(t, func() bool { return bus.Subscribers(TopicMessageCreated) == 0 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, gauge(0), time.Second, 5*time.Millisecond)
}

func contents(msgs []*models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

func TestSendMessage_CountsDropsForSlowSubscribers(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	alice := e.register(t, "alice")

	bus := pubsub.New[*models.Message](1)
	defer bus.Close()
	m := metrics.New()
	s := NewMessageService(e.db, e.rm, bus, testConfig(), WithMetrics(m))

	slow := s.Subscribe(ctx)
	fast := s.Subscribe(ctx)

	for _, text := range []string{"one", "two"} {
		_, err := s.Send(ctx, alice, text)
		require.NoError(t, err)
		got := <-fast
		assert.Equal(t, text, got.Content)
	}

	want := `# HELP gophboard_message_deliveries_dropped_total Deliveries skipped because a subscriber buffer was full.
# TYPE gophboard_message_deliveries_dropped_total counter
gophboard_message_deliveries_dropped_total 1
# HELP gophboard_messages_published_total Chat messages published to subscribers.
# TYPE gophboard_messages_published_total counter
gophboard_messages_published_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(want),
		"gophboard_message_deliveries_dropped_total", "gophboard_messages_published_total"))
	assert.Equal(t, "one", (<-slow).Content)
}
