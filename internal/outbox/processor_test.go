package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"relay-chat/internal/domain/outbox"
	"relay-chat/internal/events"
	"relay-chat/internal/repository"
	"relay-chat/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	channel string
	payload []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	err  error
	sent []published
}

func (f *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{channel: channel, payload: payload})
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func seedEvent(t *testing.T, repo repository.OutboxRepository, conversationID uuid.UUID) outbox.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(events.MessageCreated{ConversationID: conversationID, Content: "hi"})
	require.NoError(t, err)
	e := &outbox.OutboxEvent{
		EventType:     events.EventTypeMessageCreated,
		AggregateType: events.AggregateConversation,
		AggregateID:   conversationID.String(),
		Payload:       payload,
	}
	require.NoError(t, repo.Create(context.Background(), e))
	return *e
}

func TestProcessBatch_PublishesAndCompletes(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewOutboxRepository(db)
	pub := &fakePublisher{}
	p := NewProcessor(repo, pub, nil, 10, time.Second, 3)

	convID := uuid.New()
	seedEvent(t, repo, convID)

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "channel:conversation:"+convID.String(), pub.sent[0].channel)

	var env events.Envelope
	require.NoError(t, json.Unmarshal(pub.sent[0].payload, &env))
	assert.Equal(t, events.EventTypeMessageCreated, env.EventType)
	assert.Equal(t, convID.String(), env.AggregateID)

	var body events.MessageCreated
	require.NoError(t, json.Unmarshal(env.Payload, &body))
	assert.Equal(t, "hi", body.Content)

	pending, err := repo.GetPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessBatch_RetriesThenFails(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewOutboxRepository(db)
	pub := &fakePublisher{err: errors.New("redis down")}
	p := NewProcessor(repo, pub, nil, 10, time.Second, 2)

	e := seedEvent(t, repo, uuid.New())

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var stored outbox.OutboxEvent
	require.NoError(t, db.First(&stored, "id = ?", e.ID).Error)
	assert.Equal(t, outbox.StatusPending, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Equal(t, "redis down", stored.Error)

	_, err = p.ProcessBatch(context.Background())
	require.NoError(t, err)

	require.NoError(t, db.First(&stored, "id = ?", e.ID).Error)
	assert.Equal(t, outbox.StatusFailed, stored.Status)

	pending, err := repo.GetPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewOutboxRepository(db)
	pub := &fakePublisher{}
	seedEvent(t, repo, uuid.New())

	runner := NewRunner(NewProcessor(repo, pub, nil, 10, 10*time.Millisecond, 3))
	ctx, cancel := context.WithCancel(context.Background())
	runner.Start(ctx)

	assert.Eventually(t, func() bool { return pub.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	runner.Wait()
}
