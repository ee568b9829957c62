package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	topics []string
	events []Event
	err    error
}

func (r *recorder) PublishEvent(_ context.Context, topic string, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.events = append(r.events, e)
	return r.err
}

func TestEvent_Key(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "12", Event{UserID: 12, ScopeID: 3}.Key())
	assert.Equal(t, "3", Event{ScopeID: 3}.Key())
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	t.Parallel()

	ok := &recorder{}
	broken := &recorder{err: errors.New("broker down")}
	m := Multi{ok, broken, Nop{}}

	err := m.PublishEvent(context.Background(), TopicUsers, Event{Type: UserRegistered, UserID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, broken.err)

	require.Len(t, ok.events, 1)
	assert.Equal(t, UserRegistered, ok.events[0].Type)
	assert.Equal(t, []string{TopicUsers}, broken.topics)
}

func TestMulti_Empty(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Multi{}.PublishEvent(context.Background(), TopicScopes, Event{}))
}
