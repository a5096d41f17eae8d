package schedule

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriageQueueOrdersByUrgency(t *testing.T) {
	q := NewTriageQueue()

	stable := uuid.New()
	critical := uuid.New()
	require.NoError(t, q.Push(stable, 2))
	require.NoError(t, q.Push(critical, 1))

	got, urgency, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, critical, got)
	assert.Equal(t, 1, urgency)

	got, urgency, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, stable, got)
	assert.Equal(t, 2, urgency)
}

func TestTriageQueueEqualUrgencyIsFIFO(t *testing.T) {
	q := NewTriageQueue()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		require.NoError(t, q.Push(id, 3))
	}

	for _, want := range ids {
		got, _, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestTriageQueuePopEmpty(t *testing.T) {
	q := NewTriageQueue()

	id, urgency, ok := q.Pop()
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, id)
	assert.Zero(t, urgency)
}

func TestTriageQueueRejectsInvalidUrgency(t *testing.T) {
	q := NewTriageQueue()

	assert.ErrorIs(t, q.Push(uuid.New(), 0), ErrInvalidUrgency)
	assert.ErrorIs(t, q.Push(uuid.New(), 5), ErrInvalidUrgency)
	assert.Zero(t, q.Len())
}

func TestTriageQueueRemove(t *testing.T) {
	q := NewTriageQueue()

	target := uuid.New()
	other := uuid.New()
	require.NoError(t, q.Push(target, 1))
	require.NoError(t, q.Push(other, 2))
	require.NoError(t, q.Push(target, 4))

	assert.True(t, q.Remove(target))
	assert.Equal(t, 1, q.Len())
	assert.False(t, q.Remove(target))

	got, _, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, other, got)
}
