package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherKeepsGoingAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var calls []string
	d.Subscribe(EventIncidentDeleted, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventIncidentDeleted, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.IncidentID)
		return nil
	})
	d.Subscribe(EventStaffChanged, func(context.Context, Event) error {
		calls = append(calls, "unrelated")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventIncidentDeleted, IncidentID: "INC-1"}))
	assert.Equal(t, []string{"first", "second:INC-1"}, calls)
}
