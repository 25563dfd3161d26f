package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenroute/backend/internal/models"
)

func TestRedisSinkPublishes(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	sink := NewRedisSink(mr.Addr(), "", 0, "")
	defer sink.Close()
	ctx := context.Background()
	require.NoError(t, sink.Ping(ctx))
	assert.Equal(t, "dispatch.events", sink.Channel)

	sub := sink.Client.Subscribe(ctx, sink.Channel)
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	ev := models.LifecycleEvent{ID: "e1", Name: AssignmentCreated, EntityID: "a1", OccurredAt: time.Now().UTC()}
	require.NoError(t, sink.Publish(ctx, ev))

	select {
	case msg := <-sub.Channel():
		var got models.LifecycleEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "e1", got.ID)
		assert.Equal(t, AssignmentCreated, got.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestRedisSinkReportsConnectionErrors(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	sink := NewRedisSink(mr.Addr(), "", 0, "events")
	defer sink.Close()
	mr.Close()

	err = sink.Publish(context.Background(), models.LifecycleEvent{ID: "e1"})
	assert.Error(t, err)
}
