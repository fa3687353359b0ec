package streamdeck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_UnknownEventInvokesNothing(t *testing.T) {
	calls := 0
	d, err := NewDispatcher(RolePlugin, Handlers{
		EventKeyDown: func(context.Context, Envelope) { calls++ },
	})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		assert.False(t, d.Dispatch(context.Background(), []byte(`{"event":"doesNotExist"}`)))
		assert.False(t, d.Dispatch(context.Background(), []byte(`{"event":""}`)))
		assert.False(t, d.Dispatch(context.Background(), []byte(`garbage`)))
	})
	assert.Equal(t, 0, calls)

	assert.True(t, d.Dispatch(context.Background(), []byte(`{"event":"keyDown"}`)))
	assert.Equal(t, 1, calls)
}

func TestDispatcher_EventNamesAreExact(t *testing.T) {
	calls := 0
	d, err := NewDispatcher(RolePlugin, Handlers{
		EventWillAppear: func(context.Context, Envelope) { calls++ },
	})
	require.NoError(t, err)

	d.Dispatch(context.Background(), []byte(`{"event":"WillAppear"}`))
	d.Dispatch(context.Background(), []byte(`{"event":"willappear"}`))
	assert.Equal(t, 0, calls)
}

func TestDispatcher_NilHandlersAreSkipped(t *testing.T) {
	d, err := NewDispatcher(RoleInspector, Handlers{
		EventDidReceiveSettings: nil,
	})
	require.NoError(t, err)
	assert.False(t, d.Handles(EventDidReceiveSettings))
	assert.False(t, d.Dispatch(context.Background(), []byte(`{"event":"didReceiveSettings"}`)))
}

func TestRole_CapabilitySets(t *testing.T) {
	assert.True(t, RolePlugin.Accepts(EventKeyDown))
	assert.True(t, RolePlugin.Accepts(EventDidReceiveGlobalSettings))
	assert.False(t, RolePlugin.Accepts(EventSendToPropertyInspector))

	assert.True(t, RoleInspector.Accepts(EventSendToPropertyInspector))
	assert.False(t, RoleInspector.Accepts(EventKeyDown))
}
