package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenCmd(t *testing.T) {
	b := NewBroker[string]()
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewContinuousListener[string](ctx, b)
	b.Publish(UpdatedEvent, "entry one")
	msg := l.Listen()()
	ev, ok := msg.(Event[string])
	require.True(t, ok)
	require.Equal(t, "entry one", ev.Payload)

	b.Publish(UpdatedEvent, "entry two")
	ev = l.Listen()().(Event[string])
	require.Equal(t, "entry two", ev.Payload)
}

func TestListenCmd_Done(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Nil(t, ListenCmd(ctx, make(chan Event[int]))())

	closed := make(chan Event[int])
	close(closed)
	require.Nil(t, ListenCmd(context.Background(), closed)())
}
