package network

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cbodonnell/skirmish/client/state"
	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	lock   sync.Mutex
	open   bool
	err    error
	frames [][]byte
}

func (f *fakeSender) IsOpen() bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.open
}

func (f *fakeSender) Send(ctx context.Context, b []byte) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, b)
	return nil
}

func (f *fakeSender) sent() [][]byte {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([][]byte(nil), f.frames...)
}

func TestPublisher_Publish(t *testing.T) {
	store := state.New()
	sender := &fakeSender{open: true}
	p := NewPublisher(NewPublisherOptions{Sender: sender, Source: store})

	// No client id yet.
	ok, err := p.Publish(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.SetClientID("abc123")
	require.NoError(t, err)
	store.SetInput(messages.NewInputSnapshot([]string{"W", "ArrowLeft", "W"}, kinematic.Vector{X: 2}))

	ok, err = p.Publish(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	frames := sender.sent()
	require.Len(t, frames, 1)
	assert.JSONEq(t, `{"type":"inputSnapshot","payload":{"keysDown":["ArrowLeft","W"],"joystick":{"x":1,"y":0}}}`, string(frames[0]))
	assert.Equal(t, int64(1), p.Sent())
	assert.Equal(t, int64(1), p.Skipped())
}

func TestPublisher_Publish_closed(t *testing.T) {
	store := state.New()
	_, err := store.SetClientID("abc123")
	require.NoError(t, err)
	sender := &fakeSender{open: false}
	p := NewPublisher(NewPublisherOptions{Sender: sender, Source: store})

	ok, err := p.Publish(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, sender.sent())
}

func TestPublisher_Publish_sendError(t *testing.T) {
	store := state.New()
	_, err := store.SetClientID("abc123")
	require.NoError(t, err)
	sendErr := errors.New("broken pipe")
	p := NewPublisher(NewPublisherOptions{Sender: &fakeSender{open: true, err: sendErr}, Source: store})

	ok, err := p.Publish(context.Background())
	assert.ErrorIs(t, err, sendErr)
	assert.False(t, ok)
	assert.Equal(t, int64(0), p.Sent())
}

func TestPublisher_Run(t *testing.T) {
	store := state.New()
	_, err := store.SetClientID("abc123")
	require.NoError(t, err)
	sender := &fakeSender{open: true}
	p := NewPublisher(NewPublisherOptions{Sender: sender, Source: store, Rate: 200})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(sender.sent()) >= 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher did not stop")
	}
	for _, frame := range sender.sent() {
		got, err := messages.DecodeInputSnapshot(frame)
		require.NoError(t, err)
		assert.Empty(t, got.KeysDown)
	}
}
