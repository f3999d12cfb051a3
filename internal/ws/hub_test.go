package ws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go-inventory-pos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	fail     bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func TestHubDeliversByAudience(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	owner := &fakeConn{}
	cashier := &fakeConn{}
	hub.Register(Client{Conn: owner, Role: model.RoleOwner})
	hub.Register(Client{Conn: cashier, Role: model.RoleCashier})

	require.True(t, hub.Broadcast(Message{Payload: []byte(`{"type":"reversal.requested"}`), Audience: []model.Role{model.RoleOwner}}))
	require.True(t, hub.Broadcast(Message{Payload: []byte(`{"type":"sale.completed"}`)}))

	assert.Eventually(t, func() bool { return owner.received() == 2 && cashier.received() == 1 }, time.Second, 10*time.Millisecond)
}

func TestHubDropsFailingClients(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	broken := &fakeConn{fail: true}
	hub.Register(Client{Conn: broken, Role: model.RoleOwner})
	hub.Broadcast(Message{Payload: []byte("x")})

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	broken.mu.Lock()
	defer broken.mu.Unlock()
	assert.True(t, broken.closed)
}

func TestBroadcastAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	hub.Stop()
	hub.Stop()
	// the buffered channel may still accept; either outcome must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Broadcast(Message{Payload: []byte("x")})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked after stop")
	}
}
