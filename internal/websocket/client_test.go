package websocket

import (
	"testing"
	"time"

	wstypes "flota-service/internal/domain/websocket"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient() *Client {
	hub := NewHub(nil, zap.NewNop())
	return NewClient(hub, nil, &ClientAuth{UserID: 1, JTI: "jti-1"})
}

func TestSendMessageQueues(t *testing.T) {
	c := newTestClient()

	c.SendMessage(wstypes.NewMessage(wstypes.EventTypePong, nil))

	assert.Len(t, c.send, 1)
	select {
	case <-c.ctx.Done():
		t.Fatal("a healthy client must stay connected")
	default:
	}
}

func TestSendMessageFullBufferDoesNotBlockSender(t *testing.T) {
	c := newTestClient()
	for i := 0; i < cap(c.send); i++ {
		c.send <- []byte("backlog")
	}

	// Nothing drains unregister here, mirroring a send issued from the hub's
	// own loop. The call must still return.
	done := make(chan struct{})
	go func() {
		c.SendMessage(wstypes.NewMessage(wstypes.EventTypePong, nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("SendMessage blocked on a saturated client")
	}

	select {
	case <-c.ctx.Done():
	default:
		t.Fatal("a client that cannot keep up must be torn down")
	}
}
