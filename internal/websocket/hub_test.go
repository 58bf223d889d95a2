package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	ownerID  uuid.UUID
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string, ownerID uuid.UUID) *mockClient {
	return &mockClient{
		id:       id,
		ownerID:  ownerID,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) OwnerID() uuid.UUID {
	return m.ownerID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	owner1 := uuid.New()
	owner2 := uuid.New()

	client1 := newMockClient("client-1", owner1)
	client2 := newMockClient("client-2", owner1)
	client3 := newMockClient("client-3", owner2)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(owner1))
	assert.Equal(t, 1, hub.ClientCount(owner2))
	assert.Equal(t, 0, hub.ClientCount(uuid.New()))

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(owner1))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(owner1))
	assert.Equal(t, 0, hub.ClientCount(owner2))
}

func TestHub_Broadcast_OwnerIsolation(t *testing.T) {
	hub := NewHub()

	owner1 := uuid.New()
	owner2 := uuid.New()

	client1a := newMockClient("client-1a", owner1)
	client1b := newMockClient("client-1b", owner1)
	client2 := newMockClient("client-2", owner2)

	hub.Register(client1a)
	hub.Register(client1b)
	hub.Register(client2)

	evt := InstancePaid(map[string]interface{}{"id": float64(42)})
	hub.Broadcast(owner1, evt)

	// Give goroutines time to process
	time.Sleep(10 * time.Millisecond)

	msgs1a := client1a.GetMessages()
	msgs1b := client1b.GetMessages()
	assert.Len(t, msgs1a, 1, "client1a should receive 1 message")
	assert.Len(t, msgs1b, 1, "client1b should receive 1 message")

	msgs2 := client2.GetMessages()
	assert.Len(t, msgs2, 0, "client2 should not receive another owner's event")
}

func TestHub_Broadcast_MultipleFanOut(t *testing.T) {
	hub := NewHub()

	owner := uuid.New()
	clients := make([]*mockClient, 5)
	for i := 0; i < 5; i++ {
		clients[i] = newMockClient("client-"+string(rune('a'+i)), owner)
		hub.Register(clients[i])
	}

	evt := InstanceUpdated(map[string]interface{}{"id": float64(1)})
	hub.Broadcast(owner, evt)

	time.Sleep(10 * time.Millisecond)

	for i, c := range clients {
		msgs := c.GetMessages()
		assert.Len(t, msgs, 1, "client %d should receive message", i)
	}
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50

	owners := make([]uuid.UUID, 5)
	for i := range owners {
		owners[i] = uuid.New()
	}

	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient("client-"+string(rune(i)), owners[i%5])
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}

	wg.Wait()

	total := 0
	for _, owner := range owners {
		total += hub.ClientCount(owner)
	}
	assert.Equal(t, clientCount, total)

	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			evt := InstanceCreated(map[string]interface{}{"id": float64(idx)})
			hub.Broadcast(owners[idx%5], evt)
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}

	wg.Wait()

	for _, owner := range owners {
		assert.Equal(t, 0, hub.ClientCount(owner))
	}
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1", uuid.New())

	require.NotPanics(t, func() {
		hub.Unregister(client)
	})
}

func TestHub_BroadcastToUnknownOwner(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		evt := InstanceCreated(map[string]interface{}{"id": float64(1)})
		hub.Broadcast(uuid.New(), evt)
	})
}
