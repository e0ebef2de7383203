package chat

import (
	"log"
	"sync"
)

// Room is a named broadcast group of live connections. Membership is
// connection scoped and held only in memory; a reconnecting client rebuilds
// it by joining again. The room registry key is the room's name, which is
// also how the wire protocol addresses rooms; the persisted Room row is a
// separate concern resolved by the store.
type Room struct {
	name       string
	clients    map[*Client]struct{}
	clientLock sync.RWMutex
	log        *log.Logger
}

func newRoom(name string, logger *log.Logger) *Room {
	return &Room{
		name:    name,
		clients: make(map[*Client]struct{}),
		log:     logger,
	}
}

// addClient adds a connection to the group. Joining twice is a no-op.
func (r *Room) addClient(c *Client) {
	r.clientLock.Lock()
	defer r.clientLock.Unlock()

	r.clients[c] = struct{}{}
	c.addRoom(r)
}

// removeClient is safe to call for a connection that is not a member.
func (r *Room) removeClient(c *Client) {
	r.clientLock.Lock()
	defer r.clientLock.Unlock()

	if _, ok := r.clients[c]; !ok {
		return
	}

	delete(r.clients, c)
	c.delRoom(r.name)
}

func (r *Room) empty() bool {
	r.clientLock.RLock()
	defer r.clientLock.RUnlock()

	return len(r.clients) == 0
}

// broadcast queues msg on every member connection. Delivery is best effort:
// a client whose send buffer is full misses the event.
func (r *Room) broadcast(msg *ServerMessage) {
	r.clientLock.RLock()
	defer r.clientLock.RUnlock()

	for client := range r.clients {
		if !client.queueMessage(msg) {
			r.log.Printf("dropped broadcast to %q in room %q", client.user.Username, r.name)
		}
	}
}
