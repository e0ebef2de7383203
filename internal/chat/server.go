package chat

import (
	"log"
	"sync"

	"github.com/forumhub/forumhub/internal/database"
	"github.com/forumhub/forumhub/internal/presence"
	"github.com/forumhub/forumhub/internal/stats"
)

const (
	statActiveConnections   = "ActiveConnections"
	statMessagesSent        = "MessagesSent"
	statPrivateMessagesSent = "PrivateMessagesSent"
	statLikesGiven          = "LikesGiven"
)

type ChatServer struct {
	log      *log.Logger
	db       database.ForumRepository
	presence *presence.Tracker
	stats    stats.StatsProvider

	// rooms is the broadcast registry, keyed by room name.
	rooms     map[string]*Room
	roomsLock sync.RWMutex

	// users indexes live connections by username for private-message
	// delivery, independent of room membership.
	users     map[string]map[*Client]struct{}
	usersLock sync.RWMutex

	clients     map[*Client]struct{}
	clientsLock sync.Mutex
}

func NewChatServer(logger *log.Logger, db database.ForumRepository, tracker *presence.Tracker, sp stats.StatsProvider) *ChatServer {
	for _, metric := range []string{statActiveConnections, statMessagesSent, statPrivateMessagesSent, statLikesGiven} {
		sp.RegisterMetric(metric)
	}

	return &ChatServer{
		log:      logger,
		db:       db,
		presence: tracker,
		stats:    sp,
		rooms:    make(map[string]*Room),
		users:    make(map[string]map[*Client]struct{}),
		clients:  make(map[*Client]struct{}),
	}
}

func (cs *ChatServer) RegisterClient(c *Client) {
	cs.clientsLock.Lock()
	cs.clients[c] = struct{}{}
	cs.clientsLock.Unlock()

	cs.usersLock.Lock()
	if cs.users[c.user.Username] == nil {
		cs.users[c.user.Username] = make(map[*Client]struct{})
	}
	cs.users[c.user.Username][c] = struct{}{}
	cs.usersLock.Unlock()

	cs.stats.Incr(statActiveConnections)
	cs.log.Printf("registered connection %s for %q", c.connId, c.user.Username)
}

func (cs *ChatServer) DeregisterClient(c *Client) {
	cs.clientsLock.Lock()
	delete(cs.clients, c)
	cs.clientsLock.Unlock()

	cs.usersLock.Lock()
	if conns, ok := cs.users[c.user.Username]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(cs.users, c.user.Username)
		}
	}
	cs.usersLock.Unlock()

	cs.stats.Decr(statActiveConnections)
	cs.log.Printf("deregistered connection %s for %q", c.connId, c.user.Username)
}

// room returns the live broadcast group for name, creating it on first join.
func (cs *ChatServer) room(name string) *Room {
	cs.roomsLock.RLock()
	r, ok := cs.rooms[name]
	cs.roomsLock.RUnlock()
	if ok {
		return r
	}

	cs.roomsLock.Lock()
	defer cs.roomsLock.Unlock()
	if r, ok = cs.rooms[name]; ok {
		return r
	}

	r = newRoom(name, cs.log)
	cs.rooms[name] = r
	return r
}

// lookupRoom returns the live group for name, or nil when no connection has
// joined it.
func (cs *ChatServer) lookupRoom(name string) *Room {
	cs.roomsLock.RLock()
	defer cs.roomsLock.RUnlock()

	return cs.rooms[name]
}

// broadcastToRoom fans an event out to every member of the named group. A
// room nobody has joined simply has no recipients.
func (cs *ChatServer) broadcastToRoom(name string, msg *ServerMessage) {
	if r := cs.lookupRoom(name); r != nil {
		r.broadcast(msg)
	}
}

// sendToUser delivers msg to every live connection for username, so all of a
// user's devices observe the same private-message events.
func (cs *ChatServer) sendToUser(username string, msg *ServerMessage) {
	cs.usersLock.RLock()
	defer cs.usersLock.RUnlock()

	for c := range cs.users[username] {
		if !c.queueMessage(msg) {
			cs.log.Printf("dropped direct message to %q on connection %s", username, c.connId)
		}
	}
}

func (cs *ChatServer) unloadRoomIfEmpty(name string) {
	cs.roomsLock.Lock()
	defer cs.roomsLock.Unlock()

	if r, ok := cs.rooms[name]; ok && r.empty() {
		delete(cs.rooms, name)
	}
}

func (cs *ChatServer) Shutdown() {
	cs.log.Println("shutting down chat server")

	cs.clientsLock.Lock()
	defer cs.clientsLock.Unlock()
	for c := range cs.clients {
		c.stopClient()
	}
}
