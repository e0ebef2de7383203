package chat

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/forumhub/forumhub/internal/types"
	"github.com/gorilla/websocket"
	"github.com/teris-io/shortid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Client struct {
	connId     string
	conn       *websocket.Conn
	chatServer *ChatServer
	log        *log.Logger
	user       types.User
	send       chan *ServerMessage
	rooms      map[string]*Room
	roomsLock  sync.RWMutex
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewClient(user types.User, conn *websocket.Conn, cs *ChatServer, l *log.Logger) *Client {
	connId, err := shortid.Generate()
	if err != nil {
		connId = "unknown"
	}

	return &Client{
		connId:     connId,
		conn:       conn,
		chatServer: cs,
		log:        l,
		user:       user,
		send:       make(chan *ServerMessage, 256),
		rooms:      make(map[string]*Room),
		stop:       make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(msg)
			if err != nil {
				c.log.Println("failed to serialize message:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("error parsing message:", err)
			c.queueMessage(ErrInvalidMessage(-1))
			continue
		}

		msg.client = c
		msg.Timestamp = Now()

		c.chatServer.dispatch(c, &msg)
	}
}

func (c *Client) queueMessage(msg *ServerMessage) bool {
	select {
	case c.send <- msg:
	default:
		c.log.Printf("send buffer full on connection %s", c.connId)
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

func (c *Client) cleanup() {
	c.leaveAllRooms()
	c.chatServer.DeregisterClient(c)
	c.stopClient()
}

func (c *Client) leaveAllRooms() {
	c.roomsLock.RLock()
	rooms := make([]*Room, 0, len(c.rooms))
	for _, room := range c.rooms {
		rooms = append(rooms, room)
	}
	c.roomsLock.RUnlock()

	for _, room := range rooms {
		room.removeClient(c)
		c.chatServer.unloadRoomIfEmpty(room.name)
	}
}

func (c *Client) addRoom(r *Room) {
	c.roomsLock.Lock()
	defer c.roomsLock.Unlock()

	c.rooms[r.name] = r
}

func (c *Client) delRoom(name string) {
	c.roomsLock.Lock()
	defer c.roomsLock.Unlock()

	delete(c.rooms, name)
}

func (c *Client) getRoom(name string) *Room {
	c.roomsLock.RLock()
	defer c.roomsLock.RUnlock()

	return c.rooms[name]
}
