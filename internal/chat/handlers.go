package chat

import (
	"errors"

	"github.com/forumhub/forumhub/internal/database"
	"github.com/forumhub/forumhub/internal/types"
)

// dispatch runs the operation carried by msg in the connection's read
// goroutine. Persistence calls are the only blocking points; errors are
// reported to the caller and never tear down the connection.
func (cs *ChatServer) dispatch(c *Client, msg *ClientMessage) {
	cs.presence.Touch(c.user.Username)

	switch {
	case msg.Join != nil:
		cs.handleJoin(c, msg)
	case msg.Leave != nil:
		cs.handleLeave(c, msg)
	case msg.Send != nil:
		cs.handleSend(c, msg)
	case msg.Reply != nil:
		cs.handleReply(c, msg)
	case msg.Like != nil:
		cs.handleLike(c, msg)
	case msg.Unlike != nil:
		cs.handleUnlike(c, msg)
	case msg.Edit != nil:
		cs.handleEdit(c, msg)
	case msg.Delete != nil:
		cs.handleDelete(c, msg)
	case msg.Conversation != nil:
		cs.handleOpenConversation(c, msg)
	case msg.Conversations != nil:
		cs.handleListConversations(c, msg)
	case msg.Private != nil:
		cs.handleSendPrivate(c, msg)
	case msg.MarkRead != nil:
		cs.handleMarkRead(c, msg)
	case msg.PrivateLike != nil:
		cs.handleLikePrivate(c, msg)
	case msg.PrivateEdit != nil:
		cs.handleEditPrivate(c, msg)
	case msg.PrivateDelete != nil:
		cs.handleDeletePrivate(c, msg)
	default:
		c.queueMessage(ErrInvalidMessage(msg.Id))
	}
}

func orCallerUsername(username string, c *Client) string {
	if username == "" {
		return c.user.Username
	}
	return username
}

func orDefaultPicture(path string) string {
	if path == "" {
		return types.DefaultProfilePicture
	}
	return path
}

func messageDTO(msg database.Message) types.Message {
	return types.Message{
		Id:             msg.Id,
		RoomId:         msg.RoomId,
		UserId:         msg.UserId,
		Username:       msg.Username,
		ProfilePicture: orDefaultPicture(msg.ProfilePicture),
		SenderRole:     msg.SenderRole,
		Content:        msg.Content,
		ImagePath:      msg.ImagePath,
		Edited:         msg.Edited,
		ReplyToId:      msg.ReplyToId,
		LikeCount:      msg.LikeCount,
		SentAt:         msg.SentAt,
	}
}

func (cs *ChatServer) handleJoin(c *Client, msg *ClientMessage) {
	if msg.Join.Room == "" {
		c.queueMessage(ErrValidation(msg.Id, "room name is required"))
		return
	}

	cs.room(msg.Join.Room).addClient(c)
	c.queueMessage(NoErrOK(msg.Id))
}

func (cs *ChatServer) handleLeave(c *Client, msg *ClientMessage) {
	// leaving a room the connection never joined is a no-op
	if r := c.getRoom(msg.Leave.Room); r != nil {
		r.removeClient(c)
		cs.unloadRoomIfEmpty(r.name)
	}

	c.queueMessage(NoErrOK(msg.Id))
}

func (cs *ChatServer) handleSend(c *Client, msg *ClientMessage) {
	send := msg.Send
	username := orCallerUsername(send.Username, c)

	if username == "" || send.Room == "" {
		c.queueMessage(ErrValidation(msg.Id, "username and room name are required"))
		return
	}

	user, err := cs.db.GetAccountByUsername(username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrUserNotFound(msg.Id))
		} else {
			cs.log.Println("GetAccountByUsername:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	if send.Content == "" && send.ImagePath == "" {
		c.queueMessage(ErrValidation(msg.Id, "message or image is required"))
		return
	}

	// rooms are provisioned lazily; the first send to an unknown name
	// creates the row inside the send path
	room, err := cs.db.GetOrCreateRoom(send.Room)
	if err != nil {
		cs.log.Println("GetOrCreateRoom:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	role := send.Role
	if role == "" {
		role = user.Role
	}

	created, err := cs.db.CreateMessage(database.CreateMessageParams{
		RoomId:     room.Id,
		UserId:     user.Id,
		Content:    send.Content,
		ImagePath:  send.ImagePath,
		SenderRole: role,
	})
	if err != nil {
		cs.log.Println("CreateMessage:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}
	cs.stats.Incr(statMessagesSent)

	created.Username = user.Username
	created.ProfilePicture = user.ProfilePicture

	cs.broadcastToRoom(room.Name, &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Message:     &MessageReceived{Message: messageDTO(created)},
	})

	// ack the caller with the new id so optimistic UI can reconcile
	c.queueMessage(&ServerMessage{
		BaseMessage: BaseMessage{Id: msg.Id, Timestamp: Now()},
		Sent:        &MessageSent{MessageId: created.Id},
	})
}

func (cs *ChatServer) handleReply(c *Client, msg *ClientMessage) {
	reply := msg.Reply
	username := orCallerUsername(reply.Username, c)

	user, err := cs.db.GetAccountByUsername(username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrUserNotFound(msg.Id))
		} else {
			cs.log.Println("GetAccountByUsername:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	room, err := cs.db.GetRoomByName(reply.Room)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrRoomNotFound(msg.Id))
		} else {
			cs.log.Println("GetRoomByName:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	original, err := cs.db.GetMessageById(reply.ReplyToId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrMessageNotFound(msg.Id))
		} else {
			cs.log.Println("GetMessageById:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	role := reply.Role
	if role == "" {
		role = user.Role
	}

	created, err := cs.db.CreateMessage(database.CreateMessageParams{
		RoomId:     room.Id,
		UserId:     user.Id,
		Content:    reply.Content,
		SenderRole: role,
		ReplyToId:  original.Id,
	})
	if err != nil {
		cs.log.Println("CreateMessage:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}
	cs.stats.Incr(statMessagesSent)

	created.Username = user.Username
	created.ProfilePicture = user.ProfilePicture

	// the original sender and content are snapshotted into the event, not
	// stored with the reply
	cs.broadcastToRoom(room.Name, &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Reply: &ReplyReceived{
			Message:         messageDTO(created),
			OriginalSender:  original.Username,
			OriginalContent: original.Content,
		},
	})

	c.queueMessage(&ServerMessage{
		BaseMessage: BaseMessage{Id: msg.Id, Timestamp: Now()},
		Sent:        &MessageSent{MessageId: created.Id},
	})
}

func (cs *ChatServer) handleLike(c *Client, msg *ClientMessage) {
	username := orCallerUsername(msg.Like.Username, c)

	user, err := cs.db.GetAccountByUsername(username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrUserNotFound(msg.Id))
		} else {
			cs.log.Println("GetAccountByUsername:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	message, err := cs.db.GetMessageById(msg.Like.MessageId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrMessageNotFound(msg.Id))
		} else {
			cs.log.Println("GetMessageById:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	// fast path only; the composite primary key on likes is the real guard
	exists, err := cs.db.LikeExists(message.Id, user.Id)
	if err != nil {
		cs.log.Println("LikeExists:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}
	if exists {
		c.queueMessage(ErrAlreadyLiked(msg.Id))
		return
	}

	if err := cs.db.CreateLike(message.Id, user.Id); err != nil {
		if errors.Is(err, database.ErrAlreadyLiked) {
			// lost the race to a concurrent like from the same user
			c.queueMessage(ErrAlreadyLiked(msg.Id))
		} else {
			cs.log.Println("CreateLike:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}
	cs.stats.Incr(statLikesGiven)

	// recount instead of incrementing so concurrent likes from other users
	// always broadcast a count that was true at some instant
	count, err := cs.db.CountLikes(message.Id)
	if err != nil {
		cs.log.Println("CountLikes:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	cs.broadcastToRoom(message.RoomName, &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		LikeStatus:  &LikeStatusUpdate{MessageId: message.Id, Liked: true, Count: count},
	})
}

func (cs *ChatServer) handleUnlike(c *Client, msg *ClientMessage) {
	username := orCallerUsername(msg.Unlike.Username, c)

	user, err := cs.db.GetAccountByUsername(username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrUserNotFound(msg.Id))
		} else {
			cs.log.Println("GetAccountByUsername:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	message, err := cs.db.GetMessageById(msg.Unlike.MessageId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrMessageNotFound(msg.Id))
		} else {
			cs.log.Println("GetMessageById:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	if err := cs.db.DeleteLike(message.Id, user.Id); err != nil {
		if errors.Is(err, database.ErrLikeNotFound) {
			c.queueMessage(ErrLikeNotFound(msg.Id))
		} else {
			cs.log.Println("DeleteLike:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	count, err := cs.db.CountLikes(message.Id)
	if err != nil {
		cs.log.Println("CountLikes:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	cs.broadcastToRoom(message.RoomName, &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		LikeStatus:  &LikeStatusUpdate{MessageId: message.Id, Liked: false, Count: count},
	})
}

func (cs *ChatServer) handleEdit(c *Client, msg *ClientMessage) {
	edit := msg.Edit
	username := orCallerUsername(edit.Username, c)

	message, err := cs.db.GetMessageById(edit.MessageId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrMessageNotFound(msg.Id))
		} else {
			cs.log.Println("GetMessageById:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	if message.Username != username {
		c.queueMessage(ErrForbidden(msg.Id, "you can only edit your own messages"))
		return
	}

	if err := cs.db.UpdateMessageContent(message.Id, edit.NewContent); err != nil {
		cs.log.Println("UpdateMessageContent:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	cs.broadcastToRoom(message.RoomName, &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Edited:      &MessageEdited{MessageId: message.Id, NewContent: edit.NewContent},
	})
}

func (cs *ChatServer) handleDelete(c *Client, msg *ClientMessage) {
	del := msg.Delete
	username := orCallerUsername(del.Username, c)

	message, err := cs.db.GetMessageById(del.MessageId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrMessageNotFound(msg.Id))
		} else {
			cs.log.Println("GetMessageById:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	if message.Username != username {
		c.queueMessage(ErrForbidden(msg.Id, "you can only delete your own messages"))
		return
	}

	if err := cs.db.DeleteMessage(message.Id); err != nil {
		cs.log.Println("DeleteMessage:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	// clients remove the message from view themselves; only the id travels
	cs.broadcastToRoom(message.RoomName, &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Deleted:     &MessageDeleted{MessageId: message.Id},
	})
}
