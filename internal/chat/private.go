package chat

import (
	"errors"

	"github.com/forumhub/forumhub/internal/database"
	"github.com/forumhub/forumhub/internal/types"
)

// conversationHistoryLimit bounds the history returned when a conversation is
// opened. Older messages are reachable over the HTTP history endpoint.
const conversationHistoryLimit = 50

func privateMessageDTO(pm database.PrivateMessage, viewerId int) types.PrivateMessage {
	return types.PrivateMessage{
		Id:                pm.Id,
		ConversationId:    pm.ConversationId,
		SenderId:          pm.SenderId,
		SenderName:        pm.SenderName,
		SenderProfilePic:  orDefaultPicture(pm.SenderProfilePic),
		ReceiverId:        pm.ReceiverId,
		Content:           pm.Content,
		ImagePath:         pm.ImagePath,
		Read:              pm.Read,
		Edited:            pm.Edited,
		ReplyToId:         pm.ReplyToId,
		ReplyToContent:    pm.ReplyToContent,
		ReplyToSenderName: pm.ReplyToSenderName,
		LikeCount:         pm.LikeCount,
		FromCurrentUser:   pm.SenderId == viewerId,
		SentAt:            pm.SentAt,
	}
}

func (cs *ChatServer) lookupAccount(c *Client, msgId int, username string) (database.User, bool) {
	user, err := cs.db.GetAccountByUsername(username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrUserNotFound(msgId))
		} else {
			cs.log.Println("GetAccountByUsername:", err)
			c.queueMessage(ErrInternalError(msgId))
		}
		return database.User{}, false
	}
	return user, true
}

// resolveConversation returns the single conversation between the two users,
// creating it when absent. A concurrent create by the counterpart loses the
// unique-index race and re-fetches.
func (cs *ChatServer) resolveConversation(userAId, userBId int) (database.Conversation, bool, error) {
	conv, err := cs.db.GetConversationByUsers(userAId, userBId)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return database.Conversation{}, false, err
	}

	conv, err = cs.db.CreateConversation(userAId, userBId)
	if err == nil {
		return conv, true, nil
	}
	if errors.Is(err, database.ErrConversationExists) {
		conv, err = cs.db.GetConversationByUsers(userAId, userBId)
		return conv, false, err
	}

	return database.Conversation{}, false, err
}

func (cs *ChatServer) handleOpenConversation(c *Client, msg *ClientMessage) {
	open := msg.Conversation
	username := orCallerUsername(open.Username, c)

	if open.OtherUsername == "" || open.OtherUsername == username {
		c.queueMessage(ErrValidation(msg.Id, "a conversation needs a different counterpart"))
		return
	}

	user, ok := cs.lookupAccount(c, msg.Id, username)
	if !ok {
		return
	}
	other, ok := cs.lookupAccount(c, msg.Id, open.OtherUsername)
	if !ok {
		return
	}

	conv, created, err := cs.resolveConversation(user.Id, other.Id)
	if err != nil {
		cs.log.Println("resolveConversation:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	loaded := &ConversationLoaded{
		ConversationId: conv.Id,
		OtherUsername:  other.Username,
		OtherPicture:   orDefaultPicture(other.ProfilePicture),
		Messages:       []types.PrivateMessage{},
	}

	if !created {
		if err := cs.db.UpdateLastViewed(conv.Id, user.Id); err != nil {
			cs.log.Println("UpdateLastViewed:", err)
			c.queueMessage(ErrInternalError(msg.Id))
			return
		}

		history, err := cs.db.GetConversationMessages(conv.Id, conversationHistoryLimit)
		if err != nil {
			cs.log.Println("GetConversationMessages:", err)
			c.queueMessage(ErrInternalError(msg.Id))
			return
		}

		// opening the conversation acknowledges everything in it
		if err := cs.db.MarkConversationRead(conv.Id, user.Id); err != nil {
			cs.log.Println("MarkConversationRead:", err)
			c.queueMessage(ErrInternalError(msg.Id))
			return
		}

		for _, pm := range history {
			loaded.Messages = append(loaded.Messages, privateMessageDTO(pm, user.Id))
		}
	}

	c.queueMessage(&ServerMessage{
		BaseMessage:  BaseMessage{Id: msg.Id, Timestamp: Now()},
		Conversation: loaded,
	})
}

func (cs *ChatServer) handleListConversations(c *Client, msg *ClientMessage) {
	username := orCallerUsername(msg.Conversations.Username, c)

	user, ok := cs.lookupAccount(c, msg.Id, username)
	if !ok {
		return
	}

	entries, err := cs.db.ListConversations(user.Id)
	if err != nil {
		cs.log.Println("ListConversations:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	summaries := make([]types.ConversationSummary, 0, len(entries))
	for _, entry := range entries {
		summaries = append(summaries, types.ConversationSummary{
			ConversationId:  entry.ConversationId,
			Username:        entry.OtherUsername,
			ProfilePicture:  orDefaultPicture(entry.OtherProfilePic),
			LastMessage:     entry.LastMessage,
			LastMessageTime: entry.LastMessageTime,
			UnreadCount:     entry.UnreadCount,
			LastViewedAt:    entry.LastViewedAt,
		})
	}

	c.queueMessage(&ServerMessage{
		BaseMessage:   BaseMessage{Id: msg.Id, Timestamp: Now()},
		Conversations: &ConversationList{Conversations: summaries},
	})
}

func (cs *ChatServer) handleSendPrivate(c *Client, msg *ClientMessage) {
	send := msg.Private
	senderName := orCallerUsername(send.Sender, c)

	if send.Receiver == "" || send.Receiver == senderName {
		c.queueMessage(ErrValidation(msg.Id, "a private message needs a different receiver"))
		return
	}
	if send.Content == "" && send.ImagePath == "" {
		c.queueMessage(ErrValidation(msg.Id, "message or image is required"))
		return
	}

	sender, ok := cs.lookupAccount(c, msg.Id, senderName)
	if !ok {
		return
	}
	receiver, ok := cs.lookupAccount(c, msg.Id, send.Receiver)
	if !ok {
		return
	}

	conv, _, err := cs.resolveConversation(sender.Id, receiver.Id)
	if err != nil {
		cs.log.Println("resolveConversation:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	if err := cs.db.TouchConversation(conv.Id); err != nil {
		cs.log.Println("TouchConversation:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	created, err := cs.db.CreatePrivateMessage(database.CreatePrivateMessageParams{
		ConversationId: conv.Id,
		SenderId:       sender.Id,
		ReceiverId:     receiver.Id,
		Content:        send.Content,
		ImagePath:      send.ImagePath,
		ReplyToId:      send.ReplyToId,
	})
	if err != nil {
		cs.log.Println("CreatePrivateMessage:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}
	cs.stats.Incr(statPrivateMessagesSent)

	created.SenderName = sender.Username
	created.SenderProfilePic = sender.ProfilePicture

	// every device of the sender sees the message as outgoing, every device
	// of the receiver as incoming
	cs.sendToUser(sender.Username, &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Private: &PrivateReceived{
			ConversationId: conv.Id,
			Counterpart:    receiver.Username,
			FromSelf:       true,
			Message:        privateMessageDTO(created, sender.Id),
		},
	})
	cs.sendToUser(receiver.Username, &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Private: &PrivateReceived{
			ConversationId: conv.Id,
			Counterpart:    sender.Username,
			FromSelf:       false,
			Message:        privateMessageDTO(created, receiver.Id),
		},
	})

	unread, err := cs.db.CountUnread(conv.Id, receiver.Id)
	if err != nil {
		cs.log.Println("CountUnread:", err)
		unread = 0
	}

	// separate lightweight notice so receivers not viewing the conversation
	// can surface a toast without rendering the full message
	cs.sendToUser(receiver.Username, &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		PrivateNotice: &NewPrivateMessage{
			ConversationId: conv.Id,
			Sender:         sender.Username,
			SenderPicture:  orDefaultPicture(sender.ProfilePicture),
			Content:        created.Content,
			UnreadCount:    unread,
		},
	})
}

func (cs *ChatServer) handleMarkRead(c *Client, msg *ClientMessage) {
	username := orCallerUsername(msg.MarkRead.Username, c)

	user, ok := cs.lookupAccount(c, msg.Id, username)
	if !ok {
		return
	}

	conv, err := cs.db.GetConversationById(msg.MarkRead.ConversationId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrConversationNotFound(msg.Id))
		} else {
			cs.log.Println("GetConversationById:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	if !conv.HasParticipant(user.Id) {
		c.queueMessage(ErrForbidden(msg.Id, "you are not part of this conversation"))
		return
	}

	if err := cs.db.UpdateLastViewed(conv.Id, user.Id); err != nil {
		cs.log.Println("UpdateLastViewed:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}
	if err := cs.db.MarkConversationRead(conv.Id, user.Id); err != nil {
		cs.log.Println("MarkConversationRead:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	other, err := cs.db.GetAccountById(conv.Other(user.Id))
	if err != nil {
		cs.log.Println("GetAccountById:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	// tell the counterpart their messages were seen
	cs.sendToUser(other.Username, &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		PrivateRead: &PrivateMessagesRead{ConversationId: conv.Id},
	})

	c.queueMessage(NoErrOK(msg.Id))
}

// privateMessageParticipants resolves a private message and the usernames of
// both sides of its conversation.
func (cs *ChatServer) privateMessageParticipants(c *Client, msgId, privateMessageId int) (database.PrivateMessage, database.User, database.User, bool) {
	pm, err := cs.db.GetPrivateMessageById(privateMessageId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrMessageNotFound(msgId))
		} else {
			cs.log.Println("GetPrivateMessageById:", err)
			c.queueMessage(ErrInternalError(msgId))
		}
		return database.PrivateMessage{}, database.User{}, database.User{}, false
	}

	sender, err := cs.db.GetAccountById(pm.SenderId)
	if err != nil {
		cs.log.Println("GetAccountById:", err)
		c.queueMessage(ErrInternalError(msgId))
		return database.PrivateMessage{}, database.User{}, database.User{}, false
	}
	receiver, err := cs.db.GetAccountById(pm.ReceiverId)
	if err != nil {
		cs.log.Println("GetAccountById:", err)
		c.queueMessage(ErrInternalError(msgId))
		return database.PrivateMessage{}, database.User{}, database.User{}, false
	}

	return pm, sender, receiver, true
}

func (cs *ChatServer) sendToParticipants(sender, receiver database.User, msg *ServerMessage) {
	cs.sendToUser(sender.Username, msg)
	cs.sendToUser(receiver.Username, msg)
}

func (cs *ChatServer) handleLikePrivate(c *Client, msg *ClientMessage) {
	pm, sender, receiver, ok := cs.privateMessageParticipants(c, msg.Id, msg.PrivateLike.MessageId)
	if !ok {
		return
	}

	count, err := cs.db.IncrementPrivateMessageLikes(pm.Id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.queueMessage(ErrMessageNotFound(msg.Id))
		} else {
			cs.log.Println("IncrementPrivateMessageLikes:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}
	cs.stats.Incr(statLikesGiven)

	cs.sendToParticipants(sender, receiver, &ServerMessage{
		BaseMessage:  BaseMessage{Timestamp: Now()},
		PrivateLiked: &PrivateMessageLiked{MessageId: pm.Id, Count: count},
	})
}

func (cs *ChatServer) handleEditPrivate(c *Client, msg *ClientMessage) {
	edit := msg.PrivateEdit
	username := orCallerUsername(edit.Username, c)

	pm, sender, receiver, ok := cs.privateMessageParticipants(c, msg.Id, edit.MessageId)
	if !ok {
		return
	}

	if sender.Username != username {
		c.queueMessage(ErrForbidden(msg.Id, "you can only edit your own messages"))
		return
	}

	if err := cs.db.UpdatePrivateMessageContent(pm.Id, edit.NewContent); err != nil {
		cs.log.Println("UpdatePrivateMessageContent:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	cs.sendToParticipants(sender, receiver, &ServerMessage{
		BaseMessage:   BaseMessage{Timestamp: Now()},
		PrivateEdited: &PrivateMessageEdited{MessageId: pm.Id, NewContent: edit.NewContent},
	})
}

func (cs *ChatServer) handleDeletePrivate(c *Client, msg *ClientMessage) {
	del := msg.PrivateDelete
	username := orCallerUsername(del.Username, c)

	pm, sender, receiver, ok := cs.privateMessageParticipants(c, msg.Id, del.MessageId)
	if !ok {
		return
	}

	if sender.Username != username {
		c.queueMessage(ErrForbidden(msg.Id, "you can only delete your own messages"))
		return
	}

	if err := cs.db.DeletePrivateMessage(pm.Id); err != nil {
		cs.log.Println("DeletePrivateMessage:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	cs.sendToParticipants(sender, receiver, &ServerMessage{
		BaseMessage:    BaseMessage{Timestamp: Now()},
		PrivateDeleted: &PrivateMessageDeleted{MessageId: pm.Id},
	})
}
