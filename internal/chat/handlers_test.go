package chat

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/forumhub/forumhub/internal/database"
	"github.com/forumhub/forumhub/internal/stats"
	"github.com/stretchr/testify/assert"
)

func Test_dispatch_unknownOperation(t *testing.T) {
	cs := newTestChatServer(t, &database.MockForumRepository{}, &stats.MockStatsUpdater{})
	c := newTestClient(t, 1, "alice")

	cs.dispatch(c, &ClientMessage{BaseMessage: BaseMessage{Id: 7}})

	select {
	case msg := <-c.send:
		assert.NotNil(t, msg.Response, "expected error response")
		assert.Equal(t, 7, msg.Id, "expected response id to match request id")
		assert.Equal(t, http.StatusBadRequest, msg.Response.ResponseCode, "expected response code 400")
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout: client did not receive response message")
	}
}

func Test_handleJoin(t *testing.T) {
	t.Run("join creates live room and acks", func(t *testing.T) {
		cs := newTestChatServer(t, &database.MockForumRepository{}, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")

		cs.handleJoin(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 1, Timestamp: Now()},
			Join:        &JoinRoom{Room: "General"},
		})

		r := cs.lookupRoom("General")
		assert.NotNil(t, r, "expected live room after join")
		assert.Contains(t, r.clients, c, "expected client to be a member")

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected ack response")
			assert.Equal(t, http.StatusOK, msg.Response.ResponseCode, "expected response code 200")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
	})

	t.Run("join without room name", func(t *testing.T) {
		cs := newTestChatServer(t, &database.MockForumRepository{}, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")

		cs.handleJoin(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 1, Timestamp: Now()},
			Join:        &JoinRoom{},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected error response")
			assert.Equal(t, http.StatusBadRequest, msg.Response.ResponseCode, "expected response code 400")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
	})
}

func Test_handleLeave(t *testing.T) {
	t.Run("leave joined room", func(t *testing.T) {
		cs := newTestChatServer(t, &database.MockForumRepository{}, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")
		cs.room("General").addClient(c)

		cs.handleLeave(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 2, Timestamp: Now()},
			Leave:       &LeaveRoom{Room: "General"},
		})

		assert.Nil(t, cs.lookupRoom("General"), "expected empty room to be unloaded after leave")
		assert.Nil(t, c.getRoom("General"), "expected room to be removed from client's rooms")

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected ack response")
			assert.Equal(t, http.StatusOK, msg.Response.ResponseCode, "expected response code 200")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
	})

	t.Run("leave room never joined", func(t *testing.T) {
		cs := newTestChatServer(t, &database.MockForumRepository{}, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")

		cs.handleLeave(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 2, Timestamp: Now()},
			Leave:       &LeaveRoom{Room: "General"},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected ack response")
			assert.Equal(t, http.StatusOK, msg.Response.ResponseCode, "expected leave of unjoined room to ack")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
	})
}

func Test_handleSend(t *testing.T) {
	t.Run("send broadcasts to room members and acks sender", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		su := &stats.MockStatsUpdater{}
		su.On("Incr", statMessagesSent).Once()
		defer su.AssertExpectations(t)

		cs := newTestChatServer(t, db, su)

		alice := newTestClient(t, 1, "alice")
		bob := newTestClient(t, 2, "bob")
		cs.room("General").addClient(alice)
		cs.room("General").addClient(bob)

		db.On("GetAccountByUsername", "alice").Return(database.User{Id: 1, Username: "alice", Role: "Member"}, nil).Once()
		db.On("GetOrCreateRoom", "General").Return(database.Room{Id: 10, Name: "General"}, nil).Once()
		db.On("CreateMessage", database.CreateMessageParams{
			RoomId:     10,
			UserId:     1,
			Content:    "hello",
			SenderRole: "Member",
		}).Return(database.Message{Id: 42, RoomId: 10, UserId: 1, Content: "hello", SenderRole: "Member"}, nil).Once()

		cs.handleSend(alice, &ClientMessage{
			BaseMessage: BaseMessage{Id: 3, Timestamp: Now()},
			Send:        &SendMessage{Room: "General", Content: "hello"},
		})

		// each member receives exactly one copy
		select {
		case msg := <-bob.send:
			assert.NotNil(t, msg.Message, "expected broadcast message")
			assert.Equal(t, 42, msg.Message.Message.Id, "expected broadcast to carry new message id")
			assert.Equal(t, "alice", msg.Message.Message.Username, "expected sender username on message")
			assert.Equal(t, "hello", msg.Message.Message.Content, "expected message content")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: bob did not receive broadcast")
		}
		assert.Len(t, bob.send, 0, "expected bob to receive exactly one copy")

		// sender receives the broadcast, then the ack
		select {
		case msg := <-alice.send:
			assert.NotNil(t, msg.Message, "expected sender to receive broadcast too")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: alice did not receive broadcast")
		}
		select {
		case msg := <-alice.send:
			assert.NotNil(t, msg.Sent, "expected send ack")
			assert.Equal(t, 3, msg.Id, "expected ack id to match request id")
			assert.Equal(t, 42, msg.Sent.MessageId, "expected ack to carry new message id")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: alice did not receive ack")
		}
	})

	t.Run("send from unknown user", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "ghost")

		db.On("GetAccountByUsername", "ghost").Return(database.User{}, database.ErrNotFound).Once()

		cs.handleSend(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 3, Timestamp: Now()},
			Send:        &SendMessage{Room: "General", Content: "hello"},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected error response")
			assert.Equal(t, http.StatusNotFound, msg.Response.ResponseCode, "expected response code 404")
			assert.Equal(t, "user not found", msg.Response.Error, "expected user not found error")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
	})

	t.Run("send with no content and no image", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")

		db.On("GetAccountByUsername", "alice").Return(database.User{Id: 1, Username: "alice"}, nil).Once()

		cs.handleSend(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 3, Timestamp: Now()},
			Send:        &SendMessage{Room: "General"},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected error response")
			assert.Equal(t, http.StatusBadRequest, msg.Response.ResponseCode, "expected response code 400")
			assert.Equal(t, "message or image is required", msg.Response.Error, "expected validation error message")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
		db.AssertNotCalled(t, "CreateMessage")
	})

	t.Run("send with image only is valid", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		su := &stats.MockStatsUpdater{}
		su.On("Incr", statMessagesSent).Once()
		defer su.AssertExpectations(t)

		cs := newTestChatServer(t, db, su)
		c := newTestClient(t, 1, "alice")

		db.On("GetAccountByUsername", "alice").Return(database.User{Id: 1, Username: "alice", Role: "Member"}, nil).Once()
		db.On("GetOrCreateRoom", "General").Return(database.Room{Id: 10, Name: "General"}, nil).Once()
		db.On("CreateMessage", database.CreateMessageParams{
			RoomId:     10,
			UserId:     1,
			ImagePath:  "/uploads/cat.png",
			SenderRole: "Member",
		}).Return(database.Message{Id: 43, RoomId: 10, UserId: 1, ImagePath: "/uploads/cat.png"}, nil).Once()

		cs.handleSend(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 4, Timestamp: Now()},
			Send:        &SendMessage{Room: "General", ImagePath: "/uploads/cat.png"},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Sent, "expected send ack")
			assert.Equal(t, 43, msg.Sent.MessageId, "expected ack to carry new message id")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive ack")
		}
	})
}

func Test_handleReply(t *testing.T) {
	t.Run("reply snapshots original sender and content", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		su := &stats.MockStatsUpdater{}
		su.On("Incr", statMessagesSent).Once()
		defer su.AssertExpectations(t)

		cs := newTestChatServer(t, db, su)
		alice := newTestClient(t, 1, "alice")
		cs.room("General").addClient(alice)

		db.On("GetAccountByUsername", "alice").Return(database.User{Id: 1, Username: "alice", Role: "Member"}, nil).Once()
		db.On("GetRoomByName", "General").Return(database.Room{Id: 10, Name: "General"}, nil).Once()
		db.On("GetMessageById", 42).Return(database.Message{Id: 42, RoomId: 10, Username: "bob", Content: "original text"}, nil).Once()
		db.On("CreateMessage", database.CreateMessageParams{
			RoomId:     10,
			UserId:     1,
			Content:    "replying",
			SenderRole: "Member",
			ReplyToId:  42,
		}).Return(database.Message{Id: 43, RoomId: 10, UserId: 1, Content: "replying", ReplyToId: 42}, nil).Once()

		cs.handleReply(alice, &ClientMessage{
			BaseMessage: BaseMessage{Id: 5, Timestamp: Now()},
			Reply:       &SendReply{Room: "General", Content: "replying", ReplyToId: 42},
		})

		select {
		case msg := <-alice.send:
			assert.NotNil(t, msg.Reply, "expected reply broadcast")
			assert.Equal(t, 43, msg.Reply.Message.Id, "expected reply message id")
			assert.Equal(t, 42, msg.Reply.Message.ReplyToId, "expected reply to reference original")
			assert.Equal(t, "bob", msg.Reply.OriginalSender, "expected original sender snapshot")
			assert.Equal(t, "original text", msg.Reply.OriginalContent, "expected original content snapshot")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive reply broadcast")
		}
	})

	t.Run("reply to unknown room", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")

		db.On("GetAccountByUsername", "alice").Return(database.User{Id: 1, Username: "alice"}, nil).Once()
		db.On("GetRoomByName", "Nowhere").Return(database.Room{}, database.ErrNotFound).Once()

		cs.handleReply(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 5, Timestamp: Now()},
			Reply:       &SendReply{Room: "Nowhere", Content: "replying", ReplyToId: 42},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected error response")
			assert.Equal(t, http.StatusNotFound, msg.Response.ResponseCode, "expected response code 404")
			assert.Equal(t, "room not found", msg.Response.Error, "expected room not found error")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
	})

	t.Run("reply to unknown message", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")

		db.On("GetAccountByUsername", "alice").Return(database.User{Id: 1, Username: "alice"}, nil).Once()
		db.On("GetRoomByName", "General").Return(database.Room{Id: 10, Name: "General"}, nil).Once()
		db.On("GetMessageById", 99).Return(database.Message{}, database.ErrNotFound).Once()

		cs.handleReply(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 5, Timestamp: Now()},
			Reply:       &SendReply{Room: "General", Content: "replying", ReplyToId: 99},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected error response")
			assert.Equal(t, http.StatusNotFound, msg.Response.ResponseCode, "expected response code 404")
			assert.Equal(t, "message not found", msg.Response.Error, "expected message not found error")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
	})
}

func Test_handleLike(t *testing.T) {
	t.Run("like broadcasts updated count to room", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		su := &stats.MockStatsUpdater{}
		su.On("Incr", statLikesGiven).Once()
		defer su.AssertExpectations(t)

		cs := newTestChatServer(t, db, su)
		c := newTestClient(t, 1, "alice")
		cs.room("General").addClient(c)

		db.On("GetAccountByUsername", "alice").Return(database.User{Id: 1, Username: "alice"}, nil).Once()
		db.On("GetMessageById", 42).Return(database.Message{Id: 42, RoomName: "General"}, nil).Once()
		db.On("LikeExists", 42, 1).Return(false, nil).Once()
		db.On("CreateLike", 42, 1).Return(nil).Once()
		db.On("CountLikes", 42).Return(3, nil).Once()

		cs.handleLike(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 6, Timestamp: Now()},
			Like:        &LikeMessage{MessageId: 42},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.LikeStatus, "expected like status broadcast")
			assert.Equal(t, 42, msg.LikeStatus.MessageId, "expected message id")
			assert.True(t, msg.LikeStatus.Liked, "expected liked flag to be true")
			assert.Equal(t, 3, msg.LikeStatus.Count, "expected updated like count")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive like broadcast")
		}
	})

	t.Run("second like is rejected", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")

		db.On("GetAccountByUsername", "alice").Return(database.User{Id: 1, Username: "alice"}, nil).Once()
		db.On("GetMessageById", 42).Return(database.Message{Id: 42, RoomName: "General"}, nil).Once()
		db.On("LikeExists", 42, 1).Return(true, nil).Once()

		cs.handleLike(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 6, Timestamp: Now()},
			Like:        &LikeMessage{MessageId: 42},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected error response")
			assert.Equal(t, http.StatusConflict, msg.Response.ResponseCode, "expected response code 409")
			assert.Equal(t, "you have already liked this message", msg.Response.Error, "expected already liked error")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
		db.AssertNotCalled(t, "CreateLike")
	})

	t.Run("concurrent duplicate like loses constraint race", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")

		db.On("GetAccountByUsername", "alice").Return(database.User{Id: 1, Username: "alice"}, nil).Once()
		db.On("GetMessageById", 42).Return(database.Message{Id: 42, RoomName: "General"}, nil).Once()
		db.On("LikeExists", 42, 1).Return(false, nil).Once()
		db.On("CreateLike", 42, 1).Return(database.ErrAlreadyLiked).Once()

		cs.handleLike(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 6, Timestamp: Now()},
			Like:        &LikeMessage{MessageId: 42},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected error response")
			assert.Equal(t, http.StatusConflict, msg.Response.ResponseCode, "expected response code 409")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
	})
}

func Test_handleUnlike(t *testing.T) {
	t.Run("unlike broadcasts updated count", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")
		cs.room("General").addClient(c)

		db.On("GetAccountByUsername", "alice").Return(database.User{Id: 1, Username: "alice"}, nil).Once()
		db.On("GetMessageById", 42).Return(database.Message{Id: 42, RoomName: "General"}, nil).Once()
		db.On("DeleteLike", 42, 1).Return(nil).Once()
		db.On("CountLikes", 42).Return(2, nil).Once()

		cs.handleUnlike(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 7, Timestamp: Now()},
			Unlike:      &RemoveLike{MessageId: 42},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.LikeStatus, "expected like status broadcast")
			assert.False(t, msg.LikeStatus.Liked, "expected liked flag to be false")
			assert.Equal(t, 2, msg.LikeStatus.Count, "expected updated like count")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive like broadcast")
		}
	})

	t.Run("unlike without existing like", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")

		db.On("GetAccountByUsername", "alice").Return(database.User{Id: 1, Username: "alice"}, nil).Once()
		db.On("GetMessageById", 42).Return(database.Message{Id: 42, RoomName: "General"}, nil).Once()
		db.On("DeleteLike", 42, 1).Return(database.ErrLikeNotFound).Once()

		cs.handleUnlike(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 7, Timestamp: Now()},
			Unlike:      &RemoveLike{MessageId: 42},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected error response")
			assert.Equal(t, http.StatusNotFound, msg.Response.ResponseCode, "expected response code 404")
			assert.Equal(t, "like not found", msg.Response.Error, "expected like not found error")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
	})
}

func Test_handleEdit(t *testing.T) {
	t.Run("owner edits message", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")
		cs.room("General").addClient(c)

		db.On("GetMessageById", 42).Return(database.Message{Id: 42, RoomName: "General", Username: "alice"}, nil).Once()
		db.On("UpdateMessageContent", 42, "new text").Return(nil).Once()

		cs.handleEdit(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 8, Timestamp: Now()},
			Edit:        &EditMessage{MessageId: 42, NewContent: "new text"},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Edited, "expected edit broadcast")
			assert.Equal(t, 42, msg.Edited.MessageId, "expected message id")
			assert.Equal(t, "new text", msg.Edited.NewContent, "expected new content")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive edit broadcast")
		}
	})

	t.Run("non-owner cannot edit", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 2, "bob")

		db.On("GetMessageById", 42).Return(database.Message{Id: 42, RoomName: "General", Username: "alice"}, nil).Once()

		cs.handleEdit(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 8, Timestamp: Now()},
			Edit:        &EditMessage{MessageId: 42, NewContent: "hijacked"},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected error response")
			assert.Equal(t, http.StatusForbidden, msg.Response.ResponseCode, "expected response code 403")
			assert.Equal(t, "you can only edit your own messages", msg.Response.Error, "expected ownership error")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
		db.AssertNotCalled(t, "UpdateMessageContent")
	})
}

func Test_handleDelete(t *testing.T) {
	t.Run("owner deletes message", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")
		cs.room("General").addClient(c)

		db.On("GetMessageById", 42).Return(database.Message{Id: 42, RoomName: "General", Username: "alice"}, nil).Once()
		db.On("DeleteMessage", 42).Return(nil).Once()

		cs.handleDelete(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 9, Timestamp: Now()},
			Delete:      &DeleteMessage{MessageId: 42},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Deleted, "expected delete broadcast")
			assert.Equal(t, 42, msg.Deleted.MessageId, "expected message id")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive delete broadcast")
		}
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 2, "bob")

		db.On("GetMessageById", 42).Return(database.Message{Id: 42, RoomName: "General", Username: "alice"}, nil).Once()

		cs.handleDelete(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 9, Timestamp: Now()},
			Delete:      &DeleteMessage{MessageId: 42},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected error response")
			assert.Equal(t, http.StatusForbidden, msg.Response.ResponseCode, "expected response code 403")
			assert.Equal(t, "you can only delete your own messages", msg.Response.Error, "expected ownership error")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
		db.AssertNotCalled(t, "DeleteMessage")
	})

	t.Run("delete with database error reports generic message", func(t *testing.T) {
		db := &database.MockForumRepository{}
		defer db.AssertExpectations(t)

		cs := newTestChatServer(t, db, &stats.MockStatsUpdater{})
		c := newTestClient(t, 1, "alice")

		db.On("GetMessageById", 42).Return(database.Message{Id: 42, RoomName: "General", Username: "alice"}, nil).Once()
		db.On("DeleteMessage", 42).Return(errors.New("db error")).Once()

		cs.handleDelete(c, &ClientMessage{
			BaseMessage: BaseMessage{Id: 9, Timestamp: Now()},
			Delete:      &DeleteMessage{MessageId: 42},
		})

		select {
		case msg := <-c.send:
			assert.NotNil(t, msg.Response, "expected error response")
			assert.Equal(t, http.StatusInternalServerError, msg.Response.ResponseCode, "expected response code 500")
			assert.Equal(t, "an error occurred processing your request", msg.Response.Error, "expected generic error message")
		case <-time.After(100 * time.Millisecond):
			t.Error("timeout: client did not receive response message")
		}
	})
}
