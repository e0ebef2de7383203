package chat

import (
	"net/http"
	"time"

	"github.com/forumhub/forumhub/internal/types"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is the inbound wire envelope. Exactly one operation field is
// expected to be set.
type ClientMessage struct {
	BaseMessage
	Join          *JoinRoom             `json:"join,omitempty"`
	Leave         *LeaveRoom            `json:"leave,omitempty"`
	Send          *SendMessage          `json:"send,omitempty"`
	Reply         *SendReply            `json:"reply,omitempty"`
	Like          *LikeMessage          `json:"like,omitempty"`
	Unlike        *RemoveLike           `json:"unlike,omitempty"`
	Edit          *EditMessage          `json:"edit,omitempty"`
	Delete        *DeleteMessage        `json:"delete,omitempty"`
	Conversation  *OpenConversation     `json:"conversation,omitempty"`
	Conversations *ListConversations    `json:"conversations,omitempty"`
	Private       *SendPrivateMessage   `json:"private,omitempty"`
	MarkRead      *MarkMessagesRead     `json:"mark_read,omitempty"`
	PrivateLike   *LikePrivateMessage   `json:"private_like,omitempty"`
	PrivateEdit   *EditPrivateMessage   `json:"private_edit,omitempty"`
	PrivateDelete *DeletePrivateMessage `json:"private_delete,omitempty"`
	client        *Client
}

type JoinRoom struct {
	Room string `json:"room"`
}

type LeaveRoom struct {
	Room string `json:"room"`
}

type SendMessage struct {
	Username  string `json:"username,omitempty"`
	Room      string `json:"room"`
	Content   string `json:"content"`
	Role      string `json:"role,omitempty"`
	ImagePath string `json:"image_path,omitempty"`
}

type SendReply struct {
	Username  string `json:"username,omitempty"`
	Room      string `json:"room"`
	Content   string `json:"content"`
	ReplyToId int    `json:"reply_to_id"`
	Role      string `json:"role,omitempty"`
}

type LikeMessage struct {
	MessageId int    `json:"message_id"`
	Username  string `json:"username,omitempty"`
}

type RemoveLike struct {
	MessageId int    `json:"message_id"`
	Username  string `json:"username,omitempty"`
}

type EditMessage struct {
	MessageId  int    `json:"message_id"`
	Username   string `json:"username,omitempty"`
	NewContent string `json:"new_content"`
}

type DeleteMessage struct {
	MessageId int    `json:"message_id"`
	Username  string `json:"username,omitempty"`
}

type OpenConversation struct {
	Username      string `json:"username,omitempty"`
	OtherUsername string `json:"other_username"`
}

type ListConversations struct {
	Username string `json:"username,omitempty"`
}

type SendPrivateMessage struct {
	Sender    string `json:"sender,omitempty"`
	Receiver  string `json:"receiver"`
	Content   string `json:"content"`
	ImagePath string `json:"image_path,omitempty"`
	ReplyToId int    `json:"reply_to_id,omitempty"`
}

type MarkMessagesRead struct {
	Username       string `json:"username,omitempty"`
	ConversationId int    `json:"conversation_id"`
}

type LikePrivateMessage struct {
	MessageId int    `json:"message_id"`
	Username  string `json:"username,omitempty"`
}

type EditPrivateMessage struct {
	MessageId  int    `json:"message_id"`
	Username   string `json:"username,omitempty"`
	NewContent string `json:"new_content"`
}

type DeletePrivateMessage struct {
	MessageId int    `json:"message_id"`
	Username  string `json:"username,omitempty"`
}

// ServerMessage is the outbound wire envelope. One event field is set per
// message; Response carries acks and errors addressed to the caller only.
type ServerMessage struct {
	BaseMessage
	Response       *Response              `json:"response,omitempty"`
	Sent           *MessageSent           `json:"sent,omitempty"`
	Message        *MessageReceived       `json:"message,omitempty"`
	Reply          *ReplyReceived         `json:"reply,omitempty"`
	LikeStatus     *LikeStatusUpdate      `json:"like_status,omitempty"`
	Edited         *MessageEdited         `json:"edited,omitempty"`
	Deleted        *MessageDeleted        `json:"deleted,omitempty"`
	Conversation   *ConversationLoaded    `json:"conversation,omitempty"`
	Conversations  *ConversationList      `json:"conversations,omitempty"`
	Private        *PrivateReceived       `json:"private,omitempty"`
	PrivateNotice  *NewPrivateMessage     `json:"private_notice,omitempty"`
	PrivateRead    *PrivateMessagesRead   `json:"private_read,omitempty"`
	PrivateLiked   *PrivateMessageLiked   `json:"private_liked,omitempty"`
	PrivateEdited  *PrivateMessageEdited  `json:"private_edited,omitempty"`
	PrivateDeleted *PrivateMessageDeleted `json:"private_deleted,omitempty"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
}

type MessageSent struct {
	MessageId int `json:"message_id"`
}

type MessageReceived struct {
	Message types.Message `json:"message"`
}

type ReplyReceived struct {
	Message         types.Message `json:"message"`
	OriginalSender  string        `json:"original_sender"`
	OriginalContent string        `json:"original_content"`
}

type LikeStatusUpdate struct {
	MessageId int  `json:"message_id"`
	Liked     bool `json:"liked"`
	Count     int  `json:"count"`
}

type MessageEdited struct {
	MessageId  int    `json:"message_id"`
	NewContent string `json:"new_content"`
}

type MessageDeleted struct {
	MessageId int `json:"message_id"`
}

type ConversationLoaded struct {
	ConversationId int                    `json:"conversation_id"`
	OtherUsername  string                 `json:"other_username"`
	OtherPicture   string                 `json:"other_picture"`
	Messages       []types.PrivateMessage `json:"messages"`
}

type ConversationList struct {
	Conversations []types.ConversationSummary `json:"conversations"`
}

type PrivateReceived struct {
	ConversationId int                  `json:"conversation_id"`
	Counterpart    string               `json:"counterpart"`
	FromSelf       bool                 `json:"from_self"`
	Message        types.PrivateMessage `json:"message"`
}

type NewPrivateMessage struct {
	ConversationId int    `json:"conversation_id"`
	Sender         string `json:"sender"`
	SenderPicture  string `json:"sender_picture"`
	Content        string `json:"content"`
	UnreadCount    int    `json:"unread_count"`
}

type PrivateMessagesRead struct {
	ConversationId int `json:"conversation_id"`
}

type PrivateMessageLiked struct {
	MessageId int `json:"message_id"`
	Count     int `json:"count"`
}

type PrivateMessageEdited struct {
	MessageId  int    `json:"message_id"`
	NewContent string `json:"new_content"`
}

type PrivateMessageDeleted struct {
	MessageId int `json:"message_id"`
}

func errorMessage(id, code int, text string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: code,
			Error:        text,
		},
	}
}

func ErrUserNotFound(id int) *ServerMessage {
	return errorMessage(id, http.StatusNotFound, "user not found")
}

func ErrRoomNotFound(id int) *ServerMessage {
	return errorMessage(id, http.StatusNotFound, "room not found")
}

func ErrMessageNotFound(id int) *ServerMessage {
	return errorMessage(id, http.StatusNotFound, "message not found")
}

func ErrConversationNotFound(id int) *ServerMessage {
	return errorMessage(id, http.StatusNotFound, "conversation not found")
}

func ErrValidation(id int, text string) *ServerMessage {
	return errorMessage(id, http.StatusBadRequest, text)
}

func ErrForbidden(id int, text string) *ServerMessage {
	return errorMessage(id, http.StatusForbidden, text)
}

func ErrAlreadyLiked(id int) *ServerMessage {
	return errorMessage(id, http.StatusConflict, "you have already liked this message")
}

func ErrLikeNotFound(id int) *ServerMessage {
	return errorMessage(id, http.StatusNotFound, "like not found")
}

// ErrInternalError deliberately reports a generic message; store failures are
// logged server side and never leak detail to the client.
func ErrInternalError(id int) *ServerMessage {
	return errorMessage(id, http.StatusInternalServerError, "an error occurred processing your request")
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := errorMessage(0, http.StatusBadRequest, "invalid message format")
	if id > 0 {
		msg.Id = id
	}
	return msg
}

func NoErrOK(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
		},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
