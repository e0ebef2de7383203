package types

import (
	"time"
)

const DefaultProfilePicture = "/profile-pictures/default.png"

type User struct {
	Id             int       `json:"id"`
	Username       string    `json:"username"`
	EmailAddress   string    `json:"email_address,omitempty"`
	Password       string    `json:"-"`
	Role           string    `json:"role,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

type Room struct {
	Id          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type Message struct {
	Id             int       `json:"id"`
	RoomId         int       `json:"room_id"`
	UserId         int       `json:"user_id"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	SenderRole     string    `json:"sender_role,omitempty"`
	Content        string    `json:"content"`
	ImagePath      string    `json:"image_path,omitempty"`
	Edited         bool      `json:"edited"`
	ReplyToId      int       `json:"reply_to_id,omitempty"`
	LikeCount      int       `json:"like_count"`
	SentAt         time.Time `json:"sent_at"`
}

type PrivateMessage struct {
	Id                int       `json:"id"`
	ConversationId    int       `json:"conversation_id"`
	SenderId          int       `json:"sender_id"`
	SenderName        string    `json:"sender_name"`
	SenderProfilePic  string    `json:"sender_profile_pic,omitempty"`
	ReceiverId        int       `json:"receiver_id"`
	Content           string    `json:"content"`
	ImagePath         string    `json:"image_path,omitempty"`
	Read              bool      `json:"read"`
	Edited            bool      `json:"edited"`
	ReplyToId         int       `json:"reply_to_id,omitempty"`
	ReplyToContent    string    `json:"reply_to_content,omitempty"`
	ReplyToSenderName string    `json:"reply_to_sender_name,omitempty"`
	LikeCount         int       `json:"like_count"`
	FromCurrentUser   bool      `json:"from_current_user"`
	SentAt            time.Time `json:"sent_at"`
}

type ConversationSummary struct {
	ConversationId  int        `json:"conversation_id"`
	Username        string     `json:"username"`
	ProfilePicture  string     `json:"profile_picture,omitempty"`
	LastMessage     string     `json:"last_message"`
	LastMessageTime time.Time  `json:"last_message_time"`
	UnreadCount     int        `json:"unread_count"`
	LastViewedAt    *time.Time `json:"last_viewed_at,omitempty"`
}

type Post struct {
	Id        int       `json:"id"`
	UserId    int       `json:"user_id"`
	Username  string    `json:"username"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Reply struct {
	Id            int       `json:"id"`
	PostId        int       `json:"post_id"`
	UserId        int       `json:"user_id"`
	Username      string    `json:"username"`
	Content       string    `json:"content"`
	ParentReplyId int       `json:"parent_reply_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type OnlineUser struct {
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profile_picture"`
	Role           string    `json:"role,omitempty"`
	LastActivity   time.Time `json:"last_activity"`
}
