package database

import "time"

type User struct {
	Id             int
	Username       string
	EmailAddress   string
	PasswordHash   string
	Role           string
	ProfilePicture string
	CreatedAt      time.Time
}

type Room struct {
	Id          int
	Name        string
	Description string
	CreatedAt   time.Time
}

type Message struct {
	Id             int
	RoomId         int
	RoomName       string
	UserId         int
	Username       string
	ProfilePicture string
	SenderRole     string
	Content        string
	ImagePath      string
	Edited         bool
	ReplyToId      int
	LikeCount      int
	SentAt         time.Time
}

type Conversation struct {
	Id                int
	User1Id           int
	User2Id           int
	CreatedAt         time.Time
	LastMessageAt     time.Time
	User1LastViewedAt *time.Time
	User2LastViewedAt *time.Time
}

// Other returns the id of the participant that is not userId.
func (c Conversation) Other(userId int) int {
	if c.User1Id == userId {
		return c.User2Id
	}
	return c.User1Id
}

// HasParticipant reports whether userId is one of the two participants.
func (c Conversation) HasParticipant(userId int) bool {
	return c.User1Id == userId || c.User2Id == userId
}

type PrivateMessage struct {
	Id                int
	ConversationId    int
	SenderId          int
	SenderName        string
	SenderProfilePic  string
	ReceiverId        int
	Content           string
	ImagePath         string
	Read              bool
	Edited            bool
	ReplyToId         int
	ReplyToContent    string
	ReplyToSenderName string
	LikeCount         int
	SentAt            time.Time
}

type ConversationListEntry struct {
	ConversationId  int
	OtherUserId     int
	OtherUsername   string
	OtherProfilePic string
	LastMessage     string
	LastMessageTime time.Time
	UnreadCount     int
	LastViewedAt    *time.Time
}

type Post struct {
	Id        int
	UserId    int
	Username  string
	Title     string
	Content   string
	CreatedAt time.Time
}

type Reply struct {
	Id            int
	PostId        int
	UserId        int
	Username      string
	Content       string
	ParentReplyId int
	CreatedAt     time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type UpdateAccountParams struct {
	UserId         int
	Username       string
	PasswordHash   string
	ProfilePicture string
}

type CreateMessageParams struct {
	RoomId     int
	UserId     int
	Content    string
	ImagePath  string
	SenderRole string
	ReplyToId  int
}

type CreatePrivateMessageParams struct {
	ConversationId int
	SenderId       int
	ReceiverId     int
	Content        string
	ImagePath      string
	ReplyToId      int
}

type CreatePostParams struct {
	UserId  int
	Title   string
	Content string
}

type CreateReplyParams struct {
	PostId        int
	UserId        int
	Content       string
	ParentReplyId int
}
