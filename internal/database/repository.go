package database

type ForumRepository interface {
	Ping() error

	CreateAccount(params CreateAccountParams) (User, error)
	UpdateAccount(params UpdateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	GetAccountByUsername(username string) (User, error)
	DeleteAccount(accountId int) error
	SearchAccounts(query string, limit int) ([]User, error)

	GetRoomByName(name string) (Room, error)
	GetOrCreateRoom(name string) (Room, error)
	ListRooms() ([]Room, error)

	CreateMessage(params CreateMessageParams) (Message, error)
	GetMessageById(messageId int) (Message, error)
	UpdateMessageContent(messageId int, content string) error
	DeleteMessage(messageId int) error
	GetRoomMessages(roomId, limit int) ([]Message, error)

	LikeExists(messageId, userId int) (bool, error)
	CreateLike(messageId, userId int) error
	DeleteLike(messageId, userId int) error
	CountLikes(messageId int) (int, error)

	GetConversationById(conversationId int) (Conversation, error)
	GetConversationByUsers(userAId, userBId int) (Conversation, error)
	CreateConversation(userAId, userBId int) (Conversation, error)
	TouchConversation(conversationId int) error
	UpdateLastViewed(conversationId, userId int) error
	ListConversations(userId int) ([]ConversationListEntry, error)

	CreatePrivateMessage(params CreatePrivateMessageParams) (PrivateMessage, error)
	GetPrivateMessageById(messageId int) (PrivateMessage, error)
	UpdatePrivateMessageContent(messageId int, content string) error
	DeletePrivateMessage(messageId int) error
	IncrementPrivateMessageLikes(messageId int) (int, error)
	GetConversationMessages(conversationId, limit int) ([]PrivateMessage, error)
	MarkConversationRead(conversationId, receiverId int) error
	CountUnread(conversationId, receiverId int) (int, error)

	CreatePost(params CreatePostParams) (Post, error)
	GetPostById(postId int) (Post, error)
	ListPosts(limit int) ([]Post, error)
	CreateReply(params CreateReplyParams) (Reply, error)
	ListRepliesByPost(postId int) ([]Reply, error)
	DeleteReply(replyId int) error
}
