package database

import (
	"github.com/stretchr/testify/mock"
)

type MockForumRepository struct {
	mock.Mock
}

func (m *MockForumRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockForumRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockForumRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockForumRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockForumRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockForumRepository) GetAccountByUsername(username string) (User, error) {
	args := m.Called(username)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockForumRepository) DeleteAccount(accountId int) error {
	args := m.Called(accountId)
	return args.Error(0)
}
func (m *MockForumRepository) SearchAccounts(query string, limit int) ([]User, error) {
	args := m.Called(query, limit)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockForumRepository) GetRoomByName(name string) (Room, error) {
	args := m.Called(name)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockForumRepository) GetOrCreateRoom(name string) (Room, error) {
	args := m.Called(name)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockForumRepository) ListRooms() ([]Room, error) {
	args := m.Called()
	return args.Get(0).([]Room), args.Error(1)
}
func (m *MockForumRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockForumRepository) GetMessageById(messageId int) (Message, error) {
	args := m.Called(messageId)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockForumRepository) UpdateMessageContent(messageId int, content string) error {
	args := m.Called(messageId, content)
	return args.Error(0)
}
func (m *MockForumRepository) DeleteMessage(messageId int) error {
	args := m.Called(messageId)
	return args.Error(0)
}
func (m *MockForumRepository) GetRoomMessages(roomId, limit int) ([]Message, error) {
	args := m.Called(roomId, limit)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockForumRepository) LikeExists(messageId, userId int) (bool, error) {
	args := m.Called(messageId, userId)
	return args.Bool(0), args.Error(1)
}
func (m *MockForumRepository) CreateLike(messageId, userId int) error {
	args := m.Called(messageId, userId)
	return args.Error(0)
}
func (m *MockForumRepository) DeleteLike(messageId, userId int) error {
	args := m.Called(messageId, userId)
	return args.Error(0)
}
func (m *MockForumRepository) CountLikes(messageId int) (int, error) {
	args := m.Called(messageId)
	return args.Int(0), args.Error(1)
}
func (m *MockForumRepository) GetConversationById(conversationId int) (Conversation, error) {
	args := m.Called(conversationId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockForumRepository) GetConversationByUsers(userAId, userBId int) (Conversation, error) {
	args := m.Called(userAId, userBId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockForumRepository) CreateConversation(userAId, userBId int) (Conversation, error) {
	args := m.Called(userAId, userBId)
	return args.Get(0).(Conversation), args.Error(1)
}
func (m *MockForumRepository) TouchConversation(conversationId int) error {
	args := m.Called(conversationId)
	return args.Error(0)
}
func (m *MockForumRepository) UpdateLastViewed(conversationId, userId int) error {
	args := m.Called(conversationId, userId)
	return args.Error(0)
}
func (m *MockForumRepository) ListConversations(userId int) ([]ConversationListEntry, error) {
	args := m.Called(userId)
	return args.Get(0).([]ConversationListEntry), args.Error(1)
}
func (m *MockForumRepository) CreatePrivateMessage(params CreatePrivateMessageParams) (PrivateMessage, error) {
	args := m.Called(params)
	return args.Get(0).(PrivateMessage), args.Error(1)
}
func (m *MockForumRepository) GetPrivateMessageById(messageId int) (PrivateMessage, error) {
	args := m.Called(messageId)
	return args.Get(0).(PrivateMessage), args.Error(1)
}
func (m *MockForumRepository) UpdatePrivateMessageContent(messageId int, content string) error {
	args := m.Called(messageId, content)
	return args.Error(0)
}
func (m *MockForumRepository) DeletePrivateMessage(messageId int) error {
	args := m.Called(messageId)
	return args.Error(0)
}
func (m *MockForumRepository) IncrementPrivateMessageLikes(messageId int) (int, error) {
	args := m.Called(messageId)
	return args.Int(0), args.Error(1)
}
func (m *MockForumRepository) GetConversationMessages(conversationId, limit int) ([]PrivateMessage, error) {
	args := m.Called(conversationId, limit)
	return args.Get(0).([]PrivateMessage), args.Error(1)
}
func (m *MockForumRepository) MarkConversationRead(conversationId, receiverId int) error {
	args := m.Called(conversationId, receiverId)
	return args.Error(0)
}
func (m *MockForumRepository) CountUnread(conversationId, receiverId int) (int, error) {
	args := m.Called(conversationId, receiverId)
	return args.Int(0), args.Error(1)
}
func (m *MockForumRepository) CreatePost(params CreatePostParams) (Post, error) {
	args := m.Called(params)
	return args.Get(0).(Post), args.Error(1)
}
func (m *MockForumRepository) GetPostById(postId int) (Post, error) {
	args := m.Called(postId)
	return args.Get(0).(Post), args.Error(1)
}
func (m *MockForumRepository) ListPosts(limit int) ([]Post, error) {
	args := m.Called(limit)
	return args.Get(0).([]Post), args.Error(1)
}
func (m *MockForumRepository) CreateReply(params CreateReplyParams) (Reply, error) {
	args := m.Called(params)
	return args.Get(0).(Reply), args.Error(1)
}
func (m *MockForumRepository) ListRepliesByPost(postId int) ([]Reply, error) {
	args := m.Called(postId)
	return args.Get(0).([]Reply), args.Error(1)
}
func (m *MockForumRepository) DeleteReply(replyId int) error {
	args := m.Called(replyId)
	return args.Error(0)
}
