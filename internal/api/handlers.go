package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/forumhub/forumhub/internal/chat"
	"github.com/forumhub/forumhub/internal/database"
	"github.com/forumhub/forumhub/internal/types"
	"github.com/gorilla/websocket"
)

const (
	defaultMessageLimit = 50
	defaultPostLimit    = 20
	searchResultLimit   = 10
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateAccountRequest struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	ProfilePicture string `json:"profile_picture"`
}

type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CreateReplyRequest struct {
	PostId        int    `json:"post_id"`
	Content       string `json:"content"`
	ParentReplyId int    `json:"parent_reply_id,omitempty"`
}

type PostWithReplies struct {
	Post    types.Post    `json:"post"`
	Replies []types.Reply `json:"replies"`
}

func (s *ForumHubApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func userResponse(u database.User) types.User {
	pic := u.ProfilePicture
	if pic == "" {
		pic = types.DefaultProfilePicture
	}
	return types.User{
		Id:             u.Id,
		Username:       u.Username,
		EmailAddress:   u.EmailAddress,
		Role:           u.Role,
		ProfilePicture: pic,
		CreatedAt:      u.CreatedAt,
	}
}

func (s *ForumHubApp) createAccount(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	params := database.CreateAccountParams{
		Username:     req.Username,
		EmailAddress: req.Email,
		PasswordHash: pwdHash,
	}

	newUser, err := s.db.CreateAccount(params)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrDuplicateAccount) {
			errResp = NewConflictError("username or email already in use")
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, userResponse(newUser))
}

func (s *ForumHubApp) login(w http.ResponseWriter, r *http.Request) {
	var lr LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if lr.Email == "" || lr.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.GetAccountByEmail(lr.Email)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !verifyPassword(dbUser.PasswordHash, lr.Password) {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	u := userResponse(dbUser)

	token, err := s.createJwtForSession(u, defaultJwtExpiration)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	http.SetCookie(w, createJwtCookie(token, defaultJwtExpiration))
	s.presence.Add(dbUser.Username, dbUser.ProfilePicture, dbUser.Role)

	s.writeJson(w, http.StatusOK, u)
}

func (s *ForumHubApp) logout(w http.ResponseWriter, r *http.Request) {
	if userId, ok := UserId(r.Context()); ok {
		if user, err := s.db.GetAccountById(userId); err == nil {
			s.presence.Remove(user.Username)
		}
	}

	// instruct browser to delete cookie by overwriting it with an expired token
	http.SetCookie(w, createJwtCookie("", time.Duration(time.Unix(0, 0).Unix())))
	w.WriteHeader(http.StatusNoContent)
}

func (s *ForumHubApp) session(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(userId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.presence.Touch(user.Username)
	s.writeJson(w, http.StatusOK, userResponse(user))
}

func (s *ForumHubApp) account(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := s.db.GetAccountById(userId)
		if err != nil {
			var errResp *ApiError
			if errors.Is(err, database.ErrNotFound) {
				errResp = NewNotFoundError()
			} else {
				errResp = NewInternalServerError(err)
			}
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		s.writeJson(w, http.StatusOK, userResponse(user))
	case http.MethodPut:
		curUser, err := s.db.GetAccountById(userId)
		if err != nil {
			var errResp *ApiError
			if errors.Is(err, database.ErrNotFound) {
				errResp = NewNotFoundError()
			} else {
				errResp = NewInternalServerError(err)
			}
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		var updateAccountReq UpdateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&updateAccountReq); err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		if updateAccountReq.Username == "" || updateAccountReq.Password == "" {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		pwdHash, err := hashPassword(updateAccountReq.Password)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		params := database.UpdateAccountParams{
			UserId:         curUser.Id,
			Username:       updateAccountReq.Username,
			PasswordHash:   pwdHash,
			ProfilePicture: updateAccountReq.ProfilePicture,
		}

		dbUser, err := s.db.UpdateAccount(params)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		s.writeJson(w, http.StatusOK, userResponse(dbUser))
	case http.MethodDelete:
		user, err := s.db.GetAccountById(userId)
		if err != nil {
			var errResp *ApiError
			if errors.Is(err, database.ErrNotFound) {
				errResp = NewNotFoundError()
			} else {
				errResp = NewInternalServerError(err)
			}
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		if err := s.db.DeleteAccount(user.Id); err != nil {
			var errResp *ApiError
			if errors.Is(err, database.ErrAccountHasPosts) {
				errResp = NewConflictError("account has active posts or replies")
			} else {
				errResp = NewInternalServerError(err)
			}
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		s.presence.Remove(user.Username)
		http.SetCookie(w, createJwtCookie("", time.Duration(time.Unix(0, 0).Unix())))
		s.writeJson(w, http.StatusNoContent, nil)
	default:
		errResp := NewMethodNotAllowedError()
		s.writeJson(w, errResp.StatusCode, errResp)
	}
}

func (s *ForumHubApp) getRooms(w http.ResponseWriter, r *http.Request) {
	dbRooms, err := s.db.ListRooms()
	if err != nil {
		s.log.Println("list rooms:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	rooms := make([]types.Room, 0, len(dbRooms))
	for _, room := range dbRooms {
		rooms = append(rooms, types.Room{
			Id:          room.Id,
			Name:        room.Name,
			Description: room.Description,
			CreatedAt:   room.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, rooms)
}

func parseLimit(r *http.Request, fallback int) (int, error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return fallback, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return 0, errors.New("invalid limit")
	}
	return limit, nil
}

func (s *ForumHubApp) getMessages(w http.ResponseWriter, r *http.Request) {
	roomName := r.URL.Query().Get("room")
	if roomName == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, err := s.db.GetRoomByName(roomName)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	limit, err := parseLimit(r, defaultMessageLimit)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMessages, err := s.db.GetRoomMessages(room.Id, limit)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages := make([]types.Message, 0, len(dbMessages))
	for _, msg := range dbMessages {
		pic := msg.ProfilePicture
		if pic == "" {
			pic = types.DefaultProfilePicture
		}
		messages = append(messages, types.Message{
			Id:             msg.Id,
			RoomId:         msg.RoomId,
			UserId:         msg.UserId,
			Username:       msg.Username,
			ProfilePicture: pic,
			SenderRole:     msg.SenderRole,
			Content:        msg.Content,
			ImagePath:      msg.ImagePath,
			Edited:         msg.Edited,
			ReplyToId:      msg.ReplyToId,
			LikeCount:      msg.LikeCount,
			SentAt:         msg.SentAt,
		})
	}

	s.writeJson(w, http.StatusOK, messages)
}

func (s *ForumHubApp) getConversations(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	entries, err := s.db.ListConversations(userId)
	if err != nil {
		s.log.Println("list conversations:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	summaries := make([]types.ConversationSummary, 0, len(entries))
	for _, entry := range entries {
		pic := entry.OtherProfilePic
		if pic == "" {
			pic = types.DefaultProfilePicture
		}
		summaries = append(summaries, types.ConversationSummary{
			ConversationId:  entry.ConversationId,
			Username:        entry.OtherUsername,
			ProfilePicture:  pic,
			LastMessage:     entry.LastMessage,
			LastMessageTime: entry.LastMessageTime,
			UnreadCount:     entry.UnreadCount,
			LastViewedAt:    entry.LastViewedAt,
		})
	}

	s.writeJson(w, http.StatusOK, summaries)
}

func (s *ForumHubApp) getConversationMessages(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	convId, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conv, err := s.db.GetConversationById(convId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !conv.HasParticipant(userId) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	limit, err := parseLimit(r, defaultMessageLimit)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMessages, err := s.db.GetConversationMessages(conv.Id, limit)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages := make([]types.PrivateMessage, 0, len(dbMessages))
	for _, pm := range dbMessages {
		pic := pm.SenderProfilePic
		if pic == "" {
			pic = types.DefaultProfilePicture
		}
		messages = append(messages, types.PrivateMessage{
			Id:                pm.Id,
			ConversationId:    pm.ConversationId,
			SenderId:          pm.SenderId,
			SenderName:        pm.SenderName,
			SenderProfilePic:  pic,
			ReceiverId:        pm.ReceiverId,
			Content:           pm.Content,
			ImagePath:         pm.ImagePath,
			Read:              pm.Read,
			Edited:            pm.Edited,
			ReplyToId:         pm.ReplyToId,
			ReplyToContent:    pm.ReplyToContent,
			ReplyToSenderName: pm.ReplyToSenderName,
			LikeCount:         pm.LikeCount,
			FromCurrentUser:   pm.SenderId == userId,
			SentAt:            pm.SentAt,
		})
	}

	s.writeJson(w, http.StatusOK, messages)
}

func (s *ForumHubApp) searchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUsers, err := s.db.SearchAccounts(query, searchResultLimit)
	if err != nil {
		s.log.Println("search accounts:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	users := make([]types.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		user := userResponse(u)
		// search results never expose email addresses
		user.EmailAddress = ""
		users = append(users, user)
	}

	s.writeJson(w, http.StatusOK, users)
}

func (s *ForumHubApp) getOnlineUsers(w http.ResponseWriter, r *http.Request) {
	s.writeJson(w, http.StatusOK, s.presence.OnlineUsers())
}

func (s *ForumHubApp) createPost(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Title == "" || req.Content == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	post, err := s.db.CreatePost(database.CreatePostParams{
		UserId:  userId,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, postResponse(post))
}

func postResponse(p database.Post) types.Post {
	return types.Post{
		Id:        p.Id,
		UserId:    p.UserId,
		Username:  p.Username,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
	}
}

func replyResponse(rep database.Reply) types.Reply {
	return types.Reply{
		Id:            rep.Id,
		PostId:        rep.PostId,
		UserId:        rep.UserId,
		Username:      rep.Username,
		Content:       rep.Content,
		ParentReplyId: rep.ParentReplyId,
		CreatedAt:     rep.CreatedAt,
	}
}

func (s *ForumHubApp) getPosts(w http.ResponseWriter, r *http.Request) {
	if idStr := r.URL.Query().Get("id"); idStr != "" {
		postId, err := strconv.Atoi(idStr)
		if err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		post, err := s.db.GetPostById(postId)
		if err != nil {
			var errResp *ApiError
			if errors.Is(err, database.ErrNotFound) {
				errResp = NewNotFoundError()
			} else {
				errResp = NewInternalServerError(err)
			}
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		dbReplies, err := s.db.ListRepliesByPost(post.Id)
		if err != nil {
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		replies := make([]types.Reply, 0, len(dbReplies))
		for _, rep := range dbReplies {
			replies = append(replies, replyResponse(rep))
		}

		s.writeJson(w, http.StatusOK, PostWithReplies{Post: postResponse(post), Replies: replies})
		return
	}

	limit, err := parseLimit(r, defaultPostLimit)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbPosts, err := s.db.ListPosts(limit)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	posts := make([]types.Post, 0, len(dbPosts))
	for _, p := range dbPosts {
		posts = append(posts, postResponse(p))
	}

	s.writeJson(w, http.StatusOK, posts)
}

func (s *ForumHubApp) createReply(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.PostId == 0 || req.Content == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	reply, err := s.db.CreateReply(database.CreateReplyParams{
		PostId:        req.PostId,
		UserId:        userId,
		Content:       req.Content,
		ParentReplyId: req.ParentReplyId,
	})
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, replyResponse(reply))
}

func (s *ForumHubApp) getReplies(w http.ResponseWriter, r *http.Request) {
	postId, err := strconv.Atoi(r.URL.Query().Get("post_id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbReplies, err := s.db.ListRepliesByPost(postId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	replies := make([]types.Reply, 0, len(dbReplies))
	for _, rep := range dbReplies {
		replies = append(replies, replyResponse(rep))
	}

	s.writeJson(w, http.StatusOK, replies)
}

func (s *ForumHubApp) deleteReply(w http.ResponseWriter, r *http.Request) {
	replyId, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteReply(replyId); err != nil {
		var errResp *ApiError
		switch {
		case errors.Is(err, database.ErrNotFound):
			errResp = NewNotFoundError()
		case errors.Is(err, database.ErrReplyHasChildren):
			errResp = NewConflictError("reply has nested replies")
		default:
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *ForumHubApp) serveWs(w http.ResponseWriter, r *http.Request) {
	id, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountById(id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrNotFound) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	s.presence.Add(user.Username, user.ProfilePicture, user.Role)

	client := chat.NewClient(userResponse(user), conn, s.cs, s.log)

	s.cs.RegisterClient(client)
	go client.Write()
	go client.Read()
}
