package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const conversationColumns = "id, user1_id, user2_id, created_at, last_message_at, user1_last_viewed_at, user2_last_viewed_at"

func scanConversation(row *sql.Row) (Conversation, error) {
	var c Conversation
	err := row.Scan(
		&c.Id,
		&c.User1Id,
		&c.User2Id,
		&c.CreatedAt,
		&c.LastMessageAt,
		&c.User1LastViewedAt,
		&c.User2LastViewedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Conversation{}, ErrNotFound
	}

	return c, err
}

func (db *PgForumRepository) GetConversationById(conversationId int) (Conversation, error) {
	return scanConversation(db.conn.QueryRow(
		"SELECT "+conversationColumns+" FROM conversations WHERE id = $1 LIMIT 1",
		conversationId,
	))
}

// GetConversationByUsers matches the unordered participant pair, so the two
// user ids may be supplied in either order.
func (db *PgForumRepository) GetConversationByUsers(userAId, userBId int) (Conversation, error) {
	return scanConversation(db.conn.QueryRow(
		"SELECT "+conversationColumns+" FROM conversations "+
			"WHERE (user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1) LIMIT 1",
		userAId,
		userBId,
	))
}

// CreateConversation inserts a conversation row for the pair. A unique index
// on (LEAST(user1_id, user2_id), GREATEST(user1_id, user2_id)) backs the
// at-most-one-per-pair invariant; a concurrent duplicate insert surfaces as
// ErrConversationExists and the caller re-fetches.
func (db *PgForumRepository) CreateConversation(userAId, userBId int) (Conversation, error) {
	now := time.Now().UTC()
	conv, err := scanConversation(db.conn.QueryRow(
		"INSERT INTO conversations (user1_id, user2_id, created_at, last_message_at) "+
			"VALUES ($1, $2, $3, $3) RETURNING "+conversationColumns,
		userAId,
		userBId,
		now,
	))
	if isUniqueViolation(err) {
		return Conversation{}, ErrConversationExists
	}

	return conv, err
}

func (db *PgForumRepository) TouchConversation(conversationId int) error {
	_, err := db.conn.Exec(
		"UPDATE conversations SET last_message_at = $2 WHERE id = $1",
		conversationId,
		time.Now().UTC(),
	)

	return err
}

func (db *PgForumRepository) UpdateLastViewed(conversationId, userId int) error {
	res, err := db.conn.Exec(
		"UPDATE conversations SET "+
			"user1_last_viewed_at = CASE WHEN user1_id = $2 THEN $3 ELSE user1_last_viewed_at END, "+
			"user2_last_viewed_at = CASE WHEN user2_id = $2 THEN $3 ELSE user2_last_viewed_at END "+
			"WHERE id = $1 AND (user1_id = $2 OR user2_id = $2)",
		conversationId,
		userId,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}

	return err
}

// ListConversations returns the caller's inbox ordered by most recent
// activity, each entry carrying the other participant, the latest message and
// the unread count.
func (db *PgForumRepository) ListConversations(userId int) ([]ConversationListEntry, error) {
	rows, err := db.conn.Query(`
		SELECT
			c.id,
			other.id,
			other.username,
			COALESCE(other.profile_picture, ''),
			COALESCE(last.content, ''),
			COALESCE(last.sent_at, c.created_at),
			(SELECT COUNT(*) FROM private_messages pm
				WHERE pm.conversation_id = c.id AND pm.receiver_id = $1 AND NOT pm.read),
			CASE WHEN c.user1_id = $1 THEN c.user1_last_viewed_at ELSE c.user2_last_viewed_at END
		FROM conversations c
		JOIN accounts other
			ON other.id = CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END
		LEFT JOIN LATERAL (
			SELECT content, sent_at FROM private_messages pm
			WHERE pm.conversation_id = c.id
			ORDER BY pm.sent_at DESC LIMIT 1
		) last ON TRUE
		WHERE c.user1_id = $1 OR c.user2_id = $1
		ORDER BY c.last_message_at DESC`,
		userId,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var entries = make([]ConversationListEntry, 0)
	for rows.Next() {
		var e ConversationListEntry
		err = rows.Scan(
			&e.ConversationId,
			&e.OtherUserId,
			&e.OtherUsername,
			&e.OtherProfilePic,
			&e.LastMessage,
			&e.LastMessageTime,
			&e.UnreadCount,
			&e.LastViewedAt,
		)
		if err != nil {
			break
		}

		entries = append(entries, e)
	}

	return entries, err
}

const privateMessageColumns = `
	pm.id, pm.conversation_id, pm.sender_id, s.username,
	COALESCE(s.profile_picture, ''), pm.receiver_id, pm.content,
	COALESCE(pm.image_path, ''), pm.read, pm.edited,
	COALESCE(pm.reply_to_id, 0), COALESCE(orig.content, ''),
	COALESCE(origs.username, ''), pm.likes_count, pm.sent_at`

const privateMessageJoins = ` FROM private_messages pm
	JOIN accounts s ON pm.sender_id = s.id
	LEFT JOIN private_messages orig ON pm.reply_to_id = orig.id
	LEFT JOIN accounts origs ON orig.sender_id = origs.id`

func scanPrivateMessage(row interface{ Scan(...any) error }) (PrivateMessage, error) {
	var msg PrivateMessage
	err := row.Scan(
		&msg.Id,
		&msg.ConversationId,
		&msg.SenderId,
		&msg.SenderName,
		&msg.SenderProfilePic,
		&msg.ReceiverId,
		&msg.Content,
		&msg.ImagePath,
		&msg.Read,
		&msg.Edited,
		&msg.ReplyToId,
		&msg.ReplyToContent,
		&msg.ReplyToSenderName,
		&msg.LikeCount,
		&msg.SentAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return PrivateMessage{}, ErrNotFound
	}

	return msg, err
}

func (db *PgForumRepository) CreatePrivateMessage(params CreatePrivateMessageParams) (PrivateMessage, error) {
	row := db.conn.QueryRow(
		"INSERT INTO private_messages (conversation_id, sender_id, receiver_id, content, image_path, reply_to_id, sent_at) "+
			"VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, 0), $7) RETURNING id",
		params.ConversationId,
		params.SenderId,
		params.ReceiverId,
		params.Content,
		params.ImagePath,
		params.ReplyToId,
		time.Now().UTC(),
	)

	var id int
	if err := row.Scan(&id); err != nil {
		return PrivateMessage{}, err
	}

	return db.GetPrivateMessageById(id)
}

func (db *PgForumRepository) GetPrivateMessageById(messageId int) (PrivateMessage, error) {
	return scanPrivateMessage(db.conn.QueryRow(
		"SELECT "+privateMessageColumns+privateMessageJoins+" WHERE pm.id = $1 LIMIT 1",
		messageId,
	))
}

func (db *PgForumRepository) UpdatePrivateMessageContent(messageId int, content string) error {
	res, err := db.conn.Exec(
		"UPDATE private_messages SET content = $2, edited = TRUE WHERE id = $1",
		messageId,
		content,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}

	return err
}

func (db *PgForumRepository) DeletePrivateMessage(messageId int) error {
	res, err := db.conn.Exec("DELETE FROM private_messages WHERE id = $1", messageId)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}

	return err
}

// IncrementPrivateMessageLikes bumps the denormalized counter and returns the
// new value. Private messages keep a plain counter rather than a join table,
// so there is no per-user duplicate guard here.
func (db *PgForumRepository) IncrementPrivateMessageLikes(messageId int) (int, error) {
	row := db.conn.QueryRow(
		"UPDATE private_messages SET likes_count = likes_count + 1 WHERE id = $1 RETURNING likes_count",
		messageId,
	)

	var count int
	err := row.Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}

	return count, err
}

// GetConversationMessages returns the most recent limit messages in
// chronological order, with reply-to content denormalized onto each row.
func (db *PgForumRepository) GetConversationMessages(conversationId, limit int) ([]PrivateMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(
		"SELECT * FROM (SELECT "+privateMessageColumns+privateMessageJoins+
			" WHERE pm.conversation_id = $1 ORDER BY pm.sent_at DESC LIMIT $2) page ORDER BY page.sent_at ASC",
		conversationId,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversation messages: %w", err)
	}
	defer rows.Close()

	var messages = make([]PrivateMessage, 0, limit)
	for rows.Next() {
		msg, err := scanPrivateMessage(rows)
		if err != nil {
			return nil, err
		}

		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (db *PgForumRepository) MarkConversationRead(conversationId, receiverId int) error {
	_, err := db.conn.Exec(
		"UPDATE private_messages SET read = TRUE "+
			"WHERE conversation_id = $1 AND receiver_id = $2 AND NOT read",
		conversationId,
		receiverId,
	)

	return err
}

func (db *PgForumRepository) CountUnread(conversationId, receiverId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM private_messages "+
			"WHERE conversation_id = $1 AND receiver_id = $2 AND NOT read",
		conversationId,
		receiverId,
	)

	var count int
	err := row.Scan(&count)

	return count, err
}
