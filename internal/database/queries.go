package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const messageColumns = `
	m.id, m.room_id, r.name, m.user_id, a.username,
	COALESCE(a.profile_picture, ''), COALESCE(m.sender_role, ''),
	m.content, COALESCE(m.image_path, ''), m.edited,
	COALESCE(m.reply_to_id, 0),
	(SELECT COUNT(*) FROM likes l WHERE l.message_id = m.id),
	m.sent_at`

func (db *PgForumRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, role, created_at) "+
			"VALUES ($1, $2, $3, 'Member', $4) RETURNING id, username, email, role, created_at",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.Role,
		&u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return User{}, ErrDuplicateAccount
	}

	return u, err
}

func (db *PgForumRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"UPDATE accounts SET username = $2, password_hash = $3, profile_picture = NULLIF($4, '') "+
			"WHERE id = $1 RETURNING id, username, email, role, COALESCE(profile_picture, ''), created_at",
		params.UserId,
		params.Username,
		params.PasswordHash,
		params.ProfilePicture,
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.Role,
		&u.ProfilePicture,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if isUniqueViolation(err) {
		return User{}, ErrDuplicateAccount
	}

	return u, err
}

func (db *PgForumRepository) scanAccount(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.PasswordHash,
		&u.Role,
		&u.ProfilePicture,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}

	return u, err
}

const accountQuery = "SELECT id, username, email, password_hash, role, COALESCE(profile_picture, ''), created_at FROM accounts "

func (db *PgForumRepository) GetAccountById(accountId int) (User, error) {
	return db.scanAccount(db.conn.QueryRow(accountQuery+"WHERE id = $1 LIMIT 1", accountId))
}

func (db *PgForumRepository) GetAccountByEmail(email string) (User, error) {
	return db.scanAccount(db.conn.QueryRow(accountQuery+"WHERE email = $1 LIMIT 1", email))
}

func (db *PgForumRepository) GetAccountByUsername(username string) (User, error) {
	return db.scanAccount(db.conn.QueryRow(accountQuery+"WHERE username = $1 LIMIT 1", username))
}

// DeleteAccount removes an account. Owned room messages go with it via the
// messages FK cascade; posts and replies restrict, so an account that still
// owns forum content cannot be deleted.
func (db *PgForumRepository) DeleteAccount(accountId int) error {
	res, err := db.conn.Exec("DELETE FROM accounts WHERE id = $1", accountId)
	if isForeignKeyViolation(err) {
		return ErrAccountHasPosts
	}
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}

	return err
}

func (db *PgForumRepository) SearchAccounts(query string, limit int) ([]User, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.Query(
		"SELECT id, username, COALESCE(profile_picture, ''), role FROM accounts "+
			"WHERE username ILIKE '%' || $1 || '%' ORDER BY username LIMIT $2",
		query,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users = make([]User, 0)
	for rows.Next() {
		var u User
		if err = rows.Scan(&u.Id, &u.Username, &u.ProfilePicture, &u.Role); err != nil {
			break
		}

		users = append(users, u)
	}

	return users, err
}

func (db *PgForumRepository) GetRoomByName(name string) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, COALESCE(description, ''), created_at FROM rooms WHERE name = $1 LIMIT 1",
		name,
	)

	var room Room
	err := row.Scan(&room.Id, &room.Name, &room.Description, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Room{}, ErrNotFound
	}

	return room, err
}

// GetOrCreateRoom resolves a room by name, creating the row on first
// reference. Rooms are provisioned lazily by the send path and never deleted.
func (db *PgForumRepository) GetOrCreateRoom(name string) (Room, error) {
	room, err := db.GetRoomByName(name)
	if !errors.Is(err, ErrNotFound) {
		return room, err
	}

	row := db.conn.QueryRow(
		"INSERT INTO rooms (name, created_at) VALUES ($1, $2) "+
			"ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name "+
			"RETURNING id, name, COALESCE(description, ''), created_at",
		name,
		time.Now().UTC(),
	)

	err = row.Scan(&room.Id, &room.Name, &room.Description, &room.CreatedAt)
	return room, err
}

func (db *PgForumRepository) ListRooms() ([]Room, error) {
	rows, err := db.conn.Query("SELECT id, name, COALESCE(description, ''), created_at FROM rooms ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms = make([]Room, 0)
	for rows.Next() {
		var room Room
		if err = rows.Scan(&room.Id, &room.Name, &room.Description, &room.CreatedAt); err != nil {
			break
		}

		rooms = append(rooms, room)
	}

	return rooms, err
}

func (db *PgForumRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	row := db.conn.QueryRow(
		"INSERT INTO messages (room_id, user_id, content, image_path, sender_role, reply_to_id, sent_at) "+
			"VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, 0), $7) RETURNING id, sent_at",
		params.RoomId,
		params.UserId,
		params.Content,
		params.ImagePath,
		params.SenderRole,
		params.ReplyToId,
		time.Now().UTC(),
	)

	msg := Message{
		RoomId:     params.RoomId,
		UserId:     params.UserId,
		Content:    params.Content,
		ImagePath:  params.ImagePath,
		SenderRole: params.SenderRole,
		ReplyToId:  params.ReplyToId,
	}
	err := row.Scan(&msg.Id, &msg.SentAt)

	return msg, err
}

func (db *PgForumRepository) GetMessageById(messageId int) (Message, error) {
	row := db.conn.QueryRow(
		"SELECT "+messageColumns+" FROM messages m "+
			"JOIN rooms r ON m.room_id = r.id JOIN accounts a ON m.user_id = a.id "+
			"WHERE m.id = $1 LIMIT 1",
		messageId,
	)

	var msg Message
	err := row.Scan(
		&msg.Id,
		&msg.RoomId,
		&msg.RoomName,
		&msg.UserId,
		&msg.Username,
		&msg.ProfilePicture,
		&msg.SenderRole,
		&msg.Content,
		&msg.ImagePath,
		&msg.Edited,
		&msg.ReplyToId,
		&msg.LikeCount,
		&msg.SentAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrNotFound
	}

	return msg, err
}

func (db *PgForumRepository) UpdateMessageContent(messageId int, content string) error {
	res, err := db.conn.Exec(
		"UPDATE messages SET content = $2, edited = TRUE WHERE id = $1",
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

func (db *PgForumRepository) DeleteMessage(messageId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// likes go first, then the message itself
	if _, err = tx.Exec("DELETE FROM likes WHERE message_id = $1", messageId); err != nil {
		return err
	}

	res, err := tx.Exec("DELETE FROM messages WHERE id = $1", messageId)
	if err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrNotFound
		return err
	}

	return tx.Commit()
}

// GetRoomMessages returns the most recent limit messages for a room in
// chronological order.
func (db *PgForumRepository) GetRoomMessages(roomId, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(
		"SELECT * FROM (SELECT "+messageColumns+" FROM messages m "+
			"JOIN rooms r ON m.room_id = r.id JOIN accounts a ON m.user_id = a.id "+
			"WHERE m.room_id = $1 ORDER BY m.sent_at DESC LIMIT $2) page ORDER BY page.sent_at ASC",
		roomId,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query room messages: %w", err)
	}
	defer rows.Close()

	var messages = make([]Message, 0, limit)
	for rows.Next() {
		var msg Message
		err = rows.Scan(
			&msg.Id,
			&msg.RoomId,
			&msg.RoomName,
			&msg.UserId,
			&msg.Username,
			&msg.ProfilePicture,
			&msg.SenderRole,
			&msg.Content,
			&msg.ImagePath,
			&msg.Edited,
			&msg.ReplyToId,
			&msg.LikeCount,
			&msg.SentAt,
		)
		if err != nil {
			break
		}

		messages = append(messages, msg)
	}

	return messages, err
}

func (db *PgForumRepository) LikeExists(messageId, userId int) (bool, error) {
	row := db.conn.QueryRow(
		"SELECT 1 FROM likes WHERE message_id = $1 AND user_id = $2 LIMIT 1",
		messageId,
		userId,
	)

	var one int
	err := row.Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	return err == nil, err
}

func (db *PgForumRepository) CreateLike(messageId, userId int) error {
	_, err := db.conn.Exec(
		"INSERT INTO likes (message_id, user_id) VALUES ($1, $2)",
		messageId,
		userId,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyLiked
	}

	return err
}

func (db *PgForumRepository) DeleteLike(messageId, userId int) error {
	res, err := db.conn.Exec(
		"DELETE FROM likes WHERE message_id = $1 AND user_id = $2",
		messageId,
		userId,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrLikeNotFound
	}

	return err
}

func (db *PgForumRepository) CountLikes(messageId int) (int, error) {
	row := db.conn.QueryRow("SELECT COUNT(*) FROM likes WHERE message_id = $1", messageId)

	var count int
	err := row.Scan(&count)

	return count, err
}
