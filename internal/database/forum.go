package database

import (
	"database/sql"
	"errors"
	"time"
)

func (db *PgForumRepository) CreatePost(params CreatePostParams) (Post, error) {
	row := db.conn.QueryRow(
		"INSERT INTO posts (user_id, title, content, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		params.UserId,
		params.Title,
		params.Content,
		time.Now().UTC(),
	)

	post := Post{
		UserId:  params.UserId,
		Title:   params.Title,
		Content: params.Content,
	}
	err := row.Scan(&post.Id, &post.CreatedAt)

	return post, err
}

func (db *PgForumRepository) GetPostById(postId int) (Post, error) {
	row := db.conn.QueryRow(
		"SELECT p.id, p.user_id, a.username, p.title, p.content, p.created_at "+
			"FROM posts p JOIN accounts a ON p.user_id = a.id WHERE p.id = $1 LIMIT 1",
		postId,
	)

	var post Post
	err := row.Scan(&post.Id, &post.UserId, &post.Username, &post.Title, &post.Content, &post.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}

	return post, err
}

func (db *PgForumRepository) ListPosts(limit int) ([]Post, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.Query(
		"SELECT p.id, p.user_id, a.username, p.title, p.content, p.created_at "+
			"FROM posts p JOIN accounts a ON p.user_id = a.id ORDER BY p.created_at DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts = make([]Post, 0, limit)
	for rows.Next() {
		var post Post
		if err = rows.Scan(&post.Id, &post.UserId, &post.Username, &post.Title, &post.Content, &post.CreatedAt); err != nil {
			break
		}

		posts = append(posts, post)
	}

	return posts, err
}

func (db *PgForumRepository) CreateReply(params CreateReplyParams) (Reply, error) {
	row := db.conn.QueryRow(
		"INSERT INTO replies (post_id, user_id, content, parent_reply_id, created_at) "+
			"VALUES ($1, $2, $3, NULLIF($4, 0), $5) RETURNING id, created_at",
		params.PostId,
		params.UserId,
		params.Content,
		params.ParentReplyId,
		time.Now().UTC(),
	)

	reply := Reply{
		PostId:        params.PostId,
		UserId:        params.UserId,
		Content:       params.Content,
		ParentReplyId: params.ParentReplyId,
	}
	err := row.Scan(&reply.Id, &reply.CreatedAt)
	if isForeignKeyViolation(err) {
		return Reply{}, ErrNotFound
	}

	return reply, err
}

// ListRepliesByPost returns a post's replies oldest-first. Nesting is
// reconstructed by the caller from ParentReplyId; replies are stored as
// flat rows with a nullable parent pointer, not object trees.
func (db *PgForumRepository) ListRepliesByPost(postId int) ([]Reply, error) {
	rows, err := db.conn.Query(
		"SELECT r.id, r.post_id, r.user_id, a.username, r.content, COALESCE(r.parent_reply_id, 0), r.created_at "+
			"FROM replies r JOIN accounts a ON r.user_id = a.id "+
			"WHERE r.post_id = $1 ORDER BY r.created_at ASC",
		postId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replies = make([]Reply, 0)
	for rows.Next() {
		var reply Reply
		err = rows.Scan(&reply.Id, &reply.PostId, &reply.UserId, &reply.Username, &reply.Content, &reply.ParentReplyId, &reply.CreatedAt)
		if err != nil {
			break
		}

		replies = append(replies, reply)
	}

	return replies, err
}

// DeleteReply removes a single reply. The parent_reply_id FK is RESTRICT:
// a reply that still has children cannot be deleted, children go first.
func (db *PgForumRepository) DeleteReply(replyId int) error {
	res, err := db.conn.Exec("DELETE FROM replies WHERE id = $1", replyId)
	if isForeignKeyViolation(err) {
		return ErrReplyHasChildren
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
