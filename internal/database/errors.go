package database

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrAlreadyLiked is returned when the likes table's composite primary
	// key rejects a duplicate (message, user) insert. The handler-level
	// existence check is only a fast path; this is the authoritative guard.
	ErrAlreadyLiked = errors.New("message already liked")
	ErrLikeNotFound = errors.New("like not found")
	// ErrConversationExists is returned when the unordered-pair uniqueness
	// index rejects a concurrent conversation insert for the same two users.
	ErrConversationExists = errors.New("conversation already exists")
	// ErrReplyHasChildren is returned when deleting a reply that other
	// replies still point at. Children must be deleted first.
	ErrReplyHasChildren = errors.New("reply has child replies")
	ErrDuplicateAccount = errors.New("username or email already taken")
	ErrAccountHasPosts  = errors.New("account still owns posts or replies")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}
