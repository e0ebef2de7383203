package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/forumhub/forumhub/internal/types"
)

// inactivityTimeout is how long a user stays listed after their last
// observed activity.
const inactivityTimeout = 5 * time.Minute

// Tracker keeps an in-memory roster of recently active users. Entries are
// refreshed by Touch on every inbound event and swept lazily when the roster
// is read.
type Tracker struct {
	mu    sync.Mutex
	users map[string]types.OnlineUser
	now   func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		users: make(map[string]types.OnlineUser),
		now:   time.Now,
	}
}

// Add puts a user on the roster, replacing any previous entry.
func (t *Tracker) Add(username, profilePicture, role string) {
	if profilePicture == "" {
		profilePicture = types.DefaultProfilePicture
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.users[username] = types.OnlineUser{
		Username:       username,
		ProfilePicture: profilePicture,
		Role:           role,
		LastActivity:   t.now(),
	}
}

func (t *Tracker) Remove(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.users, username)
}

// Touch refreshes the user's activity timestamp. Touching a user that is not
// on the roster is a no-op so activity never resurrects a logged-out user.
func (t *Tracker) Touch(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u, ok := t.users[username]
	if !ok {
		return
	}

	u.LastActivity = t.now()
	t.users[username] = u
}

// OnlineUsers evicts entries idle past the timeout and returns the remainder
// sorted by username.
func (t *Tracker) OnlineUsers() []types.OnlineUser {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-inactivityTimeout)
	online := make([]types.OnlineUser, 0, len(t.users))
	for username, u := range t.users {
		if u.LastActivity.Before(cutoff) {
			delete(t.users, username)
			continue
		}
		online = append(online, u)
	}

	sort.Slice(online, func(i, j int) bool {
		return online[i].Username < online[j].Username
	})

	return online
}
