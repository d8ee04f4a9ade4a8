// Package session holds the client's authentication state: the bearer token
// and a cached profile snapshot, both persisted to the local state database.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dberzins/camagru/internal/dbx"
	"github.com/dberzins/camagru/internal/logging"
	"github.com/dberzins/camagru/internal/session/state"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// Snapshot is the value delivered to subscribers after every mutation.
type Snapshot struct {
	Token string
	User  *User
}

// Store is the process-wide session state. All mutation goes through
// SetAuth / SetUser / ClearAuth, which write through to durable storage
// before updating memory, keeping the two from diverging.
//
// A token value of "" means unauthenticated; a cached User without a token
// is never treated as an active session.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	token  string
	user   *User
	subs   map[int]func(Snapshot)
	nextID int
	logger logging.Logger
}

func NewStore(db *sql.DB, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		db:     db,
		subs:   make(map[int]func(Snapshot)),
		logger: logger.With("component", "session"),
	}
}

func (s *Store) repo(tx dbx.DBTX) state.Repository {
	return state.NewSQLiteRepository(tx)
}

// Restore loads the persisted token and profile snapshot at startup so a
// session survives restarts without a network round trip. A corrupt profile
// snapshot is dropped (and deleted), not fatal.
func (s *Store) Restore(ctx context.Context) error {
	repo := s.repo(s.db)

	token, err := repo.Get(ctx, keyToken)
	if err != nil {
		return fmt.Errorf("restore token: %w", err)
	}

	userRaw, err := repo.Get(ctx, keyUser)
	if err != nil {
		return fmt.Errorf("restore user: %w", err)
	}

	var user *User
	if len(userRaw) > 0 {
		var u User
		if err := json.Unmarshal(userRaw, &u); err != nil {
			s.logger.Warn(ctx, "discarding corrupt profile snapshot", "error", err)
			_ = repo.Delete(ctx, keyUser)
		} else {
			user = &u
		}
	}

	s.mu.Lock()
	s.token = string(token)
	s.user = user
	s.mu.Unlock()
	return nil
}

// SetAuth stores a new token and optional profile snapshot. Both are written
// durably in a single transaction before memory is updated.
func (s *Store) SetAuth(ctx context.Context, token string, user *User) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, keyToken, []byte(token)); err != nil {
			return err
		}
		if user != nil {
			raw, err := json.Marshal(user)
			if err != nil {
				return err
			}
			return repo.Set(ctx, keyUser, raw)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist auth: %w", err)
	}

	s.mu.Lock()
	s.token = token
	if user != nil {
		u := *user
		s.user = &u
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// SetUser replaces the cached profile snapshot without touching the token.
func (s *Store) SetUser(ctx context.Context, user *User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.repo(s.db).Set(ctx, keyUser, raw); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}

	s.mu.Lock()
	u := *user
	s.user = &u
	s.mu.Unlock()

	s.notify()
	return nil
}

// ClearAuth wipes the session, durably and in memory. Used on logout and on
// rejected-credential responses.
func (s *Store) ClearAuth(ctx context.Context) error {
	if err := s.repo(s.db).Clear(ctx); err != nil {
		return fmt.Errorf("clear auth: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.notify()
	return nil
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns a copy of the cached profile snapshot, or nil.
func (s *Store) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a token is present. The cached profile is
// deliberately not consulted.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Subscribe registers fn to run after each mutation. The returned function
// unsubscribes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	snap := Snapshot{Token: s.token}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
