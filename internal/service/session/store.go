package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Paveld-cloud/imgbb-bot/internal/model/upload"
)

var ErrSessionNotFound = errors.New("session not found")

// Store keeps at most one pending upload per user, in memory only.
// Sessions are short-lived human interactions and do not survive a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]upload.Session
}

// NewStore bootstraps the in-memory session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]upload.Session)}
}

// Put stores image bytes for the user, replacing any pending session.
// The bytes are copied so later mutations of the argument cannot leak in.
func (s *Store) Put(_ context.Context, userID int64, image []byte) upload.Session {
	data := make([]byte, len(image))
	copy(data, image)

	sess := upload.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Image:     data,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[userID] = sess
	s.mu.Unlock()

	return sess
}

// Get retrieves the user's pending session.
func (s *Store) Get(_ context.Context, userID int64) (upload.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return upload.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// Clear drops the user's pending session and reports whether one existed.
// Clearing an absent session is a no-op.
func (s *Store) Clear(_ context.Context, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[userID]; !ok {
		return false
	}
	delete(s.sessions, userID)
	return true
}

// ClearIf drops the user's pending session only when its ID still matches id,
// and reports whether it did. Handlers run concurrently, so a slow pipeline
// must not discard a session that was replaced while it worked.
func (s *Store) ClearIf(_ context.Context, userID int64, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.ID != id {
		return false
	}
	delete(s.sessions, userID)
	return true
}

// State derives the conversation state from session presence.
func (s *Store) State(_ context.Context, userID int64) upload.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[userID]; ok {
		return upload.StateAwaitingID
	}
	return upload.StateIdle
}

// PruneStale removes sessions created before now minus olderThan and returns
// how many were dropped.
func (s *Store) PruneStale(_ context.Context, olderThan time.Duration) int {
	cutoff := time.Now().UTC().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for userID, sess := range s.sessions {
		if sess.CreatedAt.Before(cutoff) {
			delete(s.sessions, userID)
			pruned++
		}
	}
	return pruned
}

// RunJanitor prunes abandoned sessions every interval until ctx is done.
// A non-positive ttl or interval disables pruning entirely.
func (s *Store) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := s.PruneStale(ctx, ttl); pruned > 0 {
				log.Printf("[session] pruned %d stale sessions", pruned)
			}
		}
	}
}
