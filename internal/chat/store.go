package chat

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"
)

// Store persists chat transcripts.
type Store interface {
	CreateSession() (string, error)
	AddMessage(sessionID string, msg Message) error
	Transcript(sessionID string) ([]Message, error)
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	sessions map[string][]Message
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory transcript store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]Message),
	}
}

func (s *MemoryStore) CreateSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := generateID()
	s.sessions[id] = []Message{}
	return id, nil
}

func (s *MemoryStore) AddMessage(sessionID string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	if msg.At.IsZero() {
		msg.At = time.Now()
	}
	s.sessions[sessionID] = append(msgs, msg)
	return nil
}

func (s *MemoryStore) Transcript(sessionID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	return append([]Message(nil), msgs...), nil
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
