package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/PabloGalante/linkpitch/internal/domain"
)

type threadKey struct {
	owner   domain.OwnerID
	contact domain.ContactID
}

type MessageStore struct {
	mu       sync.RWMutex
	messages map[threadKey][]domain.ConversationMessage
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[threadKey][]domain.ConversationMessage),
	}
}

func (s *MessageStore) AppendMessage(_ context.Context, owner domain.OwnerID, contact domain.ContactID, msg *domain.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := threadKey{owner: owner, contact: contact}
	thread := append(s.messages[k], *msg)
	// keep the thread ordered even if callers append out of order
	slices.SortStableFunc(thread, func(a, b domain.ConversationMessage) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})
	s.messages[k] = thread
	return nil
}

func (s *MessageStore) FindHistory(_ context.Context, contact domain.ContactID, owner domain.OwnerID, limit int) ([]domain.ConversationMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[threadKey{owner: owner, contact: contact}]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return slices.Clone(msgs), nil
}
