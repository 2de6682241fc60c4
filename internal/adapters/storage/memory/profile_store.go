package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/linkpitch/internal/domain"
)

// ProfileStore keeps contact profiles and sender profiles in memory.
// It is NOT persistent and is only suitable for development / local mode.
type ProfileStore struct {
	mu       sync.RWMutex
	contacts map[domain.OwnerID]map[domain.ContactID]domain.ContactProfile
	users    map[domain.OwnerID]domain.UserProfile
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		contacts: make(map[domain.OwnerID]map[domain.ContactID]domain.ContactProfile),
		users:    make(map[domain.OwnerID]domain.UserProfile),
	}
}

func (s *ProfileStore) SaveContact(_ context.Context, owner domain.OwnerID, contact *domain.ContactProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.contacts[owner]
	if !ok {
		byID = make(map[domain.ContactID]domain.ContactProfile)
		s.contacts[owner] = byID
	}
	byID[contact.ID] = *contact
	return nil
}

func (s *ProfileStore) FindContactProfile(_ context.Context, contact domain.ContactID, owner domain.OwnerID) (*domain.ContactProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[owner][contact]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *ProfileStore) SaveUserProfile(_ context.Context, owner domain.OwnerID, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[owner] = *profile
	return nil
}

func (s *ProfileStore) FindUserProfile(_ context.Context, owner domain.OwnerID) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[owner]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}
