package contacts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/linkpitch/internal/domain"
	"github.com/PabloGalante/linkpitch/internal/observability"
)

// Service persists what the generation flow reads: contact profiles, the
// sender's profile and the conversation transcript.
type Service struct {
	contacts domain.ContactStore
	users    domain.UserStore
	messages domain.MessageStore
	now      func() time.Time
	newID    func() string
}

func NewService(contacts domain.ContactStore, users domain.UserStore, messages domain.MessageStore) *Service {
	return &Service{
		contacts: contacts,
		users:    users,
		messages: messages,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func validation(msg string) error {
	return domain.NewError(domain.KindValidationError, msg, nil)
}

func notFound(msg string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.KindNotFound, msg, err)
	}
	return err
}

// SaveContact stores a (possibly hand-edited) contact profile, repairing
// its timelines first.
func (s *Service) SaveContact(ctx context.Context, owner domain.OwnerID, profile domain.ContactProfile) (*domain.ContactProfile, error) {
	if owner == "" {
		return nil, validation("owner id is required")
	}
	profile.ID = domain.ContactID(strings.TrimSpace(string(profile.ID)))
	if profile.ID == "" {
		return nil, validation("contact id is required")
	}

	log := observability.LoggerFromContext(ctx).With(
		"owner_id", owner,
		"contact_id", profile.ID,
	)

	p := profile.Normalized()
	if err := s.contacts.SaveContact(ctx, owner, &p); err != nil {
		log.Error("failed to save contact", "error", err)
		return nil, err
	}

	log.Info("contact saved")
	return &p, nil
}

// SaveScrape stores a scrape result as a contact keyed by its LinkedIn
// identifier. Partial results are saved too so they can be completed later.
func (s *Service) SaveScrape(ctx context.Context, owner domain.OwnerID, url string, res domain.ScrapeResult) (*domain.ContactProfile, error) {
	return s.SaveContact(ctx, owner, res.ContactProfile(url))
}

func (s *Service) GetContact(ctx context.Context, owner domain.OwnerID, id domain.ContactID) (*domain.ContactProfile, error) {
	if owner == "" || id == "" {
		return nil, validation("owner id and contact id are required")
	}
	p, err := s.contacts.FindContactProfile(ctx, id, owner)
	if err != nil {
		return nil, notFound("contact not found", err)
	}
	return p, nil
}

func (s *Service) SaveUserProfile(ctx context.Context, owner domain.OwnerID, profile domain.UserProfile) (*domain.UserProfile, error) {
	if owner == "" {
		return nil, validation("owner id is required")
	}

	p := profile.Normalized()
	if err := s.users.SaveUserProfile(ctx, owner, &p); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to save user profile", "owner_id", owner, "error", err)
		return nil, err
	}
	return &p, nil
}

func (s *Service) GetUserProfile(ctx context.Context, owner domain.OwnerID) (*domain.UserProfile, error) {
	if owner == "" {
		return nil, validation("owner id is required")
	}
	p, err := s.users.FindUserProfile(ctx, owner)
	if err != nil {
		return nil, notFound("profile not found", err)
	}
	return p, nil
}

type AppendMessageInput struct {
	Owner   domain.OwnerID
	Contact domain.ContactID
	Role    domain.Role
	Content string
}

// AppendMessage adds one turn to the transcript between owner and contact.
func (s *Service) AppendMessage(ctx context.Context, in AppendMessageInput) (*domain.ConversationMessage, error) {
	if in.Owner == "" || in.Contact == "" {
		return nil, validation("owner id and contact id are required")
	}
	if in.Role != domain.RoleUser && in.Role != domain.RoleContact {
		return nil, validation("role must be 'user' or 'contact'")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, validation("content must not be empty")
	}

	msg := &domain.ConversationMessage{
		ID:        domain.MessageID(s.newID()),
		Role:      in.Role,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}

	if err := s.messages.AppendMessage(ctx, in.Owner, in.Contact, msg); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to append message",
			"owner_id", in.Owner,
			"contact_id", in.Contact,
			"error", err,
		)
		return nil, err
	}
	return msg, nil
}

// ListMessages returns the transcript oldest first. If limit <= 0 the whole
// thread is returned.
func (s *Service) ListMessages(ctx context.Context, owner domain.OwnerID, contact domain.ContactID, limit int) ([]domain.ConversationMessage, error) {
	if owner == "" || contact == "" {
		return nil, validation("owner id and contact id are required")
	}
	msgs, err := s.messages.FindHistory(ctx, contact, owner, limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.ConversationMessage{}
	}
	return msgs, nil
}
