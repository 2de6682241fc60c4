package firestore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/linkpitch/internal/domain"
)

// Store persists sender profiles, contacts and conversation threads.
//
// Layout:
//
//	users/{owner}
//	users/{owner}/contacts/{contact}
//	users/{owner}/contacts/{contact}/messages/{message}
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (LINKPITCH_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) userDoc(owner domain.OwnerID) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(string(owner))
}

func (s *Store) contactDoc(owner domain.OwnerID, contact domain.ContactID) *firestore.DocumentRef {
	return s.userDoc(owner).Collection("contacts").Doc(string(contact))
}

func (s *Store) messagesCol(owner domain.OwnerID, contact domain.ContactID) *firestore.CollectionRef {
	return s.contactDoc(owner, contact).Collection("messages")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type timelineDoc struct {
	Positions    []string `firestore:"positions"`
	Institutions []string `firestore:"institutions"`
	Dates        []string `firestore:"dates"`
}

type profileDoc struct {
	Name        string      `firestore:"name"`
	Headline    string      `firestore:"headline"`
	Company     string      `firestore:"company"`
	About       string      `firestore:"about"`
	AvatarURL   string      `firestore:"avatar_url"`
	Experience  timelineDoc `firestore:"experience"`
	Education   timelineDoc `firestore:"education"`
	LinkedInURL string      `firestore:"linkedin_url"`
	ScrapedAt   *time.Time  `firestore:"scraped_at"`
	UpdatedAt   time.Time   `firestore:"updated_at"`
}

type messageDoc struct {
	Role      string    `firestore:"role"`
	Content   string    `firestore:"content"`
	CreatedAt time.Time `firestore:"created_at"`
}

func toTimelineDoc(t domain.Timeline) timelineDoc {
	n := t.Normalize()
	return timelineDoc{Positions: n.Positions, Institutions: n.Institutions, Dates: n.Dates}
}

func (d timelineDoc) timeline() domain.Timeline {
	return domain.Timeline{Positions: d.Positions, Institutions: d.Institutions, Dates: d.Dates}.Normalize()
}

func notFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ─────────────────────────────────────────
// UserStore implementation
// ─────────────────────────────────────────

func (s *Store) SaveUserProfile(ctx context.Context, owner domain.OwnerID, p *domain.UserProfile) error {
	doc := profileDoc{
		Name:        p.Name,
		Headline:    p.Headline,
		Company:     p.Company,
		About:       p.About,
		AvatarURL:   p.AvatarURL,
		Experience:  toTimelineDoc(p.Experience),
		Education:   toTimelineDoc(p.Education),
		LinkedInURL: p.LinkedInURL,
		ScrapedAt:   p.ScrapedAt,
		UpdatedAt:   time.Now().UTC(),
	}

	if _, err := s.userDoc(owner).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore SaveUserProfile: %w", err)
	}
	return nil
}

func (s *Store) FindUserProfile(ctx context.Context, owner domain.OwnerID) (*domain.UserProfile, error) {
	snap, err := s.userDoc(owner).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore FindUserProfile: %w", err)
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore FindUserProfile decode: %w", err)
	}

	return &domain.UserProfile{
		Name:        doc.Name,
		Headline:    doc.Headline,
		Company:     doc.Company,
		About:       doc.About,
		AvatarURL:   doc.AvatarURL,
		Experience:  doc.Experience.timeline(),
		Education:   doc.Education.timeline(),
		LinkedInURL: doc.LinkedInURL,
		ScrapedAt:   doc.ScrapedAt,
	}, nil
}

// ─────────────────────────────────────────
// ContactStore implementation
// ─────────────────────────────────────────

func (s *Store) SaveContact(ctx context.Context, owner domain.OwnerID, c *domain.ContactProfile) error {
	doc := profileDoc{
		Name:        c.Name,
		Headline:    c.Headline,
		Company:     c.Company,
		About:       c.About,
		AvatarURL:   c.AvatarURL,
		Experience:  toTimelineDoc(c.Experience),
		Education:   toTimelineDoc(c.Education),
		LinkedInURL: c.LinkedInURL,
		ScrapedAt:   c.ScrapedAt,
		UpdatedAt:   time.Now().UTC(),
	}

	if _, err := s.contactDoc(owner, c.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore SaveContact: %w", err)
	}
	return nil
}

func (s *Store) FindContactProfile(ctx context.Context, contact domain.ContactID, owner domain.OwnerID) (*domain.ContactProfile, error) {
	snap, err := s.contactDoc(owner, contact).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("firestore FindContactProfile: %w", err)
	}

	var doc profileDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore FindContactProfile decode: %w", err)
	}

	return &domain.ContactProfile{
		ID:          contact,
		Name:        doc.Name,
		Headline:    doc.Headline,
		Company:     doc.Company,
		About:       doc.About,
		AvatarURL:   doc.AvatarURL,
		Experience:  doc.Experience.timeline(),
		Education:   doc.Education.timeline(),
		LinkedInURL: doc.LinkedInURL,
		ScrapedAt:   doc.ScrapedAt,
	}, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, owner domain.OwnerID, contact domain.ContactID, msg *domain.ConversationMessage) error {
	doc := messageDoc{
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}

	if _, err := s.messagesCol(owner, contact).Doc(string(msg.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

// FindHistory reads the newest limit messages and returns them oldest first.
func (s *Store) FindHistory(ctx context.Context, contact domain.ContactID, owner domain.OwnerID, limit int) ([]domain.ConversationMessage, error) {
	q := s.messagesCol(owner, contact).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []domain.ConversationMessage
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore FindHistory: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}

		out = append(out, domain.ConversationMessage{
			ID:        domain.MessageID(snap.Ref.ID),
			Role:      domain.Role(doc.Role),
			Content:   doc.Content,
			CreatedAt: doc.CreatedAt,
		})
	}
	slices.Reverse(out)
	return out, nil
}
