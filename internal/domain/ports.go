package domain

import "context"

// ChatOptions tune a single chat completion call.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64
	Model       string
	Provider    string
}

// ChatClient is the text-generation capability. It returns the assistant's
// reply text or an error; an empty reply is an error.
type ChatClient interface {
	GenerateChat(ctx context.Context, messages []PromptMessage, opts ChatOptions) (string, error)
}

// MessageStore persists the transcript between an owner and each contact.
type MessageStore interface {
	AppendMessage(ctx context.Context, owner OwnerID, contact ContactID, msg *ConversationMessage) error
	// FindHistory returns up to limit most recent messages, oldest first.
	// A limit <= 0 returns the whole transcript.
	FindHistory(ctx context.Context, contact ContactID, owner OwnerID, limit int) ([]ConversationMessage, error)
}

// ContactStore persists contact profiles per owner.
type ContactStore interface {
	SaveContact(ctx context.Context, owner OwnerID, contact *ContactProfile) error
	FindContactProfile(ctx context.Context, contact ContactID, owner OwnerID) (*ContactProfile, error)
}

// UserStore persists the single sender profile of each owner.
type UserStore interface {
	SaveUserProfile(ctx context.Context, owner OwnerID, profile *UserProfile) error
	FindUserProfile(ctx context.Context, owner OwnerID) (*UserProfile, error)
}

// DebugRecorder stores one audit artifact per generation. It never fails the
// caller; implementations log their own errors.
type DebugRecorder interface {
	Record(ctx context.Context, artifact GenerationArtifact)
}

// Scraper turns a profile or company URL into a result that is always usable.
type Scraper interface {
	ScrapeProfile(ctx context.Context, url string) ScrapeResult
	ScrapeCompany(ctx context.Context, url string) CompanyScrapeResult
}
