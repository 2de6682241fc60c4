package domain

import (
	"strings"
	"time"
)

// ConversationMessage is one turn of the transcript between an owner and a
// contact. Transcripts are ordered by CreatedAt ascending.
type ConversationMessage struct {
	ID        MessageID `json:"id,omitempty"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"createdAt"`
}

// Substantive reports whether the message has non-whitespace content.
func (m ConversationMessage) Substantive() bool {
	return strings.TrimSpace(m.Content) != ""
}

// RawContext is the loosely-filled request context a caller sends along with
// a generation request. Any field may be empty.
type RawContext struct {
	ContactName      string `json:"contactName,omitempty"`
	ContactHeadline  string `json:"contactHeadline,omitempty"`
	ContactCompany   string `json:"contactCompany,omitempty"`
	ContactAbout     string `json:"contactAbout,omitempty"`
	UserName         string `json:"userName,omitempty"`
	UserHeadline     string `json:"userHeadline,omitempty"`
	UserAbout        string `json:"userAbout,omitempty"`
	SharedBackground string `json:"sharedBackground,omitempty"`
	RequestType      string `json:"requestType,omitempty"`
	Tone             string `json:"tone,omitempty"`
}

// ContactContext is the target side of a GenerationContext.
type ContactContext struct {
	Name       string
	Headline   string
	Company    string
	About      string
	Experience Timeline
	Education  Timeline
}

// SenderContext is the sender side of a GenerationContext.
type SenderContext struct {
	Name     string
	Headline string
	About    string
}

// GenerationContext is built fresh for each generation and never persisted.
// Every string field is set, possibly to "".
type GenerationContext struct {
	Contact          ContactContext
	User             SenderContext
	SharedBackground string
	History          []ConversationMessage
	Tone             string
	RequestType      string
}

// PromptMessage is a role-tagged message for the generation capability.
type PromptMessage struct {
	Role    PromptRole `json:"role"`
	Content string     `json:"content"`
}

// GenerationResult is returned by a successful generation.
type GenerationResult struct {
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	PromptMessages []PromptMessage `json:"messages"`
}

// GenerationArtifact is the audit record of one generation.
type GenerationArtifact struct {
	ContactID    ContactID             `json:"contactId"`
	UserID       OwnerID               `json:"userId"`
	Timestamp    string                `json:"timestamp"`
	Context      RawContext            `json:"context"`
	SystemPrompt string                `json:"systemPrompt"`
	UserPrompt   string                `json:"userPrompt"`
	ChatHistory  []ConversationMessage `json:"chatHistory"`
	Messages     []PromptMessage       `json:"messages"`
	Generated    string                `json:"generated"`
}

var artifactTimestampReplacer = strings.NewReplacer(":", "-", ".", "-")

// ArtifactTimestamp renders t as an ISO-8601 UTC timestamp with millisecond
// precision, with ':' and '.' replaced by '-' so it is safe in file names.
func ArtifactTimestamp(t time.Time) string {
	return artifactTimestampReplacer.Replace(t.UTC().Format("2006-01-02T15:04:05.000Z"))
}
