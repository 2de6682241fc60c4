package domain

import "time"

type OwnerID string
type ContactID string
type MessageID string

// Role is the author of a stored conversation message.
type Role string

const (
	RoleUser    Role = "user"
	RoleContact Role = "contact"
)

// PromptRole tags a message sent to the generation capability.
type PromptRole string

const (
	PromptRoleSystem    PromptRole = "system"
	PromptRoleUser      PromptRole = "user"
	PromptRoleAssistant PromptRole = "assistant"
)

// ScrapeType selects the kind of lookup the scraping service performs.
type ScrapeType string

const (
	ScrapeTypeProfile ScrapeType = "profile"
	ScrapeTypeCompany ScrapeType = "company"
)

type Timestamp = time.Time
