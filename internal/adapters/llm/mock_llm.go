package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/linkpitch/internal/domain"
)

// MockLLM returns a canned reply without any network I/O. Useful for dev.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateChat(_ context.Context, msgs []domain.PromptMessage, _ domain.ChatOptions) (string, error) {
	if len(msgs) == 0 {
		return "", fmt.Errorf("mock llm: no messages")
	}
	if strings.Contains(msgs[len(msgs)-1].Content, "Most Recent") {
		return "Thanks for getting back to me! Happy to keep the conversation going.", nil
	}
	return "Hi! I came across your profile and would love to connect.", nil
}

// Unconfigured stands in for a provider whose credentials are missing. Every
// call fails with the configuration error, before any network I/O.
type Unconfigured struct {
	Err error
}

func (u Unconfigured) GenerateChat(context.Context, []domain.PromptMessage, domain.ChatOptions) (string, error) {
	return "", u.Err
}
