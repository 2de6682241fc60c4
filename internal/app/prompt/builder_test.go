package prompt_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/linkpitch/internal/app/prompt"
	"github.com/PabloGalante/linkpitch/internal/domain"
)

func msg(role domain.Role, content string, minute int) domain.ConversationMessage {
	return domain.ConversationMessage{
		Role:      role,
		Content:   content,
		CreatedAt: time.Date(2024, 1, 1, 10, minute, 0, 0, time.UTC),
	}
}

func baseContext() domain.GenerationContext {
	return domain.GenerationContext{
		Contact: domain.ContactContext{
			Name:     "Sarah Johnson",
			Headline: "PM",
			Company:  "Acme",
			About:    "Builds things people love.",
		},
		User: domain.SenderContext{
			Name:     "John",
			Headline: "Engineer",
			About:    "Backend and data.",
		},
		Tone:        "professional",
		RequestType: "connection",
	}
}

func TestBuildColdScenario(t *testing.T) {
	gc := domain.GenerationContext{
		Contact:     domain.ContactContext{Name: "Sarah Johnson", Headline: "PM"},
		User:        domain.SenderContext{Name: "John"},
		Tone:        "Friendly",
		RequestType: "connection",
	}

	p := prompt.Build(gc)

	assert.Contains(t, p.User, "Target person:\n- Name: Sarah Johnson\n- Headline: PM")
	assert.NotContains(t, p.User, "About")
	assert.True(t, strings.HasSuffix(p.User, "Tone: Friendly."), p.User)
	assert.Contains(t, p.User, "Request: I would like to send a cold connection request.\nTone: Friendly.")
	assert.Contains(t, p.System, "cold outreach")
	assert.Contains(t, p.System, "200 characters")
}

func TestBuildColdIgnoresAboutCompanyAndBackground(t *testing.T) {
	gc := baseContext()
	gc.SharedBackground = "Both at State U"

	p := prompt.Build(gc)

	assert.Equal(t, prompt.ModeCold, prompt.ModeFor(gc))
	assert.NotContains(t, p.User, "About")
	assert.NotContains(t, p.User, "Company")
	assert.NotContains(t, p.User, "Shared Background")
	assert.Contains(t, p.User, "My Profile:\n- Name: John\n- Headline: Engineer\n\n")
}

func TestBuildWarmRendersHistoryWithMostRecentMarker(t *testing.T) {
	gc := baseContext()
	gc.History = []domain.ConversationMessage{
		msg(domain.RoleUser, "A", 1),
		msg(domain.RoleContact, "B", 2),
		msg(domain.RoleContact, "C", 3),
	}

	p := prompt.Build(gc)

	assert.Equal(t, prompt.ModeWarm, prompt.ModeFor(gc))
	assert.Contains(t, p.System, "warm follow-up")
	assert.Contains(t, p.System, "300 characters")
	assert.Contains(t, p.User, "- Me: A\n- Contact: B\n🔹 Most Recent - Contact: C\n")
	assert.Equal(t, 1, strings.Count(p.User, "Most Recent"))
	assert.NotContains(t, p.User, "Most Recent - Contact: B")
	assert.Contains(t, p.User, "- About: Builds things people love.")
	assert.Contains(t, p.User, "- Company: Acme")
	assert.True(t, strings.HasSuffix(p.User, "Tone: professional."))
}

func TestBuildWarmSectionOrder(t *testing.T) {
	gc := baseContext()
	gc.SharedBackground = "Both at State U"
	gc.History = []domain.ConversationMessage{msg(domain.RoleContact, "hello", 1)}

	p := prompt.Build(gc)

	order := []string{"Target person:", "My Profile:", "Shared Background:\n- Both at State U", "Conversation History:", "Request:"}
	last := -1
	for _, s := range order {
		idx := strings.Index(p.User, s)
		require.GreaterOrEqual(t, idx, 0, s)
		assert.Greater(t, idx, last, s)
		last = idx
	}
}

func TestBuildOmitsEmptySenderBlock(t *testing.T) {
	gc := baseContext()
	gc.User = domain.SenderContext{Name: "John"}
	gc.History = []domain.ConversationMessage{msg(domain.RoleUser, "hi", 1)}

	p := prompt.Build(gc)

	assert.NotContains(t, p.User, "My Profile:")
	assert.Contains(t, p.User, "🔹 Most Recent - Me: hi")
}

func TestBuildKeepsTargetBlockWithOnlyName(t *testing.T) {
	gc := baseContext()
	gc.Contact = domain.ContactContext{Name: "Sarah"}
	gc.User = domain.SenderContext{Name: "John"}

	p := prompt.Build(gc)

	assert.True(t, strings.HasPrefix(p.User, "Target person:\n- Name: Sarah\n\n"), p.User)
	assert.NotContains(t, p.User, "My Profile:")
}

func TestBuildMessagesAreSingleTurn(t *testing.T) {
	gc := baseContext()
	for i := 0; i < 5; i++ {
		gc.History = append(gc.History, msg(domain.RoleContact, "m", i))
	}

	p := prompt.Build(gc)

	require.Len(t, p.Messages, 2)
	assert.Equal(t, domain.PromptMessage{Role: domain.PromptRoleSystem, Content: p.System}, p.Messages[0])
	assert.Equal(t, domain.PromptMessage{Role: domain.PromptRoleUser, Content: p.User}, p.Messages[1])
}

func TestBuildIsDeterministic(t *testing.T) {
	for _, gc := range []domain.GenerationContext{
		baseContext(),
		func() domain.GenerationContext {
			gc := baseContext()
			gc.History = []domain.ConversationMessage{msg(domain.RoleUser, "x", 1), msg(domain.RoleContact, "y", 2)}
			return gc
		}(),
	} {
		assert.Equal(t, prompt.Build(gc), prompt.Build(gc))
	}
}
