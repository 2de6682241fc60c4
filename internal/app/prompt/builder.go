// Package prompt renders a GenerationContext into the system and user
// prompts sent to the generation capability. Build is pure: identical input
// yields identical output.
package prompt

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/linkpitch/internal/domain"
)

// Mode is the outreach strategy picked for one call.
type Mode string

const (
	ModeCold Mode = "cold"
	ModeWarm Mode = "warm"
)

const coldSystemPrompt = `You are an expert LinkedIn networking assistant writing a cold outreach message to someone I have never talked to.

Guidelines:
- Write in the first person, as me, the sender. Never write as the target person.
- Be concise: aim for fewer than 200 characters.
- Be warm but professional. One clear reason to connect is enough.
- Return only the message text, with no greeting placeholders, quotes or commentary.`

const warmSystemPrompt = `You are an expert LinkedIn networking assistant writing a warm follow-up message in an ongoing conversation.

Guidelines:
- Write in the first person, as me, the sender. Never write as the contact.
- Reply naturally to the most recent message and keep the conversation going.
- You may be more detailed than a first message: aim for fewer than 300 characters.
- Use the profiles and shared background when they make the reply more personal.
- Return only the message text, with no quotes or commentary.`

const mostRecentPrefix = "🔹 Most Recent - "

// Prompt is the rendered output of Build.
type Prompt struct {
	Messages []domain.PromptMessage
	System   string
	User     string
}

// ModeFor picks cold outreach when there is no history, warm follow-up
// otherwise.
func ModeFor(gc domain.GenerationContext) Mode {
	if len(gc.History) == 0 {
		return ModeCold
	}
	return ModeWarm
}

// Build renders the prompts for gc. History is folded into the user prompt so
// the call is always single-turn: Messages is exactly [system, user].
func Build(gc domain.GenerationContext) Prompt {
	var system, user string
	switch ModeFor(gc) {
	case ModeWarm:
		system = warmSystemPrompt
		user = warmUserPrompt(gc)
	default:
		system = coldSystemPrompt
		user = coldUserPrompt(gc)
	}

	return Prompt{
		Messages: []domain.PromptMessage{
			{Role: domain.PromptRoleSystem, Content: system},
			{Role: domain.PromptRoleUser, Content: user},
		},
		System: system,
		User:   user,
	}
}

func coldUserPrompt(gc domain.GenerationContext) string {
	var b strings.Builder

	writeBlock(&b, "Target person:",
		field{"Name", gc.Contact.Name},
		field{"Headline", gc.Contact.Headline},
	)
	if hasProfile(gc.User) {
		writeBlock(&b, "My Profile:",
			field{"Name", gc.User.Name},
			field{"Headline", gc.User.Headline},
		)
	}
	writeRequest(&b, gc)

	return b.String()
}

func warmUserPrompt(gc domain.GenerationContext) string {
	var b strings.Builder

	writeBlock(&b, "Target person:",
		field{"Name", gc.Contact.Name},
		field{"Headline", gc.Contact.Headline},
		field{"Company", gc.Contact.Company},
		field{"About", gc.Contact.About},
	)
	if hasProfile(gc.User) {
		writeBlock(&b, "My Profile:",
			field{"Name", gc.User.Name},
			field{"Headline", gc.User.Headline},
			field{"About", gc.User.About},
		)
	}
	if gc.SharedBackground != "" {
		writeBlock(&b, "Shared Background:", field{"", gc.SharedBackground})
	}

	b.WriteString("Conversation History:\n")
	last := len(gc.History) - 1
	for i, m := range gc.History {
		if i == last {
			b.WriteString(mostRecentPrefix)
		} else {
			b.WriteString("- ")
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker(m.Role), m.Content)
	}
	fmt.Fprintf(&b, "\nRespond naturally to the most recent message from %s.\n\n", describe(gc.History[last].Role))

	writeRequest(&b, gc)

	return b.String()
}

type field struct {
	label string
	value string
}

// writeBlock writes a header followed by one line per non-empty field and a
// blank separator line. Nothing is written when every field is empty.
func writeBlock(b *strings.Builder, header string, fields ...field) {
	var lines []string
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if f.label == "" {
			lines = append(lines, "- "+f.value)
		} else {
			lines = append(lines, "- "+f.label+": "+f.value)
		}
	}
	if len(lines) == 0 {
		return
	}

	b.WriteString(header)
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// hasProfile: the sender block is only rendered when there is something
// beyond a bare name to say about them.
func hasProfile(u domain.SenderContext) bool {
	return u.Headline != "" || u.About != ""
}

func writeRequest(b *strings.Builder, gc domain.GenerationContext) {
	fmt.Fprintf(b, "Request: I would like to send a cold %s request.\nTone: %s.", gc.RequestType, gc.Tone)
}

func speaker(r domain.Role) string {
	if r == domain.RoleUser {
		return "Me"
	}
	return "Contact"
}

func describe(r domain.Role) string {
	if r == domain.RoleUser {
		return "me"
	}
	return "the contact"
}
