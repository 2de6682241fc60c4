package generation_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/linkpitch/internal/app/generation"
	"github.com/PabloGalante/linkpitch/internal/domain"
)

var t0 = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func at(i int, role domain.Role, content string) domain.ConversationMessage {
	return domain.ConversationMessage{
		ID:        domain.MessageID(fmt.Sprintf("m%d", i)),
		Role:      role,
		Content:   content,
		CreatedAt: t0.Add(time.Duration(i) * time.Minute),
	}
}

func ids(msgs []domain.ConversationMessage) []domain.MessageID {
	out := make([]domain.MessageID, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func TestBuildContextDefaults(t *testing.T) {
	gc := generation.BuildContext(nil, nil, nil, domain.RawContext{}, 0)

	assert.Equal(t, "professional", gc.Tone)
	assert.Equal(t, "connection", gc.RequestType)
	assert.Equal(t, domain.ContactContext{
		Experience: domain.EmptyTimeline(),
		Education:  domain.EmptyTimeline(),
	}, gc.Contact)
	assert.Equal(t, domain.SenderContext{}, gc.User)
	assert.NotNil(t, gc.History)
	assert.Empty(t, gc.History)
}

func TestBuildContextRawOverridesProfiles(t *testing.T) {
	contact := &domain.ContactProfile{ID: "sarah", Name: "Sarah", Headline: "PM", Company: "Acme"}
	user := &domain.UserProfile{Name: "John", Headline: "Engineer", About: "Go"}

	gc := generation.BuildContext(contact, user, nil, domain.RawContext{
		ContactHeadline: "Director of Product",
		UserAbout:       "Distributed systems",
		Tone:            "Friendly",
	}, 5)

	assert.Equal(t, "Sarah", gc.Contact.Name)
	assert.Equal(t, "Director of Product", gc.Contact.Headline)
	assert.Equal(t, "Acme", gc.Contact.Company)
	assert.Equal(t, "John", gc.User.Name)
	assert.Equal(t, "Distributed systems", gc.User.About)
	assert.Equal(t, "Friendly", gc.Tone)
}

func TestBuildContextTruncatesToMostRecentFive(t *testing.T) {
	var history []domain.ConversationMessage
	for i := 0; i < 8; i++ {
		history = append(history, at(i, domain.RoleContact, fmt.Sprintf("msg %d", i)))
	}

	gc := generation.BuildContext(nil, nil, history, domain.RawContext{}, 5)

	assert.Equal(t, []domain.MessageID{"m3", "m4", "m5", "m6", "m7"}, ids(gc.History))
}

func TestBuildContextFiltersBeforeCapping(t *testing.T) {
	history := []domain.ConversationMessage{
		at(0, domain.RoleUser, "one"),
		at(1, domain.RoleContact, "   "),
		at(2, domain.RoleUser, "two"),
		at(3, domain.RoleContact, ""),
		at(4, domain.RoleUser, "three"),
		at(5, domain.RoleContact, "\n\t"),
		at(6, domain.RoleUser, "four"),
		at(7, domain.RoleContact, "five"),
		at(8, domain.RoleUser, " "),
		at(9, domain.RoleContact, "six"),
	}

	gc := generation.BuildContext(nil, nil, history, domain.RawContext{}, 5)

	assert.Equal(t, []domain.MessageID{"m2", "m4", "m6", "m7", "m9"}, ids(gc.History))
}

func TestBuildContextSortsOldestFirst(t *testing.T) {
	history := []domain.ConversationMessage{
		at(3, domain.RoleUser, "c"),
		at(1, domain.RoleUser, "a"),
		at(2, domain.RoleContact, "b"),
	}

	gc := generation.BuildContext(nil, nil, history, domain.RawContext{}, 5)

	assert.Equal(t, []domain.MessageID{"m1", "m2", "m3"}, ids(gc.History))
	// input order untouched
	assert.Equal(t, domain.MessageID("m3"), history[0].ID)
}

func TestBuildContextRepairsMismatchedTimelines(t *testing.T) {
	contact := &domain.ContactProfile{
		Experience: domain.Timeline{
			Positions:    []string{"PM", "Engineer"},
			Institutions: []string{"Acme"},
			Dates:        []string{"2020-Now", "2018-2020", "2016-2018"},
		},
		Education: domain.Timeline{Institutions: []string{"State U"}},
	}

	gc := generation.BuildContext(contact, nil, nil, domain.RawContext{}, 5)

	for _, tl := range []domain.Timeline{gc.Contact.Experience, gc.Contact.Education} {
		require.Equal(t, len(tl.Positions), len(tl.Institutions))
		require.Equal(t, len(tl.Positions), len(tl.Dates))
	}
	assert.Equal(t, []string{"PM", "Engineer", ""}, gc.Contact.Experience.Positions)
	assert.Equal(t, []string{""}, gc.Contact.Education.Positions)
}
