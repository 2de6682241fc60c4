package generation

import (
	"cmp"
	"slices"

	"github.com/PabloGalante/linkpitch/internal/domain"
)

const (
	DefaultHistoryWindow = 5
	DefaultTone          = "professional"
	DefaultRequestType   = "connection"
)

// BuildContext merges the stored contact and sender profiles with the
// caller's raw context and a bounded slice of history. Non-empty raw fields
// win over stored ones. contact and user may be nil.
//
// History is sorted oldest first, whitespace-only messages are dropped, and
// only then is it capped to the most recent window entries.
func BuildContext(
	contact *domain.ContactProfile,
	user *domain.UserProfile,
	history []domain.ConversationMessage,
	raw domain.RawContext,
	window int,
) domain.GenerationContext {
	if window <= 0 {
		window = DefaultHistoryWindow
	}

	var c domain.ContactProfile
	if contact != nil {
		c = contact.Normalized()
	} else {
		c = domain.ContactProfile{}.Normalized()
	}

	var u domain.UserProfile
	if user != nil {
		u = *user
	}

	return domain.GenerationContext{
		Contact: domain.ContactContext{
			Name:       cmp.Or(raw.ContactName, c.Name),
			Headline:   cmp.Or(raw.ContactHeadline, c.Headline),
			Company:    cmp.Or(raw.ContactCompany, c.Company),
			About:      cmp.Or(raw.ContactAbout, c.About),
			Experience: c.Experience,
			Education:  c.Education,
		},
		User: domain.SenderContext{
			Name:     cmp.Or(raw.UserName, u.Name),
			Headline: cmp.Or(raw.UserHeadline, u.Headline),
			About:    cmp.Or(raw.UserAbout, u.About),
		},
		SharedBackground: raw.SharedBackground,
		History:          recentHistory(history, window),
		Tone:             cmp.Or(raw.Tone, DefaultTone),
		RequestType:      cmp.Or(raw.RequestType, DefaultRequestType),
	}
}

func recentHistory(history []domain.ConversationMessage, window int) []domain.ConversationMessage {
	sorted := slices.Clone(history)
	slices.SortStableFunc(sorted, func(a, b domain.ConversationMessage) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})

	kept := make([]domain.ConversationMessage, 0, len(sorted))
	for _, m := range sorted {
		if m.Substantive() {
			kept = append(kept, m)
		}
	}

	if len(kept) > window {
		kept = kept[len(kept)-window:]
	}
	return kept
}
