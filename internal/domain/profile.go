package domain

// Timeline holds parallel lists of positions, institutions and date ranges.
// Entry i of each list describes the same experience or education item.
type Timeline struct {
	Positions    []string `json:"positions"`
	Institutions []string `json:"institutions"`
	Dates        []string `json:"dates"`
}

// EmptyTimeline returns a timeline whose lists are non-nil and empty, so it
// encodes as [] rather than null.
func EmptyTimeline() Timeline {
	return Timeline{
		Positions:    []string{},
		Institutions: []string{},
		Dates:        []string{},
	}
}

// Len is the number of entries after normalization.
func (t Timeline) Len() int {
	return max(len(t.Positions), len(t.Institutions), len(t.Dates))
}

// Normalize pads the shorter lists with empty strings so all three have the
// length of the longest one. The receiver is not modified.
func (t Timeline) Normalize() Timeline {
	n := t.Len()
	return Timeline{
		Positions:    padTo(t.Positions, n),
		Institutions: padTo(t.Institutions, n),
		Dates:        padTo(t.Dates, n),
	}
}

func padTo(in []string, n int) []string {
	out := make([]string, n)
	copy(out, in)
	return out
}

// ContactProfile is the public information about the person a message is
// written to. ID is unique within an owner.
type ContactProfile struct {
	ID          ContactID  `json:"id"`
	Name        string     `json:"name"`
	Headline    string     `json:"headline"`
	Company     string     `json:"company"`
	About       string     `json:"about"`
	AvatarURL   string     `json:"avatarUrl"`
	Experience  Timeline   `json:"experience"`
	Education   Timeline   `json:"education"`
	LinkedInURL string     `json:"linkedinUrl"`
	ScrapedAt   *Timestamp `json:"scrapedAt,omitempty"`
}

// UserProfile describes the sender. There is one per owner.
type UserProfile struct {
	Name        string     `json:"name"`
	Headline    string     `json:"headline"`
	Company     string     `json:"company"`
	About       string     `json:"about"`
	AvatarURL   string     `json:"avatarUrl"`
	Experience  Timeline   `json:"experience"`
	Education   Timeline   `json:"education"`
	LinkedInURL string     `json:"linkedinUrl"`
	ScrapedAt   *Timestamp `json:"scrapedAt,omitempty"`
}

// Normalized returns a copy with both timelines repaired.
func (c ContactProfile) Normalized() ContactProfile {
	c.Experience = c.Experience.Normalize()
	c.Education = c.Education.Normalize()
	return c
}

// Normalized returns a copy with both timelines repaired.
func (u UserProfile) Normalized() UserProfile {
	u.Experience = u.Experience.Normalize()
	u.Education = u.Education.Normalize()
	return u
}
