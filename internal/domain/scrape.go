package domain

// ScrapeResult is the outcome of one profile scrape attempt. When Partial is
// true every content field is empty but the value is still well-formed and
// can be shown in a manual-entry form.
type ScrapeResult struct {
	LinkedInID string    `json:"linkedinId"`
	Name       string    `json:"name"`
	Headline   string    `json:"headline"`
	AvatarURL  string    `json:"avatarUrl"`
	About      string    `json:"about"`
	Experience Timeline  `json:"experience"`
	Education  Timeline  `json:"education"`
	ScrapedAt  Timestamp `json:"scrapedAt"`
	Partial    bool      `json:"partial"`
	Error      *string   `json:"error"`
}

// ContactProfile converts the scrape into a contact record keyed by the
// LinkedIn identifier.
func (r ScrapeResult) ContactProfile(url string) ContactProfile {
	scrapedAt := r.ScrapedAt
	return ContactProfile{
		ID:          ContactID(r.LinkedInID),
		Name:        r.Name,
		Headline:    r.Headline,
		About:       r.About,
		AvatarURL:   r.AvatarURL,
		Experience:  r.Experience.Normalize(),
		Education:   r.Education.Normalize(),
		LinkedInURL: url,
		ScrapedAt:   &scrapedAt,
	}
}

// ErrorText returns the failure message, or "" for a complete scrape.
func (r ScrapeResult) ErrorText() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

// CompanyScrapeResult is the organization variant of ScrapeResult.
type CompanyScrapeResult struct {
	LinkedInID  string    `json:"linkedinId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Size        string    `json:"size"`
	Founded     string    `json:"founded"`
	Website     string    `json:"website"`
	ScrapedAt   Timestamp `json:"scrapedAt"`
	Partial     bool      `json:"partial"`
	Error       *string   `json:"error"`
}

func (r CompanyScrapeResult) ErrorText() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}
