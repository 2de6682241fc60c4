// Package scraper adapts the external profile scraping service. Its public
// methods are total: every failure becomes a partial result instead of an
// error.
package scraper

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PabloGalante/linkpitch/internal/domain"
	"github.com/PabloGalante/linkpitch/internal/metrics"
	"github.com/PabloGalante/linkpitch/internal/observability"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	maxBodyBytes   = 1 << 20

	msgUnknownProfile = "Failed to scrape profile. Please try again or enter information manually."
	msgUnknownCompany = "Failed to scrape company. Please try again or enter information manually."
)

// Client calls POST {baseURL}/scrape. It has no retry of its own.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
	now     func() time.Time
}

func New(baseURL string, timeout time.Duration, m *metrics.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		metrics: m,
		now:     time.Now,
	}
}

type scrapeRequest struct {
	URL  string            `json:"url"`
	Type domain.ScrapeType `json:"type"`
}

type timelineDoc struct {
	Positions    []string `json:"positions"`
	Institutions []string `json:"institutions"`
	Dates        []string `json:"dates"`
}

type profileResponse struct {
	LinkedInID string       `json:"linkedin_id"`
	Name       string       `json:"name"`
	Headline   string       `json:"headline"`
	AvatarURL  string       `json:"avatar_url"`
	About      string       `json:"about"`
	Experience *timelineDoc `json:"experience"`
	Education  *timelineDoc `json:"education"`
	ScrapedAt  string       `json:"scraped_at"`
	Error      string       `json:"error"`
}

type companyResponse struct {
	LinkedInID  string     `json:"linkedin_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Size        flexString `json:"size"`
	Founded     flexString `json:"founded"`
	Website     string     `json:"website"`
	ScrapedAt   string     `json:"scraped_at"`
	Error       string     `json:"error"`
}

// ScrapeProfile never fails: on any error the result is partial and carries
// a human-readable Error, with LinkedInID extracted from url when possible.
func (c *Client) ScrapeProfile(ctx context.Context, url string) (res domain.ScrapeResult) {
	log := observability.LoggerFromContext(ctx).With("url", url, "type", domain.ScrapeTypeProfile)

	defer func() {
		if r := recover(); r != nil {
			log.Error("scraper panicked", "panic", fmt.Sprint(r))
			res = partialProfile(url, c.now(), msgUnknownProfile)
			c.metrics.ObserveScrape(string(domain.ScrapeTypeProfile), "panic")
		}
	}()

	res, err := c.scrapeProfile(ctx, url)
	if err != nil {
		var e *domain.Error
		msg := msgUnknownProfile
		kind := domain.KindScraperUnavailable
		if errors.As(err, &e) {
			msg, kind = e.Message, e.Kind
		}
		log.Warn("profile scrape failed, returning partial data", "kind", kind, "error", err)
		c.metrics.ObserveScrape(string(domain.ScrapeTypeProfile), strings.ToLower(string(kind)))
		return partialProfile(url, c.now(), msg)
	}

	log.Info("profile scraped", "linkedin_id", res.LinkedInID)
	c.metrics.ObserveScrape(string(domain.ScrapeTypeProfile), "ok")
	return res
}

// ScrapeCompany is the organization variant of ScrapeProfile.
func (c *Client) ScrapeCompany(ctx context.Context, url string) (res domain.CompanyScrapeResult) {
	log := observability.LoggerFromContext(ctx).With("url", url, "type", domain.ScrapeTypeCompany)

	defer func() {
		if r := recover(); r != nil {
			log.Error("scraper panicked", "panic", fmt.Sprint(r))
			res = partialCompany(url, c.now(), msgUnknownCompany)
			c.metrics.ObserveScrape(string(domain.ScrapeTypeCompany), "panic")
		}
	}()

	res, err := c.scrapeCompany(ctx, url)
	if err != nil {
		var e *domain.Error
		msg := msgUnknownCompany
		kind := domain.KindScraperUnavailable
		if errors.As(err, &e) {
			msg, kind = e.Message, e.Kind
		}
		log.Warn("company scrape failed, returning partial data", "kind", kind, "error", err)
		c.metrics.ObserveScrape(string(domain.ScrapeTypeCompany), strings.ToLower(string(kind)))
		return partialCompany(url, c.now(), msg)
	}

	log.Info("company scraped", "linkedin_id", res.LinkedInID)
	c.metrics.ObserveScrape(string(domain.ScrapeTypeCompany), "ok")
	return res
}

func (c *Client) scrapeProfile(ctx context.Context, url string) (domain.ScrapeResult, error) {
	if !ValidateURL(url, domain.ScrapeTypeProfile) {
		return domain.ScrapeResult{}, domain.NewError(domain.KindInvalidURL, "Invalid LinkedIn URL", nil)
	}

	var out profileResponse
	if err := c.post(ctx, scrapeRequest{URL: url, Type: domain.ScrapeTypeProfile}, "Failed to scrape profile", &out); err != nil {
		return domain.ScrapeResult{}, err
	}
	if out.Error != "" {
		return domain.ScrapeResult{}, domain.NewError(domain.KindScraperReportedError, out.Error, nil)
	}

	return domain.ScrapeResult{
		LinkedInID: cmp.Or(out.LinkedInID, ExtractID(url, domain.ScrapeTypeProfile)),
		Name:       out.Name,
		Headline:   out.Headline,
		AvatarURL:  out.AvatarURL,
		About:      out.About,
		Experience: out.Experience.timeline(),
		Education:  out.Education.timeline(),
		ScrapedAt:  parseScrapedAt(out.ScrapedAt, c.now()),
	}, nil
}

func (c *Client) scrapeCompany(ctx context.Context, url string) (domain.CompanyScrapeResult, error) {
	if !ValidateURL(url, domain.ScrapeTypeCompany) {
		return domain.CompanyScrapeResult{}, domain.NewError(domain.KindInvalidURL, "Invalid LinkedIn company URL", nil)
	}

	var out companyResponse
	if err := c.post(ctx, scrapeRequest{URL: url, Type: domain.ScrapeTypeCompany}, "Failed to scrape company", &out); err != nil {
		return domain.CompanyScrapeResult{}, err
	}
	if out.Error != "" {
		return domain.CompanyScrapeResult{}, domain.NewError(domain.KindScraperReportedError, out.Error, nil)
	}

	return domain.CompanyScrapeResult{
		LinkedInID:  cmp.Or(out.LinkedInID, ExtractID(url, domain.ScrapeTypeCompany)),
		Name:        out.Name,
		Description: out.Description,
		Size:        string(out.Size),
		Founded:     string(out.Founded),
		Website:     out.Website,
		ScrapedAt:   parseScrapedAt(out.ScrapedAt, c.now()),
	}, nil
}

// post sends the scrape request and decodes a 2xx body into out. Transport
// failures and non-2xx statuses are SCRAPER_UNAVAILABLE.
func (c *Client) post(ctx context.Context, body scrapeRequest, fallback string, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scrape", bytes.NewReader(data))
	if err != nil {
		return domain.NewError(domain.KindScraperUnavailable, fallback, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewError(domain.KindScraperUnavailable, unknownMessage(body.Type), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.NewError(domain.KindScraperUnavailable, unknownMessage(body.Type), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorDetail(raw)
		if msg == "" {
			msg = fallback
		}
		return domain.NewError(domain.KindScraperUnavailable, msg, fmt.Errorf("scraper http %d", resp.StatusCode))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return domain.NewError(domain.KindScraperUnavailable, unknownMessage(body.Type), fmt.Errorf("decode scraper response: %w", err))
	}
	return nil
}

func unknownMessage(kind domain.ScrapeType) string {
	if kind == domain.ScrapeTypeCompany {
		return msgUnknownCompany
	}
	return msgUnknownProfile
}

// errorDetail pulls a message out of an error body: FastAPI's "detail" when
// it is a string, else "error".
func errorDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil && detail != "" {
		return detail
	}
	return body.Error
}

func partialProfile(url string, now time.Time, msg string) domain.ScrapeResult {
	return domain.ScrapeResult{
		LinkedInID: ExtractID(url, domain.ScrapeTypeProfile),
		Experience: domain.EmptyTimeline(),
		Education:  domain.EmptyTimeline(),
		ScrapedAt:  now,
		Partial:    true,
		Error:      &msg,
	}
}

func partialCompany(url string, now time.Time, msg string) domain.CompanyScrapeResult {
	return domain.CompanyScrapeResult{
		LinkedInID: ExtractID(url, domain.ScrapeTypeCompany),
		ScrapedAt:  now,
		Partial:    true,
		Error:      &msg,
	}
}

func (t *timelineDoc) timeline() domain.Timeline {
	if t == nil {
		return domain.EmptyTimeline()
	}
	return domain.Timeline{
		Positions:    t.Positions,
		Institutions: t.Institutions,
		Dates:        t.Dates,
	}.Normalize()
}

var scrapedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseScrapedAt(s string, fallback time.Time) time.Time {
	for _, layout := range scrapedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	*f = flexString(strings.Trim(string(b), `"`))
	return nil
}
