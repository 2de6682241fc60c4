package scraper_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/linkpitch/internal/adapters/scraper"
	"github.com/PabloGalante/linkpitch/internal/domain"
)

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://www.linkedin.com/in/silasyuan/",
		"https://www.linkedin.com/in/silasyuan",
		"https://www.linkedin.com/in/silasyuan/?originalSubdomain=us",
		"https://linkedin.com/in/silasyuan/",
		"http://www.linkedin.com/in/silasyuan/details/experience/",
	}
	for _, u := range valid {
		assert.True(t, scraper.ValidateURL(u, domain.ScrapeTypeProfile), u)
	}

	invalid := []string{
		"",
		"not-a-url",
		"https://www.linkedin.com/company/microsoft/",
		"https://example.com/in/someone",
		"ftp://linkedin.com/in/someone",
		"https://www.linkedin.com/in/",
		"https://linkedin.com/in/foo bar",
		"https://linkedin.com/in/foo/ bar",
		"https://linkedin.com/in/foo?x=1 y",
		"https://linkedin.com/in/foo ",
	}
	for _, u := range invalid {
		assert.False(t, scraper.ValidateURL(u, domain.ScrapeTypeProfile), u)
	}

	assert.True(t, scraper.ValidateURL("https://www.linkedin.com/company/microsoft/", domain.ScrapeTypeCompany))
	assert.False(t, scraper.ValidateURL("https://www.linkedin.com/in/silasyuan/", domain.ScrapeTypeCompany))
	assert.False(t, scraper.ValidateURL("https://www.linkedin.com/company/acme inc", domain.ScrapeTypeCompany))
}

func TestExtractID(t *testing.T) {
	cases := map[string]string{
		"https://www.linkedin.com/in/silasyuan/":                     "silasyuan",
		"https://www.linkedin.com/in/silasyuan?originalSubdomain=us": "silasyuan",
		"https://www.linkedin.com/in/silasyuan/details/education/":   "silasyuan",
		"https://example.com/in/best-effort":                         "best-effort",
		"not-a-url":                                                  "",
		"":                                                           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, scraper.ExtractID(in, domain.ScrapeTypeProfile), in)
	}
	assert.Equal(t, "microsoft", scraper.ExtractID("https://www.linkedin.com/company/microsoft/about", domain.ScrapeTypeCompany))
}

func newServer(t *testing.T, handler http.HandlerFunc) *scraper.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return scraper.New(srv.URL, 5*time.Second, nil)
}

func TestScrapeProfileSuccessMapsFields(t *testing.T) {
	var got map[string]string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/scrape", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"linkedin_id": "silasyuan",
			"name": "Silas Yuan",
			"headline": "Product Manager at Example Corp",
			"avatar_url": "https://img/1.png",
			"experience": {"positions": ["Product Manager", "Software Engineer"], "institutions": ["Example Corp"], "dates": ["2020-Now", "2019-2020"]},
			"scraped_at": "2024-06-01T12:00:00Z"
		}`))
	})

	res := c.ScrapeProfile(context.Background(), "https://www.linkedin.com/in/silasyuan/")

	assert.Equal(t, map[string]string{"url": "https://www.linkedin.com/in/silasyuan/", "type": "profile"}, got)
	assert.False(t, res.Partial)
	assert.Nil(t, res.Error)
	assert.Equal(t, "silasyuan", res.LinkedInID)
	assert.Equal(t, "Silas Yuan", res.Name)
	assert.Equal(t, "https://img/1.png", res.AvatarURL)
	assert.Equal(t, "", res.About)
	assert.Equal(t, []string{"Example Corp", ""}, res.Experience.Institutions)
	assert.Equal(t, domain.EmptyTimeline(), res.Education)
	assert.True(t, res.ScrapedAt.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)))
}

func TestScrapeProfileFallsBackToURLIdentifier(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "Someone"}`))
	})

	res := c.ScrapeProfile(context.Background(), "https://linkedin.com/in/someone?trk=x")

	assert.False(t, res.Partial)
	assert.Equal(t, "someone", res.LinkedInID)
	assert.False(t, res.ScrapedAt.IsZero())
}

func TestScrapeProfileReportedError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Profile is private"}`))
	})

	res := c.ScrapeProfile(context.Background(), "https://www.linkedin.com/in/private-person/")

	assertPartial(t, res, "private-person")
	assert.Equal(t, "Profile is private", res.ErrorText())
}

func TestScrapeProfileHTTPErrorUsesDetail(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "Failed to scrape LinkedIn profile: timeout"}`))
	})

	res := c.ScrapeProfile(context.Background(), "https://www.linkedin.com/in/silasyuan/")

	assertPartial(t, res, "silasyuan")
	assert.Equal(t, "Failed to scrape LinkedIn profile: timeout", res.ErrorText())
}

func TestScrapeProfileHTTPErrorWithoutBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	res := c.ScrapeProfile(context.Background(), "https://www.linkedin.com/in/silasyuan/")

	assertPartial(t, res, "silasyuan")
	assert.Equal(t, "Failed to scrape profile", res.ErrorText())
}

func TestScrapeProfileGarbageBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>captcha</html>`))
	})

	res := c.ScrapeProfile(context.Background(), "https://www.linkedin.com/in/silasyuan/")

	assertPartial(t, res, "silasyuan")
	assert.NotEmpty(t, res.ErrorText())
}

func TestScrapeProfileUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := scraper.New(url, time.Second, nil)

	res := c.ScrapeProfile(context.Background(), "https://www.linkedin.com/in/silasyuan/")

	assertPartial(t, res, "silasyuan")
	assert.Contains(t, res.ErrorText(), "enter information manually")
}

func TestScrapeProfileInvalidInputsNeverCallService(t *testing.T) {
	called := false
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	for _, in := range []string{"", "not-a-url", "https://example.com/profile/x"} {
		res := c.ScrapeProfile(context.Background(), in)
		assertPartial(t, res, "")
		assert.Equal(t, "Invalid LinkedIn URL", res.ErrorText())
	}

	res := c.ScrapeProfile(context.Background(), "https://linkedin.com/in/foo bar")
	assertPartial(t, res, "foo bar")
	assert.Equal(t, "Invalid LinkedIn URL", res.ErrorText())

	assert.False(t, called)
}

func TestScrapeCompany(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "company", body["type"])
		_, _ = w.Write([]byte(`{"name": "Microsoft", "size": "10,001+ employees", "founded": 1975, "website": "https://microsoft.com"}`))
	})

	res := c.ScrapeCompany(context.Background(), "https://www.linkedin.com/company/microsoft/")

	assert.False(t, res.Partial)
	assert.Equal(t, "microsoft", res.LinkedInID)
	assert.Equal(t, "1975", res.Founded)
	assert.Equal(t, "10,001+ employees", res.Size)
}

func TestScrapeCompanyInvalidURL(t *testing.T) {
	c := scraper.New("http://127.0.0.1:1", time.Second, nil)

	res := c.ScrapeCompany(context.Background(), "https://www.linkedin.com/in/person/")

	assert.True(t, res.Partial)
	assert.Equal(t, "Invalid LinkedIn company URL", res.ErrorText())
	assert.Equal(t, "", res.Name)
}

func assertPartial(t *testing.T, res domain.ScrapeResult, wantID string) {
	t.Helper()
	assert.True(t, res.Partial)
	assert.NotEmpty(t, res.ErrorText())
	assert.Equal(t, wantID, res.LinkedInID)
	assert.Empty(t, res.Name)
	assert.Empty(t, res.Headline)
	assert.Empty(t, res.About)
	assert.Empty(t, res.AvatarURL)
	assert.Equal(t, domain.EmptyTimeline(), res.Experience)
	assert.Equal(t, domain.EmptyTimeline(), res.Education)
}
