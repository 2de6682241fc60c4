package scraper

import (
	"regexp"
	"strings"

	"github.com/PabloGalante/linkpitch/internal/domain"
)

var (
	profileURLPattern = regexp.MustCompile(`^https?://(www\.)?linkedin\.com/in/[^/\s?]+(/[^\s?]*)?(\?\S*)?$`)
	companyURLPattern = regexp.MustCompile(`^https?://(www\.)?linkedin\.com/company/[^/\s?]+(/[^\s?]*)?(\?\S*)?$`)
)

// ValidateURL reports whether raw is a LinkedIn profile or company URL of
// the given type: scheme://[www.]linkedin.com/in/<id>[/path][?query].
func ValidateURL(raw string, kind domain.ScrapeType) bool {
	if kind == domain.ScrapeTypeCompany {
		return companyURLPattern.MatchString(raw)
	}
	return profileURLPattern.MatchString(raw)
}

// ExtractID returns the path segment after /in/ (or /company/), stopping at
// the next '/' or '?'. It works on any string and returns "" when there is no
// such segment, so it is usable for pre-filling a form even when ValidateURL
// fails.
func ExtractID(raw string, kind domain.ScrapeType) string {
	marker := "/in/"
	if kind == domain.ScrapeTypeCompany {
		marker = "/company/"
	}

	_, rest, ok := strings.Cut(raw, marker)
	if !ok {
		return ""
	}
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
