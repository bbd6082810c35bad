package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripMarkup removes volatile HTML markup from a description and returns
// the visible text. Scripts, styles and tracking noise change between
// fetches of an otherwise identical posting, so they must not reach the
// fingerprint. Plain-text descriptions pass through untouched.
func StripMarkup(description string) (string, error) {
	if !strings.ContainsAny(description, "<>") {
		return description, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return "", &MarkupError{Cause: err}
	}

	doc.Find("script, style, noscript, iframe").Remove()

	return doc.Text(), nil
}

// MarkupError reports an HTML description that could not be parsed.
type MarkupError struct {
	Cause error
}

func (e *MarkupError) Error() string {
	return "failed to parse description markup: " + e.Cause.Error()
}

func (e *MarkupError) Unwrap() error {
	return e.Cause
}
