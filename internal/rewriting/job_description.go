package rewriting

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/outreach-pipeline/internal/types"
)

// NormalizeJobDescription returns text suitable for prompting.
// Empty descriptions become the NoJobDescription placeholder and HTML is
// flattened to its visible text.
func NormalizeJobDescription(jd string) string {
	jd = strings.TrimSpace(jd)
	if jd == "" {
		return types.NoJobDescription
	}
	if !looksLikeHTML(jd) {
		return jd
	}

	text, err := htmlToText(jd)
	if err != nil || text == "" {
		return jd
	}
	return text
}

func looksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	for _, tag := range []string{"<p", "<div", "<br", "<li", "<ul", "<ol", "<h1", "<h2", "<h3", "<span", "<strong", "<body", "<html"} {
		if strings.Contains(lower, tag) {
			return true
		}
	}
	return false
}

// htmlToText keeps block boundaries as line breaks so list items stay readable
func htmlToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}
