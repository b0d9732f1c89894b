package domain

import "strings"

// TextIntent is the closed set of intents a free-form text update can carry.
// Classification happens once, up front, so the router switches on a tag
// instead of nesting string checks.
type TextIntent int

const (
	// IntentPlainText is the fallback: no recognized directive or link.
	IntentPlainText TextIntent = iota
	// IntentExternalLink is a recognized external video link to echo back.
	IntentExternalLink
	// IntentSearchDirective asks for a web search.
	IntentSearchDirective
)

const searchPrefix = "/search "

// ClassifyText tags a free-form text message and extracts its payload:
// the link itself for IntentExternalLink, the query for
// IntentSearchDirective, and the original text otherwise. Priority order
// is fixed: link, then search directive, then plain text.
func ClassifyText(text string) (TextIntent, string) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	if strings.HasPrefix(lower, "http") && strings.Contains(lower, "aparat.com") {
		return IntentExternalLink, trimmed
	}
	if strings.HasPrefix(trimmed, searchPrefix) {
		q := strings.TrimSpace(trimmed[len(searchPrefix):])
		if q != "" {
			return IntentSearchDirective, q
		}
	}
	return IntentPlainText, trimmed
}
