package feed

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxSummaryLength = 200
	minContentLength = 500
	contentRepeats   = 3
	ellipsis         = "..."
)

var (
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
	imageExtPattern  = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp)`)
	bareImagePattern = regexp.MustCompile(`(?i)https?://[^\s"'<>]+?\.(?:jpg|jpeg|png|gif|webp)(?:\?[^\s"'<>]*)?`)

	// Probed in order against content followed by description.
	markupImagePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<img[^>]+src=["']([^"'>]+)["']`),
		regexp.MustCompile(`(?i)<media:content[^>]+url=["']([^"'>]+)["']`),
		regexp.MustCompile(`(?i)<enclosure[^>]+url=["']([^"'>]+)["'][^>]*type=["']image/`),
		regexp.MustCompile(`(?i)url=["']([^"']+\.(?:jpg|jpeg|png|gif|webp)[^"']*)["']`),
	}
)

// Sanitize strips every angle-bracket span and trims the result.
// Entities are left as they are.
func Sanitize(html string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(html, ""))
}

// ExtractImage returns the first image URL found for the item, or "" when none matches.
func ExtractImage(item RawItem) string {
	if isAbsoluteHTTP(item.Thumbnail) {
		return item.Thumbnail
	}
	if isAbsoluteHTTP(item.Enclosure.Thumbnail) {
		return item.Enclosure.Thumbnail
	}

	markup := item.Content + item.Description
	for _, pattern := range markupImagePatterns {
		for _, match := range pattern.FindAllStringSubmatch(markup, -1) {
			if isAbsoluteHTTP(match[1]) && imageExtPattern.MatchString(match[1]) {
				return match[1]
			}
		}
	}

	return bareImagePattern.FindString(markup)
}

// Summarize cuts text to the summary length, marking the cut with an ellipsis.
func Summarize(text string) string {
	if utf8.RuneCountInString(text) <= maxSummaryLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxSummaryLength]) + ellipsis
}

// Backfill keeps content that is long enough, otherwise repeats the description.
// Thin feeds therefore yield redundant content; only the length floor is guaranteed.
func Backfill(content, description string) string {
	if utf8.RuneCountInString(content) > minContentLength {
		return content
	}
	return strings.Repeat(description, contentRepeats)
}

func isAbsoluteHTTP(s string) bool {
	return strings.HasPrefix(s, "http")
}
